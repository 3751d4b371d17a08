package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/profilehub/profilehub/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential store contract the authentication core depends
// on. Implementations own uniqueness enforcement (email) and concurrency
// control; the core propagates their transient failures unchanged.
type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string, profilePictureRef *string) (*types.User, error)
	// SaveUser persists the full mutated record.
	SaveUser(ctx context.Context, user *types.User) (*types.User, error)
}

// Connection is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type Connection interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     Connection
}

func NewPostgresAuthRepo(db Connection, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

const userColumns = "id, username, email, password_hash, profile_picture_ref, created_at, updated_at"

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail")
	defer span.End()
	span.SetAttributes(semconv.DBSystemPostgreSQL, attribute.String("db.sql.table", "users"))

	var user types.User
	err := r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.ProfilePictureRef, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapStoreError("get user by email", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID")
	defer span.End()
	span.SetAttributes(semconv.DBSystemPostgreSQL, attribute.String("db.user.id", userID.String()))

	var user types.User
	err := r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.ProfilePictureRef, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapStoreError("get user by id", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string, profilePictureRef *string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser")
	defer span.End()
	span.SetAttributes(semconv.DBSystemPostgreSQL, attribute.String("db.operation", "INSERT"))

	user := types.User{
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		ProfilePictureRef: profilePictureRef,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, profile_picture_ref)
         VALUES ($1, $2, $3, $4)
         RETURNING id, created_at, updated_at`,
		username, email, passwordHash, profilePictureRef).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapStoreError("create user", err)
	}

	r.logger.InfoContext(ctx, "User created", slog.String("userID", user.ID.String()))
	return &user, nil
}

func (r *PostgresAuthRepo) SaveUser(ctx context.Context, user *types.User) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "SaveUser")
	defer span.End()
	span.SetAttributes(semconv.DBSystemPostgreSQL, attribute.String("db.operation", "UPDATE"))

	err := r.db.QueryRow(ctx,
		`UPDATE users
         SET username = $1, email = $2, password_hash = $3, profile_picture_ref = $4, updated_at = now()
         WHERE id = $5
         RETURNING updated_at`,
		user.Username, user.Email, user.PasswordHash, user.ProfilePictureRef, user.ID).
		Scan(&user.UpdatedAt)
	if err != nil {
		return nil, mapStoreError("save user", err)
	}
	return user, nil
}

// mapStoreError translates pgx errors into the domain taxonomy: no rows is a
// lookup miss, a unique violation is a conflict, and anything else is a
// transient store failure that callers must not retry here.
func mapStoreError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return types.ErrConflict
	}
	return fmt.Errorf("%w: %s: %s", types.ErrStoreUnavailable, op, err)
}
