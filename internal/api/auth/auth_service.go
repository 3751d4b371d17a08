package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/profilehub/profilehub/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for account operations.
type AuthService interface {
	// Register creates a new account and returns it. Duplicate emails
	// surface as types.ErrConflict from the storage layer; the service does
	// not pre-check.
	Register(ctx context.Context, username, email, password string, profilePictureRef *string) (*types.User, error)

	// Login verifies credentials and returns a signed access token.
	// Unknown email and wrong password are indistinguishable.
	Login(ctx context.Context, email, password string) (string, error)

	// GetProfile retrieves an account by ID.
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// UpdateProfile applies a partial update and returns the result.
	// Absent fields are left untouched; a new password is re-hashed.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.User, error)
}

// AuthServiceImpl wires the hasher, token issuer and credential store.
type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	hasher Hasher
	tokens *TokenIssuer
}

func NewAuthService(repo AuthRepo, hasher Hasher, tokens *TokenIssuer, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

var validate = validator.New()

// dummyHash is compared against on the unknown-email login path so that both
// failure modes cost a bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func validateCredentials(username, email, password string) error {
	if err := validate.Var(username, "required"); err != nil {
		return fmt.Errorf("%w: username must not be empty", types.ErrValidation)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: email is not valid", types.ErrValidation)
	}
	if err := validate.Var(password, "required"); err != nil {
		return fmt.Errorf("%w: password must not be empty", types.ErrValidation)
	}
	return nil
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string, profilePictureRef *string) (*types.User, error) {
	l := s.logger.With(slog.String("method", "Register"))

	if err := validateCredentials(username, email, password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, username, email, passwordHash, profilePictureRef)
	if err != nil {
		l.WarnContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	return user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Burn a compare so unknown email costs the same as a
			// wrong password.
			s.hasher.Check(password, dummyHash)
			l.WarnContext(ctx, "Login failed: unknown email")
			return "", types.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		l.WarnContext(ctx, "Login failed: password mismatch", slog.String("userID", user.ID.String()))
		return "", types.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("error issuing access token: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID.String()))
	return token, nil
}

func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.User, error) {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		if err := validate.Var(*params.Username, "required"); err != nil {
			return nil, fmt.Errorf("%w: username must not be empty", types.ErrValidation)
		}
		user.Username = *params.Username
	}
	if params.Email != nil {
		if err := validate.Var(*params.Email, "required,email"); err != nil {
			return nil, fmt.Errorf("%w: email is not valid", types.ErrValidation)
		}
		user.Email = *params.Email
	}
	if params.Password != nil {
		if err := validate.Var(*params.Password, "required"); err != nil {
			return nil, fmt.Errorf("%w: password must not be empty", types.ErrValidation)
		}
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.PasswordHash = hash
	}
	if params.ProfilePictureRef != nil {
		user.ProfilePictureRef = params.ProfilePictureRef
	}

	updated, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save user", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "Profile updated")
	return updated, nil
}
