package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/profilehub/profilehub/app/observability/metrics"
	"github.com/profilehub/profilehub/internal/api"
	"github.com/profilehub/profilehub/internal/types"
)

type contextKey string

const userKey contextKey = "authenticatedUser"

// AuthResult is the explicit outcome of the authorization gate: either the
// resolved user (full record, internal use only) or a rejection reason.
type AuthResult struct {
	User   *types.User
	Reason string
}

func (r AuthResult) Authenticated() bool { return r.User != nil }

func rejected(reason string) AuthResult { return AuthResult{Reason: reason} }

// Gate guards protected operations: it extracts the bearer token, verifies
// it, and resolves the referenced user. All denial modes collapse to
// Unauthenticated; only a storage failure is a server error.
type Gate struct {
	logger *slog.Logger
	tokens *TokenIssuer
	repo   AuthRepo
}

func NewGate(tokens *TokenIssuer, repo AuthRepo, logger *slog.Logger) *Gate {
	metrics.InitAppMetrics()
	return &Gate{
		logger: logger,
		tokens: tokens,
		repo:   repo,
	}
}

// Authenticate runs the per-request gate state machine against the raw
// Authorization header value. The returned error is non-nil only when the
// credential store fails; a token that references a deleted user is an
// ordinary rejection.
func (g *Gate) Authenticate(ctx context.Context, authHeader string) (AuthResult, error) {
	if authHeader == "" {
		return rejected("Authorization header required"), nil
	}

	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return rejected("Authorization header format must be Bearer {token}"), nil
	}

	claims, err := g.tokens.Verify(headerParts[1])
	if err != nil {
		g.logger.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
		return rejected("Invalid or expired token"), nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return rejected("Invalid or expired token"), nil
	}

	user, err := g.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			g.logger.WarnContext(ctx, "Token references missing user", slog.String("userID", claims.UserID))
			return rejected("Invalid or expired token"), nil
		}
		return AuthResult{}, err
	}

	return AuthResult{User: user}, nil
}

// Middleware adapts the gate to chi. On success the resolved user is placed
// in the request context for downstream handlers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := g.Authenticate(ctx, r.Header.Get("Authorization"))
		if err != nil {
			g.logger.ErrorContext(ctx, "Gate failed to resolve user", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
			return
		}
		if !result.Authenticated() {
			metrics.Get().AuthRejectionsTotal.Add(ctx, 1)
			api.ErrorResponse(w, r, http.StatusUnauthorized, result.Reason)
			return
		}

		ctx = context.WithValue(ctx, userKey, result.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the user attached by the gate middleware.
func UserFromContext(ctx context.Context) (*types.User, bool) {
	user, ok := ctx.Value(userKey).(*types.User)
	return user, ok
}
