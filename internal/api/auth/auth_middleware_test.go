package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profilehub/profilehub/internal/types"
)

func newTestGate(repo AuthRepo) (*Gate, *TokenIssuer) {
	tokens := NewTokenIssuer(testJWTConfig())
	return NewGate(tokens, repo, slog.Default()), tokens
}

func gateRequest(t *testing.T, gate *Gate, authHeader string) (*httptest.ResponseRecorder, *types.User) {
	t.Helper()

	var seen *types.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	gate.Middleware(next).ServeHTTP(w, req)
	return w, seen
}

func TestGate_MissingHeader(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, _ := newTestGate(mockRepo)

	w, seen := gateRequest(t, gate, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, seen)
	mockRepo.AssertNotCalled(t, "GetUserByID")
}

func TestGate_WrongScheme(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, tokens := newTestGate(mockRepo)

	token, err := tokens.Issue(testUser())
	require.NoError(t, err)

	w, _ := gateRequest(t, gate, "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGate_GarbageToken(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, _ := newTestGate(mockRepo)

	w, _ := gateRequest(t, gate, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockRepo.AssertNotCalled(t, "GetUserByID")
}

func TestGate_DeletedUser(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, tokens := newTestGate(mockRepo)

	user := testUser()
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	// Valid token for a user that no longer exists: Unauthenticated, not a
	// server error and not NotFound.
	mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(nil, types.ErrNotFound).Once()

	w, seen := gateRequest(t, gate, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, seen)
	mockRepo.AssertExpectations(t)
}

func TestGate_StoreFailure(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, tokens := newTestGate(mockRepo)

	user := testUser()
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(nil, types.ErrStoreUnavailable).Once()

	w, _ := gateRequest(t, gate, "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGate_Success(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, tokens := newTestGate(mockRepo)

	user := testUser()
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

	w, seen := gateRequest(t, gate, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestGate_AuthenticateResult(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	gate, tokens := newTestGate(mockRepo)
	ctx := context.Background()

	user := testUser()
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

	result, err := gate.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.True(t, result.Authenticated())
	assert.Equal(t, user.ID, result.User.ID)

	result, err = gate.Authenticate(ctx, "")
	require.NoError(t, err)
	assert.False(t, result.Authenticated())
	assert.NotEmpty(t, result.Reason)
}

func TestUserFromContext_Absent(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	ctx := context.WithValue(context.Background(), userKey, &types.User{ID: id})
	user, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, user.ID)
}
