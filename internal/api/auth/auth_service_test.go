package auth

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profilehub/profilehub/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface.
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string, profilePictureRef *string) (*types.User, error) {
	args := m.Called(ctx, username, email, passwordHash, profilePictureRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) SaveUser(ctx context.Context, user *types.User) (*types.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func strPtr(s string) *string { return &s }

func newTestService(repo AuthRepo) *AuthServiceImpl {
	return NewAuthService(repo, NewBcryptHasher(), NewTokenIssuer(testJWTConfig()), slog.Default())
}

func TestRegister(t *testing.T) {
	hasher := NewBcryptHasher()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		created := &types.User{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
		mockRepo.On("CreateUser", ctx, "alice", "a@x.com", mock.AnythingOfType("string"), (*string)(nil)).
			Run(func(args mock.Arguments) {
				// The stored hash must verify against the plaintext.
				assert.True(t, hasher.Check("secret1", args.String(3)))
			}).
			Return(created, nil).Once()

		user, err := service.Register(ctx, "alice", "a@x.com", "secret1", nil)
		require.NoError(t, err)
		assert.Equal(t, created, user)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ValidationFailures", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		cases := []struct {
			name     string
			username string
			email    string
			password string
		}{
			{"EmptyUsername", "", "a@x.com", "secret1"},
			{"EmptyEmail", "alice", "", "secret1"},
			{"MalformedEmail", "alice", "not-an-email", "secret1"},
			{"EmptyPassword", "alice", "a@x.com", ""},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := service.Register(ctx, tc.username, tc.email, tc.password, nil)
				assert.ErrorIs(t, err, types.ErrValidation)
			})
		}
		// The repo must never be touched on validation failure.
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("CreateUser", ctx, "alice", "a@x.com", mock.AnythingOfType("string"), (*string)(nil)).
			Return(nil, types.ErrConflict).Once()

		_, err := service.Register(ctx, "alice", "a@x.com", "secret1", nil)
		assert.ErrorIs(t, err, types.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	hasher := NewBcryptHasher()
	tokens := NewTokenIssuer(testJWTConfig())

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)
		user := &types.User{ID: uuid.New(), Username: "alice", Email: "a@x.com", PasswordHash: hash}

		mockRepo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil).Once()

		token, err := service.Login(ctx, "a@x.com", "secret1")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "nobody@x.com").Return(nil, types.ErrNotFound).Once()

		token, err := service.Login(ctx, "nobody@x.com", "secret1")
		assert.Empty(t, token)
		assert.ErrorIs(t, err, types.ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)
		user := &types.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: hash}

		mockRepo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil).Once()

		token, err := service.Login(ctx, "a@x.com", "wrong")
		assert.Empty(t, token)
		assert.ErrorIs(t, err, types.ErrInvalidCredentials)
	})

	t.Run("FailuresAreIndistinguishable", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)
		user := &types.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: hash}

		mockRepo.On("GetUserByEmail", ctx, "nobody@x.com").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil).Once()

		_, errUnknown := service.Login(ctx, "nobody@x.com", "secret1")
		_, errWrong := service.Login(ctx, "a@x.com", "wrong")
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("StoreUnavailablePropagates", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "a@x.com").Return(nil, types.ErrStoreUnavailable).Once()

		_, err := service.Login(ctx, "a@x.com", "secret1")
		assert.ErrorIs(t, err, types.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, types.ErrInvalidCredentials)
	})
}

func TestGetProfile(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := newTestService(mockRepo)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		user := &types.User{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()

		got, err := service.GetProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		missing := uuid.New()
		mockRepo.On("GetUserByID", ctx, missing).Return(nil, types.ErrNotFound).Once()

		_, err := service.GetProfile(ctx, missing)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	hasher := NewBcryptHasher()

	t.Run("PartialUpdateLeavesOtherFieldsUntouched", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		user := &types.User{ID: uuid.New(), Username: "a", Email: "a@x.com", PasswordHash: "hash"}
		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		mockRepo.On("SaveUser", ctx, mock.AnythingOfType("*types.User")).
			Return(user, nil).Once()

		got, err := service.UpdateProfile(ctx, user.ID, types.UpdateProfileParams{Username: strPtr("b")})
		require.NoError(t, err)
		assert.Equal(t, "b", got.Username)
		assert.Equal(t, "a@x.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PasswordIsRehashed", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		oldHash, err := hasher.Hash("old-password")
		require.NoError(t, err)
		user := &types.User{ID: uuid.New(), Username: "a", Email: "a@x.com", PasswordHash: oldHash}

		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		mockRepo.On("SaveUser", ctx, mock.AnythingOfType("*types.User")).
			Return(user, nil).Once()

		got, err := service.UpdateProfile(ctx, user.ID, types.UpdateProfileParams{Password: strPtr("new-password")})
		require.NoError(t, err)
		assert.NotEqual(t, oldHash, got.PasswordHash)
		assert.True(t, hasher.Check("new-password", got.PasswordHash))
	})

	t.Run("EmptyFieldsRejected", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		user := &types.User{ID: uuid.New(), Username: "a", Email: "a@x.com"}
		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil)

		_, err := service.UpdateProfile(ctx, user.ID, types.UpdateProfileParams{Username: strPtr("")})
		assert.ErrorIs(t, err, types.ErrValidation)

		_, err = service.UpdateProfile(ctx, user.ID, types.UpdateProfileParams{Email: strPtr("")})
		assert.ErrorIs(t, err, types.ErrValidation)

		mockRepo.AssertNotCalled(t, "SaveUser")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		missing := uuid.New()
		mockRepo.On("GetUserByID", ctx, missing).Return(nil, types.ErrNotFound).Once()

		_, err := service.UpdateProfile(ctx, missing, types.UpdateProfileParams{Username: strPtr("b")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
