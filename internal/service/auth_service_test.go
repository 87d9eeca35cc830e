package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"goaltracker/internal/auth"
	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if user.ID == "" {
		user.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	args := m.Called(ctx, email, code, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) ConsumeResetCode(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) RecordResetAttempt(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	args := m.Called(ctx, email, ttl)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenStore) DiscardResetCode(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockMailer is a mock implementation of ResetMailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(to, code string, ttl time.Duration) error {
	args := m.Called(to, code, ttl)
	return args.Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestAuthService(repo *MockUserRepository, tokens *MockTokenStore, mailer *MockMailer) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, jwtService, tokens, mailer, nil), jwtService
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    " Test@Example.com ",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "user already exists",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "duplicate detected on insert",
			email:    "race@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicate)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:          "short password",
			email:         "short@example.com",
			password:      "123",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, jwtService := newTestAuthService(mockRepo, new(MockTokenStore), new(MockMailer))
			token, user, err := svc.Register(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", user.Email)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)))

				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           "user-1",
					Email:        "test@example.com",
					PasswordHash: hashed(t, "password123"),
				}, nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           "user-1",
					Email:        "test@example.com",
					PasswordHash: hashed(t, "password123"),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, _ := newTestAuthService(mockRepo, new(MockTokenStore), new(MockMailer))
			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, "user-1", user.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginStorageFailureIsNotInvalidCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection reset"))

	svc, _ := newTestAuthService(mockRepo, new(MockTokenStore), new(MockMailer))
	_, _, err := svc.Login(context.Background(), "test@example.com", "password123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Authenticate(t *testing.T) {
	user := &model.User{ID: "user-1", Email: "test@example.com"}
	claims := &auth.Claims{UserID: "user-1"}
	claims.ID = "jti-1"

	t.Run("live user", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("IsTokenRevoked", mock.Anything, "jti-1").Return(false, nil)
		repo.On("FindByID", mock.Anything, "user-1").Return(user, nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		got, err := svc.Authenticate(context.Background(), claims)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("revoked token", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("IsTokenRevoked", mock.Anything, "jti-1").Return(true, nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		_, err := svc.Authenticate(context.Background(), claims)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("token issued before password change", func(t *testing.T) {
		changedAt := time.Date(2026, 4, 15, 10, 0, 0, 500_000_000, time.UTC)
		changed := &model.User{ID: "user-1", Email: "test@example.com", PasswordChangedAt: &changedAt}

		tests := []struct {
			name     string
			issuedAt *jwt.NumericDate
			wantErr  error
		}{
			{"older token", jwt.NewNumericDate(changedAt.Add(-time.Minute)), apperrors.ErrUnauthenticated},
			{"same second", jwt.NewNumericDate(changedAt.Truncate(time.Second)), nil},
			{"newer token", jwt.NewNumericDate(changedAt.Add(time.Minute)), nil},
			{"no issued-at", nil, apperrors.ErrUnauthenticated},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo, tokens := new(MockUserRepository), new(MockTokenStore)
				tokens.On("IsTokenRevoked", mock.Anything, "jti-2").Return(false, nil)
				repo.On("FindByID", mock.Anything, "user-1").Return(changed, nil)

				c := &auth.Claims{UserID: "user-1"}
				c.ID = "jti-2"
				c.IssuedAt = tt.issuedAt

				svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
				got, err := svc.Authenticate(context.Background(), c)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, changed, got)
			})
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("IsTokenRevoked", mock.Anything, "jti-1").Return(false, nil)
		repo.On("FindByID", mock.Anything, "user-1").Return(nil, repository.ErrNotFound)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		_, err := svc.Authenticate(context.Background(), claims)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestAuthService_Logout(t *testing.T) {
	tokens := new(MockTokenStore)
	svc, jwtService := newTestAuthService(new(MockUserRepository), tokens, new(MockMailer))

	token, err := jwtService.GenerateToken("user-1")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	tokens.On("RevokeToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	tokens.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	newEmail := "new@example.com"
	newPassword := "new-password"

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1", Email: "old@example.com", PasswordHash: "old"}, nil)
	repo.On("FindByEmail", mock.Anything, newEmail).Return(nil, repository.ErrNotFound)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	now := time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestAuthService(repo, new(MockTokenStore), new(MockMailer))
	svc.(*authService).now = func() time.Time { return now }
	user, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Email: &newEmail, Password: &newPassword})

	require.NoError(t, err)
	assert.Equal(t, newEmail, user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)))
	require.NotNil(t, user.PasswordChangedAt)
	assert.Equal(t, now, *user.PasswordChangedAt)
	repo.AssertExpectations(t)
}

func TestAuthService_UpdateProfileEmailOnlyKeepsTokens(t *testing.T) {
	newEmail := "new@example.com"

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1", Email: "old@example.com", PasswordHash: "old"}, nil)
	repo.On("FindByEmail", mock.Anything, newEmail).Return(nil, repository.ErrNotFound)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc, _ := newTestAuthService(repo, new(MockTokenStore), new(MockMailer))
	user, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Email: &newEmail})

	require.NoError(t, err)
	assert.Nil(t, user.PasswordChangedAt)
}

func TestAuthService_UpdateProfileEmailTaken(t *testing.T) {
	taken := "taken@example.com"

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1", Email: "old@example.com"}, nil)
	repo.On("FindByEmail", mock.Anything, taken).Return(&model.User{ID: "user-2", Email: taken}, nil)

	svc, _ := newTestAuthService(repo, new(MockTokenStore), new(MockMailer))
	_, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Email: &taken})

	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	t.Run("known email gets a code", func(t *testing.T) {
		repo, tokens, mailer := new(MockUserRepository), new(MockTokenStore), new(MockMailer)
		repo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{ID: "user-1", Email: "test@example.com"}, nil)

		var stored string
		tokens.On("StoreResetCode", mock.Anything, "test@example.com", mock.AnythingOfType("string"), resetCodeTTL).
			Run(func(args mock.Arguments) { stored = args.String(2) }).
			Return(nil)
		mailer.On("SendPasswordReset", "test@example.com", mock.AnythingOfType("string"), resetCodeTTL).Return(nil)

		svc, _ := newTestAuthService(repo, tokens, mailer)
		require.NoError(t, svc.RequestPasswordReset(context.Background(), "test@example.com"))

		assert.Len(t, stored, 6)
		mailer.AssertCalled(t, "SendPasswordReset", "test@example.com", stored, resetCodeTTL)
	})

	t.Run("unknown email reports success without sending", func(t *testing.T) {
		repo, tokens, mailer := new(MockUserRepository), new(MockTokenStore), new(MockMailer)
		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

		svc, _ := newTestAuthService(repo, tokens, mailer)
		require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))

		tokens.AssertNotCalled(t, "StoreResetCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("valid code", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("RecordResetAttempt", mock.Anything, "test@example.com", resetCodeTTL).Return(int64(1), nil)
		tokens.On("ConsumeResetCode", mock.Anything, "test@example.com", "123456").Return(true, nil)
		repo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{ID: "user-1", Email: "test@example.com"}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("brand-new")) == nil &&
				u.PasswordChangedAt != nil
		})).Return(nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		require.NoError(t, svc.ResetPassword(context.Background(), "test@example.com", "123456", "brand-new"))
		repo.AssertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("ConsumeResetCode", mock.Anything, "test@example.com", "000000").Return(false, nil)
		tokens.On("RecordResetAttempt", mock.Anything, "test@example.com", resetCodeTTL).Return(int64(1), nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		err := svc.ResetPassword(context.Background(), "test@example.com", "000000", "brand-new")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		tokens.AssertNotCalled(t, "DiscardResetCode", mock.Anything, mock.Anything)
	})

	t.Run("last allowed miss discards the code", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("ConsumeResetCode", mock.Anything, "test@example.com", "000000").Return(false, nil)
		tokens.On("RecordResetAttempt", mock.Anything, "test@example.com", resetCodeTTL).Return(int64(maxResetAttempts), nil)
		tokens.On("DiscardResetCode", mock.Anything, "test@example.com").Return(nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		err := svc.ResetPassword(context.Background(), "test@example.com", "000000", "brand-new")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		tokens.AssertExpectations(t)
	})

	t.Run("attempts past the limit never compare", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("RecordResetAttempt", mock.Anything, "test@example.com", resetCodeTTL).Return(int64(maxResetAttempts+1), nil)
		tokens.On("DiscardResetCode", mock.Anything, "test@example.com").Return(nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		err := svc.ResetPassword(context.Background(), "test@example.com", "123456", "brand-new")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "ConsumeResetCode", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		tokens.AssertExpectations(t)
	})

	t.Run("uncounted attempt discards the code", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenStore)
		tokens.On("RecordResetAttempt", mock.Anything, "test@example.com", resetCodeTTL).Return(int64(0), errors.New("redis down"))
		tokens.On("DiscardResetCode", mock.Anything, "test@example.com").Return(nil)

		svc, _ := newTestAuthService(repo, tokens, new(MockMailer))
		err := svc.ResetPassword(context.Background(), "test@example.com", "123456", "brand-new")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "ConsumeResetCode", mock.Anything, mock.Anything, mock.Anything)
		tokens.AssertExpectations(t)
	})
}
