package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goaltracker/internal/auth"
	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func serve(t *testing.T, mw echo.MiddlewareFunc, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, called, err
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewJWTService("gate-secret", time.Hour)
	valid, err := tokens.GenerateToken("user-1")
	require.NoError(t, err)

	foreign, err := auth.NewJWTService("other-secret", time.Hour).GenerateToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		setup  func(*MockAuthenticator)
	}{
		{"missing header", "", func(*MockAuthenticator) {}},
		{"wrong scheme", "Basic " + valid, func(*MockAuthenticator) {}},
		{"garbage token", "Bearer not-a-jwt", func(*MockAuthenticator) {}},
		{"foreign signature", "Bearer " + foreign, func(*MockAuthenticator) {}},
		{"revoked or deleted", "Bearer " + valid, func(m *MockAuthenticator) {
			m.On("Authenticate", mock.Anything, mock.AnythingOfType("*auth.Claims")).Return(nil, apperrors.ErrUnauthenticated)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator := new(MockAuthenticator)
			tt.setup(authenticator)

			_, called, err := serve(t, RequireAuth(tokens, authenticator), tt.header)

			assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
			assert.False(t, called)
			authenticator.AssertExpectations(t)
		})
	}
}

func TestRequireAuth_Success(t *testing.T) {
	tokens := auth.NewJWTService("gate-secret", time.Hour)
	token, err := tokens.GenerateToken("user-1")
	require.NoError(t, err)

	user := &model.User{ID: "user-1", Email: "a@example.com"}
	authenticator := new(MockAuthenticator)
	authenticator.On("Authenticate", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool {
		return c.UserID == "user-1"
	})).Return(user, nil)

	c, called, err := serve(t, RequireAuth(tokens, authenticator), "Bearer "+token)
	require.NoError(t, err)
	assert.True(t, called)

	got, err := CurrentUser(c)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	claims, err := CurrentClaims(c)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestCurrentUser_WithoutGate(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := CurrentUser(c)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = CurrentClaims(c)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
