package middleware

import (
	"context"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"goaltracker/internal/auth"
	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
)

const (
	claimsContextKey = "claims"
	userContextKey   = "user"
)

// Authenticator resolves verified token claims to a live user.
type Authenticator interface {
	Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

// RequireAuth rejects requests without a valid bearer token for an existing
// user. On success the claims and the user are stored on the echo context.
func RequireAuth(tokens *auth.JWTService, authenticator Authenticator) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := tokens.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrUnauthenticated
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*auth.Claims)
			if !ok {
				return apperrors.ErrUnauthenticated
			}

			user, err := authenticator.Authenticate(c.Request().Context(), claims)
			if err != nil {
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		})
	}
}

// CurrentUser returns the user resolved by RequireAuth.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// CurrentClaims returns the verified claims of the presented token.
func CurrentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return claims, nil
}
