package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"goaltracker/internal/auth"
	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

const (
	bcryptCost   = 10
	resetCodeTTL = 15 * time.Minute

	// maxResetAttempts confirmations are allowed per reset code.
	maxResetAttempts = 5
)

// dummyHash is compared against when the email is unknown so that login takes
// the same time whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcryptCost)

// ResetMailer delivers password reset codes.
type ResetMailer interface {
	SendPasswordReset(to, code string, ttl time.Duration) error
}

// ProfileUpdate carries the optional new email and password of the current user.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password string) (string, *model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	mailer     ResetMailer
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	mailer ResetMailer,
	logger *zap.Logger,
) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		mailer:     mailer,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a user with a hashed password and returns a token for it.
func (s *authService) Register(ctx context.Context, email, password string) (string, *model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", nil, err
	}
	if err := validatePassword(password); err != nil {
		return "", nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, apperrors.ErrUserAlreadyExists
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return token, user, nil
}

// Login verifies the credentials and returns a fresh token. Unknown emails and
// wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrUnauthenticated
	}
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, claims.ExpiresIn(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Authenticate resolves verified claims to a live user.
func (s *authService) Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if claims.ID != "" {
		revoked, err := s.tokenStore.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("revocation check failed", zap.Error(err))
		}
		if revoked {
			return nil, apperrors.ErrUnauthenticated
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if claims.IssuedAt == nil {
		if user.PasswordChangedAt != nil {
			return nil, apperrors.ErrUnauthenticated
		}
	} else if user.TokenPredatesPasswordChange(claims.IssuedAt.Time) {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// UpdateProfile changes the current user's email and/or password. A new
// password signs out every token issued before it, the caller's included.
func (s *authService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.users.FindByEmail(ctx, email)
			if err == nil && existing != nil {
				return nil, apperrors.ErrUserAlreadyExists
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("check user existence: %w", err)
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if err := s.setPassword(user, *in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// RequestPasswordReset mails a one-time code to the address if it belongs to a
// user. It reports success either way.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	if err := s.tokenStore.StoreResetCode(ctx, email, code, resetCodeTTL); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	if err := s.mailer.SendPasswordReset(email, code, resetCodeTTL); err != nil {
		s.logger.Error("password reset mail failed", zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a reset code and sets a new password.
func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return apperrors.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	// reserve the attempt before comparing, concurrent guesses share the limit
	attempts, err := s.tokenStore.RecordResetAttempt(ctx, email, resetCodeTTL)
	if err != nil {
		s.logger.Warn("reset attempt not counted", zap.Error(err))
		s.discardResetCode(ctx, email)
		return apperrors.ErrInvalidCredentials
	}
	if attempts > maxResetAttempts {
		s.discardResetCode(ctx, email)
		return apperrors.ErrInvalidCredentials
	}

	ok, err := s.tokenStore.ConsumeResetCode(ctx, email, code)
	if err != nil {
		return fmt.Errorf("consume reset code: %w", err)
	}
	if !ok {
		if attempts == maxResetAttempts {
			s.discardResetCode(ctx, email)
		}
		return apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		return fmt.Errorf("find user: %w", err)
	}
	if err := s.setPassword(user, newPassword); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *authService) discardResetCode(ctx context.Context, email string) {
	if err := s.tokenStore.DiscardResetCode(ctx, email); err != nil {
		s.logger.Error("discard reset code failed", zap.Error(err))
		return
	}
	s.logger.Warn("reset code discarded after failed attempts")
}

func (s *authService) setPassword(user *model.User, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	changedAt := s.now().UTC()
	user.PasswordChangedAt = &changedAt
	return nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
