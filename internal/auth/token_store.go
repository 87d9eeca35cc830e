package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"goaltracker/internal/cache"
)

const (
	revokedTokenKeyPrefix = "revoked:token:"
	resetCodeKeyPrefix    = "password_reset:"
	resetAttemptKeyPrefix = "password_reset_attempts:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error
	ConsumeResetCode(ctx context.Context, email, code string) (bool, error)
	RecordResetAttempt(ctx context.Context, email string, ttl time.Duration) (int64, error)
	DiscardResetCode(ctx context.Context, email string) error
}

// TokenStore keeps revoked token ids and password reset codes in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeToken blacklists a token id until the token would have expired anyway.
func (s *TokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsTokenRevoked checks the blacklist. Redis being down reads as not revoked.
func (s *TokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}

// StoreResetCode saves the reset code for email, replacing any earlier one
// along with its failed attempts.
func (s *TokenStore) StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.cache.Delete(ctx, resetAttemptKeyPrefix+email); err != nil {
		return err
	}
	return s.cache.Set(ctx, resetCodeKeyPrefix+email, []byte(code), ttl)
}

// ConsumeResetCode reports whether code matches the stored one and deletes it on success.
func (s *TokenStore) ConsumeResetCode(ctx context.Context, email, code string) (bool, error) {
	key := resetCodeKeyPrefix + email
	stored, err := s.cache.Get(ctx, key)
	if err != nil || stored == nil {
		return false, err
	}
	if subtle.ConstantTimeCompare(stored, []byte(code)) != 1 {
		return false, nil
	}
	return true, s.DiscardResetCode(ctx, email)
}

// RecordResetAttempt counts a confirmation attempt for email and returns the
// attempts so far, the current one included.
func (s *TokenStore) RecordResetAttempt(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	return s.cache.Incr(ctx, resetAttemptKeyPrefix+email, ttl)
}

// DiscardResetCode drops the pending code for email and its attempt count.
func (s *TokenStore) DiscardResetCode(ctx context.Context, email string) error {
	if err := s.cache.Delete(ctx, resetCodeKeyPrefix+email); err != nil {
		return err
	}
	return s.cache.Delete(ctx, resetAttemptKeyPrefix+email)
}
