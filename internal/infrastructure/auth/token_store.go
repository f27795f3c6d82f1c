package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
)

// TokenStore is the concurrency-safe holder of the bearer credential pair.
// It never refreshes tokens itself; an expired access token is replaced by
// calling Set again with a fresh pair obtained elsewhere.
type TokenStore struct {
	mu   sync.RWMutex
	pair api.TokenPair
}

// NewTokenStore returns an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set stores the pair, replacing any previous credentials. Idempotent.
func (s *TokenStore) Set(pair api.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
}

// Get returns the current pair.
func (s *TokenStore) Get() api.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

// Bearer returns the Authorization header value for the access token.
func (s *TokenStore) Bearer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return "Bearer " + s.pair.AccessToken
}

// AccessExpiry peeks at the exp claim of the access token without verifying
// the signature. Used for diagnostics only; the backend is the authority on
// token validity.
func (s *TokenStore) AccessExpiry() (time.Time, bool) {
	s.mu.RLock()
	token := s.pair.AccessToken
	s.mu.RUnlock()
	if token == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
