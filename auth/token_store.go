package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// tokenStore holds the single cached access token for one TokenManager.
// It is a plain value holder with no I/O; the TokenManager serialises all
// access to it.
type tokenStore struct {
	token *oauth2.Token
	skew  time.Duration
}

func (s *tokenStore) get() *oauth2.Token {
	return s.token
}

func (s *tokenStore) set(t *oauth2.Token) {
	s.token = t
}

func (s *tokenStore) clear() {
	s.token = nil
}

// valid reports whether the cached token can still be sent at the given
// instant. The skew window is subtracted from the expiry so a token is
// replaced before it lapses mid-flight. Tokens without an expiry never go
// stale.
func (s *tokenStore) valid(now time.Time) bool {
	if s.token == nil || s.token.AccessToken == "" {
		return false
	}
	if s.token.Expiry.IsZero() {
		return true
	}
	return now.Before(s.token.Expiry.Add(-s.skew))
}
