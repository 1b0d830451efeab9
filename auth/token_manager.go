package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// Logger is an interface for optional logging in TokenManager.
// Implementations can log token refresh events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

const (
	// DefaultSkew is subtracted from a token's expiry when judging
	// validity, so the token is replaced before it actually lapses.
	DefaultSkew = time.Minute

	// passwordScope is requested on the password grant so the resulting
	// token carries the email claim the user-scoped endpoints need.
	passwordScope = "openid profile email"

	maxTokenResponse = 1 << 20
)

// TokenManager mints and caches bearer tokens for one set of Credentials.
// It holds at most one token at a time, refreshes it when it nears expiry,
// and coalesces concurrent refreshes into a single identity-provider call.
// Safe for concurrent use.
type TokenManager struct {
	creds Credentials

	mu    sync.RWMutex
	store tokenStore

	group      singleflight.Group
	httpClient *http.Client
	logger     Logger
	now        func() time.Time
}

// Option is a functional option for configuring TokenManager.
type Option func(*TokenManager)

// WithLogger sets a custom logger for token refresh events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(tm *TokenManager) {
		tm.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
func WithLoggingEnabled() Option {
	return func(tm *TokenManager) {
		tm.logger = log.Default()
	}
}

// WithHTTPClient sets the HTTP client used for token requests. The default
// client has a 10 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(tm *TokenManager) {
		if client != nil {
			tm.httpClient = client
		}
	}
}

// WithSkew overrides the safety window subtracted from token expiry.
func WithSkew(skew time.Duration) Option {
	return func(tm *TokenManager) {
		tm.store.skew = skew
	}
}

// NewTokenManager creates a token manager for the given credentials.
// No identity-provider call is made until the first Token call.
func NewTokenManager(creds Credentials, opts ...Option) *TokenManager {
	tm := &TokenManager{
		creds:      creds,
		store:      tokenStore{skew: DefaultSkew},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(tm)
	}

	// A static token is all we will ever have; seed the store so every
	// request is a cache hit. The zero expiry means it never goes stale.
	if st, ok := creds.(StaticToken); ok {
		tm.store.set(&oauth2.Token{AccessToken: st.Token, TokenType: "Bearer"})
	}

	return tm
}

// CanRefresh reports whether the credentials can mint a new token.
// Static tokens cannot be refreshed, so a server-side rejection of one is
// terminal for the caller.
func (tm *TokenManager) CanRefresh() bool {
	_, static := tm.creds.(StaticToken)
	return !static
}

// Token returns a valid access token, fetching one from the identity
// provider if the cache is empty or inside the skew window of expiry.
// Concurrent callers that observe a stale cache share a single in-flight
// fetch.
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	// Fast path: serve from cache without the write path.
	tm.mu.RLock()
	if tm.store.valid(tm.now()) {
		token := tm.store.get().AccessToken
		tm.mu.RUnlock()
		return token, nil
	}
	tm.mu.RUnlock()

	return tm.refresh(ctx, false)
}

// Refresh discards the cached token and fetches a fresh one. For static
// credentials it returns the same token unchanged.
func (tm *TokenManager) Refresh(ctx context.Context) (string, error) {
	if st, ok := tm.creds.(StaticToken); ok {
		return st.Token, nil
	}
	return tm.refresh(ctx, true)
}

// Invalidate drops the cached token so the next Token call fetches a new
// one. It is a no-op for static credentials, whose token is all there is.
func (tm *TokenManager) Invalidate() {
	if !tm.CanRefresh() {
		return
	}
	tm.mu.Lock()
	tm.store.clear()
	tm.mu.Unlock()
}

func (tm *TokenManager) refresh(ctx context.Context, force bool) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	v, err, _ := tm.group.Do("token", func() (any, error) {
		// Re-check the cache inside the flight: another caller may have
		// stored a fresh token while we waited to enter.
		if !force {
			tm.mu.RLock()
			if tm.store.valid(tm.now()) {
				token := tm.store.get().AccessToken
				tm.mu.RUnlock()
				return token, nil
			}
			tm.mu.RUnlock()
		}

		token, err := tm.fetch(ctx)
		if err != nil {
			return "", err
		}

		tm.mu.Lock()
		tm.store.set(token)
		tm.mu.Unlock()

		if tm.logger != nil {
			tm.logger.Printf("auth: obtained access token (expires %s)", token.Expiry.Format(time.RFC3339))
		}

		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// fetch dispatches on the credentials variant and performs one token
// request. Retry policy belongs to the caller, never here.
func (tm *TokenManager) fetch(ctx context.Context) (*oauth2.Token, error) {
	switch c := tm.creds.(type) {
	case M2MGrant:
		return tm.fetchClientCredentials(ctx, c)
	case PasswordGrant:
		return tm.fetchPassword(ctx, c)
	case StaticToken:
		return &oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"}, nil
	default:
		return nil, &Error{msg: fmt.Sprintf("auth: unsupported credentials type %T", tm.creds)}
	}
}

func (tm *TokenManager) fetchClientCredentials(ctx context.Context, c M2MGrant) (*oauth2.Token, error) {
	config := &clientcredentials.Config{
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		TokenURL:       tokenURL(c.Domain),
		EndpointParams: url.Values{"audience": {c.Audience}},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, tm.httpClient)

	token, err := config.Token(ctx)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			return nil, &Error{
				StatusCode: rErr.Response.StatusCode,
				Body:       truncate(string(rErr.Body), maxErrorBody),
				msg:        "auth: token request rejected",
				err:        err,
			}
		}
		return nil, &Error{msg: "auth: token request failed", err: err}
	}

	return token, nil
}

// tokenResponse is the identity provider's token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// fetchPassword posts the password grant directly. x/oauth2's
// PasswordCredentialsToken cannot carry the audience parameter the
// provider requires, so this grant builds its own request.
func (tm *TokenManager) fetchPassword(ctx context.Context, c PasswordGrant) (*oauth2.Token, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type": "password",
		"client_id":  c.ClientID,
		"audience":   c.Audience,
		"username":   c.Username,
		"password":   c.Password,
		"scope":      passwordScope,
	})
	if err != nil {
		return nil, &Error{msg: "auth: encode token request", err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL(c.Domain), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{msg: "auth: build token request", err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return nil, &Error{msg: "auth: token request failed", err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponse))
	if err != nil {
		return nil, &Error{msg: "auth: read token response", err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBody),
			msg:        "auth: token request rejected",
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBody),
			msg:        "auth: malformed token response",
			err:        err,
		}
	}
	if tr.AccessToken == "" {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBody),
			msg:        "auth: token response missing access_token",
		}
	}

	token := &oauth2.Token{AccessToken: tr.AccessToken, TokenType: tr.TokenType}
	if tr.ExpiresIn > 0 {
		token.Expiry = tm.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return token, nil
}
