package havona

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/havona-labs/havona-sdk/auth"
)

const (
	// DefaultTimeout bounds every backend and identity-provider call.
	DefaultTimeout = 30 * time.Second

	maxErrorBody    = 500
	maxResponseBody = 10 << 20

	jsonContentType = "application/json"
)

// Logger is an interface for optional logging in Client.
type Logger interface {
	Printf(format string, args ...any)
}

// Client talks to the Havona trade-finance platform. Every request carries
// a bearer token minted from the configured credentials; tokens are cached
// and refreshed transparently. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *auth.TokenManager
	logger     Logger

	Trades     *TradesService
	Documents  *DocumentsService
	Agents     *AgentsService
	ETRs       *ETRsService
	Blockchain *BlockchainService
}

type options struct {
	timeout       time.Duration
	httpClient    *http.Client
	logger        Logger
	skew          time.Duration
	validateToken *tokenValidation
}

type tokenValidation struct {
	domain   string
	audience string
}

// Option is a functional option for configuring Client.
type Option func(*options)

// WithTimeout sets the request timeout for all HTTP calls.
// Default is 30 seconds. Ignored when WithHTTPClient is also given.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client, e.g. for connection pooling or
// a custom transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for token refresh and retry events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
func WithLoggingEnabled() Option {
	return func(o *options) {
		o.logger = log.Default()
	}
}

// WithTokenSkew overrides the safety window subtracted from token expiry
// when judging whether the cached token is still usable.
func WithTokenSkew(skew time.Duration) Option {
	return func(o *options) {
		o.skew = skew
	}
}

// WithTokenValidation verifies a pre-supplied token against the tenant's
// published JWKS at construction, so a bad token fails fast instead of
// being rejected on the first request. Only meaningful with NewWithToken.
func WithTokenValidation(domain, audience string) Option {
	return func(o *options) {
		o.validateToken = &tokenValidation{domain: domain, audience: audience}
	}
}

// NewWithPassword builds a client that authenticates an interactive user
// through the resource-owner password grant. Tokens are cached and
// refreshed automatically.
func NewWithPassword(baseURL string, grant auth.PasswordGrant, opts ...Option) (*Client, error) {
	return newClient(baseURL, grant, opts)
}

// NewWithClientCredentials builds a machine-to-machine client using the
// client-credentials grant. M2M tokens carry no email claim and cannot
// reach user-scoped endpoints such as /graphql.
func NewWithClientCredentials(baseURL string, grant auth.M2MGrant, opts ...Option) (*Client, error) {
	return newClient(baseURL, grant, opts)
}

// NewWithToken builds a client around a pre-obtained bearer token. The
// token is sent as-is: there is no refresh, and a rejection by the server
// is terminal.
func NewWithToken(baseURL, token string, opts ...Option) (*Client, error) {
	return newClient(baseURL, auth.StaticToken{Token: token}, opts)
}

func newClient(baseURL string, creds auth.Credentials, opts []Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("havona: base URL is required")
	}

	o := options{timeout: DefaultTimeout, skew: auth.DefaultSkew}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	authOpts := []auth.Option{
		auth.WithHTTPClient(httpClient),
		auth.WithSkew(o.skew),
	}
	if o.logger != nil {
		authOpts = append(authOpts, auth.WithLogger(o.logger))
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     auth.NewTokenManager(creds, authOpts...),
		logger:     o.logger,
	}

	if o.validateToken != nil {
		if err := validateStaticToken(creds, o.validateToken, httpClient); err != nil {
			return nil, err
		}
	}

	c.Trades = &TradesService{client: c}
	c.Documents = &DocumentsService{client: c}
	c.Agents = &AgentsService{client: c}
	c.ETRs = &ETRsService{client: c}
	c.Blockchain = &BlockchainService{client: c}

	return c, nil
}

func validateStaticToken(creds auth.Credentials, v *tokenValidation, httpClient *http.Client) error {
	st, ok := creds.(auth.StaticToken)
	if !ok {
		return errors.New("havona: WithTokenValidation requires a token-injected client")
	}

	validator, err := auth.NewValidator(v.domain, v.audience, httpClient)
	if err != nil {
		return &Error{Kind: KindAuth, Message: "token validation setup failed", err: err}
	}
	defer validator.Close()

	if _, err := validator.Validate(st.Token); err != nil {
		return &Error{Kind: KindAuth, Message: "pre-supplied token failed validation", err: err}
	}
	return nil
}

// Request performs one authenticated call and returns the raw JSON body.
//
// A valid token is acquired first (fetching one if the cache is stale); an
// identity-provider failure surfaces without touching the backend. On a
// 401 the cached token is discarded, one forced refresh runs, and the call
// is retried exactly once; a second 401 is terminal. Static-token clients
// cannot refresh, so their 401 is terminal immediately. No other retry is
// performed: 5xx and network failures surface to the caller as-is.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	contentType := ""

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindGeneric, Message: "encode request body", err: err}
		}
		payload = raw
		contentType = jsonContentType
	}

	return c.do(ctx, method, path, contentType, payload)
}

// Write creates or updates a record through POST /dynamic. Omit "id" in
// the payload to create; include it to update. The platform dual-persists
// every write to the query layer and the blockchain audit trail.
func (c *Client) Write(ctx context.Context, typeName string, payload map[string]any) (json.RawMessage, error) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["type"] = typeName

	return c.Request(ctx, http.MethodPost, "/dynamic", body)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, payload []byte) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, authFailure(err)
	}

	resp, raw, err := c.dispatch(ctx, method, path, contentType, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens.CanRefresh() {
		// The cached token may have been revoked server-side. Force one
		// refresh and retry once; a second 401 falls through to the
		// classifier below, bounding each logical call to two attempts.
		if c.logger != nil {
			c.logger.Printf("havona: 401 on %s %s, refreshing token and retrying", method, path)
		}

		c.tokens.Invalidate()
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return nil, authFailure(err)
		}

		resp, raw, err = c.dispatch(ctx, method, path, contentType, payload, token)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, string(raw))
	}

	if !json.Valid(raw) {
		return nil, &Error{
			Kind:       KindGeneric,
			StatusCode: resp.StatusCode,
			Message:    "response body is not valid JSON",
			Body:       truncate(string(raw), maxErrorBody),
		}
	}

	return json.RawMessage(raw), nil
}

// dispatch sends one HTTP request and drains the response body. Transport
// failures come back as network errors; the caller classifies statuses.
func (c *Client) dispatch(ctx context.Context, method, path, contentType string, payload []byte, token string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, &Error{Kind: KindGeneric, Message: "build request", err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &Error{Kind: KindNetwork, Message: "request failed: no response", err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, &Error{Kind: KindNetwork, Message: "read response body", err: err}
	}

	return resp, raw, nil
}

// upload posts a multipart form with a single file part plus optional
// extra fields. Used by the document extraction endpoints, where the
// Content-Type header must carry the multipart boundary. The form is
// buffered so the 401 retry can re-send it.
func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader, fileContentType string, fields map[string]string) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", fileContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, &Error{Kind: KindGeneric, Message: "build multipart form", err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, &Error{Kind: KindGeneric, Message: "read upload file", err: err}
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, &Error{Kind: KindGeneric, Message: "build multipart form", err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &Error{Kind: KindGeneric, Message: "build multipart form", err: err}
	}

	return c.do(ctx, http.MethodPost, path, w.FormDataContentType(), buf.Bytes())
}

// authFailure wraps an identity-provider failure into the client's error
// taxonomy. Every token failure is an auth failure, including transport
// problems reaching the provider.
func authFailure(err error) error {
	var aErr *auth.Error
	if errors.As(err, &aErr) {
		return &Error{
			Kind:       KindAuth,
			StatusCode: aErr.StatusCode,
			Message:    "authentication failed",
			Body:       aErr.Body,
			err:        err,
		}
	}
	return &Error{Kind: KindAuth, Message: "authentication failed", err: err}
}
