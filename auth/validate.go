package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Validator verifies Havona-issued JWTs against the identity provider's
// published JWKS. It is intended for pre-supplied tokens whose provenance
// the application cannot otherwise check: validating up front turns a
// doomed token into an immediate failure instead of a rejected first
// request.
type Validator struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
}

// NewValidator fetches the tenant's JWKS and returns a validator bound to
// the given audience. Call Close when the validator is no longer needed to
// stop the background key refresh.
func NewValidator(domain, audience string, httpClient *http.Client) (*Validator, error) {
	if domain == "" {
		return nil, errors.New("auth: domain is required")
	}
	if audience == "" {
		return nil, errors.New("auth: audience is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	issuer := baseURL(domain) + "/"

	jwks, err := keyfunc.Get(baseURL(domain)+"/.well-known/jwks.json", keyfunc.Options{
		Client:            httpClient,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, &Error{msg: "auth: fetch JWKS", err: err}
	}

	return &Validator{
		jwks:     jwks,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Validate parses the token and verifies its signature, expiry, issuer and
// audience. The token's claims are returned on success.
func (v *Validator) Validate(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, &Error{msg: "auth: token validation failed", err: err}
	}
	if !token.Valid {
		return nil, &Error{msg: "auth: token is not valid"}
	}

	return claims, nil
}

// Close stops the background JWKS refresh.
func (v *Validator) Close() {
	v.jwks.EndBackground()
}
