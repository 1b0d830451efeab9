package auth

import "strings"

// Credentials selects the grant flow used to mint access tokens. It is a
// sealed sum type: PasswordGrant, M2MGrant and StaticToken are the only
// variants. A TokenManager holds exactly one variant for its lifetime.
type Credentials interface {
	grantType() string
}

// PasswordGrant authenticates an interactive user through the OAuth2
// resource-owner password flow.
type PasswordGrant struct {
	Domain   string // identity provider tenant, e.g. "your-tenant.us.auth0.com"
	Audience string // API identifier, e.g. "https://api.yourdomain.com"
	ClientID string
	Username string
	Password string
}

// M2MGrant authenticates a service account through the client-credentials
// flow.
type M2MGrant struct {
	Domain       string
	Audience     string
	ClientID     string
	ClientSecret string
}

// StaticToken injects a pre-obtained bearer token. There is no refresh
// capability: if the server rejects the token, the failure is terminal.
type StaticToken struct {
	Token string
}

func (PasswordGrant) grantType() string { return "password" }
func (M2MGrant) grantType() string      { return "client_credentials" }
func (StaticToken) grantType() string   { return "static" }

// tokenURL builds the token endpoint for a tenant domain. A bare domain is
// assumed to be HTTPS; a full URL is used as-is so tests can point at
// loopback servers.
func tokenURL(domain string) string {
	return baseURL(domain) + "/oauth/token"
}

func baseURL(domain string) string {
	d := strings.TrimRight(domain, "/")
	if !strings.Contains(d, "://") {
		d = "https://" + d
	}
	return d
}
