package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/havona-labs/havona-sdk/internal/testutil"
)

const testAudience = "https://api.example.com"

func newValidatorFixture(t *testing.T) (*Validator, *testutil.TestKeyPair, string) {
	t.Helper()

	keyPair := testutil.GenerateTestKeyPair(t)

	mux := http.NewServeMux()
	mux.Handle("/.well-known/jwks.json", testutil.NewJWKSHandler(t, keyPair.PublicKey))
	idp := testutil.NewLocalHTTPServer(t, mux)

	validator, err := NewValidator(idp.URL, testAudience, nil)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	t.Cleanup(validator.Close)

	issuer := idp.URL + "/"
	return validator, keyPair, issuer
}

func TestValidatorAcceptsValidToken(t *testing.T) {
	validator, keyPair, issuer := newValidatorFixture(t)

	token := testutil.SignToken(t, keyPair.PrivateKey,
		testutil.StandardClaims(issuer, testAudience, "user-1"))

	claims, err := validator.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		t.Fatalf("get subject: %v", err)
	}
	if sub != "user-1" {
		t.Errorf("subject = %q, want user-1", sub)
	}
}

func TestValidatorRejectsBadTokens(t *testing.T) {
	validator, keyPair, issuer := newValidatorFixture(t)

	expired := testutil.StandardClaims(issuer, testAudience, "user-1")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongAudience := testutil.StandardClaims(issuer, "https://other-api.example.com", "user-1")
	wrongIssuer := testutil.StandardClaims("https://wrong-issuer.example.com/", testAudience, "user-1")

	noExpiry := testutil.StandardClaims(issuer, testAudience, "user-1")
	delete(noExpiry, "exp")

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: testutil.SignToken(t, keyPair.PrivateKey, expired)},
		{name: "wrong audience", token: testutil.SignToken(t, keyPair.PrivateKey, wrongAudience)},
		{name: "wrong issuer", token: testutil.SignToken(t, keyPair.PrivateKey, wrongIssuer)},
		{name: "missing expiry", token: testutil.SignToken(t, keyPair.PrivateKey, noExpiry)},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := validator.Validate(tt.token); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestValidatorRejectsForeignSignature(t *testing.T) {
	validator, _, issuer := newValidatorFixture(t)

	// Signed by a key the JWKS has never published.
	foreign := testutil.GenerateTestKeyPair(t)
	token := testutil.SignToken(t, foreign.PrivateKey,
		testutil.StandardClaims(issuer, testAudience, "user-1"))

	if _, err := validator.Validate(token); err == nil {
		t.Error("expected validation to fail for a foreign signature")
	}
}

func TestNewValidatorRequiresConfig(t *testing.T) {
	if _, err := NewValidator("", testAudience, nil); err == nil {
		t.Error("expected error for missing domain")
	}
	if _, err := NewValidator("tenant.example.com", "", nil); err == nil {
		t.Error("expected error for missing audience")
	}
}
