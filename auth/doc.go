// Package auth mints and caches bearer tokens for the Havona API.
//
// Three grant flows are supported, selected by the Credentials variant the
// client was built with: the resource-owner password grant for interactive
// users, the client-credentials grant for machine-to-machine services, and a
// pre-supplied static token for applications that obtain tokens elsewhere.
//
// TokenManager holds at most one cached token, refreshes it shortly before
// expiry, and coalesces concurrent refreshes into a single identity-provider
// call. It is safe for concurrent use.
//
// # Quick Start
//
//	tm := auth.NewTokenManager(auth.M2MGrant{
//	    Domain:       "your-tenant.us.auth0.com",
//	    Audience:     "https://api.yourdomain.com",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	})
//
//	token, err := tm.Token(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Notes
//
//   - Tokens are fetched lazily on first use, never at construction.
//   - Static tokens have no refresh capability: Refresh returns the same
//     token, and a server-side rejection is terminal.
package auth
