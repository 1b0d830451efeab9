// Package havona is the Go client for the Havona trade-finance platform.
//
// The client authenticates against the platform's identity provider,
// caches and refreshes bearer tokens transparently, and exposes typed
// facades for trades, documents, agents and blockchain status. All
// failures surface as *Error values classified into a closed set of
// kinds; nothing is retried beyond a single token refresh after a 401.
//
// # Quick Start
//
//	client, err := havona.NewWithPassword("https://api.havona.example", auth.PasswordGrant{
//	    Domain:   "your-tenant.us.auth0.com",
//	    Audience: "https://api.havona.example",
//	    ClientID: "client-id",
//	    Username: "trader@example.com",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	trades, err := client.Trades.List(ctx, 10)
//	if havona.IsAuth(err) {
//	    // credentials rejected
//	}
//
// # Error Handling
//
// Catch *Error with errors.As for blanket handling, or use the IsAuth,
// IsNotFound, IsValidation and IsNetwork helpers for targeted handling.
// GraphQL responses with an errors array fail the call even on HTTP 200.
//
// # Notes
//
//   - Tokens are obtained lazily on the first request, never at
//     construction, and concurrent refreshes collapse into one
//     identity-provider call.
//   - Clients built with NewWithToken cannot refresh: a 401 is terminal.
package havona
