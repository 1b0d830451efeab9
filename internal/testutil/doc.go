// Package testutil provides shared helpers for SDK tests: in-memory
// round trippers, loopback HTTP servers, and JWT/JWKS fixtures.
package testutil
