package havona

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed API call into a closed set of categories.
type Kind int

const (
	// KindGeneric covers unclassified non-2xx responses and 2xx responses
	// whose body could not be parsed as JSON.
	KindGeneric Kind = iota

	// KindAuth covers credential and token failures: identity-provider
	// rejections and HTTP 401/403 from the backend.
	KindAuth

	// KindNotFound means the addressed record does not exist (HTTP 404,
	// or a GraphQL lookup that returned null).
	KindNotFound

	// KindValidation covers malformed request payloads (HTTP 400/422)
	// and GraphQL-level errors.
	KindValidation

	// KindNetwork means no response was obtained: connection refused,
	// timeout, DNS failure.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	default:
		return "generic"
	}
}

// GraphQLError is one entry of a GraphQL response's errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error is the single error type surfaced by the client. Every failure
// carries a Kind; callers match on *Error with errors.As for blanket
// handling, or use the Is* helpers for targeted handling. Errors are never
// swallowed or downgraded to empty results.
type Error struct {
	Kind       Kind
	StatusCode int    // 0 when no response was received
	Message    string
	Body       string // truncated response body, for diagnosis

	// GraphQLErrors holds the server's errors array when the failure came
	// from the GraphQL envelope rather than the HTTP status.
	GraphQLErrors []GraphQLError

	err error
}

func (e *Error) Error() string {
	s := e.Message
	if e.StatusCode != 0 {
		s = fmt.Sprintf("%s (HTTP %d)", s, e.StatusCode)
	}
	if e.Body != "" {
		s = s + ": " + e.Body
	}
	if e.err != nil {
		s = s + ": " + e.err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

// IsAuth reports whether err is a credential or token failure.
func IsAuth(err error) bool { return hasKind(err, KindAuth) }

// IsNotFound reports whether err means the addressed record is absent.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsValidation reports whether err is a payload or GraphQL-level failure.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsNetwork reports whether err means no response was obtained.
func IsNetwork(err error) bool { return hasKind(err, KindNetwork) }

func hasKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// classify maps an HTTP status to an error kind. It is a pure function;
// transport failures and GraphQL errors are classified at their call sites.
func classify(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindGeneric
	}
}

// newStatusError builds the typed error for a non-2xx response.
func newStatusError(status int, body string) *Error {
	kind := classify(status)

	var msg string
	switch {
	case status == http.StatusUnauthorized:
		msg = "authentication failed"
	case status == http.StatusForbidden:
		msg = "forbidden: insufficient permissions"
	case kind == KindNotFound:
		msg = "resource not found"
	case kind == KindValidation:
		msg = "validation error"
	default:
		msg = "request failed"
	}

	return &Error{
		Kind:       kind,
		StatusCode: status,
		Message:    msg,
		Body:       truncate(body, maxErrorBody),
	}
}

// newGraphQLError classifies a GraphQL errors array. Validation by default;
// a recognized extensions code moves it to the auth kind.
func newGraphQLError(errs []GraphQLError) *Error {
	kind := KindValidation
	for _, e := range errs {
		if code, ok := e.Extensions["code"].(string); ok {
			if code == "UNAUTHENTICATED" || code == "UNAUTHORIZED" {
				kind = KindAuth
			}
		}
	}

	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Message
	}

	return &Error{
		Kind:          kind,
		Message:       "GraphQL errors: " + strings.Join(messages, "; "),
		GraphQLErrors: errs,
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
