package auth

import "fmt"

const maxErrorBody = 300

// Error reports a failed exchange with the identity provider.
type Error struct {
	StatusCode int    // HTTP status from the provider, 0 if no response was received
	Body       string // truncated response body, for diagnosis
	msg        string
	err        error
}

func (e *Error) Error() string {
	s := e.msg
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

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
