package datasource

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNetwork = errors.New("owapi: network error")
	ErrParse   = errors.New("owapi: parse error")
)

// maxErrorBody caps how much of a failed response body is kept in an error.
const maxErrorBody = 512

// NetworkError is returned for transport failures and non-2xx responses.
type NetworkError struct {
	Op         string // operation, e.g. "onecall"
	StatusCode int    // 0 when no response was received
	Body       string // truncated response body
	Err        error  // underlying transport error, if any
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("owapi: %s: API error (status %d): %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("owapi: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is implements errors.Is for ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ParseError is returned for malformed JSON or a missing response section.
type ParseError struct {
	Op      string
	Section string // set when an expected section is missing
	Err     error
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("owapi: %s: section %q: %v", e.Op, e.Section, e.Err)
	}
	return fmt.Sprintf("owapi: %s: failed to parse response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is implements errors.Is for ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ErrMissingSection is wrapped by ParseError when a section is absent.
var ErrMissingSection = errors.New("missing from response")

func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
