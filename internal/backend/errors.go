package backend

import "fmt"

// statusError reports a non-2xx backend response, keeping the upstream code
// so the HTTP layer can map it.
type statusError struct {
	status int
	path   string
	body   string
}

func (e statusError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.path, e.status, e.body)
	}
	return fmt.Sprintf("backend %s: status %d", e.path, e.status)
}

func (e statusError) StatusCode() int { return e.status }

// IsStatus reports whether err is a non-2xx backend response.
func IsStatus(err error) bool {
	_, ok := err.(statusError)
	return ok
}

// decodeError signals a response body that was not parseable JSON. The calls
// ignore body content beyond decode success, so this is the only body-level
// failure mode.
type decodeError struct {
	path string
	err  error
}

func (e decodeError) Error() string { return "backend " + e.path + ": decode response: " + e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

// IsDecodeFailure reports whether err indicates an undecodable response body.
func IsDecodeFailure(err error) bool {
	_, ok := err.(decodeError)
	return ok
}
