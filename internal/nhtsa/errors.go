package nhtsa

import "fmt"

// FetchError represents a failed upstream request: a transport failure, a
// non-success HTTP status, or a body that is not valid JSON. It is surfaced to
// the caller of the single fetch that failed and is never retried internally.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch error for %s: HTTP status %d", e.URL, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	default:
		return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
