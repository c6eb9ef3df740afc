package contract

import (
	"errors"
	"fmt"
	"time"
)

// ErrQueryRequired is wrapped by the ValidationError raised for an empty query.
var ErrQueryRequired = errors.New("query required")

// ValidationError reports bad caller input. It is raised before any network activity.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UpstreamStatusError reports a non-2xx upstream status. Body is best effort.
type UpstreamStatusError struct {
	Status int
	Body   string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d. Response: %s", e.Status, e.Body)
}

// UpstreamFormatError reports a missing or non-JSON content type.
type UpstreamFormatError struct {
	ContentType string
}

func (e *UpstreamFormatError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "null"
	}
	return "Invalid content type: " + ct
}

// ParseError reports a body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "Invalid JSON in response body"
	}
	return fmt.Sprintf("Invalid JSON in response body: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UpstreamShapeError reports a structurally wrong payload. Field is empty when
// the root value itself has the wrong type.
type UpstreamShapeError struct {
	Field string
	Got   string
}

func (e *UpstreamShapeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("Invalid response format. Expected array, got %s", e.Got)
	}
	return fmt.Sprintf("Invalid %s format. Expected array, got %s", e.Field, e.Got)
}

// ResultShapeError reports a single record missing required fields. One bad
// record fails the whole batch.
type ResultShapeError struct {
	Index int
	Err   error
}

func (e *ResultShapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Invalid result format - missing required fields (results[%d])", e.Index)
	}
	return fmt.Sprintf("Invalid result format - missing required fields (results[%d]: %v)", e.Index, e.Err)
}

func (e *ResultShapeError) Unwrap() error { return e.Err }

// TimeoutError reports that the deadline fired before the upstream answered.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("The request was aborted after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// CancelledError reports that the caller gave up before the upstream answered,
// for example a client that disconnected.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return "The request was cancelled before the API answered"
}

func (e *CancelledError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure: refused connection, DNS, TLS, or a
// relay that dropped the request.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Failed to fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// URLNormalizationError is recovered inside the formatter and never surfaces.
type URLNormalizationError struct {
	RawURL string
	Err    error
}

func (e *URLNormalizationError) Error() string {
	return fmt.Sprintf("normalize url %q: %v", e.RawURL, e.Err)
}

func (e *URLNormalizationError) Unwrap() error { return e.Err }
