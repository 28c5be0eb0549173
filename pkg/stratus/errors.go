package stratus

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError represents a non-2xx response from the Stratus API. The raw
// response body is kept verbatim for display.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error: status %d", e.StatusCode)
	}

	return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Body)
}

// RateLimitError represents a 429 response. RetryAfter carries the
// server-requested wait so callers can surface the concrete delay.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: retry after %s", e.RetryAfter)
}

// ValidationError is a local input error raised before anything is sent
// to the server, named after the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

// PartialFetchError reports a paginated listing that was truncated by a
// mid-pagination failure. The records fetched before the failure are
// still returned alongside it.
type PartialFetchError struct {
	Pages int
	Err   error
}

// Error implements the error interface.
func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("listing truncated after %d page(s): %v", e.Pages, e.Err)
}

func (e *PartialFetchError) Unwrap() error {
	return e.Err
}

// Static errors that can be wrapped with context.
var (
	ErrConnectionFailed   = errors.New("connection failed; check network, VPN, or proxy settings")
	ErrNoChanges          = errors.New("nothing to apply")
	ErrNoMoreItems        = errors.New("no more items")
	ErrAPIEndpointInvalid = errors.New("API endpoint is invalid")
	ErrAppKeyRequired     = errors.New("app key is required")
	ErrAppKeyEmpty        = errors.New("app key cannot be empty")
	ErrNoProjectTargeted  = errors.New("no project targeted")
	ErrNoPackageTargeted  = errors.New("no package targeted")
	ErrNoAssemblyTargeted = errors.New("no assembly targeted")
	ErrRecordNotVisible   = errors.New("record is not in the current collection")
)

// IsRateLimited reports whether err is a 429 rate-limit failure.
func IsRateLimited(err error) bool {
	rateErr := &RateLimitError{}

	return errors.As(err, &rateErr)
}

// IsTransient reports whether err is a retryable server failure (500 or
// 503).
func IsTransient(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusServiceUnavailable
	}

	return false
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsConnectionFailure reports whether err is a transport-level failure
// that never produced a response.
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsPartialFetch reports whether err marks a truncated listing whose
// partial results are still usable.
func IsPartialFetch(err error) bool {
	partial := &PartialFetchError{}

	return errors.As(err, &partial)
}
