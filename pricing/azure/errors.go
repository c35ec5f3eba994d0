package azure

import "fmt"

// UpstreamHTTPError is returned when the Retail Prices API answers with a non-2xx status.
type UpstreamHTTPError struct {
	StatusCode int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("Azure API returned status %d", e.StatusCode)
}

// Retryable reports whether the status is worth another attempt.
func (e *UpstreamHTTPError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// UpstreamDecodeError is returned when a response body is not a valid prices page.
type UpstreamDecodeError struct {
	Err error
}

func (e *UpstreamDecodeError) Error() string {
	return fmt.Sprintf("decoding Azure response: %v", e.Err)
}

func (e *UpstreamDecodeError) Unwrap() error { return e.Err }

// InvalidURLError is returned when the configured base URL cannot be parsed.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid base URL %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }
