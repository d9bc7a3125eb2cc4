package ports

import "context"

type ForFetching interface {
	// Fetch issues a GET request for url and returns the response body
	// of a 2xx response. Transient failures (transport errors, non-2xx
	// status) are retried by the implementation; the error returned
	// after the last attempt wraps ErrUpstream. Implementations must
	// abort promptly when ctx is cancelled.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
