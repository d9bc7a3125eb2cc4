package ports

import "errors"

var (
	// ErrNotFound matches errors of adapters asked for something the
	// backend does not have, e.g. a series urn the catalog API answers
	// 404 for.
	ErrNotFound error = errors.New("no such file or key")
	// ErrTransient marks a failure worth retrying (transport error,
	// non-2xx status).
	ErrTransient error = errors.New("transient failure")
	// ErrUpstream wraps the final error of a request to the catalog
	// API once retries are exhausted or the failure was not retryable.
	ErrUpstream error = errors.New("upstream failure")
	// ErrPersist wraps disk I/O failures while writing a document.
	ErrPersist error = errors.New("persist failure")
	// ErrConfig marks configuration that can not be loaded or parsed,
	// including the podcast list.
	ErrConfig error = errors.New("configuration error")
)
