package ports

import "context"

// ForPersisting stores a rendered document at path. Implementations
// must never leave a partially written file visible at path.
type ForPersisting interface {
	Write(ctx context.Context, path string, data []byte) error
}
