package ports

import "context"

type ForWatching interface {
	// Watch starts watching and returns a channel that receives a
	// value every time the watched file changes. The channel is closed
	// when ctx is done. Notifications are coalesced, a slow receiver
	// only misses duplicates.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
