package ports

import (
	"context"

	"github.com/sa6mwa/drpod/internal/app/model"
)

type ForConfiguring interface {
	// Load returns the runtime configuration.
	Load(ctx context.Context) (*model.Config, error)
	// Podcasts reads the list of podcasts to republish. It is called
	// at the start of every cycle so edits are picked up without a
	// restart.
	Podcasts(ctx context.Context) ([]model.Podcast, error)
}

// ForSiteGenerating renders the static site around the generated
// feeds.
type ForSiteGenerating interface {
	Generate(ctx context.Context, feeds []model.FeedMetadata) error
}
