package ports

import (
	"context"

	"github.com/sa6mwa/drpod/internal/app/model"
)

// ForCataloging reads show metadata and episode lists from the
// upstream podcast catalog.
type ForCataloging interface {
	// Series returns the show level metadata of urn.
	Series(ctx context.Context, urn string) (*model.Series, error)
	// Episodes returns every episode of urn, following the catalog's
	// next-link pagination until the last page. Episodes are returned
	// in response order. A failure on any page discards everything
	// fetched so far.
	Episodes(ctx context.Context, urn string) ([]model.Episode, error)
}
