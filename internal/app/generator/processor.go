package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sa6mwa/drpod/internal/app/feed"
	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

// Outcome is how processing one podcast ended.
type Outcome int

const (
	Failed Outcome = iota
	Skipped
	Generated
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Generated:
		return "generated"
	default:
		return "failed"
	}
}

// PodcastProcessor produces the feed of a single podcast.
type PodcastProcessor interface {
	Process(ctx context.Context, podcast model.Podcast) (*model.FeedMetadata, Outcome, error)
}

// Processor fetches, builds and persists the feed of one podcast.
type Processor struct {
	catalog   ports.ForCataloging
	persister ports.ForPersisting
	options   feed.Options
	feedPath  func(slug string) string
}

// NewProcessor returns a Processor writing the feed of slug to
// feedPath(slug).
func NewProcessor(catalog ports.ForCataloging, persister ports.ForPersisting, options feed.Options, feedPath func(slug string) string) *Processor {
	return &Processor{
		catalog:   catalog,
		persister: persister,
		options:   options,
		feedPath:  feedPath,
	}
}

// Process runs one podcast through fetching the series, the
// staleness check, fetching episodes, building and persisting. Every
// failure leaves the previous feed file untouched and is returned with
// Outcome Failed and nil metadata.
func (p *Processor) Process(ctx context.Context, podcast model.Podcast) (*model.FeedMetadata, Outcome, error) {
	l := logger.FromContext(ctx).With("slug", podcast.Slug, "urn", podcast.Urn)
	fail := func(stage string, err error) (*model.FeedMetadata, Outcome, error) {
		err = fmt.Errorf("%s %s: %w", stage, podcast.Slug, err)
		if ctx.Err() != nil {
			l.Debug("Podcast aborted", "stage", stage, "error", err)
		} else {
			l.Error("Podcast failed", "stage", stage, "error", err)
		}
		return nil, Failed, err
	}

	series, err := p.catalog.Series(ctx, podcast.Urn)
	if errors.Is(err, ports.ErrNotFound) {
		return fail("unknown urn", err)
	}
	if err != nil {
		return fail("fetching series", err)
	}

	path := p.feedPath(podcast.Slug)
	if !ShouldRegenerate(path, model.Str(series.LatestEpisodeStartTime)) {
		meta := feed.Metadata(series, podcast, p.options)
		l.Info("Feed is up to date", "path", path, "latestEpisode", model.Str(series.LatestEpisodeStartTime))
		return &meta, Skipped, nil
	}

	episodes, err := p.catalog.Episodes(ctx, podcast.Urn)
	if err != nil {
		return fail("fetching episodes", err)
	}

	doc, meta := feed.Build(series, episodes, podcast, p.options)
	data, err := doc.Bytes()
	if err != nil {
		return fail("rendering feed", err)
	}
	if err := p.persister.Write(ctx, path, data); err != nil {
		return fail("persisting feed", err)
	}
	l.Info("Generated feed", "path", path, "episodes", len(episodes), "title", meta.Title)
	return &meta, Generated, nil
}
