package generator

import (
	"context"
	"time"

	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
	"golang.org/x/sync/errgroup"
)

// Result aggregates one pass over the podcast list.
type Result struct {
	// Metadata of every generated or skipped podcast, in podcast list
	// order.
	Metadata   []model.FeedMetadata
	Generated  int
	Skipped    int
	Failed     int
	Duplicates int
	Duration   time.Duration
}

// Service fans a PodcastProcessor out over a podcast list.
type Service struct {
	processor      PodcastProcessor
	maxConcurrency int
}

// NewService returns a Service running at most maxConcurrency podcasts
// at a time, zero or negative for no limit.
func NewService(processor PodcastProcessor, maxConcurrency int) *Service {
	return &Service{
		processor:      processor,
		maxConcurrency: maxConcurrency,
	}
}

type processed struct {
	meta    *model.FeedMetadata
	outcome Outcome
}

// GenerateAll processes every podcast concurrently and waits for all
// of them. A failing podcast is absent from Result.Metadata and does
// not affect the others. A slug occurring more than once is processed
// once.
func (s *Service) GenerateAll(ctx context.Context, podcasts []model.Podcast) Result {
	l := logger.FromContext(ctx)
	start := time.Now()

	unique := make([]model.Podcast, 0, len(podcasts))
	seen := make(map[string]struct{}, len(podcasts))
	var result Result
	for _, p := range podcasts {
		if _, dup := seen[p.Slug]; dup {
			l.Warn("Ignoring duplicate podcast", "slug", p.Slug, "urn", p.Urn)
			result.Duplicates++
			continue
		}
		seen[p.Slug] = struct{}{}
		unique = append(unique, p)
	}

	results := make([]processed, len(unique))
	var g errgroup.Group
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}
	for i, p := range unique {
		g.Go(func() error {
			meta, outcome, _ := s.processor.Process(ctx, p)
			results[i] = processed{meta: meta, outcome: outcome}
			return nil
		})
	}
	g.Wait()

	result.Metadata = make([]model.FeedMetadata, 0, len(unique))
	for _, r := range results {
		switch r.outcome {
		case Generated:
			result.Generated++
		case Skipped:
			result.Skipped++
		default:
			result.Failed++
			continue
		}
		if r.meta != nil {
			result.Metadata = append(result.Metadata, *r.meta)
		}
	}
	result.Duration = time.Since(start)
	return result
}
