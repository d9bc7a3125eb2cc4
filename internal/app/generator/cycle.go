package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

var ErrNoPodcasts error = errors.New("podcast list is empty")

// Cycle is one full pass: read the podcast list, generate every feed,
// render the site and optionally upload it.
type Cycle struct {
	configurator ports.ForConfiguring
	service      *Service
	site         ports.ForSiteGenerating
	uploader     ports.ForUploading
	siteDir      string
}

// NewCycle returns a Cycle. site and uploader may be nil to skip those
// steps.
func NewCycle(configurator ports.ForConfiguring, service *Service, site ports.ForSiteGenerating, uploader ports.ForUploading, siteDir string) *Cycle {
	return &Cycle{
		configurator: configurator,
		service:      service,
		site:         site,
		uploader:     uploader,
		siteDir:      siteDir,
	}
}

// Run executes the cycle. The returned error is cycle fatal: the
// podcast list could not be read, the site could not be written or the
// upload failed. Podcasts failing individually are only counted in the
// result.
func (c *Cycle) Run(ctx context.Context) (Result, error) {
	l := logger.FromContext(ctx).With("cycle", uuid.NewString())
	ctx = logger.WithLogger(ctx, l)

	podcasts, err := c.configurator.Podcasts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading podcast list: %w", err)
	}
	if len(podcasts) == 0 {
		return Result{}, fmt.Errorf("%w: %w", ports.ErrConfig, ErrNoPodcasts)
	}
	l.Info("Starting feed generation", "podcasts", len(podcasts))

	result := c.service.GenerateAll(ctx, podcasts)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if c.site != nil {
		if err := c.site.Generate(ctx, result.Metadata); err != nil {
			return result, fmt.Errorf("generating site: %w", err)
		}
	}
	if c.uploader != nil {
		if err := c.uploader.UploadDir(ctx, c.siteDir); err != nil {
			return result, fmt.Errorf("uploading site: %w", err)
		}
	}

	l.Info("Feed generation finished", "generated", result.Generated, "skipped", result.Skipped, "failed", result.Failed, "duplicates", result.Duplicates, "feeds", len(result.Metadata), "duration", result.Duration)
	return result, nil
}
