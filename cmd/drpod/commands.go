package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/sa6mwa/drpod/internal/app/feed"
	"github.com/sa6mwa/drpod/internal/app/generator"
	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/app/scheduler"
	"github.com/sa6mwa/drpod/internal/infra/adapters/catalog"
	"github.com/sa6mwa/drpod/internal/infra/adapters/configurator"
	"github.com/sa6mwa/drpod/internal/infra/adapters/differ"
	"github.com/sa6mwa/drpod/internal/infra/adapters/fetcher"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
	"github.com/sa6mwa/drpod/internal/infra/adapters/persister"
	"github.com/sa6mwa/drpod/internal/infra/adapters/site"
	"github.com/sa6mwa/drpod/internal/infra/adapters/uploader"
	"github.com/sa6mwa/drpod/internal/infra/adapters/watcher"
	"github.com/urfave/cli/v2"
)

var (
	ErrMissingAPIKey  error = errors.New(configurator.APIKeyEnv + " is required")
	ErrLocked         error = errors.New("another drpod instance holds the lock")
	ErrNothingWritten error = errors.New("every podcast failed")
)

// setup loads the configuration, applies the global flags and returns
// a context carrying the configured logger.
func setup(c *cli.Context) (context.Context, ports.ForConfiguring, *model.Config, error) {
	var options []configurator.Option
	if file := c.String("config"); file != "" {
		options = append(options, configurator.WithFile(file))
	}
	conf := configurator.New(options...)
	cfg, err := conf.Load(logger.WithDefaultLogger(c.Context))
	if err != nil {
		return nil, nil, nil, err
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	ctx := logger.WithLogger(c.Context, logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
	return ctx, conf, cfg, nil
}

// newCycle wires the generation pipeline. up may be nil.
func newCycle(conf ports.ForConfiguring, cfg *model.Config, persist ports.ForPersisting, up ports.ForUploading) *generator.Cycle {
	f := fetcher.New(cfg.APIKey, fetcher.WithTimeout(cfg.Timeout()), fetcher.WithRateLimit(cfg.RateLimit))
	processor := generator.NewProcessor(
		catalog.New(f, cfg.APIBaseURL, cfg.PageSize),
		persist,
		feed.OptionsFromConfig(cfg),
		cfg.FeedPath,
	)
	siteGenerator := site.New(site.Dirs{
		Source: cfg.SiteSourceDir,
		Site:   cfg.SiteDirFull(),
		Feeds:  cfg.FeedsDir(),
	}, persist)
	return generator.NewCycle(conf, generator.NewService(processor, cfg.MaxConcurrency), siteGenerator, up, cfg.SiteDirFull())
}

// lock takes the exclusive instance lock at path.
func lock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return fl, nil
}

func unlock(ctx context.Context, fl *flock.Flock) {
	if err := fl.Unlock(); err != nil {
		logger.FromContext(ctx).Warn("Failed to release lock", "path", fl.Path(), "error", err)
	}
}

func generate(c *cli.Context) error {
	ctx, conf, cfg, err := setup(c)
	if err != nil {
		return err
	}
	l := logger.FromContext(ctx)
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: %w", ports.ErrConfig, ErrMissingAPIKey)
	}
	dryRun := c.Bool("dry-run")

	var persist ports.ForPersisting
	if dryRun {
		persist = differ.New(os.Stdout)
	} else {
		fl, err := lock(cfg.LockPath())
		if err != nil {
			return err
		}
		defer unlock(ctx, fl)
		persist = persister.New()
	}

	var up ports.ForUploading
	if c.Bool("upload") {
		if dryRun {
			l.Info("Dry run, skipping upload", "bucket", cfg.Aws.Bucket, "prefix", cfg.Aws.Prefix)
		} else {
			up, err = uploader.New(cfg.Aws)
			if err != nil {
				return fmt.Errorf("%w: %w", ports.ErrConfig, err)
			}
		}
	}

	result, err := newCycle(conf, cfg, persist, up).Run(ctx)
	if err != nil {
		return err
	}
	if result.Failed > 0 && len(result.Metadata) == 0 {
		return fmt.Errorf("%w: %d podcasts", ErrNothingWritten, result.Failed)
	}
	return nil
}

func refresh(c *cli.Context) error {
	ctx, conf, cfg, err := setup(c)
	if err != nil {
		return err
	}
	l := logger.FromContext(ctx)
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: %w", ports.ErrConfig, ErrMissingAPIKey)
	}
	if minutes := c.Int("interval"); minutes > 0 {
		cfg.RefreshIntervalMinutes = minutes
	}

	fl, err := lock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer unlock(ctx, fl)

	var up ports.ForUploading
	if c.Bool("upload") || cfg.Aws.Enabled() {
		up, err = uploader.New(cfg.Aws)
		if err != nil {
			return fmt.Errorf("%w: %w", ports.ErrConfig, err)
		}
	}
	cycle := newCycle(conf, cfg, persister.New(), up)

	options := []scheduler.Option{scheduler.WithMaxBackoff(cfg.MaxBackoff())}
	if !c.Bool("no-watch") {
		trigger, err := watcher.New(cfg.PodcastsFileExpanded(), watcher.DefaultDebounce).Watch(ctx)
		if err != nil {
			l.Warn("Not watching podcast list", "path", cfg.PodcastsFileExpanded(), "error", err)
		} else {
			options = append(options, scheduler.WithTrigger(trigger))
		}
	}

	s := scheduler.New(cfg.RefreshInterval(), func(ctx context.Context) (int, error) {
		result, err := cycle.Run(ctx)
		return len(result.Metadata), err
	}, options...)
	return s.Run(ctx)
}

func list(c *cli.Context) error {
	ctx, conf, cfg, err := setup(c)
	if err != nil {
		return err
	}
	podcasts, err := conf.Podcasts(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderTable(listHeaders, listRows(cfg, podcasts), listAligns))
	return nil
}
