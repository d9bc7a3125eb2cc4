// configurator is an adapter for loading the runtime configuration
// (defaults, an optional YAML file and the environment) and the list
// of podcasts to republish. It implements the ports.ForConfiguring
// interface.
package configurator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileEnv          = "DRPOD_CONFIG"
	APIKeyEnv              = "API_KEY"
	APIBaseURLEnv          = "API_BASE_URL"
	BaseURLEnv             = "BASE_URL"
	RefreshIntervalEnv     = "REFRESH_INTERVAL_MINUTES"
	PreferMP4Env           = "PREFER_MP4"
	MaxConcurrencyEnv      = "MAX_CONCURRENCY"
	RateLimitEnv           = "API_RATE_LIMIT"
	PodcastsFileEnv        = "PODCASTS_FILE"
	OutputDirEnv           = "OUTPUT_DIR"
	SiteDirEnv             = "SITE_DIR"
	SiteSourceDirEnv       = "SITE_SOURCE_DIR"
	FeedTimezoneEnv        = "FEED_TIMEZONE"
	LogLevelEnv            = "LOG_LEVEL"
	LogFormatEnv           = "LOG_FORMAT"
	S3BucketEnv            = "S3_BUCKET"
	S3RegionEnv            = "S3_REGION"
	AwsProfileEnv          = "AWS_PROFILE"
	DefaultPodcastsFile    = "podcasts.json"
	FallbackPodcastsFile   = "/app/podcasts.json"
	DefaultRefreshInterval = 15
)

var ErrInvalidSlug error = errors.New("invalid slug")

// Defaults returns the configuration used when neither file nor
// environment says otherwise.
func Defaults() *model.Config {
	return &model.Config{
		APIBaseURL:             "https://api.dr.dk/radio/v2/series/",
		PodcastsFile:           DefaultPodcastsFile,
		OutputDir:              "output",
		SiteDir:                "_site",
		SiteSourceDir:          "site",
		RefreshIntervalMinutes: DefaultRefreshInterval,
		MaxBackoffMinutes:      60,
		PageSize:               256,
		TimeoutSeconds:         30,
		FeedTimezone:           "Europe/Copenhagen",
		Log: model.LogConfig{
			Level: "info",
		},
	}
}

type Option func(*forConfiguring)

// WithFile reads path as YAML on top of the defaults. It takes
// precedence over DRPOD_CONFIG.
func WithFile(path string) Option {
	return func(c *forConfiguring) {
		c.file = path
	}
}

// WithLookupEnv replaces os.LookupEnv (tests).
func WithLookupEnv(lookup func(key string) (string, bool)) Option {
	return func(c *forConfiguring) {
		c.lookupEnv = lookup
	}
}

// configurator.New returns a local file and environment based
// configurator that satisfies the ports.ForConfiguring port interface.
func New(options ...Option) ports.ForConfiguring {
	c := &forConfiguring{
		lookupEnv: os.LookupEnv,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Implements the ports.ForConfiguring interface.
type forConfiguring struct {
	file      string
	lookupEnv func(key string) (string, bool)

	mu     sync.Mutex
	config *model.Config
}

func (c *forConfiguring) env(key string) (string, bool) {
	v, ok := c.lookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (c *forConfiguring) Load(ctx context.Context) (*model.Config, error) {
	cfg := Defaults()
	file := c.file
	if file == "" {
		file, _ = c.env(ConfigFileEnv)
	}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrConfig, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", ports.ErrConfig, file, err)
		}
	}
	c.applyEnv(ctx, cfg)
	if cfg.RefreshIntervalMinutes <= 0 {
		cfg.RefreshIntervalMinutes = DefaultRefreshInterval
	}
	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
	return cfg, nil
}

func (c *forConfiguring) applyEnv(ctx context.Context, cfg *model.Config) {
	l := logger.FromContext(ctx)
	str := func(key string, dst *string) {
		if v, ok := c.env(key); ok {
			*dst = v
		}
	}
	str(APIKeyEnv, &cfg.APIKey)
	str(APIBaseURLEnv, &cfg.APIBaseURL)
	str(BaseURLEnv, &cfg.BaseURL)
	str(PodcastsFileEnv, &cfg.PodcastsFile)
	str(OutputDirEnv, &cfg.OutputDir)
	str(SiteDirEnv, &cfg.SiteDir)
	str(SiteSourceDirEnv, &cfg.SiteSourceDir)
	str(FeedTimezoneEnv, &cfg.FeedTimezone)
	str(LogLevelEnv, &cfg.Log.Level)
	str(LogFormatEnv, &cfg.Log.Format)
	str(S3BucketEnv, &cfg.Aws.Bucket)
	str(S3RegionEnv, &cfg.Aws.Region)
	str(AwsProfileEnv, &cfg.Aws.Profile)

	if v, ok := c.env(RefreshIntervalEnv); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshIntervalMinutes = n
		} else {
			l.Warn("Ignoring invalid refresh interval", "env", RefreshIntervalEnv, "value", v)
		}
	}
	if v, ok := c.env(PreferMP4Env); ok {
		cfg.PreferMP4 = strings.EqualFold(v, "true") || v == "1"
	}
	if v, ok := c.env(MaxConcurrencyEnv); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConcurrency = n
		} else {
			l.Warn("Ignoring invalid concurrency", "env", MaxConcurrencyEnv, "value", v)
		}
	}
	if v, ok := c.env(RateLimitEnv); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RateLimit = f
		} else {
			l.Warn("Ignoring invalid rate limit", "env", RateLimitEnv, "value", v)
		}
	}
}

func (c *forConfiguring) loaded(ctx context.Context) (*model.Config, error) {
	c.mu.Lock()
	cfg := c.config
	c.mu.Unlock()
	if cfg != nil {
		return cfg, nil
	}
	return c.Load(ctx)
}

// Podcasts reads the podcast list named by the configuration, falling
// back to /app/podcasts.json when that file does not exist. Entries
// without slug or urn are skipped.
func (c *forConfiguring) Podcasts(ctx context.Context) ([]model.Podcast, error) {
	l := logger.FromContext(ctx)
	cfg, err := c.loaded(ctx)
	if err != nil {
		return nil, err
	}
	path := cfg.PodcastsFileExpanded()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && path != FallbackPodcastsFile {
		l.Debug("Podcast list not found, trying fallback", "path", path, "fallback", FallbackPodcastsFile)
		path = FallbackPodcastsFile
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading podcast list: %w", ports.ErrConfig, err)
	}
	var list model.PodcastList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ports.ErrConfig, path, err)
	}
	podcasts := make([]model.Podcast, 0, len(list.Podcasts))
	for i, p := range list.Podcasts {
		p.Slug = strings.TrimSpace(p.Slug)
		p.Urn = strings.TrimSpace(p.Urn)
		if err := ValidateSlug(p.Slug); err != nil || p.Urn == "" {
			l.Warn("Skipping podcast list entry", "index", i, "slug", p.Slug, "urn", p.Urn, "error", err)
			continue
		}
		podcasts = append(podcasts, p)
	}
	l.Debug("Loaded podcast list", "path", path, "podcasts", len(podcasts))
	return podcasts, nil
}

// ValidateSlug rejects slugs that can not be used as a file name stem.
func ValidateSlug(slug string) error {
	switch {
	case slug == "":
		return fmt.Errorf("%w: empty", ErrInvalidSlug)
	case slug == "." || slug == "..":
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	case strings.ContainsAny(slug, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidSlug, slug)
	}
	return nil
}
