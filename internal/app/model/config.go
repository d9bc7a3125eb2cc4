package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the runtime configuration, loaded from defaults, an
// optional YAML file and the environment.
type Config struct {
	APIKey                 string        `yaml:"apiKey"`
	APIBaseURL             string        `yaml:"apiBaseURL"`
	BaseURL                string        `yaml:"baseURL"`
	PodcastsFile           string        `yaml:"podcastsFile"`
	OutputDir              string        `yaml:"outputDir"`
	SiteDir                string        `yaml:"siteDir"`
	SiteSourceDir          string        `yaml:"siteSourceDir"`
	PreferMP4              bool          `yaml:"preferMP4"`
	RefreshIntervalMinutes int           `yaml:"refreshIntervalMinutes"`
	MaxBackoffMinutes      int           `yaml:"maxBackoffMinutes"`
	MaxConcurrency         int           `yaml:"maxConcurrency"`
	RateLimit              float64       `yaml:"rateLimit"`
	PageSize               int           `yaml:"pageSize"`
	TimeoutSeconds         int           `yaml:"timeoutSeconds"`
	FeedTimezone           string        `yaml:"feedTimezone"`
	Channel                ChannelConfig `yaml:"channel"`
	Aws                    AwsConfig     `yaml:"aws"`
	Log                    LogConfig     `yaml:"log"`
}

// ChannelConfig holds the constant channel properties of every feed.
type ChannelConfig struct {
	Language          string `yaml:"language"`
	Copyright         string `yaml:"copyright"`
	Author            string `yaml:"author"`
	OwnerName         string `yaml:"ownerName"`
	OwnerEmail        string `yaml:"ownerEmail"`
	ImageBaseURL      string `yaml:"imageBaseURL"`
	TrustedAudioHosts string `yaml:"trustedAudioHosts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) SiteDirFull() string {
	return filepath.Join(resolvetilde(c.OutputDir), c.SiteDir)
}

func (c *Config) FeedsDir() string {
	return filepath.Join(c.SiteDirFull(), "feeds")
}

// FeedPath returns the canonical path of the feed for slug.
func (c *Config) FeedPath(slug string) string {
	return filepath.Join(c.FeedsDir(), slug+".xml")
}

func (c *Config) LockPath() string {
	return filepath.Join(resolvetilde(c.OutputDir), ".drpod.lock")
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMinutes) * time.Minute
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves FeedTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.FeedTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.FeedTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) PodcastsFileExpanded() string {
	return resolvetilde(c.PodcastsFile)
}

// resolvetilde returns path where initial tilde (~) is replaced by
// os.UserHomeDir().
func resolvetilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		dirname, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(dirname, path[2:])
	}
	return path
}
