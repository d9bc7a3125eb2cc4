// site renders the static web site listing the generated feeds:
// static assets copied from the source directory, index.html filled
// from its template and manifest.json with a checksum of every feed.
// It implements the ports.ForSiteGenerating interface.
package site

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

const (
	IndexFile    = "index.html"
	AboutFile    = "about.md"
	ManifestFile = "manifest.json"

	DeploymentTimePlaceholder = "{{DEPLOYMENT_TIME}}"
	FeedCountPlaceholder      = "{{FEED_COUNT}}"
	BeginFeedsMarker          = "<!-- BEGIN_FEEDS -->"
	EndFeedsMarker            = "<!-- END_FEEDS -->"
	AboutMarker               = "<!-- ABOUT -->"

	timestampLayout = "2006-01-02T15:04:05Z"
)

var feedListTemplate = template.Must(template.New("feeds").Parse(`{{range .}}        <li><a class="feed-link" href="feeds/{{.Slug}}.xml">{{if .ImageURL}}<img class="feed-icon" src="{{.ImageURL}}" loading="lazy" alt="{{.Title}}">{{else}}<div class="feed-icon"></div>{{end}}<span class="feed-title">{{.Title}}</span></a></li>
{{end}}`))

// Dirs are the directories the site is read from and written to.
type Dirs struct {
	// Source holds the index.html template, about.md and static
	// assets.
	Source string
	// Site is the output root.
	Site string
	// Feeds holds the generated feed files.
	Feeds string
}

type forSiteGenerating struct {
	dirs      Dirs
	persister ports.ForPersisting
	now       func() time.Time
}

type Option func(*forSiteGenerating)

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *forSiteGenerating) {
		s.now = now
	}
}

// site.New returns a ports.ForSiteGenerating writing every file
// through persister.
func New(dirs Dirs, persister ports.ForPersisting, options ...Option) ports.ForSiteGenerating {
	s := &forSiteGenerating{
		dirs:      dirs,
		persister: persister,
		now:       time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *forSiteGenerating) Generate(ctx context.Context, feeds []model.FeedMetadata) error {
	l := logger.FromContext(ctx)
	if err := os.MkdirAll(s.dirs.Feeds, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrPersist, err)
	}
	sorted := slices.Clone(feeds)
	slices.SortStableFunc(sorted, func(a, b model.FeedMetadata) int {
		return strings.Compare(a.Title, b.Title)
	})
	timestamp := s.now().UTC().Format(timestampLayout)

	if err := s.copyStatic(ctx); err != nil {
		return err
	}
	if err := s.writeIndex(ctx, sorted, timestamp); err != nil {
		return err
	}
	n, err := s.writeManifest(ctx, sorted, timestamp)
	if err != nil {
		return err
	}
	l.Info("Generated site", "dir", s.dirs.Site, "feeds", len(sorted), "manifestFeeds", n)
	return nil
}

func (s *forSiteGenerating) copyStatic(ctx context.Context) error {
	l := logger.FromContext(ctx)
	entries, err := os.ReadDir(s.dirs.Source)
	if errors.Is(err, os.ErrNotExist) {
		l.Warn("Site source directory not found, skipping static assets", "dir", s.dirs.Source)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrPersist, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name() == IndexFile || e.Name() == AboutFile {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dirs.Source, e.Name()))
		if err != nil {
			return fmt.Errorf("%w: %w", ports.ErrPersist, err)
		}
		if err := s.persister.Write(ctx, filepath.Join(s.dirs.Site, e.Name()), data); err != nil {
			return err
		}
		l.Debug("Copied static asset", "file", e.Name())
	}
	return nil
}

// RenderIndex fills the index template. The feed list replaces the
// BEGIN_FEEDS marker, the END_FEEDS marker is removed and the ABOUT
// marker is replaced by about (HTML).
func RenderIndex(tmpl string, feeds []model.FeedMetadata, timestamp, about string) (string, error) {
	var list bytes.Buffer
	if err := feedListTemplate.Execute(&list, feeds); err != nil {
		return "", err
	}
	r := strings.NewReplacer(
		DeploymentTimePlaceholder, timestamp,
		FeedCountPlaceholder, strconv.Itoa(len(feeds)),
		BeginFeedsMarker, strings.TrimRight(list.String(), "\n"),
		EndFeedsMarker, "",
		AboutMarker, about,
	)
	return r.Replace(tmpl), nil
}

func (s *forSiteGenerating) writeIndex(ctx context.Context, feeds []model.FeedMetadata, timestamp string) error {
	l := logger.FromContext(ctx)
	tmpl, err := os.ReadFile(filepath.Join(s.dirs.Source, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		l.Warn("Index template not found, skipping index.html", "path", filepath.Join(s.dirs.Source, IndexFile))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrPersist, err)
	}
	about := ""
	if md, err := os.ReadFile(filepath.Join(s.dirs.Source, AboutFile)); err == nil {
		about = AboutHTML(md)
	}
	html, err := RenderIndex(string(tmpl), feeds, timestamp, about)
	if err != nil {
		return err
	}
	return s.persister.Write(ctx, filepath.Join(s.dirs.Site, IndexFile), []byte(html))
}

func (s *forSiteGenerating) writeManifest(ctx context.Context, feeds []model.FeedMetadata, timestamp string) (int, error) {
	l := logger.FromContext(ctx)
	manifest := model.FeedManifest{
		Timestamp: timestamp,
		Feeds:     make([]model.FeedFileInfo, 0, len(feeds)),
	}
	for _, f := range feeds {
		name := f.Slug + ".xml"
		path := filepath.Join(s.dirs.Feeds, name)
		hash, size, err := FileHash(path)
		if err != nil {
			l.Warn("Feed file not found for manifest", "path", path, "error", err)
			continue
		}
		manifest.Feeds = append(manifest.Feeds, model.FeedFileInfo{
			Name:  name,
			Hash:  hash,
			Size:  size,
			Title: f.Title,
		})
	}
	manifest.FeedCount = len(manifest.Feeds)
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	if err := s.persister.Write(ctx, filepath.Join(s.dirs.Site, ManifestFile), data); err != nil {
		return 0, err
	}
	return manifest.FeedCount, nil
}

// FileHash returns the lower case hex SHA-256 and size of the file at
// path.
func FileHash(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
