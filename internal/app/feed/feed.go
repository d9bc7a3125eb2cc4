// feed turns a series and its episodes into an RSS 2.0 document with
// iTunes extensions. Everything in this package is deterministic and
// free of side effects, the same input always renders the same bytes.
package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/sa6mwa/drpod/internal/app/model"
)

const (
	DefaultLanguage          = "da"
	DefaultCopyright         = "DR"
	DefaultAuthor            = "DR"
	DefaultOwnerName         = "DR"
	DefaultOwnerEmail        = "podcast@dr.dk"
	DefaultImageBaseURL      = "https://asset.dr.dk/drlyd/images/"
	DefaultTrustedHostSuffix = ".dr.dk"
	DefaultTimezone          = "Europe/Copenhagen"

	ItunesTypeSerial   = "serial"
	ItunesTypeEpisodic = "episodic"
)

var titleCleanup = regexp.MustCompile(`(?i)\s*\([^)]*feed[^)]*\)\s*$`)

// Options are the per-deployment inputs of Build.
type Options struct {
	// BaseURL is where the site is served from, used for the self
	// link, itunes:new-feed-url and the audio proxy.
	BaseURL string
	// PreferMP4 selects mp4/m4a audio over mp3 and enables the audio
	// proxy rewrite.
	PreferMP4         bool
	Language          string
	Copyright         string
	Author            string
	OwnerName         string
	OwnerEmail        string
	ImageBaseURL      string
	TrustedHostSuffix string
	// Location is the time zone of pubDate and lastBuildDate. Nil
	// keeps the offset of the upstream timestamp.
	Location *time.Location
}

// DefaultOptions returns the channel constants of the DR feeds.
func DefaultOptions() Options {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return Options{
		Language:          DefaultLanguage,
		Copyright:         DefaultCopyright,
		Author:            DefaultAuthor,
		OwnerName:         DefaultOwnerName,
		OwnerEmail:        DefaultOwnerEmail,
		ImageBaseURL:      DefaultImageBaseURL,
		TrustedHostSuffix: DefaultTrustedHostSuffix,
		Location:          loc,
	}
}

// OptionsFromConfig overlays the configured values on DefaultOptions.
func OptionsFromConfig(cfg *model.Config) Options {
	o := DefaultOptions()
	o.BaseURL = cfg.BaseURL
	o.PreferMP4 = cfg.PreferMP4
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&o.Language, cfg.Channel.Language)
	set(&o.Copyright, cfg.Channel.Copyright)
	set(&o.Author, cfg.Channel.Author)
	set(&o.OwnerName, cfg.Channel.OwnerName)
	set(&o.OwnerEmail, cfg.Channel.OwnerEmail)
	set(&o.ImageBaseURL, cfg.Channel.ImageBaseURL)
	set(&o.TrustedHostSuffix, cfg.Channel.TrustedAudioHosts)
	if strings.TrimSpace(cfg.FeedTimezone) != "" {
		o.Location = cfg.Location()
	}
	return o
}

func (o Options) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
}

// FeedURL is the public URL of the feed of slug.
func (o Options) FeedURL(slug string) string {
	return o.baseURL() + "/feeds/" + slug + ".xml"
}

// Document is a rendered feed ready to be persisted.
type Document struct {
	Rss model.Rss
}

// Bytes serialises the document as UTF-8 XML with a standalone
// declaration.
func (d *Document) Bytes() ([]byte, error) {
	return d.Rss.Marshal()
}

// Build renders series and episodes of podcast as a feed and returns
// it together with the metadata handed to the site generator. series
// may be nil, the feed is then built from the podcast configuration
// alone.
func Build(series *model.Series, episodes []model.Episode, podcast model.Podcast, opts Options) (*Document, model.FeedMetadata) {
	meta := Metadata(series, podcast, opts)
	if series == nil {
		series = &model.Series{}
	}
	imageURL := meta.ImageURL

	ch := model.Channel{
		AtomLink: model.AtomLink{
			Href: opts.FeedURL(podcast.Slug),
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Title:       model.Str(series.Title),
		Link:        model.Str(series.PresentationURL),
		Description: model.Str(series.Description),
		Language:    opts.Language,
		Copyright:   opts.Copyright,
		Explicit:    model.NewItunesExplicit(series.ExplicitContent),
		Author:      opts.Author,
		Block:       "yes",
		Owner: model.ItunesOwner{
			Email: opts.OwnerEmail,
			Name:  opts.OwnerName,
		},
		Type:       ItunesType(series),
		Subtitle:   model.Str(series.Punchline),
		Summary:    model.Str(series.Description),
		Categories: categories(series.Categories),
	}
	if opts.baseURL() != "" {
		ch.NewFeedURL = opts.FeedURL(podcast.Slug)
	}
	if t, err := model.ParseUpstreamTime(model.Str(series.LatestEpisodeStartTime)); err == nil {
		ch.LastBuildDate = t.In(opts.Location).String()
	}
	if imageURL != "" {
		ch.Image = &model.ItunesImage{Href: imageURL}
	}
	if series.NumberOfSeries > 0 {
		ch.Season = series.NumberOfSeries
	}

	sorted := SortEpisodes(episodes, series)
	ch.Items = make([]model.Item, 0, len(sorted))
	for i := range sorted {
		ch.Items = append(ch.Items, buildItem(&sorted[i], imageURL, opts))
	}

	doc := &Document{Rss: model.Rss{
		Version: "2.0",
		Atom:    model.NamespaceAtom,
		Itunes:  model.NamespaceItunes,
		Channel: ch,
	}}
	return doc, meta
}

// Metadata returns the site metadata of podcast without rendering the
// feed, used when an unchanged feed is kept as is.
func Metadata(series *model.Series, podcast model.Podcast, opts Options) model.FeedMetadata {
	var assets []model.ImageAsset
	if series != nil {
		assets = series.ImageAssets
	}
	imageURL := ImageURL(assets, opts.ImageBaseURL)
	if imageURL == "" {
		imageURL = ImageURL(podcast.ImageAssets, opts.ImageBaseURL)
	}
	return model.FeedMetadata{
		Slug:     podcast.Slug,
		Title:    MetadataTitle(series, podcast.Slug),
		ImageURL: imageURL,
	}
}

func buildItem(e *model.Episode, channelImage string, opts Options) model.Item {
	item := model.Item{
		Title:       model.Str(e.Title),
		Description: model.Str(e.Description),
		PubDate:     PubDate(model.Str(e.PublishTime), opts.Location),
		Explicit:    model.NewItunesExplicit(e.ExplicitContent),
		Author:      opts.Author,
		Duration:    model.DurationFromMilliseconds(e.DurationMilliseconds),
		Episode:     e.EpisodeNumber,
		Season:      e.SeasonNumber,
		Link:        model.Str(e.PresentationURL),
		Categories:  categories(e.Categories),
	}
	if id := model.Str(e.ID); id != "" {
		item.GUID = &model.GUID{IsPermaLink: "false", Value: id}
	}
	img := ImageURL(e.ImageAssets, opts.ImageBaseURL)
	if img == "" {
		img = channelImage
	}
	if img != "" {
		item.Image = &model.ItunesImage{Href: img}
	}
	if asset := SelectAudio(e.AudioAssets, opts.PreferMP4); asset != nil {
		item.Enclosure = enclosure(asset, opts)
	}
	return item
}

// ItunesType is serial for presentation type Show and episodic for
// everything else.
func ItunesType(series *model.Series) string {
	if series != nil && model.Str(series.PresentationType) == "Show" {
		return ItunesTypeSerial
	}
	return ItunesTypeEpisodic
}

// MetadataTitle is the display title of a feed on the site: the series
// title without a trailing "(... feed ...)" remark, or the slug with
// dashes as spaces if the series has no title.
func MetadataTitle(series *model.Series, slug string) string {
	title := ""
	if series != nil && series.Title != nil {
		title = *series.Title
	} else {
		title = strings.ReplaceAll(slug, "-", " ")
	}
	return strings.TrimSpace(titleCleanup.ReplaceAllString(title, ""))
}

// PubDate formats an upstream timestamp for pubDate. Timestamps that
// can not be parsed are passed through verbatim.
func PubDate(s string, loc *time.Location) string {
	t, err := model.ParseUpstreamTime(s)
	if err != nil {
		return s
	}
	return t.In(loc).String()
}

func categories(labels []string) []model.ItunesCategory {
	mapped := model.MapCategories(labels)
	if len(mapped) == 0 {
		return nil
	}
	out := make([]model.ItunesCategory, 0, len(mapped))
	for _, c := range mapped {
		out = append(out, model.ItunesCategory{Text: c})
	}
	return out
}
