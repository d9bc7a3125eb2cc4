package model

// PodcastList is the on-disk list of podcasts to republish
// (podcasts.json).
type PodcastList struct {
	Podcasts []Podcast `json:"podcasts"`
}

// Podcast is the static per-podcast configuration. Slug is the file
// name stem of the generated feed, Urn identifies the series upstream
// and ImageAssets are used when the series itself carries no usable
// image.
type Podcast struct {
	Slug        string       `json:"slug"`
	Urn         string       `json:"urn"`
	ImageAssets []ImageAsset `json:"imageAssets,omitempty"`
}

// FeedMetadata is the summary of a generated (or unchanged) feed
// handed to the site generator.
type FeedMetadata struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// FeedManifest is written as manifest.json next to the site index.
type FeedManifest struct {
	Timestamp string         `json:"timestamp"`
	FeedCount int            `json:"feedCount"`
	Feeds     []FeedFileInfo `json:"feeds"`
}

type FeedFileInfo struct {
	Name  string `json:"name"`
	Hash  string `json:"hash"`
	Size  int64  `json:"size"`
	Title string `json:"title"`
}
