package model

// Series is the show level record returned by
// GET {apiBase}/{urn}. Nearly every property is optional upstream and
// is therefore a pointer or a nil-able slice.
type Series struct {
	ID                     *string      `json:"id"`
	Slug                   *string      `json:"slug"`
	Type                   *string      `json:"type"`
	Title                  *string      `json:"title"`
	Punchline              *string      `json:"punchline"`
	Description            *string      `json:"description"`
	Categories             []string     `json:"categories"`
	NumberOfEpisodes       int          `json:"numberOfEpisodes"`
	NumberOfSeries         int          `json:"numberOfSeries"`
	NumberOfSeasons        int          `json:"numberOfSeasons"`
	PresentationType       *string      `json:"presentationType"`
	GroupingType           *string      `json:"groupingType"`
	LatestEpisodeStartTime *string      `json:"latestEpisodeStartTime"`
	PresentationURL        *string      `json:"presentationUrl"`
	ExplicitContent        bool         `json:"explicitContent"`
	DefaultOrder           *string      `json:"defaultOrder"`
	ImageAssets            []ImageAsset `json:"imageAssets"`
}

// Episode is one installment of a Series.
type Episode struct {
	ID                   *string      `json:"id"`
	Title                *string      `json:"title"`
	Description          *string      `json:"description"`
	PublishTime          *string      `json:"publishTime"`
	PresentationURL      *string      `json:"presentationUrl"`
	DurationMilliseconds *int64       `json:"durationMilliseconds"`
	AudioAssets          []AudioAsset `json:"audioAssets"`
	ImageAssets          []ImageAsset `json:"imageAssets"`
	Categories           []string     `json:"categories"`
	EpisodeNumber        *int         `json:"episodeNumber"`
	SeasonNumber         *int         `json:"seasonNumber"`
	ExplicitContent      bool         `json:"explicitContent"`
	Order                *int64       `json:"order"`
}

type AudioAsset struct {
	Format   *string `json:"format"`
	Bitrate  *int    `json:"bitrate"`
	URL      *string `json:"url"`
	FileSize *int64  `json:"fileSize"`
}

type ImageAsset struct {
	ID     *string `json:"id"`
	Target *string `json:"target"`
	Ratio  *string `json:"ratio"`
}

// EpisodePage is one page of GET {apiBase}/{urn}/episodes. Next is
// an absolute URL to the following page or nil on the last page.
type EpisodePage struct {
	Items []Episode `json:"items"`
	Next  *string   `json:"next"`
}

// Str dereferences an optional string, returning "" for nil.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
