package generator

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/sa6mwa/drpod/internal/app/model"
)

// FeedStatus describes a feed file already on disk.
type FeedStatus struct {
	Path          string
	LastBuildDate string
	Items         int
	Size          int64
	ModTime       time.Time
}

// BuildTime parses LastBuildDate.
func (s *FeedStatus) BuildTime() (model.ItunesTime, error) {
	return model.ParseItunesTime(s.LastBuildDate)
}

// ReadFeedInfo reads the feed at path. The error wraps os.ErrNotExist
// when there is no file.
func ReadFeedInfo(path string) (*FeedStatus, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var info model.FeedInfo
	if err := xml.NewDecoder(f).Decode(&info); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &FeedStatus{
		Path:          path,
		LastBuildDate: info.LastBuildDate,
		Items:         len(info.Items),
		Size:          fi.Size(),
		ModTime:       fi.ModTime(),
	}, nil
}

// ShouldRegenerate reports whether the feed at path is older than the
// series' latest episode. It answers true whenever the answer is
// uncertain: no file, a corrupt file, a missing or unparsable
// lastBuildDate or an unparsable latestEpisodeTime. latestEpisodeTime
// is compared at whole second precision.
func ShouldRegenerate(path, latestEpisodeTime string) bool {
	latest, err := model.ParseUpstreamTime(latestEpisodeTime)
	if err != nil {
		return true
	}
	status, err := ReadFeedInfo(path)
	if err != nil {
		return true
	}
	recorded, err := status.BuildTime()
	if err != nil {
		return true
	}
	// lastBuildDate only keeps whole seconds.
	return latest.Truncate(time.Second).After(recorded.Time)
}
