package feed

import (
	"net/url"
	"strings"

	"github.com/sa6mwa/drpod/internal/app/model"
)

const (
	FormatMP3 = "mp3"
	FormatMP4 = "mp4"
	FormatM4A = "m4a"

	proxyPath = "/proxy/audio"
)

var mimeTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"mp4":  "audio/mp4",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
}

// MimeType maps an audio format to its MIME type, audio/mpeg for
// unknown formats.
func MimeType(format string) string {
	if m, ok := mimeTypes[strings.ToLower(strings.TrimSpace(format))]; ok {
		return m
	}
	return "audio/mpeg"
}

type imageRule struct {
	target     string
	squareOnly bool
}

var imagePriority = []imageRule{
	{"podcast", true},
	{"default", true},
	{"podcast", false},
	{"default", false},
}

// ImageURL resolves the preferred image of assets: a square podcast
// image, a square default image, any podcast image, any default
// image. It returns "" if none qualifies.
func ImageURL(assets []model.ImageAsset, base string) string {
	for _, rule := range imagePriority {
		for _, a := range assets {
			if model.Str(a.ID) == "" || !strings.EqualFold(model.Str(a.Target), rule.target) {
				continue
			}
			if rule.squareOnly && model.Str(a.Ratio) != "1:1" {
				continue
			}
			return base + model.Str(a.ID)
		}
	}
	return ""
}

// SelectAudio picks the enclosure of an episode: the mp3 asset with
// the highest bitrate or, with preferMP4, the highest bitrate mp4 or
// m4a asset falling back to mp3. Assets without a URL are ignored.
// Nil means no usable asset.
func SelectAudio(assets []model.AudioAsset, preferMP4 bool) *model.AudioAsset {
	if preferMP4 {
		if a := maxBitrate(assets, FormatMP4, FormatM4A); a != nil {
			return a
		}
	}
	return maxBitrate(assets, FormatMP3)
}

// maxBitrate returns the first asset of the highest bitrate among
// those in one of formats. A missing bitrate counts as zero.
func maxBitrate(assets []model.AudioAsset, formats ...string) *model.AudioAsset {
	var best *model.AudioAsset
	bestRate := -1
	for i := range assets {
		a := &assets[i]
		if model.Str(a.URL) == "" || !hasFormat(a, formats) {
			continue
		}
		rate := 0
		if a.Bitrate != nil {
			rate = *a.Bitrate
		}
		if rate > bestRate {
			best, bestRate = a, rate
		}
	}
	return best
}

func hasFormat(a *model.AudioAsset, formats []string) bool {
	f := strings.TrimSpace(model.Str(a.Format))
	for _, want := range formats {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

func enclosure(a *model.AudioAsset, opts Options) *model.Enclosure {
	enc := &model.Enclosure{
		URL:    model.Str(a.URL),
		Type:   MimeType(model.Str(a.Format)),
		Length: a.FileSize,
	}
	if proxied, ok := ProxyURL(a, opts); ok {
		enc.URL = proxied
		enc.Type = "audio/mp4"
	}
	return enc
}

// ProxyURL returns the audio proxy URL of an mp4/m4a asset when
// PreferMP4 is set, a base URL is configured and the asset is served
// over https from a trusted host. ok is false when the raw URL must be
// used.
func ProxyURL(a *model.AudioAsset, opts Options) (proxied string, ok bool) {
	if !opts.PreferMP4 || opts.baseURL() == "" || !hasFormat(a, []string{FormatMP4, FormatM4A}) {
		return "", false
	}
	u, err := url.Parse(model.Str(a.URL))
	if err != nil || !u.IsAbs() || !strings.EqualFold(u.Scheme, "https") {
		return "", false
	}
	suffix := strings.ToLower(opts.TrustedHostSuffix)
	if suffix == "" || !strings.HasSuffix(strings.ToLower(u.Hostname()), suffix) {
		return "", false
	}
	return opts.baseURL() + proxyPath + "?path=" + escapeDataString(u.RequestURI()), true
}

// escapeDataString percent-encodes everything but unreserved
// characters, spaces become %20.
func escapeDataString(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
