package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RFC822 is the date layout written to pubDate and lastBuildDate,
// e.g. "Wed, 02 Oct 2024 15:00:00 +02:00".
const RFC822 = "Mon, 02 Jan 2006 15:04:05 -07:00"

var ErrUnparsableTime = errors.New("unparsable time")

// upstreamLayouts are tried in order when parsing timestamps from the
// catalog API.
var upstreamLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

type ItunesTime struct {
	time.Time
}

// ParseUpstreamTime parses an ISO-8601 timestamp from the catalog
// API. Timestamps without an offset are taken as UTC.
func ParseUpstreamTime(s string) (ItunesTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ItunesTime{}, ErrUnparsableTime
	}
	for _, layout := range upstreamLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ItunesTime{Time: t}, nil
		}
	}
	return ItunesTime{}, fmt.Errorf("%w: %q", ErrUnparsableTime, s)
}

// ParseItunesTime parses a date previously written with RFC822.
func ParseItunesTime(s string) (ItunesTime, error) {
	t, err := time.Parse(RFC822, strings.TrimSpace(s))
	if err != nil {
		return ItunesTime{}, fmt.Errorf("%w: %q", ErrUnparsableTime, s)
	}
	return ItunesTime{Time: t}, nil
}

// In returns t in loc. A nil loc leaves t unchanged.
func (t ItunesTime) In(loc *time.Location) ItunesTime {
	if loc == nil {
		return t
	}
	return ItunesTime{Time: t.Time.In(loc)}
}

// Override default String() function to output time in the RFC822
// layout used by the feeds.
func (t ItunesTime) String() string {
	return t.Format(RFC822)
}

func (t ItunesTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Output yes or no for the explicit field.
type ItunesExplicit struct {
	S string
}

func NewItunesExplicit(explicit bool) ItunesExplicit {
	if explicit {
		return ItunesExplicit{S: "yes"}
	}
	return ItunesExplicit{S: "no"}
}

func (e ItunesExplicit) String() string {
	if e.S == "" {
		return "no"
	}
	return e.S
}

func (e ItunesExplicit) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// The Apple RSS has a specific duration format.
type ItunesDuration struct {
	time.Duration
}

// DurationFromMilliseconds returns the duration of an optional
// millisecond count, zero when absent.
func DurationFromMilliseconds(ms *int64) ItunesDuration {
	if ms == nil {
		return ItunesDuration{}
	}
	return ItunesDuration{Duration: time.Duration(*ms) * time.Millisecond}
}

// Return duration as string in Itunes Duration HH:MM:SS format. Zero
// or negative durations are rendered as an empty string.
func (d ItunesDuration) String() string {
	if d.Duration <= 0 {
		return ""
	}
	total := int64(d.Duration / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (d ItunesDuration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
