package feed

import (
	"slices"
	"strings"

	"github.com/sa6mwa/drpod/internal/app/model"
)

const (
	OrderAsc        = "Asc"
	GroupingSeasons = "Seasons"
)

// IsSeasonal reports whether episodes of series are grouped in
// seasons.
func IsSeasonal(series *model.Series) bool {
	if series == nil {
		return false
	}
	return series.NumberOfSeries > 0 || strings.EqualFold(model.Str(series.GroupingType), GroupingSeasons)
}

// SortEpisodes returns a sorted copy of episodes. Seasonal series are
// sorted by season descending (episodes without a season last), then
// by order. The order field is ascending when the series' default
// order is Asc and descending otherwise. Episodes without an order
// come first ascending and last descending. Equal keys keep their
// upstream order.
func SortEpisodes(episodes []model.Episode, series *model.Series) []model.Episode {
	sorted := slices.Clone(episodes)
	seasonal := IsSeasonal(series)
	asc := series != nil && model.Str(series.DefaultOrder) == OrderAsc
	slices.SortStableFunc(sorted, func(a, b model.Episode) int {
		if seasonal {
			if c := compareSeason(a.SeasonNumber, b.SeasonNumber); c != 0 {
				return c
			}
		}
		return compareOrder(a.Order, b.Order, asc)
	})
	return sorted
}

// compareSeason sorts higher seasons first and missing seasons last.
func compareSeason(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

func compareOrder(a, b *int64, asc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if asc {
			return -1
		}
		return 1
	case b == nil:
		if asc {
			return 1
		}
		return -1
	}
	c := 0
	if *a < *b {
		c = -1
	} else if *a > *b {
		c = 1
	}
	if !asc {
		c = -c
	}
	return c
}
