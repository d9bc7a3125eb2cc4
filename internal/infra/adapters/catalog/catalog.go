// catalog reads series metadata and episode lists from the DR radio
// API through a ports.ForFetching. It implements the
// ports.ForCataloging interface.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

const (
	DefaultBaseURL  = "https://api.dr.dk/radio/v2/series/"
	DefaultPageSize = 256
)

var (
	ErrEmptyUrn     error = errors.New("empty urn")
	ErrPageLoop     error = errors.New("pagination loop: next link already visited")
	ErrEmptyPayload error = errors.New("empty response")
)

type forCataloging struct {
	fetcher  ports.ForFetching
	baseURL  string
	pageSize int
}

// catalog.New returns a ports.ForCataloging reading from baseURL
// (DefaultBaseURL if empty) requesting pageSize episodes per page
// (DefaultPageSize if not positive).
func New(fetcher ports.ForFetching, baseURL string, pageSize int) ports.ForCataloging {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &forCataloging{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
	}
}

func (c *forCataloging) seriesURL(urn string) string {
	return c.baseURL + "/" + url.PathEscape(urn)
}

func (c *forCataloging) episodesURL(urn string) string {
	return c.seriesURL(urn) + "/episodes?limit=" + strconv.Itoa(c.pageSize)
}

func (c *forCataloging) Series(ctx context.Context, urn string) (*model.Series, error) {
	if strings.TrimSpace(urn) == "" {
		return nil, ErrEmptyUrn
	}
	body, err := c.fetcher.Fetch(ctx, c.seriesURL(urn))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("series %s does not exist: %w", urn, err)
	}
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: series %s: %w", ports.ErrUpstream, urn, ErrEmptyPayload)
	}
	var series model.Series
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("%w: decoding series %s: %w", ports.ErrUpstream, urn, err)
	}
	return &series, nil
}

func (c *forCataloging) Episodes(ctx context.Context, urn string) ([]model.Episode, error) {
	if strings.TrimSpace(urn) == "" {
		return nil, ErrEmptyUrn
	}
	l := logger.FromContext(ctx).With("urn", urn)
	next := c.episodesURL(urn)
	episodes := make([]model.Episode, 0, capacityFromLimit(next))
	visited := make(map[string]struct{})
	for page := 1; next != ""; page++ {
		if _, seen := visited[next]; seen {
			return nil, fmt.Errorf("%w: %s", ErrPageLoop, next)
		}
		visited[next] = struct{}{}
		body, err := c.fetcher.Fetch(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("episodes page %d of %s: %w", page, urn, err)
		}
		var p model.EpisodePage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: decoding episodes page %d of %s: %w", ports.ErrUpstream, page, urn, err)
		}
		episodes = append(episodes, p.Items...)
		l.Debug("Fetched episode page", "page", page, "items", len(p.Items), "total", len(episodes))
		next = strings.TrimSpace(model.Str(p.Next))
	}
	return episodes, nil
}

// capacityFromLimit returns the limit query parameter of rawURL, or
// DefaultPageSize when it is missing or invalid.
func capacityFromLimit(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultPageSize
	}
	n, err := strconv.Atoi(u.Query().Get("limit"))
	if err != nil || n <= 0 {
		return DefaultPageSize
	}
	return n
}
