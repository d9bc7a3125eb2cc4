package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/fetcher"
)

type fakeFetcher struct {
	pages    map[string]string
	failures map[string]error
	requests []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.requests = append(f.requests, url)
	if err, ok := f.failures[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: no page %s", ports.ErrUpstream, url)
	}
	return []byte(body), nil
}

const base = "https://api.example/series"

func TestEpisodesConcatenatesPagesInOrder(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base + "/u1/episodes?limit=2":          `{"items":[{"id":"a"},{"id":"b"}],"next":"` + base + `/u1/episodes?limit=2&offset=2"}`,
		base + "/u1/episodes?limit=2&offset=2": `{"items":[{"id":"c"},{"id":"d"}],"next":"` + base + `/u1/episodes?limit=2&offset=4"}`,
		base + "/u1/episodes?limit=2&offset=4": `{"items":[{"id":"e"}],"next":null}`,
	}}
	c := New(f, base+"/", 2)
	episodes, err := c.Episodes(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, e := range episodes {
		ids = append(ids, model.Str(e.ID))
	}
	if got := strings.Join(ids, ","); got != "a,b,c,d,e" {
		t.Errorf("got episodes %s, want a,b,c,d,e", got)
	}
	if len(f.requests) != 3 {
		t.Errorf("expected 3 requests, got %d", len(f.requests))
	}
}

func TestEpisodesStopsWhenNextMissing(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base + "/u1/episodes?limit=256": `{"items":[{"id":"a"}]}`,
	}}
	episodes, err := New(f, base, 0).Episodes(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 1 || cap(episodes) != 256 {
		t.Errorf("len=%d cap=%d, want 1 and 256", len(episodes), cap(episodes))
	}
}

func TestEpisodesEmptyNextEndsPagination(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base + "/u1/episodes?limit=256": `{"items":[],"next":""}`,
	}}
	episodes, err := New(f, base, 0).Episodes(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 0 {
		t.Errorf("expected no episodes, got %d", len(episodes))
	}
}

func TestEpisodesPageFailureDiscardsPartialResult(t *testing.T) {
	boom := fmt.Errorf("%w: 503", ports.ErrUpstream)
	f := &fakeFetcher{
		pages: map[string]string{
			base + "/u1/episodes?limit=256": `{"items":[{"id":"a"}],"next":"` + base + `/u1/episodes?page=2"}`,
		},
		failures: map[string]error{base + "/u1/episodes?page=2": boom},
	}
	episodes, err := New(f, base, 0).Episodes(context.Background(), "u1")
	if !errors.Is(err, ports.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if episodes != nil {
		t.Errorf("partial result leaked: %d episodes", len(episodes))
	}
}

func TestEpisodesLoopGuard(t *testing.T) {
	first := base + "/u1/episodes?limit=256"
	f := &fakeFetcher{pages: map[string]string{
		first: `{"items":[{"id":"a"}],"next":"` + first + `"}`,
	}}
	_, err := New(f, base, 0).Episodes(context.Background(), "u1")
	if !errors.Is(err, ErrPageLoop) {
		t.Errorf("expected ErrPageLoop, got %v", err)
	}
}

func TestEpisodesMalformedPage(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base + "/u1/episodes?limit=256": `{"items":[`,
	}}
	_, err := New(f, base, 0).Episodes(context.Background(), "u1")
	if !errors.Is(err, ports.ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestSeries(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base + "/u1": `{"title":"Genstart (feed)","presentationType":"Show","numberOfSeries":2,"latestEpisodeStartTime":"2024-10-02T13:00:00Z","categories":["Samfund"]}`,
	}}
	s, err := New(f, base, 0).Series(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if model.Str(s.Title) != "Genstart (feed)" || model.Str(s.PresentationType) != "Show" || s.NumberOfSeries != 2 {
		t.Errorf("unexpected series %+v", s)
	}
	if s.Description != nil {
		t.Error("absent description should stay nil")
	}
	if _, err := New(f, base, 0).Series(context.Background(), ""); !errors.Is(err, ErrEmptyUrn) {
		t.Errorf("expected ErrEmptyUrn, got %v", err)
	}
}

func TestSeriesNotFound(t *testing.T) {
	notFound := fmt.Errorf("%w: %w", ports.ErrUpstream, &fetcher.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found", URL: base + "/gone"})
	f := &fakeFetcher{failures: map[string]error{base + "/gone": notFound}}
	_, err := New(f, base, 0).Series(context.Background(), "gone")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, ports.ErrUpstream) {
		t.Errorf("upstream classification lost: %v", err)
	}

	f = &fakeFetcher{failures: map[string]error{base + "/u1": fmt.Errorf("%w: 500", ports.ErrUpstream)}}
	if _, err := New(f, base, 0).Series(context.Background(), "u1"); errors.Is(err, ports.ErrNotFound) {
		t.Errorf("a 500 must not be reported as not found: %v", err)
	}
}

func TestEpisodesOverHTTP(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RawQuery {
		case "limit=256":
			fmt.Fprintf(w, `{"items":[{"id":"1"}],"next":"%s/u1/episodes?limit=256&offset=1"}`, srv.URL)
		case "limit=256&offset=1":
			fmt.Fprint(w, `{"items":[{"id":"2"}],"next":null}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := New(fetcher.New("k"), srv.URL, 0)
	episodes, err := c.Episodes(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 2 || model.Str(episodes[1].ID) != "2" {
		t.Errorf("unexpected episodes %+v", episodes)
	}
}

func TestCapacityFromLimit(t *testing.T) {
	tables := []struct {
		in   string
		want int
	}{
		{"https://x/y?limit=10", 10},
		{"https://x/y?limit=0", DefaultPageSize},
		{"https://x/y", DefaultPageSize},
		{"https://x/y?limit=abc", DefaultPageSize},
	}
	for _, table := range tables {
		if got := capacityFromLimit(table.in); got != table.want {
			t.Errorf("capacityFromLimit(%q) was incorrect, got: %d, want: %d", table.in, got, table.want)
		}
	}
}
