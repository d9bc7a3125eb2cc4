package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/infra/adapters/persister"
)

const indexTemplate = `<html><body>
<p>Updated {{DEPLOYMENT_TIME}}, {{FEED_COUNT}} feeds</p>
<section><!-- ABOUT --></section>
<ul>
<!-- BEGIN_FEEDS -->
<!-- END_FEEDS -->
</ul>
</body></html>
`

func setup(t *testing.T) (Dirs, string) {
	t.Helper()
	root := t.TempDir()
	dirs := Dirs{
		Source: filepath.Join(root, "site"),
		Site:   filepath.Join(root, "output", "_site"),
		Feeds:  filepath.Join(root, "output", "_site", "feeds"),
	}
	if err := os.MkdirAll(dirs.Source, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		IndexFile:   indexTemplate,
		AboutFile:   "# About\n\nUnofficial *DR* feeds.\n",
		"style.css": "body{}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dirs.Source, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dirs, root
}

func TestGenerate(t *testing.T) {
	dirs, _ := setup(t)
	if err := os.MkdirAll(dirs.Feeds, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirs.Feeds, "b.xml"), []byte("<rss/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirs.Feeds, "a.xml"), []byte("<rss>a</rss>"), 0o644); err != nil {
		t.Fatal(err)
	}
	clock := func() time.Time { return time.Date(2024, 10, 2, 13, 0, 0, 0, time.UTC) }
	g := New(dirs, persister.New(), WithClock(clock))
	feeds := []model.FeedMetadata{
		{Slug: "b", Title: "Zebra & Co", ImageURL: "https://img/b"},
		{Slug: "a", Title: "Alpha"},
		{Slug: "gone", Title: "Missing file"},
	}
	if err := g.Generate(context.Background(), feeds); err != nil {
		t.Fatal(err)
	}

	index, err := os.ReadFile(filepath.Join(dirs.Site, IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	html := string(index)
	for _, want := range []string{
		"Updated 2024-10-02T13:00:00Z, 3 feeds",
		`<a class="feed-link" href="feeds/a.xml"><div class="feed-icon"></div><span class="feed-title">Alpha</span></a>`,
		`<img class="feed-icon" src="https://img/b" loading="lazy" alt="Zebra &amp; Co">`,
		`<span class="feed-title">Zebra &amp; Co</span>`,
		`<h1 id="about">About</h1>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("index.html is missing %s\n%s", want, html)
		}
	}
	if strings.Index(html, "Alpha") > strings.Index(html, "Zebra") {
		t.Error("feeds are not sorted by title")
	}
	if strings.Contains(html, "BEGIN_FEEDS") || strings.Contains(html, "END_FEEDS") {
		t.Error("markers left in index.html")
	}

	if _, err := os.Stat(filepath.Join(dirs.Site, "style.css")); err != nil {
		t.Errorf("static asset not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dirs.Site, AboutFile)); !os.IsNotExist(err) {
		t.Error("about.md should not be published as is")
	}

	raw, err := os.ReadFile(filepath.Join(dirs.Site, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	var m model.FeedManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if m.FeedCount != 2 || len(m.Feeds) != 2 || m.Timestamp != "2024-10-02T13:00:00Z" {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.Feeds[0].Name != "a.xml" || m.Feeds[0].Size != int64(len("<rss>a</rss>")) {
		t.Errorf("unexpected first entry %+v", m.Feeds[0])
	}
	// sha256 of "<rss/>"
	wantHash, _, _ := FileHash(filepath.Join(dirs.Feeds, "b.xml"))
	if m.Feeds[1].Hash != wantHash || len(wantHash) != 64 || strings.ToLower(wantHash) != wantHash {
		t.Errorf("unexpected hash %q", m.Feeds[1].Hash)
	}
}

func TestGenerateWithoutSource(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{
		Source: filepath.Join(root, "nope"),
		Site:   filepath.Join(root, "_site"),
		Feeds:  filepath.Join(root, "_site", "feeds"),
	}
	if err := New(dirs, persister.New()).Generate(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dirs.Site, IndexFile)); !os.IsNotExist(err) {
		t.Error("index.html written without a template")
	}
	if _, err := os.Stat(filepath.Join(dirs.Site, ManifestFile)); err != nil {
		t.Errorf("manifest.json missing: %v", err)
	}
}

func TestRenderIndexEmpty(t *testing.T) {
	out, err := RenderIndex("[{{FEED_COUNT}}]<!-- BEGIN_FEEDS --><!-- END_FEEDS -->", nil, "now", "")
	if err != nil {
		t.Fatal(err)
	}
	if out != "[0]" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAboutHTML(t *testing.T) {
	if got := AboutHTML([]byte("  \n\n ")); got != "" {
		t.Errorf("blank markdown: got %q, want empty", got)
	}
	got := AboutHTML([]byte("<script>alert(1)</script>\n\nSee [DR](https://www.dr.dk).\n"))
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML was not dropped: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("link should open in a new tab: %q", got)
	}
}
