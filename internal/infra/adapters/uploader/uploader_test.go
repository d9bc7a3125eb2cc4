package uploader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
)

type uploaded struct {
	bucket, key, contentType, storageClass, body string
}

type fakeAPI struct {
	mu      sync.Mutex
	uploads []uploaded
}

func (f *fakeAPI) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in, opts...)
}

func (f *fakeAPI) UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, uploaded{
		bucket:       aws.StringValue(in.Bucket),
		key:          aws.StringValue(in.Key),
		contentType:  aws.StringValue(in.ContentType),
		storageClass: aws.StringValue(in.StorageClass),
		body:         string(b),
	})
	return &s3manager.UploadOutput{Location: "s3://" + aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)}, nil
}

func TestUploadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html":        "<html></html>",
		"manifest.json":     "{}",
		"feeds/p1.xml":      "<rss/>",
		"feeds/p2.xml.tmp":  "partial",
		"img/logo.png.link": "just text",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	api := &fakeAPI{}
	u := newWithAPI(model.AwsConfig{Bucket: "feeds-bucket", Prefix: "dr"}, api)
	if err := u.UploadDir(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	sort.Slice(api.uploads, func(i, j int) bool { return api.uploads[i].key < api.uploads[j].key })
	want := []uploaded{
		{"feeds-bucket", "dr/feeds/p1.xml", "application/rss+xml; charset=utf-8", "STANDARD", "<rss/>"},
		{"feeds-bucket", "dr/img/logo.png.link", "text/plain; charset=utf-8", "STANDARD", "just text"},
		{"feeds-bucket", "dr/index.html", "text/html; charset=utf-8", "STANDARD", "<html></html>"},
		{"feeds-bucket", "dr/manifest.json", "application/json", "STANDARD", "{}"},
	}
	if len(api.uploads) != len(want) {
		t.Fatalf("expected %d uploads, got %+v", len(want), api.uploads)
	}
	for i := range want {
		if api.uploads[i] != want[i] {
			t.Errorf("upload %d: got %+v, want %+v", i, api.uploads[i], want[i])
		}
	}
}

func TestUploadValidation(t *testing.T) {
	u := newWithAPI(model.AwsConfig{Bucket: "b"}, &fakeAPI{})
	if err := u.Upload(context.Background(), nil); err != ErrNilPointerRequest {
		t.Errorf("expected ErrNilPointerRequest, got %v", err)
	}
	if err := u.Upload(context.Background(), &ports.ForUploadingRequest{Store: "b"}); err != ErrFilenameMissing {
		t.Errorf("expected ErrFilenameMissing, got %v", err)
	}
	if _, err := New(model.AwsConfig{}); err != ErrBucketMissing {
		t.Errorf("expected ErrBucketMissing, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	tables := []struct {
		name, want string
	}{
		{"feeds/a.xml", "application/rss+xml; charset=utf-8"},
		{"INDEX.HTML", "text/html; charset=utf-8"},
		{"style.css", "text/css; charset=utf-8"},
	}
	for _, table := range tables {
		got, err := ContentType(table.name)
		if err != nil || got != table.want {
			t.Errorf("ContentType(%q) was incorrect, got: %q %v, want: %q", table.name, got, err, table.want)
		}
	}
}
