// uploader is the default AWS v1 upload handler publishing the
// generated site to an S3 bucket. It implements the ports.ForUploading
// interface.
package uploader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sa6mwa/drpod/internal/app/humanreadable"
	"github.com/sa6mwa/drpod/internal/app/model"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

var (
	ErrNilPointerRequest error = errors.New("received nil pointer as request")
	ErrFilenameMissing   error = errors.New("empty or missing filename given")
	ErrBucketMissing     error = errors.New("no bucket configured")
)

// Content types by extension, checked before content sniffing. Feeds
// must be served as RSS for podcast clients.
var contentTypes = map[string]string{
	".xml":  "application/rss+xml; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
}

type forUploading struct {
	config   model.AwsConfig
	uploader s3manageriface.UploaderAPI
}

// uploader.New returns a ports.ForUploading for the bucket in config.
func New(config model.AwsConfig) (ports.ForUploading, error) {
	if !config.Enabled() {
		return nil, ErrBucketMissing
	}
	s, err := session.NewSessionWithOptions(session.Options{
		Profile: config.Profile,
		Config: aws.Config{
			Region: aws.String(config.Region),
		},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return newWithAPI(config, s3manager.NewUploader(s)), nil
}

func newWithAPI(config model.AwsConfig, api s3manageriface.UploaderAPI) *forUploading {
	return &forUploading{
		config:   config,
		uploader: api,
	}
}

// ContentType returns the content type of filename by extension,
// falling back to detecting it from the file content.
func ContentType(filename string) (string, error) {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct, nil
	}
	mimetype.SetLimit(1024 * 1024)
	mimeType, err := mimetype.DetectFile(filename)
	if err != nil {
		return "", err
	}
	return mimeType.String(), nil
}

// Upload r.From as key r.To to bucket r.Store. If ContentType is empty
// in r, function will attempt to detect the content-type of the file
// in the r.From field.
func (u *forUploading) Upload(ctx context.Context, r *ports.ForUploadingRequest) error {
	l := logger.FromContext(ctx)
	if r == nil {
		return ErrNilPointerRequest
	}
	if strings.TrimSpace(r.From) == "" {
		return ErrFilenameMissing
	}
	if strings.TrimSpace(r.ContentType) == "" {
		var err error
		r.ContentType, err = ContentType(r.From)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.To) == "" {
		r.To = r.From
	}
	if r.StorageClass == "" {
		r.StorageClass = "STANDARD"
	}
	s3path := "s3://" + path.Join(r.Store, r.To)
	fi, err := os.Stat(r.From)
	if err != nil {
		return err
	}
	l.Info("Uploading to S3", "file", r.From, "to", s3path, "storageClass", r.StorageClass, "size", fi.Size(), "humanSize", humanreadable.IEC(fi.Size()))
	f, err := os.Open(r.From)
	if err != nil {
		return err
	}
	defer f.Close()
	result, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(r.Store),
		Key:          aws.String(r.To),
		ContentType:  aws.String(r.ContentType),
		Body:         f,
		StorageClass: aws.String(r.StorageClass),
	})
	if err != nil {
		return err
	}
	l.Debug("Upload succeeded", "location", result.Location)
	return nil
}

// UploadDir uploads every regular file below dir keyed by the
// configured prefix and its slash separated path relative to dir.
func (u *forUploading) UploadDir(ctx context.Context, dir string) error {
	l := logger.FromContext(ctx)
	count := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		count++
		return u.Upload(ctx, &ports.ForUploadingRequest{
			Store:        u.config.Bucket,
			To:           path.Join(u.config.Prefix, filepath.ToSlash(rel)),
			From:         p,
			StorageClass: u.config.GetStorageClass(),
		})
	})
	if err != nil {
		return err
	}
	l.Info("Uploaded site", "dir", dir, "bucket", u.config.Bucket, "files", count)
	return nil
}
