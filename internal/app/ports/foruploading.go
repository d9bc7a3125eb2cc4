package ports

import "context"

type ForUploadingRequest struct {
	// Bucket or store to upload to.
	Store string
	// Key or name of target. If empty, default to the From field.
	To string
	// From is the path to upload from.
	From        string
	ContentType string
	// StorageClass only used for AWS. If empty, STANDARD is the
	// default.
	StorageClass string
}

type ForUploading interface {
	Upload(ctx context.Context, request *ForUploadingRequest) error
	// UploadDir uploads every regular file below dir, keyed by its
	// path relative to dir.
	UploadDir(ctx context.Context, dir string) error
}
