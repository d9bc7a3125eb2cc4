// persister writes documents to the local file system through a
// temporary file and a rename, readers see either the old or the new
// file, never a partial one. It implements the ports.ForPersisting
// interface.
package persister

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sa6mwa/drpod/internal/app/humanreadable"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

const TempSuffix = ".tmp"

type forPersisting struct {
	rename func(oldpath, newpath string) error
	perm   os.FileMode
}

type Option func(*forPersisting)

// WithRename replaces os.Rename (tests).
func WithRename(rename func(oldpath, newpath string) error) Option {
	return func(p *forPersisting) {
		p.rename = rename
	}
}

// WithPerm sets the mode of written files, default 0644.
func WithPerm(perm os.FileMode) Option {
	return func(p *forPersisting) {
		p.perm = perm
	}
}

func New(options ...Option) ports.ForPersisting {
	p := &forPersisting{
		rename: os.Rename,
		perm:   0o644,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

func (p *forPersisting) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrPersist, err)
	}
	tmp := path + TempSuffix
	if err := writeSynced(tmp, data, p.perm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ports.ErrPersist, err)
	}
	if err := p.rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replacing %s: %w", ports.ErrPersist, path, err)
	}
	logger.FromContext(ctx).Debug("Wrote file", "path", path, "size", len(data), "humanSize", humanreadable.IEC(int64(len(data))))
	return nil
}

func writeSynced(name string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
