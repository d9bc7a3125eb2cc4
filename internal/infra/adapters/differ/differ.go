// differ is a ports.ForPersisting that writes nothing. It prints a
// unified diff between the file at the target path and the document
// that would have replaced it.
package differ

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

type forPersisting struct {
	w io.Writer
}

// differ.New returns a dry-run ports.ForPersisting printing diffs to
// w.
func New(w io.Writer) ports.ForPersisting {
	return &forPersisting{w: w}
}

func (d *forPersisting) Write(ctx context.Context, path string, data []byte) error {
	l := logger.FromContext(ctx)
	before, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ports.ErrPersist, err)
	}
	diff := Unified(path, string(before), string(data))
	if diff == "" {
		l.Info("No changes", "path", path)
		return nil
	}
	l.Info("Diff follows", "path", path)
	_, err = fmt.Fprintln(d.w, diff)
	return err
}

// Unified returns the unified diff from before to after, "" when they
// are equal.
func Unified(path, before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(path, path+" (new)", before, edits))
}
