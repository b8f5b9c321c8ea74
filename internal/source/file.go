package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"redbird/internal"
	"redbird/internal/pipeline"
)

// FileSource reads the sign-up CSV from disk.
type FileSource struct {
	Path string
	Mode pipeline.QuoteMode
}

func (s *FileSource) Name() string { return "file:" + filepath.Base(s.Path) }

func (s *FileSource) Load(ctx context.Context) (internal.Table, error) {
	if err := ctx.Err(); err != nil {
		return internal.Table{}, err
	}
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		return internal.Table{}, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return pipeline.ParseTable(string(blob), s.Mode)
}
