package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"devlog/internal/config"
	"devlog/internal/logger"
	"devlog/internal/models"
)

// MarkdownReader reads markdown documents under a root directory. The
// project README is always read first when present; the rest of the tree is
// walked in lexical order. Files are read whole into memory.
type MarkdownReader struct {
	cfg config.SourceConfig
	log *logger.Logger
}

// NewMarkdownReader creates a markdown document reader.
func NewMarkdownReader(cfg config.SourceConfig, log *logger.Logger) *MarkdownReader {
	return &MarkdownReader{cfg: cfg, log: log}
}

// Name returns the configured source name.
func (r *MarkdownReader) Name() string {
	return r.cfg.Name
}

// Read returns one DocRecord per markdown file. A missing root directory is
// a source-unavailable error; individual unreadable files are logged and
// skipped.
func (r *MarkdownReader) Read(ctx context.Context) ([]models.RawRecord, error) {
	info, err := os.Stat(r.cfg.RootDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: markdown root %s is not a directory", ErrUnavailable, r.cfg.RootDir)
	}

	skip := make(map[string]bool, len(r.cfg.SkipFiles)+1)
	for _, name := range r.cfg.SkipFiles {
		skip[name] = true
	}

	var records []models.RawRecord

	readmePath := filepath.Join(r.cfg.RootDir, "README.md")
	if doc, ok := r.readDoc(readmePath); ok {
		records = append(records, doc)
	}

	// The walk must not re-emit the README read above.
	skip["README.md"] = true

	err = filepath.WalkDir(r.cfg.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || skip[d.Name()] {
			return nil
		}

		if doc, ok := r.readDoc(path); ok {
			records = append(records, doc)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %v", ErrUnavailable, r.cfg.RootDir, err)
	}

	return records, nil
}

func (r *MarkdownReader) readDoc(path string) (*models.DocRecord, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		r.log.Warn("cannot read markdown file", "path", path, "error", err)

		return nil, false
	}

	return &models.DocRecord{
		SourcePath: path,
		RawText:    string(content),
	}, true
}
