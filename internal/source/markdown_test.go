package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"devlog/internal/config"
	"devlog/internal/logger"
	"devlog/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestMarkdownReader_ReadmeFirstThenWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "# EYN-OS\n\nRelease 14 notes")
	writeFile(t, filepath.Join(root, "docs", "features.md"), "# Features\n\n- **Paging**: Added paging support")
	writeFile(t, filepath.Join(root, "CONTRIBUTING.md"), "# Contributing")
	writeFile(t, filepath.Join(root, "notes.txt"), "not markdown")

	reader := NewMarkdownReader(config.SourceConfig{
		Name:      "docs",
		Kind:      config.KindMarkdown,
		RootDir:   root,
		SkipFiles: []string{"CONTRIBUTING.md"},
	}, logger.NewLogger("error"))

	records, err := reader.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first, ok := records[0].(*models.DocRecord)
	if !ok {
		t.Fatalf("Expected *models.DocRecord, got %T", records[0])
	}

	if filepath.Base(first.SourcePath) != "README.md" {
		t.Errorf("Expected README.md first, got %s", first.SourcePath)
	}

	second := records[1].(*models.DocRecord)
	if filepath.Base(second.SourcePath) != "features.md" {
		t.Errorf("Expected features.md second, got %s", second.SourcePath)
	}
}

func TestMarkdownReader_MissingRoot(t *testing.T) {
	reader := NewMarkdownReader(config.SourceConfig{
		Name:    "docs",
		Kind:    config.KindMarkdown,
		RootDir: filepath.Join(t.TempDir(), "missing"),
	}, logger.NewLogger("error"))

	_, err := reader.Read(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
}

func TestMarkdownReader_NoReadme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "overview.md"), "# Overview")

	reader := NewMarkdownReader(config.SourceConfig{
		Name:    "docs",
		Kind:    config.KindMarkdown,
		RootDir: root,
	}, logger.NewLogger("error"))

	records, err := reader.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
}

func TestNew_UnknownKind(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := New(config.SourceConfig{Name: "bad", Kind: "svn"}, cfg, logger.NewLogger("error"))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Expected ErrUnknownKind, got %v", err)
	}
}
