package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"devlog/internal/config"
	"devlog/internal/extract"
	"devlog/internal/models"
	"devlog/pkg/metadata"
)

const testTemplate = `<html>
<body>
<h1>BLOG_TITLE</h1>
<div class="post-meta">
  <span class="post-date">MONTH YEAR</span>
  <span class="post-tags">Tag1, Tag2, Tag3</span>
</div>
<p class="post-intro">INTRODUCTION_PARAGRAPH</p>
<!-- CONTENT_PLACEHOLDER -->
</body>
</html>`

func testRenderer(t *testing.T) (*Renderer, *config.Config) {
	t.Helper()
	tmpDir := t.TempDir()

	templatePath := filepath.Join(tmpDir, "template.html")
	if err := os.WriteFile(templatePath, []byte(testTemplate), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Generator.Output.TemplatePath = templatePath
	cfg.Generator.Output.BlogDir = filepath.Join(tmpDir, "blog")

	r, err := NewRenderer(cfg)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	return r, cfg
}

func releaseExtraction() *extract.Extraction {
	post := &models.PostRecord{
		Title:     "Release 14: new scheduler and memory allocator",
		Date:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Category:  models.CategoryRelease,
		Version:   "14",
		SourceRef: "abc123def456",
		Slug:      "release-14-release-14-new-scheduler-and-memory-allocator",
	}
	post.Tags = Tags("EYN-OS", post)

	return &extract.Extraction{
		Post: post,
		Commit: &models.CommitRecord{
			ID:      "abc123def456",
			Author:  "Kian",
			Date:    "2026-08-01",
			Subject: "Release 14: new scheduler and memory allocator",
		},
	}
}

func TestNewRenderer_MissingTemplate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Generator.Output.TemplatePath = filepath.Join(t.TempDir(), "missing.html")

	_, err := NewRenderer(cfg)
	if !errors.Is(err, ErrTemplateMissing) {
		t.Fatalf("Expected ErrTemplateMissing, got %v", err)
	}
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	r, _ := testRenderer(t)
	html := r.Render(releaseExtraction())

	if !strings.Contains(html, "<h1>Release 14: new scheduler and memory allocator</h1>") {
		t.Error("Title placeholder not substituted")
	}

	if !strings.Contains(html, `<span class="post-date">2026-08-01</span>`) {
		t.Error("Date placeholder not substituted with the commit date")
	}

	if !strings.Contains(html, `<span class="post-tags">Release, EYN-OS, Version 14</span>`) {
		t.Error("Tags placeholder not substituted")
	}

	if strings.Contains(html, "INTRODUCTION_PARAGRAPH") {
		t.Error("Intro placeholder left in output")
	}

	if !strings.Contains(html, "<h2>Commit Information</h2>") {
		t.Error("Content placeholder not substituted with commit sections")
	}
}

func TestRender_CommitDateRenderedVerbatim(t *testing.T) {
	r, _ := testRenderer(t)

	// An unparseable commit date still reaches the page as-is instead of
	// being replaced by a synthesized one.
	ex := releaseExtraction()
	ex.Commit.Date = "Sat Aug 1 10:00:00 2026"

	html := r.Render(ex)
	if !strings.Contains(html, `<span class="post-date">Sat Aug 1 10:00:00 2026</span>`) {
		t.Error("Commit date not carried through verbatim")
	}
}

func TestRender_AbsentPlaceholderLeftUnfilled(t *testing.T) {
	tmpDir := t.TempDir()

	templatePath := filepath.Join(tmpDir, "template.html")
	if err := os.WriteFile(templatePath, []byte("<html><h1>BLOG_TITLE</h1></html>"), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Generator.Output.TemplatePath = templatePath
	cfg.Generator.Output.BlogDir = filepath.Join(tmpDir, "blog")

	r, err := NewRenderer(cfg)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	html := r.Render(releaseExtraction())
	if !strings.Contains(html, "<h1>Release 14") {
		t.Error("Title not substituted")
	}
	// No intro/date/tags spans in this template; rendering must not fail
	// or invent them.
	if strings.Contains(html, "post-intro") {
		t.Error("Renderer invented markup the template does not have")
	}
}

func TestRender_DocPostSections(t *testing.T) {
	r, _ := testRenderer(t)

	post := &models.PostRecord{
		Title:     "EYN-OS Release 14",
		Date:      time.Now(),
		Category:  models.CategoryRelease,
		Version:   "14",
		SourceRef: "README.md",
		Features: []models.Feature{
			{Name: "Virtual Memory", Description: "Added paging support"},
			{Name: "Scheduler", Description: "Round-robin scheduling"},
		},
	}
	post.Tags = Tags("EYN-OS", post)

	html := r.Render(&extract.Extraction{
		Post:    post,
		DocBody: "# EYN-OS Release 14\n\nSome notes.",
		Changes: []string{"Rewrote the allocator"},
	})

	if !strings.Contains(html, "<h2>New Features</h2>") {
		t.Error("Missing New Features section")
	}

	if !strings.Contains(html, "<li><strong>Virtual Memory:</strong> Added paging support</li>") {
		t.Error("Feature bullet not rendered")
	}

	if !strings.Contains(html, "<h2>Key Changes</h2>") {
		t.Error("Missing Key Changes section")
	}

	if !strings.Contains(html, "<li>Rewrote the allocator</li>") {
		t.Error("Change item not rendered")
	}

	if !strings.Contains(html, "<h2>Document Content</h2>") {
		t.Error("Missing rendered document body")
	}

	if !strings.Contains(html, "including Virtual Memory, Scheduler") {
		t.Error("Intro does not mention feature names")
	}
}

func TestTags(t *testing.T) {
	tests := []struct {
		name     string
		post     *models.PostRecord
		expected string
	}{
		{
			name:     "release with version",
			post:     &models.PostRecord{Category: models.CategoryRelease, Version: "14"},
			expected: "Release, EYN-OS, Version 14",
		},
		{
			name:     "release without version",
			post:     &models.PostRecord{Category: models.CategoryRelease},
			expected: "Release, EYN-OS, Update",
		},
		{
			name:     "fix commit",
			post:     &models.PostRecord{Category: models.CategoryFix},
			expected: "Fix, EYN-OS, Development",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(Tags("EYN-OS", tt.post), ", ")
			if got != tt.expected {
				t.Errorf("Tags = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrite_StampsAndBacksUp(t *testing.T) {
	r, cfg := testRenderer(t)
	ex := releaseExtraction()
	html := r.Render(ex)

	path, err := r.Write(ex.Post, html)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Cannot read written post: %v", err)
	}

	prov, _ := metadata.Extract(string(content))
	if prov == nil {
		t.Fatal("Written post has no provenance block")
	}

	if prov.SourceRef != "abc123def456" {
		t.Errorf("Provenance SourceRef = %q", prov.SourceRef)
	}

	// Second write must back up the first.
	if _, err := r.Write(ex.Post, html); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Generator.Output.BlogDir, ex.Post.Filename()+".bak")); err != nil {
		t.Errorf("Expected backup file after rewrite: %v", err)
	}
}
