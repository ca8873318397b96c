// Package render turns canonical post records into static HTML files by
// literal placeholder substitution into a shared template.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"devlog/internal/config"
	"devlog/internal/extract"
	"devlog/internal/models"
	"devlog/pkg/metadata"

	"github.com/yuin/goldmark"
)

// ErrTemplateMissing means the post template could not be read. This is
// fatal for the whole run.
var ErrTemplateMissing = errors.New("template file not found")

// Template placeholder tokens, substituted verbatim. A token absent from
// the template is silently left unfilled.
const (
	PlaceholderTitle   = "BLOG_TITLE"
	PlaceholderDate    = "MONTH YEAR"
	PlaceholderTags    = "Tag1, Tag2, Tag3"
	PlaceholderIntro   = "INTRODUCTION_PARAGRAPH"
	PlaceholderContent = "<!-- CONTENT_PLACEHOLDER -->"
)

// Renderer substitutes post fields into the HTML template and writes the
// result under the blog directory.
type Renderer struct {
	template      string
	project       string
	blogDir       string
	createBackup  bool
	renderDocBody bool
	md            goldmark.Markdown
}

// NewRenderer reads the template once and returns a renderer bound to the
// output settings. A missing template aborts the whole run.
func NewRenderer(cfg *config.Config) (*Renderer, error) {
	tmpl, err := os.ReadFile(cfg.Generator.Output.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateMissing, cfg.Generator.Output.TemplatePath, err)
	}

	return &Renderer{
		template:      string(tmpl),
		project:       cfg.Generator.ProjectName,
		blogDir:       cfg.Generator.Output.BlogDir,
		createBackup:  cfg.Generator.Output.CreateBackup,
		renderDocBody: cfg.Features.RenderDocBody,
		md:            goldmark.New(),
	}, nil
}

// Tags returns the three tags for a post: release posts advertise the
// version, everything else its category plus the development marker.
func Tags(project string, post *models.PostRecord) []string {
	if post.IsRelease() {
		if post.Version != "" {
			return []string{"Release", project, "Version " + post.Version}
		}

		return []string{"Release", project, "Update"}
	}

	return []string{post.Category.Display(), project, "Development"}
}

// Render produces the full HTML document for an extraction.
func (r *Renderer) Render(ex *extract.Extraction) string {
	post := ex.Post

	content := strings.ReplaceAll(r.template, PlaceholderTitle, post.Title)
	content = strings.ReplaceAll(content, PlaceholderDate, r.dateText(ex))
	content = strings.ReplaceAll(content, PlaceholderTags, strings.Join(post.Tags, ", "))
	content = strings.ReplaceAll(content, PlaceholderIntro, r.intro(ex))
	content = strings.ReplaceAll(content, PlaceholderContent, r.mainContent(ex))

	return content
}

// Write saves rendered HTML as the post's file, backing up any previous
// version first when backups are enabled. The content is stamped with a
// provenance block before writing. Returns the written path.
func (r *Renderer) Write(post *models.PostRecord, html string) (string, error) {
	if err := os.MkdirAll(r.blogDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create blog directory: %w", err)
	}

	path := filepath.Join(r.blogDir, post.Filename())

	if r.createBackup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+".bak"); err != nil {
				return "", fmt.Errorf("failed to back up %s: %w", path, err)
			}
		}
	}

	stamped := metadata.Stamp(html, post.SourceRef, string(post.Category))

	if err := os.WriteFile(path, []byte(stamped), 0644); err != nil {
		return "", fmt.Errorf("failed to write post: %w", err)
	}

	return path, nil
}

// dateText returns the text substituted for the date placeholder: commit
// posts carry their commit date string verbatim, even when it never parsed
// as a date; doc posts are stamped with the current month.
func (r *Renderer) dateText(ex *extract.Extraction) string {
	if ex.Commit != nil {
		return ex.Commit.Date
	}

	return time.Now().Format("January 2006")
}

func (r *Renderer) intro(ex *extract.Extraction) string {
	if ex.Commit != nil {
		return r.commitIntro(ex)
	}

	return r.docIntro(ex)
}

func (r *Renderer) commitIntro(ex *extract.Extraction) string {
	post := ex.Post

	if post.IsRelease() {
		return fmt.Sprintf(
			"%s Release %s has been completed and is now available. "+
				"This release brings significant improvements and new features, "+
				"demonstrating continued development progress.",
			r.project, post.Version)
	}

	return fmt.Sprintf(
		"%s development continues with a new %s that brings improvements to the system. "+
			"This update reflects the ongoing work on the project.",
		r.project, post.Category)
}

func (r *Renderer) docIntro(ex *extract.Extraction) string {
	post := ex.Post

	version := post.Version
	if version == "" {
		version = "Update"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s brings significant updates and improvements. ", r.project, version)

	if len(post.Features) > 0 {
		names := make([]string, 0, 3)
		for _, f := range post.Features[:min(3, len(post.Features))] {
			names = append(names, f.Name)
		}

		fmt.Fprintf(&b, "This release introduces %d major new features, including %s",
			len(post.Features), strings.Join(names, ", "))

		if extra := len(post.Features) - 3; extra > 0 {
			fmt.Fprintf(&b, " and %d more", extra)
		}

		b.WriteString(". ")
	}

	fmt.Fprintf(&b, "The update reflects %s's continued development.", r.project)

	return b.String()
}

func (r *Renderer) mainContent(ex *extract.Extraction) string {
	if ex.Commit != nil {
		return r.commitContent(ex)
	}

	return r.docContent(ex)
}

func (r *Renderer) commitContent(ex *extract.Extraction) string {
	post := ex.Post
	commit := ex.Commit

	var sections []string

	sections = append(sections, "<h2>Update Overview</h2>")

	if post.IsRelease() {
		sections = append(sections, fmt.Sprintf(
			"<p>%s Release %s represents a milestone in the project's development, "+
				"introducing new capabilities and improvements.</p>", r.project, post.Version))
	} else {
		sections = append(sections, fmt.Sprintf(
			"<p>This %s represents progress in %s development, "+
				"contributing to the overall system quality.</p>", post.Category, r.project))
	}

	sections = append(sections,
		"<h2>Commit Information</h2>",
		fmt.Sprintf("<p><strong>Commit:</strong> <code>%s</code></p>", commit.ID),
		fmt.Sprintf("<p><strong>Date:</strong> %s</p>", commit.Date),
		fmt.Sprintf("<p><strong>Type:</strong> %s</p>", post.Category.Display()),
		fmt.Sprintf("<p><strong>Subject:</strong> %s</p>", commit.Subject),
	)

	if commit.Body != "" {
		sections = append(sections,
			"<h3>Commit Description</h3>",
			fmt.Sprintf("<p>%s</p>", commit.Body))
	}

	if commit.SourceURL != "" {
		sections = append(sections, fmt.Sprintf(
			`<p><strong>Source:</strong> <a href="%s" target="_blank">View commit</a></p>`, commit.SourceURL))
	}

	if len(commit.ChangedFiles) > 0 {
		sections = append(sections,
			"<h2>Files Modified</h2>",
			"<p>The following files were modified in this update:</p>",
			"<ul>")

		for _, f := range commit.ChangedFiles {
			sections = append(sections, fmt.Sprintf("<li><code>%s</code></li>", f.Path))
		}

		sections = append(sections, "</ul>")
	}

	sections = append(sections, "<h2>Technical Details</h2>")
	sections = append(sections, r.technicalDetails(commit)...)

	sections = append(sections,
		"<h2>Source Information</h2>",
		fmt.Sprintf("<p>This update information was extracted from commit <code>%s</code> "+
			"in the %s repository.</p>", commit.ID, r.project))

	return strings.Join(sections, "\n")
}

// technicalDetails renders the markdown content of changed documentation
// files when the source captured it, and a generic paragraph otherwise.
// Captured C source content is mined for features upstream, not rendered.
func (r *Renderer) technicalDetails(commit *models.CommitRecord) []string {
	var details []string

	for _, f := range commit.ChangedFiles {
		if f.Content == "" || !strings.HasSuffix(f.Path, ".md") {
			continue
		}

		if html, err := r.markdownToHTML(f.Content); err == nil {
			details = append(details,
				fmt.Sprintf("<h3><code>%s</code></h3>", f.Path),
				html)
		}
	}

	if len(details) == 0 {
		details = append(details, fmt.Sprintf(
			"<p>For complete technical details, see the %s source code and documentation.</p>", r.project))
	}

	return details
}

func (r *Renderer) docContent(ex *extract.Extraction) string {
	post := ex.Post

	var sections []string

	sections = append(sections,
		"<h2>Overview</h2>",
		fmt.Sprintf("<p>This update represents a step forward in %s development, "+
			"introducing new capabilities and improvements.</p>", r.project))

	if len(post.Features) > 0 {
		sections = append(sections,
			"<h2>New Features</h2>",
			fmt.Sprintf("<p>%s introduces several major new features:</p>", r.project),
			"<ul>")

		for _, f := range post.Features {
			sections = append(sections, fmt.Sprintf("<li><strong>%s:</strong> %s</li>", f.Name, f.Description))
		}

		sections = append(sections, "</ul>")
	}

	if len(ex.Changes) > 0 {
		sections = append(sections, "<h2>Key Changes</h2>", "<ul>")

		for _, change := range ex.Changes {
			sections = append(sections, fmt.Sprintf("<li>%s</li>", change))
		}

		sections = append(sections, "</ul>")
	}

	if r.renderDocBody && ex.DocBody != "" {
		if html, err := r.markdownToHTML(ex.DocBody); err == nil {
			sections = append(sections, "<h2>Document Content</h2>", html)
		}
	}

	sections = append(sections,
		"<h2>Source Information</h2>",
		fmt.Sprintf("<p>This update information was extracted from <code>%s</code> "+
			"in the %s repository.</p>", post.SourceRef, r.project))

	return strings.Join(sections, "\n")
}

func (r *Renderer) markdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}
