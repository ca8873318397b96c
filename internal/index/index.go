// Package index rebuilds the blog index by round-trip parsing the rendered
// posts on disk, making the index a pure function of the blog directory
// rather than of whatever run produced it.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"devlog/internal/logger"
	"devlog/internal/models"
	"devlog/pkg/metadata"
	"devlog/pkg/textutil"
)

// Index errors.
var (
	ErrMissingSectionMarkers = errors.New("blog-posts section markers not found in index")
	ErrBlogDirUnavailable    = errors.New("blog directory unavailable")
)

// Section markers delimiting the rewritable part of the index document.
const (
	sectionStart = `<section class="blog-posts">`
	sectionEnd   = `</section>`
)

// maxExcerptWidth caps fallback excerpts pulled from a post's first
// paragraph.
const maxExcerptWidth = 200

// genericExcerpt stands in when a post has no parseable paragraph at all.
const genericExcerptFormat = "Development update that brings improvements and new features to %s."

// Rebuilder re-derives post records from rendered HTML and rewrites the
// index's post section.
type Rebuilder struct {
	project string
	log     *logger.Logger

	titlePattern *regexp.Regexp
	datePattern  *regexp.Regexp
	tagsPattern  *regexp.Regexp
	introPattern *regexp.Regexp
	paraPattern  *regexp.Regexp
	tagVersion   *regexp.Regexp
	titleVersion *regexp.Regexp
}

// NewRebuilder creates an index rebuilder for a project.
func NewRebuilder(project string, log *logger.Logger) *Rebuilder {
	return &Rebuilder{
		project:      project,
		log:          log,
		titlePattern: regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`),
		datePattern:  regexp.MustCompile(`<span class="post-date">(.*?)</span>`),
		tagsPattern:  regexp.MustCompile(`<span class="post-tags">(.*?)</span>`),
		introPattern: regexp.MustCompile(`(?s)<p class="post-intro">(.*?)</p>`),
		paraPattern:  regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`),
		tagVersion:   regexp.MustCompile(`Version (\d+)`),
		titleVersion: regexp.MustCompile(`(?i)Release (\d+)`),
	}
}

// Scan reads every rendered post under the blog directory, skipping the
// template itself.
func (b *Rebuilder) Scan(blogDir string) ([]models.RenderedPost, error) {
	entries, err := os.ReadDir(blogDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBlogDirUnavailable, blogDir, err)
	}

	var posts []models.RenderedPost

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".html") || name == "template.html" {
			continue
		}

		path := filepath.Join(blogDir, name)

		content, err := os.ReadFile(path)
		if err != nil {
			b.log.Warn("cannot read rendered post", "path", path, "error", err)

			continue
		}

		posts = append(posts, models.RenderedPost{
			FilePath: path,
			RawHTML:  string(content),
		})
	}

	return posts, nil
}

// Rebuild re-derives the canonical records from rendered posts and orders
// them newest first. Posts whose date cannot be parsed are stamped "now"
// and therefore float to the top; each one is warned about so the ordering
// quirk stays visible.
func (b *Rebuilder) Rebuild(rendered []models.RenderedPost) []*models.PostRecord {
	records := make([]*models.PostRecord, 0, len(rendered))

	for _, rp := range rendered {
		post, ok := b.Parse(rp)
		if !ok {
			b.log.Warn("skipping post without a title heading", "path", rp.FilePath)

			continue
		}

		records = append(records, post)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	return records
}

// Parse re-derives one canonical record from rendered HTML. A post without
// an h1 heading yields no record at all; every other missing field falls
// back to a documented default.
func (b *Rebuilder) Parse(rp models.RenderedPost) (*models.PostRecord, bool) {
	prov, content := metadata.Extract(rp.RawHTML)

	titleMatch := b.titlePattern.FindStringSubmatch(content)
	if titleMatch == nil {
		return nil, false
	}

	post := &models.PostRecord{
		Title:     strings.TrimSpace(titleMatch[1]),
		Date:      b.parseDate(content, rp.FilePath),
		Category:  models.CategoryUpdate,
		Excerpt:   b.parseExcerpt(content),
		SourceRef: rp.FilePath,
		Slug:      strings.TrimSuffix(filepath.Base(rp.FilePath), ".html"),
	}

	if prov != nil && prov.SourceRef != "" {
		post.SourceRef = prov.SourceRef
	}

	tagsText := fmt.Sprintf("%s, Update", b.project)
	if m := b.tagsPattern.FindStringSubmatch(content); m != nil {
		tagsText = strings.TrimSpace(m[1])
	}

	post.Tags = splitTags(tagsText)

	// Release detection and version re-derivation: the tags text is
	// authoritative, the title is the fallback.
	if strings.Contains(tagsText, "Release") {
		post.Category = models.CategoryRelease

		if m := b.tagVersion.FindStringSubmatch(tagsText); m != nil {
			post.Version = m[1]
		} else if m := b.titleVersion.FindStringSubmatch(post.Title); m != nil {
			post.Version = m[1]
		}
	}

	return post, true
}

// parseDate reads the tagged date span as YYYY-MM-DD first, then as
// "Month YYYY". Total failure substitutes the current time, which sorts
// the post to the front of the index.
func (b *Rebuilder) parseDate(content, path string) time.Time {
	m := b.datePattern.FindStringSubmatch(content)
	if m == nil {
		b.log.Warn("post has no date span, stamping now; it will sort to the top", "path", path)

		return time.Now()
	}

	dateStr := strings.TrimSpace(m[1])

	if strings.Contains(dateStr, "-") {
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			return t
		}
	} else if t, err := time.Parse("January 2006", dateStr); err == nil {
		return t
	}

	b.log.Warn("unparseable post date, stamping now; it will sort to the top", "path", path, "date", dateStr)

	return time.Now()
}

// parseExcerpt prefers the tagged intro paragraph, falls back to the first
// paragraph truncated to the excerpt budget, and finally to a generic
// sentence.
func (b *Rebuilder) parseExcerpt(content string) string {
	if m := b.introPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}

	if m := b.paraPattern.FindStringSubmatch(content); m != nil {
		return textutil.Truncate(strings.TrimSpace(m[1]), maxExcerptWidth)
	}

	return fmt.Sprintf(genericExcerptFormat, b.project)
}

// EntryHTML renders one index entry for a post.
func (b *Rebuilder) EntryHTML(post *models.PostRecord) string {
	var tags string

	switch {
	case post.IsRelease() && post.Version != "":
		tags = fmt.Sprintf("🚀 Release, %s, Version %s", b.project, post.Version)
	case post.IsRelease():
		tags = fmt.Sprintf("🚀 Release, %s", b.project)
	default:
		tags = fmt.Sprintf("📝 %s, %s, Development", post.Category.Display(), b.project)
	}

	filename := post.Filename()

	return fmt.Sprintf(`<article class="blog-post">
            <header class="post-header">
                <h2><a href="blog/%s">%s</a></h2>
                <div class="post-meta">
                    <span class="post-date">%s</span>
                    <span class="post-tags">%s</span>
                </div>
            </header>
            <div class="post-excerpt">
                <p>%s</p>
                <p><a href="blog/%s" class="read-more">Read Full Post →</a></p>
            </div>
        </article>`,
		filename, post.Title, post.Date.Format("January 2006"), tags, post.Excerpt, filename)
}

// UpdateIndex rewrites the blog-posts section of the index document with
// entries for the given records. If either section marker is missing the
// index is left untouched and an error is returned.
func (b *Rebuilder) UpdateIndex(indexPath string, posts []*models.PostRecord) error {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("failed to read index %s: %w", indexPath, err)
	}

	content := string(data)

	start := strings.Index(content, sectionStart)
	if start == -1 {
		return fmt.Errorf("%w: %s", ErrMissingSectionMarkers, indexPath)
	}

	end := strings.Index(content[start:], sectionEnd)
	if end == -1 {
		return fmt.Errorf("%w: %s", ErrMissingSectionMarkers, indexPath)
	}

	end += start

	entries := make([]string, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, b.EntryHTML(post))
	}

	var sb strings.Builder

	sb.WriteString(content[:start])
	sb.WriteString(sectionStart)
	sb.WriteString("\n        ")
	sb.WriteString(strings.Join(entries, "\n        "))
	sb.WriteString("\n        ")
	sb.WriteString(sectionEnd)
	sb.WriteString(content[end+len(sectionEnd):])

	if err := os.WriteFile(indexPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", indexPath, err)
	}

	return nil
}

// splitTags breaks a rendered tags line into individual tags.
func splitTags(tagsText string) []string {
	parts := strings.Split(tagsText, ",")
	tags := make([]string, 0, len(parts))

	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}
