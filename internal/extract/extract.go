// Package extract turns raw source records into canonical post records.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"devlog/internal/models"
	"devlog/pkg/textutil"
)

// Extractor errors.
var (
	ErrNoSignal        = errors.New("record contains no extractable signal")
	ErrUnsupportedKind = errors.New("unsupported record kind")
)

// Field budgets, in display cells including the ellipsis marker.
const (
	MaxTitleWidth   = 60
	MaxExcerptWidth = 200
)

// Extraction bundles the canonical post record with the source material the
// renderer still needs: the originating commit for commit posts, and the
// document body plus any extracted change list for doc posts.
type Extraction struct {
	Post    *models.PostRecord
	Commit  *models.CommitRecord
	DocBody string
	Changes []string
}

// Extractor parses unstructured update text into PostRecord fields.
type Extractor struct {
	project        string
	releasePattern *regexp.Regexp
	versionPattern *regexp.Regexp
	headingPattern *regexp.Regexp
	featurePattern *regexp.Regexp
	changesPattern *regexp.Regexp
	bulletPattern  *regexp.Regexp
	cdocPattern    *regexp.Regexp
}

// NewExtractor creates an extractor. The project name is embedded in
// synthesized fallback titles.
func NewExtractor(project string) *Extractor {
	return &Extractor{
		project: project,
		// "release 14" / "version 14", case-insensitive, digits only
		releasePattern: regexp.MustCompile(`(?i)release\s+(\d+)`),
		versionPattern: regexp.MustCompile(`(?i)version\s+(\d+)`),
		// first level-1 heading
		headingPattern: regexp.MustCompile(`(?m)^#\s+(.+)$`),
		// - **Name**: Description
		featurePattern: regexp.MustCompile(`(?m)^\s*[-*]\s*\*\*(.+?)\*\*:\s*(.+)$`),
		// a "## Changes" style section up to the next heading
		changesPattern: regexp.MustCompile(`(?is)##\s+(?:changes?|what's new|updates?)(.*?)(?:##|\z)`),
		bulletPattern:  regexp.MustCompile(`(?m)^\s*[-*]\s*(.+)$`),
		// a /** ... */ block directly above a function definition
		cdocPattern: regexp.MustCompile(`(?s)/\*\*\s*(.+?)\s*\*/\s*\n\s*\w+\s+\w+\s*\([^)]*\)`),
	}
}

// Extract builds the canonical record for a raw source record. The slug is
// assigned by the caller afterwards; everything else is final. ErrNoSignal
// means the record should be skipped, not rendered empty.
func (e *Extractor) Extract(raw models.RawRecord) (*Extraction, error) {
	switch r := raw.(type) {
	case *models.CommitRecord:
		return e.extractCommit(r)
	case *models.DocRecord:
		return e.extractDoc(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, raw.Kind())
	}
}

func (e *Extractor) extractCommit(c *models.CommitRecord) (*Extraction, error) {
	subject := textutil.FirstLine(c.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: commit %s has an empty subject", ErrNoSignal, c.ShortID())
	}

	date, err := time.Parse("2006-01-02", c.Date)
	if err != nil {
		date = time.Now()
	}

	features := e.Features(c.Body)
	for _, f := range c.ChangedFiles {
		features = append(features, e.FileFeatures(f)...)
	}

	post := &models.PostRecord{
		Title:     textutil.Truncate(subject, MaxTitleWidth),
		Date:      date,
		Version:   e.Version(c.Message()),
		Features:  features,
		SourceRef: c.ID,
	}

	return &Extraction{Post: post, Commit: c}, nil
}

func (e *Extractor) extractDoc(d *models.DocRecord) (*Extraction, error) {
	title := e.Title(d.RawText)
	version := e.Version(d.RawText)
	features := e.Features(d.RawText)

	if title == "" && version == "" && len(features) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSignal, d.SourcePath)
	}

	if title == "" {
		title = fmt.Sprintf("%s Update - %s", e.project, d.SourcePath)
	}

	post := &models.PostRecord{
		Title:     textutil.Truncate(title, MaxTitleWidth),
		Date:      time.Now(),
		Version:   version,
		Features:  features,
		SourceRef: d.SourcePath,
	}

	return &Extraction{
		Post:    post,
		DocBody: d.RawText,
		Changes: e.Changes(d.RawText),
	}, nil
}

// Version returns the first digits-only version found after a "release" or
// "version" marker, or the empty string. The release pattern always wins
// over the version pattern regardless of position.
func (e *Extractor) Version(text string) string {
	if m := e.releasePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	if m := e.versionPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	return ""
}

// Title returns the first level-1 markdown heading, or the empty string.
func (e *Extractor) Title(text string) string {
	if m := e.headingPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	return ""
}

// Features collects every `- **Name**: Description` bullet in document
// order. Duplicate names are kept; re-running over the same text yields the
// same list.
func (e *Extractor) Features(text string) []models.Feature {
	matches := e.featurePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	features := make([]models.Feature, 0, len(matches))
	for _, m := range matches {
		features = append(features, models.Feature{
			Name:        strings.TrimSpace(m[1]),
			Description: strings.TrimSpace(m[2]),
		})
	}

	return features
}

// FileFeatures mines feature entries out of one changed file's captured
// content. Markdown files yield their `- **Name**: Description` bullets;
// C sources and headers yield one generic entry per doc-commented function,
// since the function name alone says little to a blog reader.
func (e *Extractor) FileFeatures(f models.ChangedFile) []models.Feature {
	if f.Content == "" {
		return nil
	}

	switch {
	case strings.HasSuffix(f.Path, ".md"):
		return e.Features(f.Content)
	case strings.HasSuffix(f.Path, ".c"), strings.HasSuffix(f.Path, ".h"):
		matches := e.cdocPattern.FindAllStringSubmatch(f.Content, -1)
		if len(matches) == 0 {
			return nil
		}

		features := make([]models.Feature, 0, len(matches))
		for _, m := range matches {
			features = append(features, models.Feature{
				Name:        "New Functionality",
				Description: strings.TrimSpace(m[1]),
			})
		}

		return features
	}

	return nil
}

// Changes returns the plain bullet items under a "## Changes" (or
// "What's New" / "Updates") section, if the document has one.
func (e *Extractor) Changes(text string) []string {
	section := e.changesPattern.FindStringSubmatch(text)
	if section == nil {
		return nil
	}

	var changes []string

	for _, m := range e.bulletPattern.FindAllStringSubmatch(section[1], -1) {
		item := strings.TrimSpace(m[1])
		if item != "" {
			changes = append(changes, item)
		}
	}

	return changes
}
