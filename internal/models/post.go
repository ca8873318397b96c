package models

import (
	"strings"
	"time"
)

// Category classifies what kind of update a post describes.
type Category string

// Post categories, in classification priority order.
const (
	CategoryRelease     Category = "release"
	CategoryFeature     Category = "feature"
	CategoryFix         Category = "fix"
	CategoryImprovement Category = "improvement"
	CategoryUpdate      Category = "update"
)

// Display returns the category capitalized for tags and index entries.
func (c Category) Display() string {
	s := string(c)
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// Feature is one named capability pulled from a markdown bullet list.
// Order follows the document; duplicate names are kept as-is.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PostRecord is the canonical post shape every source normalizes into.
// A record is created once by extraction, never mutated afterwards, and
// consumed exactly once by the renderer.
type PostRecord struct {
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Category  Category  `json:"category"`
	Version   string    `json:"version,omitempty"`
	Features  []Feature `json:"features,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	SourceRef string    `json:"sourceRef"`
	Slug      string    `json:"slug"`
}

// Filename returns the output filename for the post.
func (p *PostRecord) Filename() string {
	return p.Slug + ".html"
}

// IsRelease reports whether the post describes a release.
func (p *PostRecord) IsRelease() bool {
	return p.Category == CategoryRelease
}
