// Package slug derives deterministic, filesystem-safe filename stems for
// blog posts.
package slug

import (
	"regexp"
	"strings"

	"devlog/internal/models"
)

var (
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9\s-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Slugify reduces a title to its filesystem-safe form: every character
// outside letters, digits, whitespace and hyphens is stripped, whitespace
// runs collapse to single hyphens, and the result is lower-cased.
func Slugify(title string) string {
	s := unsafeChars.ReplaceAllString(title, "")
	s = whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), "-")

	return strings.ToLower(s)
}

// Assign returns the filename stem for a post. Release posts are prefixed
// "release-<disambiguator>-" (or just "release-" when no version is known);
// other posts with a disambiguator get "commit-<disambiguator>-"; doc posts
// without one use the bare slug. The function is pure: the same inputs
// always yield the same stem, so re-runs overwrite rather than duplicate.
// Different inputs can still collide; callers decide whether to warn.
func Assign(category models.Category, disambiguator, title string) string {
	s := Slugify(title)

	if category == models.CategoryRelease {
		if disambiguator != "" {
			return "release-" + disambiguator + "-" + s
		}

		return "release-" + s
	}

	if disambiguator != "" {
		return "commit-" + disambiguator + "-" + s
	}

	return s
}
