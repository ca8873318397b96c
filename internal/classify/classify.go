// Package classify decides whether a raw update record deserves a blog post
// and what kind of post it should become.
package classify

import (
	"strings"

	"devlog/internal/models"
	"devlog/pkg/textutil"
)

// significantKeywords marks a record as post-worthy when any term appears in
// the normalized message. The set spans release/feature/fix vocabulary plus
// the project's subsystem names.
var significantKeywords = []string{
	"release", "version", "major", "feature", "new", "add", "implement",
	"complete", "rewrite", "overhaul", "fix", "bug", "improve", "enhance",
	"kernel", "driver", "filesystem", "game", "engine", "assembler",
	"memory", "system", "optimize", "performance", "security",
}

// docKeywords identifies documentation-only changes that should not produce
// a post on their own.
var docKeywords = []string{
	"docs", "documentation", "readme", "contributing", "changelog",
	"update readme", "fix readme", "update docs", "fix docs",
}

// categoryRules drives category assignment; first match wins. Release is
// handled separately ahead of the chain.
var categoryRules = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryFeature, []string{"feature", "new", "add", "implement"}},
	{models.CategoryFix, []string{"fix", "bug", "patch"}},
	{models.CategoryImprovement, []string{"improve", "enhance", "optimize"}},
}

// Normalize lowers the text and collapses all whitespace, including
// newlines, to single spaces. All keyword checks run over this form.
func Normalize(text string) string {
	return strings.ToLower(textutil.NormalizeWhitespace(text))
}

// IsDocumentationOnly reports whether the normalized message looks like a
// documentation-only change. Messages mentioning "release" are never
// documentation-only, even when doc keywords are also present.
func IsDocumentationOnly(message string) bool {
	if strings.Contains(message, "release") {
		return false
	}

	for _, keyword := range docKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}

	return false
}

// IsSignificant reports whether the normalized message warrants a post.
// Documentation-only messages are excluded before the keyword scan.
func IsSignificant(message string) bool {
	if IsDocumentationOnly(message) {
		return false
	}

	for _, keyword := range significantKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}

	return false
}

// Categorize assigns a category to the normalized message using a fixed
// priority chain: release, then feature, fix, improvement, and finally the
// generic update.
func Categorize(message string) models.Category {
	if strings.Contains(message, "release") {
		return models.CategoryRelease
	}

	for _, rule := range categoryRules {
		for _, word := range rule.words {
			if strings.Contains(message, word) {
				return rule.category
			}
		}
	}

	return models.CategoryUpdate
}

// Classify normalizes raw text and returns whether it is significant along
// with its category. Pure function; insignificant records still get a
// category so callers can log what was skipped.
func Classify(rawText string) (bool, models.Category) {
	message := Normalize(rawText)

	return IsSignificant(message), Categorize(message)
}
