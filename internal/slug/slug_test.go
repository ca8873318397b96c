package slug

import (
	"testing"

	"devlog/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain title",
			input:    "New scheduler",
			expected: "new-scheduler",
		},
		{
			name:     "punctuation stripped",
			input:    "Release 14: new scheduler and memory allocator",
			expected: "release-14-new-scheduler-and-memory-allocator",
		},
		{
			name:     "whitespace runs collapse",
			input:    "Fix   keyboard\tdriver",
			expected: "fix-keyboard-driver",
		},
		{
			name:     "hyphens survive",
			input:    "Re-enable write-back cache",
			expected: "re-enable-write-back-cache",
		},
		{
			name:     "unicode stripped",
			input:    "Shell 🚀 rewrite",
			expected: "shell-rewrite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAssign(t *testing.T) {
	tests := []struct {
		name          string
		category      models.Category
		disambiguator string
		title         string
		expected      string
	}{
		{
			name:          "release with version",
			category:      models.CategoryRelease,
			disambiguator: "14",
			title:         "Release 14: new scheduler and memory allocator",
			expected:      "release-14-release-14-new-scheduler-and-memory-allocator",
		},
		{
			name:     "release without version",
			category: models.CategoryRelease,
			title:    "Release notes",
			expected: "release-release-notes",
		},
		{
			name:          "commit update",
			category:      models.CategoryFix,
			disambiguator: "a1b2c3d4",
			title:         "Fix crash in keyboard driver",
			expected:      "commit-a1b2c3d4-fix-crash-in-keyboard-driver",
		},
		{
			name:     "doc post without disambiguator",
			category: models.CategoryUpdate,
			title:    "EYN-OS Kernel Overview",
			expected: "eyn-os-kernel-overview",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assign(tt.category, tt.disambiguator, tt.title)
			if got != tt.expected {
				t.Errorf("Assign() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAssign_Deterministic(t *testing.T) {
	first := Assign(models.CategoryRelease, "14", "Release 14: new scheduler")

	for i := 0; i < 5; i++ {
		if got := Assign(models.CategoryRelease, "14", "Release 14: new scheduler"); got != first {
			t.Fatalf("Assign is not deterministic: got %q, want %q", got, first)
		}
	}
}
