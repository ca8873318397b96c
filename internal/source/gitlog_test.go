package source

import (
	"testing"
)

func TestParseLogLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOk      bool
		wantID      string
		wantSubject string
		wantBody    string
	}{
		{
			name:        "full five-field line",
			line:        "abc123|Kian|2026-08-01|Release 14: new scheduler|Adds SMP support",
			wantOk:      true,
			wantID:      "abc123",
			wantSubject: "Release 14: new scheduler",
			wantBody:    "Adds SMP support",
		},
		{
			name:        "four fields means empty body",
			line:        "abc123|Kian|2026-08-01|Fix keyboard driver",
			wantOk:      true,
			wantID:      "abc123",
			wantSubject: "Fix keyboard driver",
			wantBody:    "",
		},
		{
			name:   "under-filled line dropped",
			line:   "abc123|Kian|2026-08-01",
			wantOk: false,
		},
		{
			name:   "empty line dropped",
			line:   "   ",
			wantOk: false,
		},
		{
			name:        "pipes inside the body stay in the body",
			line:        "abc123|Kian|2026-08-01|Add shell|supports cmd1 | cmd2 chains",
			wantOk:      true,
			wantID:      "abc123",
			wantSubject: "Add shell",
			wantBody:    "supports cmd1 | cmd2 chains",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commit, ok := ParseLogLine(tt.line)
			if ok != tt.wantOk {
				t.Fatalf("ParseLogLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOk)
			}

			if !ok {
				return
			}

			if commit.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", commit.ID, tt.wantID)
			}

			if commit.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", commit.Subject, tt.wantSubject)
			}

			if commit.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", commit.Body, tt.wantBody)
			}
		})
	}
}

func TestIsImportantFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"docs/release-notes.md", true},
		{"kernel/sched.c", true},
		{"include/mem.h", true},
		{"Makefile", true},
		{"tools/Makefile", true},
		{"README.md", true},
		{"assets/logo.png", false},
		{"kernel/sched.o", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isImportantFile(tt.path); got != tt.expected {
				t.Errorf("isImportantFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestHasContentSuffix(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"docs/release-notes.md", true},
		{"kernel/sched.c", true},
		{"include/mem.h", true},
		{"Makefile", false},
		{"README", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := hasContentSuffix(tt.path); got != tt.expected {
				t.Errorf("hasContentSuffix(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
