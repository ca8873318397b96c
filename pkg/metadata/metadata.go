// Package metadata stamps rendered posts with a provenance block and
// verifies it on re-read.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart is the start of the provenance block.
	TagStart = "<!-- POST_PROVENANCE"
	// TagEnd is the end of the provenance block.
	TagEnd = "POST_PROVENANCE_END -->"
)

// Provenance verification errors.
var (
	ErrNoProvenanceBlock = errors.New("no provenance block found")
	ErrNoHashFound       = errors.New("no hash found in provenance block")
	ErrHashMismatch      = errors.New("hash mismatch")
)

// Provenance records where a rendered post came from.
type Provenance struct {
	Generated time.Time
	SourceRef string
	Category  string
	Hash      string
}

// provenanceRegex matches the entire provenance block including tags.
var provenanceRegex = regexp.MustCompile(`(?s)<!--\s*POST_PROVENANCE\s*\n(.*?)\n\s*POST_PROVENANCE_END\s*-->`)

// Extract removes the provenance block from content and returns both the
// provenance and the cleaned content. The cleaned content is what gets
// hashed.
func Extract(content string) (*Provenance, string) {
	match := provenanceRegex.FindStringSubmatch(content)
	cleanContent := provenanceRegex.ReplaceAllString(content, "")
	cleanContent = strings.TrimRight(cleanContent, "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	prov := &Provenance{}

	for _, line := range strings.Split(match[1], "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "SOURCE_REF":
			prov.SourceRef = val
		case "CATEGORY":
			prov.Category = val
		case "GENERATED":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				prov.Generated = t
			}
		case "HASH":
			prov.Hash = val
		}
	}

	return prov, cleanContent
}

// CalculateHash computes the SHA-256 hash of the content with any
// provenance block excluded.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Stamp appends or replaces the provenance block with a fresh hash and
// timestamp.
func Stamp(content, sourceRef, category string) string {
	_, clean := Extract(content)
	hash := CalculateHash(clean)
	now := time.Now().UTC().Format(time.RFC3339)

	block := fmt.Sprintf("\n\n%s\nSOURCE_REF: %s\nCATEGORY: %s\nGENERATED: %s\nHASH: %s\n%s",
		TagStart, sourceRef, category, now, hash, TagEnd)

	return clean + block
}

// Verify checks whether the content still matches the hash it was stamped
// with, catching posts hand-edited after generation.
func Verify(content string) (bool, error) {
	prov, clean := Extract(content)
	if prov == nil {
		return false, ErrNoProvenanceBlock
	}

	if prov.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != prov.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, prov.Hash, calculated)
	}

	return true, nil
}
