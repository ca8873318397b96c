// Package models defines the data structures shared across the blog
// generation pipeline.
package models

// RecordKind identifies which source produced a raw record.
type RecordKind string

// Record kinds.
const (
	KindCommit   RecordKind = "commit"
	KindDoc      RecordKind = "doc"
	KindRendered RecordKind = "rendered"
)

// RawRecord is the tagged union over everything a source reader can emit:
// commit metadata, a markdown document, or an already-rendered post picked
// up from disk.
type RawRecord interface {
	Kind() RecordKind
	// Ref identifies the record's provenance: a commit id or a file path.
	Ref() string
}

// ChangedFile is one file touched by a commit. Content carries the blob at
// that commit for markdown files; it is empty for everything else.
type ChangedFile struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// CommitRecord holds one commit's metadata from either the local git log or
// the remote commit API.
type CommitRecord struct {
	ID           string        `json:"id"`
	Author       string        `json:"author"`
	Date         string        `json:"date"`
	Subject      string        `json:"subject"`
	Body         string        `json:"body"`
	ChangedFiles []ChangedFile `json:"changedFiles,omitempty"`
	SourceURL    string        `json:"sourceUrl,omitempty"`
}

// Kind implements RawRecord.
func (r *CommitRecord) Kind() RecordKind { return KindCommit }

// Ref implements RawRecord.
func (r *CommitRecord) Ref() string { return r.ID }

// ShortID returns the first eight characters of the commit id.
func (r *CommitRecord) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}

	return r.ID[:8]
}

// Message returns subject and body joined the way a full commit message
// reads, for keyword scanning across both.
func (r *CommitRecord) Message() string {
	if r.Body == "" {
		return r.Subject
	}

	return r.Subject + "\n" + r.Body
}

// DocRecord holds one markdown document read in full.
type DocRecord struct {
	SourcePath string `json:"sourcePath"`
	RawText    string `json:"rawText"`
}

// Kind implements RawRecord.
func (r *DocRecord) Kind() RecordKind { return KindDoc }

// Ref implements RawRecord.
func (r *DocRecord) Ref() string { return r.SourcePath }

// RenderedPost holds one rendered HTML post re-read from the blog directory.
type RenderedPost struct {
	FilePath string `json:"filePath"`
	RawHTML  string `json:"rawHtml"`
}

// Kind implements RawRecord.
func (r *RenderedPost) Kind() RecordKind { return KindRendered }

// Ref implements RawRecord.
func (r *RenderedPost) Ref() string { return r.FilePath }
