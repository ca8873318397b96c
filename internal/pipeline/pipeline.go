// Package pipeline orchestrates a generation run: source reads, record
// classification, field extraction, rendering, and the final index rebuild.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"devlog/internal/classify"
	"devlog/internal/config"
	"devlog/internal/extract"
	"devlog/internal/index"
	"devlog/internal/logger"
	"devlog/internal/models"
	"devlog/internal/render"
	"devlog/internal/slug"
	"devlog/internal/source"
	"devlog/pkg/metadata"
)

// Pipeline wires the stages together. Records are processed one at a time,
// in source order; a run writes post files and the index and keeps no other
// state.
type Pipeline struct {
	cfg *config.Config
	log *logger.Logger
}

// New creates a pipeline.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// RunResult summarizes one generation run.
type RunResult struct {
	SourcesTried         int
	SourcesFailed        int
	RecordsSeen          int
	PostsWritten         int
	PostsByCategory      map[models.Category]int
	SkippedInsignificant int
	SkippedNoSignal      int
	RenderErrors         int
	CollisionWarnings    int
	IndexEntries         int
	Duration             time.Duration

	// Posts holds the records written this run, for the dump artifact.
	Posts []*models.PostRecord
}

// String returns a one-line summary of the run.
func (r *RunResult) String() string {
	return fmt.Sprintf(
		"Sources: %d tried, %d failed | Records: %d seen | Posts: %d written, %d insignificant, %d no signal, %d errors | Collisions: %d | Index: %d entries",
		r.SourcesTried,
		r.SourcesFailed,
		r.RecordsSeen,
		r.PostsWritten,
		r.SkippedInsignificant,
		r.SkippedNoSignal,
		r.RenderErrors,
		r.CollisionWarnings,
		r.IndexEntries,
	)
}

// Run executes the full pipeline. Only a missing template, a failed
// required source, or a cancelled context aborts the run; any other
// unavailable source just loses its contribution.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	renderer, err := render.NewRenderer(p.cfg)
	if err != nil {
		return nil, err
	}

	extractor := extract.NewExtractor(p.cfg.Generator.ProjectName)
	attempts := source.NewAttemptLog()
	result := &RunResult{PostsByCategory: make(map[models.Category]int)}

	// filename → source ref, for collision warnings within one run
	seen := make(map[string]string)

	sources := p.cfg.GetEnabledSources()
	result.SourcesTried = len(sources)

	for i, src := range sources {
		if p.cfg.Generator.Logging.ShowProgress {
			p.log.Info(fmt.Sprintf("📦 Source %d/%d: %s (%s)", i+1, len(sources), src.Name, src.Kind))
		}

		reader, err := source.New(src, p.cfg, p.log)
		if err != nil {
			attempts.Record(src.Name, 0, 0, err)
			result.SourcesFailed++

			continue
		}

		readStart := time.Now()
		records, err := reader.Read(ctx)
		attempts.Record(src.Name, len(records), time.Since(readStart), err)

		if err != nil {
			result.SourcesFailed++

			if src.Required {
				return result, fmt.Errorf("required source %s failed: %w", src.Name, err)
			}

			p.log.Error("❌ source unavailable, continuing without it", "source", src.Name, "error", err)

			continue
		}

		result.RecordsSeen += len(records)

		for _, raw := range records {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}

			p.processRecord(raw, extractor, renderer, seen, result)
		}
	}

	attempts.LogSummary(p.log)

	reindex, err := p.Reindex(false)
	if err != nil {
		if p.cfg.Features.StrictIndex {
			return result, err
		}

		p.log.Warn("⚠️ index rebuild failed", "error", err)
	} else {
		result.IndexEntries = reindex.Indexed
	}

	result.Duration = time.Since(start)

	return result, nil
}

// processRecord runs one raw record through classify → extract → render.
// Commits are gated on significance; documents are gated only on having
// extractable signal, the way the doc sources always produced posts.
func (p *Pipeline) processRecord(
	raw models.RawRecord,
	extractor *extract.Extractor,
	renderer *render.Renderer,
	seen map[string]string,
	result *RunResult,
) {
	var text string

	isCommit := false

	switch r := raw.(type) {
	case *models.CommitRecord:
		text = r.Message()
		isCommit = true
	case *models.DocRecord:
		text = r.RawText
	default:
		return
	}

	significant, category := classify.Classify(text)

	if isCommit && !significant {
		result.SkippedInsignificant++
		p.log.Debug("skipping insignificant commit", "ref", raw.Ref())

		return
	}

	ex, err := extractor.Extract(raw)
	if err != nil {
		if errors.Is(err, extract.ErrNoSignal) {
			result.SkippedNoSignal++
			p.log.Debug("skipping record without signal", "ref", raw.Ref())
		} else {
			result.RenderErrors++
			p.log.Error("extraction failed", "ref", raw.Ref(), "error", err)
		}

		return
	}

	post := ex.Post
	post.Category = category
	post.Tags = render.Tags(p.cfg.Generator.ProjectName, post)
	post.Slug = slug.Assign(category, disambiguator(category, ex), post.Title)

	if p.cfg.Features.CollisionWarnings {
		if prev, ok := seen[post.Filename()]; ok && prev != post.SourceRef {
			result.CollisionWarnings++
			p.log.Warn("⚠️ slug collision, last write wins",
				"filename", post.Filename(), "previous", prev, "current", post.SourceRef)
		}

		seen[post.Filename()] = post.SourceRef
	}

	html := renderer.Render(ex)

	path, err := renderer.Write(post, html)
	if err != nil {
		result.RenderErrors++
		p.log.Error("❌ failed to write post", "ref", raw.Ref(), "error", err)

		return
	}

	result.PostsWritten++
	result.PostsByCategory[category]++
	result.Posts = append(result.Posts, post)

	if p.cfg.Generator.Logging.ShowProgress {
		p.log.Info("📝 wrote post", "path", path, "category", string(category))
	}
}

// disambiguator picks the filename disambiguator: release posts carry their
// version, commit posts their short id, plain doc posts nothing.
func disambiguator(category models.Category, ex *extract.Extraction) string {
	if category == models.CategoryRelease {
		return ex.Post.Version
	}

	if ex.Commit != nil {
		return ex.Commit.ShortID()
	}

	return ""
}

// ReindexResult summarizes an index rebuild.
type ReindexResult struct {
	Scanned        int
	Indexed        int
	VerifyFailures int
}

// Reindex rebuilds the index from the rendered posts on disk. With verify
// set, each post's provenance stamp is checked and hand-edited posts are
// warned about (they are still indexed; the round trip tolerates edits).
func (p *Pipeline) Reindex(verify bool) (*ReindexResult, error) {
	rebuilder := index.NewRebuilder(p.cfg.Generator.ProjectName, p.log)

	rendered, err := rebuilder.Scan(p.cfg.Generator.Output.BlogDir)
	if err != nil {
		return nil, err
	}

	result := &ReindexResult{Scanned: len(rendered)}

	if verify {
		for _, rp := range rendered {
			if ok, verifyErr := metadata.Verify(rp.RawHTML); !ok {
				result.VerifyFailures++
				p.log.Warn("⚠️ provenance check failed", "path", rp.FilePath, "error", verifyErr)
			}
		}
	}

	posts := rebuilder.Rebuild(rendered)

	if err := rebuilder.UpdateIndex(p.cfg.Generator.Output.IndexPath, posts); err != nil {
		return nil, err
	}

	result.Indexed = len(posts)

	return result, nil
}

// WriteDump saves the run's post records as a pretty-printed JSON artifact
// for inspection. It is never read back.
func WriteDump(path string, posts []*models.PostRecord) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal posts: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}

	return nil
}
