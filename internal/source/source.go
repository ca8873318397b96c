// Package source reads raw update records from the configured sources: the
// local git log, a remote commit API, and markdown documents.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devlog/internal/config"
	"devlog/internal/logger"
	"devlog/internal/models"
)

// Source errors.
var (
	ErrUnavailable = errors.New("source unavailable")
	ErrUnknownKind = errors.New("unknown source kind")
)

// Reader is one source of raw records. A Read failure means the whole
// source's contribution is lost for this run; the pipeline logs it and
// continues with the remaining sources.
type Reader interface {
	Name() string
	Read(ctx context.Context) ([]models.RawRecord, error)
}

// New builds the reader for a source config.
func New(src config.SourceConfig, cfg *config.Config, log *logger.Logger) (Reader, error) {
	switch {
	case src.IsGitLog():
		return NewGitLogReader(src, log), nil
	case src.IsGitHub():
		return NewGitHubReader(src, cfg, log), nil
	case src.IsMarkdown():
		return NewMarkdownReader(src, log), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, src.Kind)
}

// AttemptResult records the outcome of reading one source.
type AttemptResult struct {
	Timestamp time.Time
	Source    string
	Error     string
	Records   int
	Duration  time.Duration
	Success   bool
}

// AttemptLog collects per-source read outcomes for the end-of-run summary.
type AttemptLog struct {
	results []AttemptResult
}

// NewAttemptLog creates an empty attempt log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{}
}

// Record stores the outcome of one source read.
func (a *AttemptLog) Record(source string, records int, duration time.Duration, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	a.results = append(a.results, AttemptResult{
		Timestamp: time.Now(),
		Source:    source,
		Error:     errMsg,
		Records:   records,
		Duration:  duration,
		Success:   err == nil,
	})
}

// Stats summarizes the attempt log.
func (a *AttemptLog) Stats() AttemptStats {
	stats := AttemptStats{TotalSources: len(a.results)}

	for _, result := range a.results {
		if result.Success {
			stats.SuccessfulSources++
			stats.TotalRecords += result.Records
		} else {
			stats.FailedSources++
		}
	}

	return stats
}

// AttemptStats contains statistics about source reads.
type AttemptStats struct {
	TotalSources      int
	SuccessfulSources int
	FailedSources     int
	TotalRecords      int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"Sources: %d total, %d success, %d failed | Records: %d",
		s.TotalSources,
		s.SuccessfulSources,
		s.FailedSources,
		s.TotalRecords,
	)
}

// LogSummary logs one line per source plus the overall stats.
func (a *AttemptLog) LogSummary(l *logger.Logger) {
	l.Info("📊 Source Read Summary:")

	for i, result := range a.results {
		statusStr := fmt.Sprintf("✅ %d records", result.Records)
		if !result.Success {
			statusStr = fmt.Sprintf("❌ Failed: %s", result.Error)
		}

		l.Info(fmt.Sprintf("%d. %s: %s (%.2fs)", i+1, result.Source, statusStr, result.Duration.Seconds()))
	}

	l.Info(fmt.Sprintf("Overall: %s", a.Stats()))
}
