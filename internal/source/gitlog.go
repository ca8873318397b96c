package source

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"devlog/internal/config"
	"devlog/internal/logger"
	"devlog/internal/models"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// logFormat produces one pipe-delimited line per commit:
// id|author|date|subject|body. Multi-line bodies spill onto extra lines,
// which the parser drops as under-filled.
const logFormat = "--pretty=format:%H|%an|%ad|%s|%b"

// importantSuffixes limits the changed-file scan to files worth mentioning
// in a post.
var importantSuffixes = []string{".md", ".c", ".h"}

// GitLogReader reads commits from a local repository's history. The log
// query shells out to git with the repo directory set on the command, never
// by changing the process working directory; structured per-commit work
// (changed files, blob content) goes through go-git.
type GitLogReader struct {
	cfg config.SourceConfig
	log *logger.Logger
}

// NewGitLogReader creates a local git history reader.
func NewGitLogReader(cfg config.SourceConfig, log *logger.Logger) *GitLogReader {
	return &GitLogReader{cfg: cfg, log: log}
}

// Name returns the configured source name.
func (r *GitLogReader) Name() string {
	return r.cfg.Name
}

// Read returns one CommitRecord per parseable log line from the last
// DaysBack days, newest first. A repository that cannot be opened is a
// source-unavailable error; go-git failures on individual commits only
// degrade that commit's changed-file details.
func (r *GitLogReader) Read(ctx context.Context) ([]models.RawRecord, error) {
	repo, err := git.PlainOpen(r.cfg.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open repository at %s: %v", ErrUnavailable, r.cfg.RepoDir, err)
	}

	since := fmt.Sprintf("--since=%d days ago", r.cfg.DaysBack)
	cmd := exec.CommandContext(ctx, "git", "log", since, logFormat, "--date=short")
	cmd.Dir = r.cfg.RepoDir

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: git log failed in %s: %v", ErrUnavailable, r.cfg.RepoDir, err)
	}

	var records []models.RawRecord

	for _, line := range strings.Split(string(output), "\n") {
		commit, ok := ParseLogLine(line)
		if !ok {
			continue
		}

		commit.ChangedFiles = r.changedFiles(repo, commit.ID)
		records = append(records, commit)
	}

	return records, nil
}

// ParseLogLine parses one pipe-delimited log line into a commit record.
// Lines with fewer than four fields are reported as unparseable; a missing
// fifth field just means an empty body.
func ParseLogLine(line string) (*models.CommitRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	parts := strings.SplitN(line, "|", 5)
	if len(parts) < 4 {
		return nil, false
	}

	commit := &models.CommitRecord{
		ID:      strings.TrimSpace(parts[0]),
		Author:  strings.TrimSpace(parts[1]),
		Date:    strings.TrimSpace(parts[2]),
		Subject: strings.TrimSpace(parts[3]),
	}

	if len(parts) == 5 {
		commit.Body = strings.TrimSpace(parts[4])
	}

	return commit, true
}

// changedFiles lists the important files a commit touched, with the blob
// content of changed markdown and C files so the extractor can mine feature
// entries and the renderer can show details.
func (r *GitLogReader) changedFiles(repo *git.Repository, id string) []models.ChangedFile {
	commit, err := repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		r.log.Debug("cannot resolve commit", "id", id, "error", err)

		return nil
	}

	paths, err := diffAgainstParent(commit)
	if err != nil {
		r.log.Debug("cannot diff commit", "id", id, "error", err)

		return nil
	}

	var changed []models.ChangedFile

	for _, path := range paths {
		if !isImportantFile(path) {
			continue
		}

		file := models.ChangedFile{Path: path}

		if hasContentSuffix(path) {
			if f, fileErr := commit.File(path); fileErr == nil {
				if content, contentErr := f.Contents(); contentErr == nil {
					file.Content = content
				}
			}
		}

		changed = append(changed, file)
	}

	return changed
}

// diffAgainstParent returns the paths a commit changed relative to its
// first parent, or every path for a root commit.
func diffAgainstParent(commit *object.Commit) ([]string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}

	if commit.NumParents() == 0 {
		var paths []string

		err = tree.Files().ForEach(func(f *object.File) error {
			paths = append(paths, f.Name)

			return nil
		})

		return paths, err
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, err
	}

	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(changes))

	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}

		paths = append(paths, name)
	}

	return paths, nil
}

// hasContentSuffix reports whether a changed file's blob content should be
// captured. Makefiles and extensionless READMEs are listed but never mined.
func hasContentSuffix(path string) bool {
	for _, suffix := range importantSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}

	return false
}

// isImportantFile reports whether a changed path is worth surfacing in a
// post: markdown, C sources and headers, Makefiles, and READMEs.
func isImportantFile(path string) bool {
	for _, suffix := range importantSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}

	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}

	return base == "Makefile" || strings.Contains(base, "README")
}
