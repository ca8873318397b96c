package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"devlog/internal/config"
	"devlog/internal/logger"
	"devlog/internal/models"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// defaultAPIURL is used when the source config leaves api_url empty.
const defaultAPIURL = "https://api.github.com"

// GitHubReader pages through a GitHub-style commit API. Pagination follows
// the Link header's rel="next" until no further page is offered.
type GitHubReader struct {
	cfg          config.SourceConfig
	client       *http.Client
	log          *logger.Logger
	retryPolicy  config.RetryPolicy
	userAgent    string
	bufferSizeKb int
}

// NewGitHubReader creates a remote commit API reader. Zero-valued advanced
// settings fall back to their defaults; a zero buffer cap would otherwise
// truncate every response to nothing.
func NewGitHubReader(src config.SourceConfig, cfg *config.Config, log *logger.Logger) *GitHubReader {
	userAgent := cfg.Advanced.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	bufferSizeKb := cfg.Advanced.BufferSizeKb
	if bufferSizeKb < 1 {
		bufferSizeKb = config.DefaultBufferSizeKb
	}

	return &GitHubReader{
		cfg: src,
		client: &http.Client{
			Timeout: cfg.Generator.Retry.GetTimeout(),
		},
		log:          log,
		retryPolicy:  cfg.Generator.Retry,
		userAgent:    userAgent,
		bufferSizeKb: bufferSizeKb,
	}
}

// Name returns the configured source name.
func (r *GitHubReader) Name() string {
	return r.cfg.Name
}

// apiCommit mirrors the fields the commit API exposes per item.
type apiCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

// Read fetches every commit since DaysBack days ago, one page at a time.
// Any page failing after the configured attempts aborts the whole source.
func (r *GitHubReader) Read(ctx context.Context) ([]models.RawRecord, error) {
	apiURL := r.cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	since := time.Now().AddDate(0, 0, -r.cfg.DaysBack).UTC().Format(time.RFC3339)
	pageURL := fmt.Sprintf("%s/repos/%s/%s/commits?since=%s&per_page=100",
		strings.TrimRight(apiURL, "/"), r.cfg.Owner, r.cfg.Repo, since)

	var records []models.RawRecord

	for pageURL != "" {
		body, next, err := r.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrUnavailable, r.cfg.Owner, r.cfg.Repo, err)
		}

		var commits []apiCommit
		if err := json.Unmarshal(body, &commits); err != nil {
			return nil, fmt.Errorf("%w: cannot decode commit list: %v", ErrUnavailable, err)
		}

		for _, c := range commits {
			records = append(records, toCommitRecord(c))
		}

		pageURL = next
	}

	return records, nil
}

// toCommitRecord normalizes one API item into the shared commit shape. The
// API's RFC 3339 author date is reduced to its YYYY-MM-DD prefix to match
// what the local log reader produces.
func toCommitRecord(c apiCommit) *models.CommitRecord {
	subject := c.Commit.Message
	body := ""

	if idx := strings.Index(c.Commit.Message, "\n"); idx >= 0 {
		subject = c.Commit.Message[:idx]
		body = strings.TrimSpace(c.Commit.Message[idx+1:])
	}

	date := c.Commit.Author.Date
	if len(date) > 10 {
		date = date[:10]
	}

	return &models.CommitRecord{
		ID:        c.SHA,
		Author:    c.Commit.Author.Name,
		Date:      date,
		Subject:   strings.TrimSpace(subject),
		Body:      body,
		SourceURL: c.HTMLURL,
	}
}

// fetchPage GETs one page, retrying failed attempts immediately up to the
// configured maximum, and returns the body plus the next page URL if the
// Link header offers one.
func (r *GitHubReader) fetchPage(ctx context.Context, url string) ([]byte, string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.retryPolicy.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", r.userAgent)
		req.Header.Set("Accept", "application/vnd.github+json")

		if r.cfg.TokenEnv != "" {
			if token := os.Getenv(r.cfg.TokenEnv); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

		resp, err := r.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, r.retryPolicy.MaxAttempts, err)

			continue
		}

		body, next, err := r.readResponse(resp)
		if err != nil {
			lastErr = err

			if !isRetryableStatus(resp.StatusCode) {
				break
			}

			continue
		}

		return body, next, nil
	}

	return nil, "", lastErr
}

// readResponse drains one response under the buffer cap and extracts the
// next-page link. The body is always closed.
func (r *GitHubReader) readResponse(resp *http.Response) ([]byte, string, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	limit := int64(r.bufferSizeKb) * 1024
	reader := io.LimitReader(resp.Body, limit)

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Link header, or ""
// when the last page has been reached.
func nextPageURL(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}

		start := strings.Index(part, "<")
		end := strings.Index(part, ">")

		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}

	return ""
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
