// Package config provides configuration management for the blog generator.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoSources            = errors.New("at least one source is required")
	ErrNoEnabledSources     = errors.New("at least one source must be enabled")
	ErrUnknownSourceKind    = errors.New("source kind must be one of: gitlog, github, markdown")
	ErrSourceMissingRepoDir = errors.New("repo_dir is required for gitlog sources")
	ErrSourceMissingOwner   = errors.New("owner is required for github sources")
	ErrSourceMissingRepo    = errors.New("repo is required for github sources")
	ErrSourceMissingRootDir = errors.New("root_dir is required for markdown sources")
	ErrInvalidDaysBack      = errors.New("days_back must be at least 1")
	ErrMissingBlogDir       = errors.New("output.blog_dir is required")
	ErrMissingTemplatePath  = errors.New("output.template_path is required")
	ErrMissingIndexPath     = errors.New("output.index_path is required")
	ErrInvalidMaxAttempts   = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidTimeout       = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidBufferSize    = errors.New("advanced.buffer_size_kb must be at least 1")
	ErrMissingUserAgent     = errors.New("advanced.user_agent must not be empty")
)

// Source kinds.
const (
	KindGitLog   = "gitlog"
	KindGitHub   = "github"
	KindMarkdown = "markdown"
)

// Defaults for the sections a config file may omit entirely.
const (
	DefaultMaxAttempts  = 1
	DefaultTimeoutSec   = 30
	DefaultBufferSizeKb = 1024
	DefaultUserAgent    = "devlog-generator/1.0"
)

// Config represents the complete generator configuration.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Features  FeaturesConfig  `yaml:"features"`
	Advanced  AdvancedConfig  `yaml:"advanced"`
}

// GeneratorConfig contains generator-specific settings.
type GeneratorConfig struct {
	ProjectName string         `yaml:"project_name"`
	Sources     []SourceConfig `yaml:"sources"`
	Output      OutputConfig   `yaml:"output"`
	Retry       RetryPolicy    `yaml:"retry"`
	Logging     LoggingConfig  `yaml:"logging"`
}

// SourceConfig represents one update source. Kind selects which of the
// kind-specific field groups applies.
type SourceConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Enabled bool   `yaml:"enabled"`

	// Required makes this source's failure fatal for the whole run
	// instead of just losing its contribution.
	Required bool `yaml:"required"`

	// gitlog
	RepoDir string `yaml:"repo_dir"`

	// github
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	APIURL   string `yaml:"api_url"`
	TokenEnv string `yaml:"token_env"`

	// gitlog and github
	DaysBack int `yaml:"days_back"`

	// markdown
	RootDir   string   `yaml:"root_dir"`
	SkipFiles []string `yaml:"skip_files"`
}

// IsGitLog returns true if this source reads the local git log.
func (s *SourceConfig) IsGitLog() bool {
	return s.Kind == KindGitLog
}

// IsGitHub returns true if this source reads the remote commit API.
func (s *SourceConfig) IsGitHub() bool {
	return s.Kind == KindGitHub
}

// IsMarkdown returns true if this source reads markdown documents.
func (s *SourceConfig) IsMarkdown() bool {
	return s.Kind == KindMarkdown
}

// Root returns the local directory a source reads from, or "" for remote
// sources.
func (s *SourceConfig) Root() string {
	switch s.Kind {
	case KindGitLog:
		return s.RepoDir
	case KindMarkdown:
		return s.RootDir
	}

	return ""
}

// RetryPolicy defines fetch retry behavior for remote sources. There is no
// backoff: a failed attempt is re-tried immediately until max_attempts is
// reached, and with the default of 1 a failed fetch simply aborts that
// source's contribution.
type RetryPolicy struct {
	MaxAttempts int `yaml:"max_attempts"`
	TimeoutSec  int `yaml:"timeout_sec"`
}

// GetTimeout returns the per-request timeout as a duration.
func (r *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// OutputConfig defines where rendered posts and the index live.
type OutputConfig struct {
	BlogDir      string `yaml:"blog_dir"`
	TemplatePath string `yaml:"template_path"`
	IndexPath    string `yaml:"index_path"`
	CreateBackup bool   `yaml:"create_backup"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	ShowProgress bool   `yaml:"show_progress"`
	SamplePosts  int    `yaml:"sample_posts"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	RenderDocBody     bool `yaml:"render_doc_body"`
	StrictIndex       bool `yaml:"strict_index"`
	CollisionWarnings bool `yaml:"collision_warnings"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	BufferSizeKb int    `yaml:"buffer_size_kb"`
	UserAgent    string `yaml:"user_agent"`
}

// DefaultConfig returns a configuration with every knob at its default. The
// init command writes this to disk as a starting point.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			ProjectName: "EYN-OS",
			Sources: []SourceConfig{
				{
					Name:     "local-history",
					Kind:     KindGitLog,
					Enabled:  true,
					RepoDir:  ".",
					DaysBack: 30,
				},
				{
					Name:      "project-docs",
					Kind:      KindMarkdown,
					Enabled:   true,
					RootDir:   ".",
					SkipFiles: []string{"CONTRIBUTING.md"},
				},
			},
			Output: OutputConfig{
				BlogDir:      "blog",
				TemplatePath: "blog/template.html",
				IndexPath:    "blog.html",
				CreateBackup: true,
			},
			Retry: RetryPolicy{
				MaxAttempts: DefaultMaxAttempts,
				TimeoutSec:  DefaultTimeoutSec,
			},
			Logging: LoggingConfig{
				Level:        "info",
				ShowProgress: true,
				SamplePosts:  3,
			},
		},
		Features: FeaturesConfig{
			RenderDocBody:     true,
			StrictIndex:       false,
			CollisionWarnings: true,
		},
		Advanced: AdvancedConfig{
			BufferSizeKb: DefaultBufferSizeKb,
			UserAgent:    DefaultUserAgent,
		},
	}
}

// applyDefaults fills in the fields a config file is allowed to leave
// unset. An explicitly negative value is left alone for Validate to reject.
func (c *Config) applyDefaults() {
	if c.Generator.Retry.MaxAttempts == 0 {
		c.Generator.Retry.MaxAttempts = DefaultMaxAttempts
	}

	if c.Generator.Retry.TimeoutSec == 0 {
		c.Generator.Retry.TimeoutSec = DefaultTimeoutSec
	}

	if c.Advanced.BufferSizeKb == 0 {
		c.Advanced.BufferSizeKb = DefaultBufferSizeKb
	}

	if c.Advanced.UserAgent == "" {
		c.Advanced.UserAgent = DefaultUserAgent
	}
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Generator.Sources) == 0 {
		return ErrNoSources
	}

	enabledCount := 0

	for i, src := range c.Generator.Sources {
		switch src.Kind {
		case KindGitLog:
			if src.RepoDir == "" {
				return fmt.Errorf("%w: source[%d]", ErrSourceMissingRepoDir, i)
			}

			if src.DaysBack < 1 {
				return fmt.Errorf("%w: source[%d]", ErrInvalidDaysBack, i)
			}
		case KindGitHub:
			if src.Owner == "" {
				return fmt.Errorf("%w: source[%d]", ErrSourceMissingOwner, i)
			}

			if src.Repo == "" {
				return fmt.Errorf("%w: source[%d]", ErrSourceMissingRepo, i)
			}

			if src.DaysBack < 1 {
				return fmt.Errorf("%w: source[%d]", ErrInvalidDaysBack, i)
			}
		case KindMarkdown:
			if src.RootDir == "" {
				return fmt.Errorf("%w: source[%d]", ErrSourceMissingRootDir, i)
			}
		default:
			return fmt.Errorf("%w: source[%d] has kind %q", ErrUnknownSourceKind, i, src.Kind)
		}

		if src.Enabled {
			enabledCount++
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	if c.Generator.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Generator.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Generator.Output.BlogDir == "" {
		return ErrMissingBlogDir
	}

	if c.Generator.Output.TemplatePath == "" {
		return ErrMissingTemplatePath
	}

	if c.Generator.Output.IndexPath == "" {
		return ErrMissingIndexPath
	}

	switch c.Generator.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if c.Advanced.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if c.Advanced.UserAgent == "" {
		return ErrMissingUserAgent
	}

	return nil
}

// GetEnabledSources returns only the sources marked as enabled, in
// configuration order.
func (c *Config) GetEnabledSources() []SourceConfig {
	enabled := make([]SourceConfig, 0, len(c.Generator.Sources))

	for _, src := range c.Generator.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// String returns a one-line summary of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf(
		"project=%s sources=%d enabled=%d blog_dir=%s index=%s",
		c.Generator.ProjectName,
		len(c.Generator.Sources),
		len(c.GetEnabledSources()),
		c.Generator.Output.BlogDir,
		c.Generator.Output.IndexPath,
	)
}
