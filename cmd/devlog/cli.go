package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"devlog/internal/config"
	"devlog/internal/logger"
	"devlog/internal/models"
	"devlog/internal/pipeline"
)

// newApp creates the CLI application with all commands.
func newApp() *cli.App {
	return &cli.App{
		Name:    "devlog",
		Usage:   "Generate developer blog posts from git history and docs",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "devlog.yaml",
				Usage:   "Path to the YAML configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			generateCmd(),
			reindexCmd(),
			initCmd(),
		},
	}
}

// setup loads the config and builds a logger honoring --verbose.
func setup(c *cli.Context) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger(cfg.Generator.Logging.Level)
	if c.Bool("verbose") {
		log.SetLevel("debug")
	}

	return cfg, log, nil
}

// generateCmd creates the generate command.
func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Run the full pipeline: read sources, write posts, rebuild the index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dump",
				Usage: "Also write the generated post records as JSON to this path",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			fmt.Printf("🚀 Starting blog generation for %s\n", cfg.Generator.ProjectName)

			p := pipeline.New(cfg, log)

			result, err := p.Run(c.Context)
			if err != nil {
				return cli.Exit(fmt.Sprintf("generation failed: %v", err), 1)
			}

			if dumpPath := c.String("dump"); dumpPath != "" {
				if err := pipeline.WriteDump(dumpPath, result.Posts); err != nil {
					log.Warn("could not write dump", "path", dumpPath, "error", err)
				} else {
					fmt.Printf("📊 Post records dumped to %s\n", dumpPath)
				}
			}

			printSummary(cfg, result)

			return nil
		},
	}
}

// reindexCmd creates the reindex command, the standalone way to rebuild the
// index from whatever is on disk.
func reindexCmd() *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Rebuild the blog index from the rendered posts on disk",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Check each post's provenance stamp and warn about hand edits",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			p := pipeline.New(cfg, log)

			result, err := p.Reindex(c.Bool("verify"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("reindex failed: %v", err), 1)
			}

			fmt.Printf("✅ Index rebuilt: %d posts scanned, %d indexed\n", result.Scanned, result.Indexed)

			if c.Bool("verify") && result.VerifyFailures > 0 {
				fmt.Printf("⚠️  %d post(s) failed provenance verification (hand-edited?)\n", result.VerifyFailures)
			}

			return nil
		},
	}
}

// initCmd creates the init command.
func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("config")

			if _, err := os.Stat(path); err == nil && !c.Bool("force") {
				return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", path), 1)
			}

			if err := config.DefaultConfig().SaveConfig(path); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			fmt.Printf("✅ Wrote default configuration to %s\n", path)

			return nil
		},
	}
}

// printSummary prints the end-of-run report.
func printSummary(cfg *config.Config, result *pipeline.RunResult) {
	headline := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	fmt.Println()
	headline.Println("✨ Generation Complete")
	fmt.Printf("   Duration:      %.2fs\n", result.Duration.Seconds())
	fmt.Printf("   Sources:       %d tried, %d failed\n", result.SourcesTried, result.SourcesFailed)
	fmt.Printf("   Records seen:  %d\n", result.RecordsSeen)
	fmt.Printf("   Posts written: %d\n", result.PostsWritten)

	categories := make([]string, 0, len(result.PostsByCategory))
	for cat := range result.PostsByCategory {
		categories = append(categories, string(cat))
	}

	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Printf("     %-12s %d\n", cat+":", result.PostsByCategory[models.Category(cat)])
	}

	fmt.Printf("   Skipped:       %d insignificant, %d without signal\n",
		result.SkippedInsignificant, result.SkippedNoSignal)
	fmt.Printf("   Index entries: %d\n", result.IndexEntries)

	if result.RenderErrors > 0 {
		warn.Printf("   ⚠️  Render errors: %d\n", result.RenderErrors)
	}

	if result.CollisionWarnings > 0 {
		warn.Printf("   ⚠️  Slug collisions: %d (last write wins)\n", result.CollisionWarnings)
	}

	if n := cfg.Generator.Logging.SamplePosts; n > 0 && len(result.Posts) > 0 {
		fmt.Println("   Sample posts:")

		for i, post := range result.Posts {
			if i >= n {
				break
			}

			fmt.Printf("     - %s (%s)\n", post.Title, post.Filename())
		}
	}
}
