package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hal/testhound/config"
	"github.com/hal/testhound/internal/cache"
	"github.com/hal/testhound/internal/github"
	"github.com/hal/testhound/internal/log"
	"github.com/hal/testhound/internal/output"
	"github.com/hal/testhound/internal/pipeline"
)

// runFind executes the crawl: discover repositories, enumerate merged
// PRs, classify them, and write reports.
func runFind(cmd *cobra.Command, opts *Options) error {
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	formatName := resolveString(cmd, "format", opts.Format, cfg.Format)
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	heuristic := pipeline.Heuristic(opts.Heuristic)
	switch heuristic {
	case pipeline.HeuristicMinimal, pipeline.HeuristicEnhanced:
	default:
		return fmt.Errorf("unknown heuristic %q (want minimal or enhanced)", opts.Heuristic)
	}

	token := opts.Token
	if token == "" {
		token = cfg.GetGitHubToken()
	}
	if token == "" {
		log.Warn("no GitHub token configured, anonymous rate limits apply")
	}

	cachePath := resolveString(cmd, "cache-file", opts.CacheFile, cfg.CacheFile)
	if cachePath == "" {
		cachePath = config.DefaultCachePath()
	}
	repoCache := cache.New(cachePath)
	if opts.ClearCache {
		if err := repoCache.Clear(); err != nil {
			return err
		}
		log.Info("cache cleared", "path", cachePath)
	}
	repoCache.Load()

	client := github.NewClient(token)

	// Interrupts cancel the run; the pipeline flushes the cache and
	// partial live output is kept.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.WaitIfLow(ctx); err != nil {
		return pipeline.ErrInterrupted
	}

	p := pipeline.New(client, repoCache, pipeline.Options{
		MinStars:      resolveInt(cmd, "min-stars", opts.MinStars, cfg.MinStars),
		DaysBack:      resolveInt(cmd, "days-back", opts.DaysBack, cfg.DaysBack),
		MaxRepos:      resolveInt(cmd, "max-repos", opts.MaxRepos, cfg.MaxRepos),
		TargetPRs:     resolveInt(cmd, "target-prs", opts.TargetPRs, cfg.TargetPRs),
		MaxSizeMB:     resolveInt(cmd, "max-size-mb", opts.MaxSizeMB, cfg.MaxSizeMB),
		SkipProcessed: opts.SkipProcessed,
		Heuristic:     heuristic,
	})

	prefix := resolveString(cmd, "output-prefix", opts.OutputPrefix, cfg.OutputPrefix)

	var live *output.LiveWriter
	if opts.Live {
		live, err = output.NewLiveWriter(prefix + "_live.csv")
		if err != nil {
			return err
		}
		defer live.Close()
		p.AddHook(live.Hook())
		log.Info("live output enabled", "path", live.Path())
	}

	findings, runErr := p.Run(ctx)
	if runErr != nil && !errors.Is(runErr, pipeline.ErrInterrupted) {
		return runErr
	}

	log.ProgressClear()
	output.RenderSummary(output.Summarize(findings), os.Stdout)

	if len(findings) > 0 && !opts.SummaryOnly {
		if format == output.FormatTable {
			fmt.Println()
			if err := (&output.TableWriter{}).Write(findings, os.Stdout); err != nil {
				return err
			}
		} else {
			if _, err := output.WriteReports(findings, prefix, format); err != nil {
				return err
			}
		}
	}

	// Surfaces after reporting so an interrupted run still exits 130.
	return runErr
}
