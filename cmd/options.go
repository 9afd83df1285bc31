package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hal/testhound/config"
)

// Options holds the command-line options for the crawl.
type Options struct {
	Token        string
	MinStars     int
	DaysBack     int
	MaxRepos     int
	TargetPRs    int
	MaxSizeMB    int
	Format       string
	OutputPrefix string
	CacheFile    string

	SkipProcessed bool
	ClearCache    bool
	Live          bool
	Heuristic     string
	SummaryOnly   bool
	Verbosity     int
}

// addFindFlags wires the crawl flags onto a command.
func addFindFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.Flags()

	flags.StringVar(&opts.Token, "token", "", "GitHub personal access token (default: config file or GITHUB_TOKEN)")
	flags.IntVar(&opts.MinStars, "min-stars", config.DefaultMinStars, "Minimum repository stars")
	flags.IntVar(&opts.DaysBack, "days-back", config.DefaultDaysBack, "Days to look back for merged PRs")
	flags.IntVar(&opts.MaxRepos, "max-repos", config.DefaultMaxRepos, "Maximum repositories to analyze")
	flags.IntVar(&opts.TargetPRs, "target-prs", config.DefaultTargetPRs, "Target number of qualifying PRs (the run continues past it)")
	flags.IntVar(&opts.MaxSizeMB, "max-size-mb", config.DefaultMaxSizeMB, "Maximum repository size in MB")
	flags.StringVar(&opts.Format, "format", config.DefaultFormat, "Output format (csv, json, txt, table, all)")
	flags.StringVar(&opts.OutputPrefix, "output-prefix", config.DefaultOutputPrefix, "Output file prefix")
	flags.StringVar(&opts.CacheFile, "cache-file", "", "Cache file path (default: user cache directory)")

	flags.BoolVar(&opts.SkipProcessed, "skip-processed", true, "Skip repositories processed within the freshness window")
	flags.BoolVar(&opts.ClearCache, "clear-cache", false, "Clear the cache before starting")
	flags.BoolVar(&opts.Live, "live", false, "Stream findings to a live CSV file as they are found")
	flags.StringVar(&opts.Heuristic, "heuristic", "enhanced", "Classifier variant (minimal, enhanced)")
	flags.BoolVar(&opts.SummaryOnly, "summary-only", false, "Print summary statistics without writing report files")
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v, -vv, -vvv)")
}

// resolveInt applies flag > config > default precedence.
func resolveInt(cmd *cobra.Command, name string, flagVal, cfgVal int) int {
	if cmd.Flags().Changed(name) {
		return flagVal
	}
	if cfgVal != 0 {
		return cfgVal
	}
	return flagVal
}

// resolveString applies flag > config > default precedence.
func resolveString(cmd *cobra.Command, name string, flagVal, cfgVal string) string {
	if cmd.Flags().Changed(name) {
		return flagVal
	}
	if cfgVal != "" {
		return cfgVal
	}
	return flagVal
}
