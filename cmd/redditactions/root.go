package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"redditactions/pkg/auth"
	"redditactions/pkg/config"
	"redditactions/pkg/instapaper"
	"redditactions/pkg/logger"
	"redditactions/pkg/processor"
	"redditactions/pkg/ratelimit"
	"redditactions/pkg/reddit"
	"redditactions/pkg/ui"
)

var (
	// Version information
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// options holds the flag values for one invocation
type options struct {
	configFile string
	logLevel   string
	dryRun     bool
	strict     bool
	quiet      bool
	limit      int
	subreddits []string
}

// newRootCmd builds the command tree. exitCode receives the process exit
// status chosen by the run.
func newRootCmd(out io.Writer, exitCode *int) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "redditactions",
		Short: "Forward your saved Reddit posts to Instapaper",
		Long: `redditactions reads the posts you have saved on Reddit, adds each link to
Instapaper and then unsaves it on Reddit.

Credentials are read from the environment (or a .env file):
  REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USERNAME, REDDIT_PASSWORD
  INSTAPAPER_USER, INSTAPAPER_PASS

Items that fail to forward stay saved and are picked up by the next run.`,
		Example: `  # Forward everything
  redditactions

  # See what would be sent without changing anything
  redditactions --dry-run

  # Only r/golang, at most 20 items, fail the exit code on any item error
  redditactions --subreddit golang --limit 20 --strict`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			*exitCode = runForward(ctx, cmd, opts, ui.NewPrinter(out))
			return nil
		},
	}

	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is .redditactions.yaml or ~/.config/redditactions/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "list what would be forwarded without adding or unsaving anything")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with status 2 if any item fails to forward or unsave")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print the summary")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "maximum number of saved items to examine (0 = all)")
	cmd.Flags().StringSliceVarP(&opts.subreddits, "subreddit", "s", nil, "only forward posts from these subreddits")

	cmd.SetVersionTemplate(`redditactions {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newConfigCmd(opts, out, exitCode))

	return cmd
}

// flagOverrides returns only the flags the user actually set
func flagOverrides(cmd *cobra.Command, opts *options) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = value
		}
	}
	set("dry-run", opts.dryRun)
	set("strict", opts.strict)
	set("limit", opts.limit)
	set("log-level", opts.logLevel)
	if f := cmd.Flags().Lookup("subreddit"); f != nil && f.Changed {
		flags["subreddits"] = opts.subreddits
	}
	return flags
}

// runForward loads everything needed up front so that bad configuration or
// missing credentials fail before any network call, then runs the processor.
func runForward(ctx context.Context, cmd *cobra.Command, opts *options, printer *ui.Printer) int {
	cfg, err := config.Load(opts.configFile, flagOverrides(cmd, opts))
	if err != nil {
		printer.Error("Failed to load configuration", err)
		return processor.ExitFatal
	}

	creds, err := auth.LoadFromEnv()
	if err != nil {
		printer.Error("Missing credentials", err)
		return processor.ExitFatal
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		printer.Error("Failed to initialize logger", err)
		return processor.ExitFatal
	}
	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version": version,
		"dry_run": cfg.Processing.DryRun,
		"limit":   cfg.Processing.Limit,
	}).Info("redditactions starting")

	printer.SetQuiet(opts.quiet)

	limiter := ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	source := reddit.NewClient(cfg.Reddit, creds.Reddit, cfg.HTTP.Timeout, limiter, log)
	dest := instapaper.NewClient(cfg.Instapaper, creds.Instapaper, cfg.HTTP.Timeout, log)

	p := processor.New(source, dest, cfg.Processing, log, processor.WithResultHandler(printer.Item))

	if err := p.Authenticate(ctx); err != nil {
		log.WithError(err).Error("Authentication failed")
		printer.Error("Authentication failed", err)
		return processor.ExitCode(nil, err, cfg.Processing.Strict)
	}
	printer.Info("Reddit account", source.Username())
	if cfg.Processing.DryRun {
		printer.Highlight("Dry run: nothing will be added or unsaved")
	}

	report, err := p.Run(ctx)
	printer.Summary(report)

	code := processor.ExitCode(report, err, cfg.Processing.Strict)
	switch {
	case code == processor.ExitInterrupted:
		printer.Warning("Interrupted")
	case err != nil:
		printer.Error("Run stopped early", err)
	case code == processor.ExitPartial:
		printer.Warning("Finished with failures")
	default:
		printer.Success("Done")
	}
	return code
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	code := processor.ExitOK
	cmd := newRootCmd(os.Stdout, &code)
	if err := cmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		return processor.ExitFatal
	}
	return code
}
