package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	toDir       string
	configFile  string
	filterExpr  string
	markdown    bool
	metricsFile string
	debugMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "logpuzzle [-d DIR] LOGFILE",
	Short: "Find puzzle image URLs in an Apache log and download them",
	Long: `Scans an Apache access log for puzzle image URLs, using the text after the
first underscore in the log's file name as the hostname. Without --todir the
resolved URLs are printed one per line. With --todir the images are downloaded
as img0, img1, ... and an index.html is written to view them in order.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return ErrMissingArgument
		}

		return run(cmd.Context(), runOptions{
			logFile:   args[0],
			toDir:     toDir,
			overrides: overridesFromFlags(cmd),
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&toDir, "todir", "d", "", "destination directory for downloaded images")
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to a settings YAML file")
	rootCmd.Flags().StringVar(&filterExpr, "filter", "", "expression selecting URLs to keep (fields: Path, Key, Host)")
	rootCmd.Flags().BoolVar(&markdown, "markdown", false, "also write index.md next to index.html")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// overridesFromFlags returns overrides for the flags set on the command line
func overridesFromFlags(cmd *cobra.Command) *ConfigOverrides {
	overrides := &ConfigOverrides{}
	flags := cmd.Flags()
	if flags.Changed("config") {
		overrides.SettingsPath = &configFile
	}
	if flags.Changed("filter") {
		overrides.Filter = &filterExpr
	}
	if flags.Changed("markdown") {
		overrides.Markdown = &markdown
	}
	if flags.Changed("metrics-file") {
		overrides.MetricsFile = &metricsFile
	}
	if flags.Changed("debug") {
		overrides.Debug = &debugMode
	}
	return overrides
}

type runOptions struct {
	logFile   string
	toDir     string
	overrides *ConfigOverrides
}

// run resolves the puzzle URLs and either prints them to out or downloads them
func run(ctx context.Context, opts runOptions, out io.Writer) (err error) {
	settings, err := LoadSettings(opts.overrides)
	if err != nil {
		return err
	}

	log, err := NewLogger(settings.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	metrics := NewRunMetrics()
	defer func() {
		if werr := metrics.WriteTextfile(settings.MetricsFile); werr != nil {
			log.Errorf("Writing metrics to %s: %v", settings.MetricsFile, werr)
			if err == nil {
				err = werr
			}
		}
	}()

	urls, err := NewURLExtractor(settings, log).ReadURLs(ctx, opts.logFile)
	if err != nil {
		return err
	}
	metrics.SetExtracted(len(urls))
	log.Debugf("Resolved %d puzzle URLs from %s", len(urls), opts.logFile)

	if opts.toDir == "" {
		for _, u := range urls {
			fmt.Fprintln(out, u)
		}
		return nil
	}

	results, err := NewDownloader(settings.Download, metrics, log).DownloadImages(ctx, urls, opts.toDir)
	logSummary(log, results, len(urls))
	return err
}

func logSummary(log *zap.SugaredLogger, results []DownloadResult, total int) {
	var saved int64
	succeeded := 0
	for _, r := range results {
		if r.Status == StatusSuccess {
			succeeded++
			saved += r.Bytes
		}
	}
	log.Infof("Downloaded %d/%d images (%d bytes)", succeeded, total, saved)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrMissingArgument) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
