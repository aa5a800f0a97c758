// Command hh-research collects vacancies from the HeadHunter API, normalizes
// salaries to net RUR and prints a statistical summary of the result.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/salarylab/hh-research/internal/config"
	"github.com/salarylab/hh-research/pkg/analyze"
	"github.com/salarylab/hh-research/pkg/cache"
	"github.com/salarylab/hh-research/pkg/collector"
	"github.com/salarylab/hh-research/pkg/hh"
	"github.com/salarylab/hh-research/pkg/logging"
	"github.com/salarylab/hh-research/pkg/rates"
)

type cliFlags struct {
	settingsPath string
	cacheDir     string
	redisAddr    string
	metricsAddr  string
	csvPath      string
	logLevel     string
	logPretty    bool

	text       string
	roles      []int
	numWorkers int
	refresh    bool
	saveResult bool
	update     bool
	skipFailed bool
	topN       int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:           "hh-research",
		Short:         "HeadHunter vacancies researcher",
		Long:          "Collects vacancies for a search query, normalizes salaries to net RUR and reports salary statistics and word frequencies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.settingsPath, "settings", "settings.json", "path to the settings file")
	cmd.Flags().StringVar(&flags.cacheDir, "cache-dir", ".cache", "directory for cached datasets")
	cmd.Flags().StringVar(&flags.redisAddr, "redis-addr", "", "Redis address; when set, datasets are cached in Redis instead of files")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "listen address for the Prometheus metrics endpoint, e.g. :9090")
	cmd.Flags().StringVar(&flags.csvPath, "csv-path", "vacancies.csv", "output path used with --save-result")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.Flags().BoolVar(&flags.logPretty, "log-pretty", true, "human-readable log output")

	cmd.Flags().StringVarP(&flags.text, "text", "t", "", "search query text, e.g. \"Machine learning\"")
	cmd.Flags().IntSliceVarP(&flags.roles, "professional-roles", "p", nil, "professional role filter")
	cmd.Flags().IntVarP(&flags.numWorkers, "num-workers", "n", 0, "number of concurrent vacancy fetches")
	cmd.Flags().BoolVarP(&flags.refresh, "refresh", "r", false, "refresh cached data from the API")
	cmd.Flags().BoolVarP(&flags.saveResult, "save-result", "s", false, "save the collected dataset to a CSV file")
	cmd.Flags().BoolVarP(&flags.update, "update", "u", false, "persist command line arguments to the settings file")
	cmd.Flags().BoolVar(&flags.skipFailed, "skip-failed", false, "drop vacancies that fail to fetch instead of aborting")
	cmd.Flags().IntVar(&flags.topN, "top", 10, "rows per frequency table in the report")

	return cmd
}

func run(cmd *cobra.Command, flags *cliFlags) error {
	// Missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	logging.Setup(logging.Config{Level: flags.logLevel, Pretty: flags.logPretty})
	logger := logging.NewLogger("main")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load(flags.settingsPath)
	if err != nil {
		return err
	}
	settings.Apply(overridesFromFlags(cmd, flags))

	if flags.metricsAddr != "" {
		go serveMetrics(flags.metricsAddr, logger)
	}

	table, err := refreshRates(ctx, settings)
	if err != nil {
		return err
	}

	// Persist merged arguments and the freshly fetched rate table.
	if flags.update {
		if err := config.Save(flags.settingsPath, settings); err != nil {
			return err
		}
		logger.Info().Str("path", flags.settingsPath).Msg("Settings file updated")
	}

	store, err := newStore(ctx, flags)
	if err != nil {
		return err
	}

	coll := collector.New(collector.Config{
		Client:     hh.New(hh.Config{}),
		Store:      store,
		Rates:      table,
		NumWorkers: settings.NumWorkers,
		SkipFailed: settings.SkipFailed,
	})

	dataset, err := coll.Collect(ctx, settings.Options, settings.Refresh)
	if err != nil {
		return err
	}

	if err := analyze.WritePreview(os.Stdout, dataset, 10); err != nil {
		return err
	}
	fmt.Println()
	if err := analyze.Summarize(dataset).WriteText(os.Stdout, flags.topN); err != nil {
		return err
	}

	if settings.SaveResult {
		f, err := os.Create(flags.csvPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", flags.csvPath, err)
		}
		defer f.Close()
		if err := dataset.WriteCSV(f); err != nil {
			return fmt.Errorf("write %s: %w", flags.csvPath, err)
		}
		logger.Info().Str("path", flags.csvPath).Int("records", dataset.Len()).Msg("Dataset saved")
	}

	return nil
}

// overridesFromFlags maps only the flags the user actually set, so file
// values survive unless explicitly overridden.
func overridesFromFlags(cmd *cobra.Command, flags *cliFlags) config.Overrides {
	var o config.Overrides
	if cmd.Flags().Changed("text") {
		o.Text = &flags.text
	}
	if cmd.Flags().Changed("professional-roles") {
		o.Roles = flags.roles
	}
	if cmd.Flags().Changed("num-workers") {
		o.NumWorkers = &flags.numWorkers
	}
	if cmd.Flags().Changed("refresh") {
		o.Refresh = &flags.refresh
	}
	if cmd.Flags().Changed("save-result") {
		o.SaveResult = &flags.saveResult
	}
	if cmd.Flags().Changed("skip-failed") {
		o.SkipFailed = &flags.skipFailed
	}
	return o
}

// refreshRates fetches live exchange rates for the currencies listed in the
// settings and persists them back onto the settings object. The settings file
// keys the base currency either way; the target list uses ISO codes.
func refreshRates(ctx context.Context, settings *config.Settings) (rates.Table, error) {
	targets := make([]string, 0, len(settings.Rates))
	for code := range settings.Rates {
		if code == rates.BaseCurrencyLegacy {
			code = rates.BaseCurrencyISO
		}
		targets = append(targets, code)
	}

	table, err := rates.New(rates.Config{}).Refresh(ctx, targets)
	if err != nil {
		return nil, err
	}
	settings.Rates = table
	return table, nil
}

func newStore(ctx context.Context, flags *cliFlags) (cache.Store, error) {
	if flags.redisAddr == "" {
		return cache.NewFileStore(flags.cacheDir)
	}

	client := redis.NewClient(&redis.Options{Addr: flags.redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", flags.redisAddr, err)
	}
	return cache.NewRedisStore(client, 0), nil
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
