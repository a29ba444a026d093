package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coinhist/coin-history-crawler/internal/catalog"
	"github.com/coinhist/coin-history-crawler/internal/clock/system"
	"github.com/coinhist/coin-history-crawler/internal/config"
	"github.com/coinhist/coin-history-crawler/internal/export"
	"github.com/coinhist/coin-history-crawler/internal/metrics"
	"github.com/coinhist/coin-history-crawler/internal/pipeline"
	"github.com/coinhist/coin-history-crawler/internal/progress"
	"github.com/coinhist/coin-history-crawler/internal/progress/sinks"
	"github.com/coinhist/coin-history-crawler/internal/scrape"
)

// newFetchCmd creates and configures the 'fetch' subcommand.
func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Runs one fetch batch and writes the normalized table",
		Long: `Loads the entity catalog, fetches each entity's daily history table
with bounded concurrency, and writes the merged, normalized, sorted table
as CSV.`,

		RunE: runFetchCommand,
	}

	cmd.Flags().String("coins", "", "slug, comma-separated slug set, or 'all'")
	cmd.Flags().Int("limit", 0, "truncate the catalog to the first N entries")
	cmd.Flags().Int("concurrency", 0, "parallel fetch tasks (1 = sequential)")
	cmd.Flags().String("start", "", "history window start (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "history window end (YYYY-MM-DD)")
	cmd.Flags().String("out", "", "output CSV path (default stdout)")

	return cmd
}

func runFetchCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg, err := applyFlagOverrides(cmd, a.cfg)
	if err != nil {
		return err
	}

	metrics.Init()

	filter, err := buildFilter(cfg)
	if err != nil {
		return err
	}

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: a.logger}, sinks.NewLogSink(a.logger), promSink)
	defer func() {
		if cerr := hub.Close(cmd.Context()); cerr != nil {
			a.logger.Warn("close progress hub", zap.Error(cerr))
		}
	}()

	clk := system.New()
	fetcher := scrape.New(scrape.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	loader := catalog.NewListingLoader(catalog.ListingConfig{
		ListingURL: cfg.Catalog.ListingURL,
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.FetchTimeout(),
	})
	dispatcher := pipeline.NewDispatcher(fetcher, cfg.Fetch.Concurrency, clk, hub, a.logger)
	pipe := pipeline.New(loader, dispatcher, clk, hub, a.logger)

	table, err := pipe.Run(cmd.Context(), filter, nil)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoData) {
			return fmt.Errorf("batch produced no usable records: %w", err)
		}
		return fmt.Errorf("run pipeline: %w", err)
	}

	return writeTable(cfg.Output.Path, table)
}

// applyFlagOverrides layers explicitly set fetch flags over the loaded
// config and re-validates the result.
func applyFlagOverrides(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("coins") {
		cfg.Catalog.Filter, _ = flags.GetString("coins")
	}
	if flags.Changed("limit") {
		cfg.Catalog.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("concurrency") {
		cfg.Fetch.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("start") {
		cfg.Catalog.Start, _ = flags.GetString("start")
	}
	if flags.Changed("end") {
		cfg.Catalog.End, _ = flags.GetString("end")
	}
	if flags.Changed("out") {
		cfg.Output.Path, _ = flags.GetString("out")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func buildFilter(cfg config.Config) (catalog.Filter, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return catalog.Filter{}, err
	}
	return catalog.Filter{
		Slugs: catalog.ParseSelection(cfg.Catalog.Filter),
		Limit: cfg.Catalog.Limit,
		Start: start,
		End:   end,
	}, nil
}

func writeTable(path string, table []pipeline.Record) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteCSV(w, table); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}
