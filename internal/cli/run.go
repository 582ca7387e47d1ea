package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-lakehouse/internal/db"
	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
	"github.com/pgEdge/pgedge-lakehouse/internal/pipeline"
	"github.com/pgEdge/pgedge-lakehouse/internal/source"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

var (
	runAsOfDate      string
	runMaxUnresolved float64
	runRetries       int
)

var runCmd = &cobra.Command{
	Use:   "run [pipeline]",
	Short: "Run a transformation pipeline against an initialized source",
	Long: `Run a transformation pipeline: extract raw relations into the bronze
schema, build the silver relations, and validate the result. Every
relation is replaced as an atomic snapshot; a failed run leaves the
previous snapshots in place.

Example:
  pgedge-lakehouse run full --connection "postgres://..."
  pgedge-lakehouse run sales-analytics --as-of 1998-12-01`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runAsOfDate, "as-of", "",
		"analysis reference date, YYYY-MM-DD (default: today)")
	runCmd.Flags().Float64Var(&runMaxUnresolved, "max-unresolved", -1,
		"fraction of fact rows allowed to drop on unresolved joins")
	runCmd.Flags().IntVar(&runRetries, "retries", -1,
		"source read retries before a stage aborts")
}

// newBatchID mints a unique identifier shared by every row a run
// commits, so lineage ties a snapshot back to one pipeline execution.
func newBatchID(now time.Time) string {
	return fmt.Sprintf("batch_%s_%s",
		now.UTC().Format("20060102_150405"), uuid.NewString()[:8])
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if len(args) == 1 {
		cfg.Run.Pipeline = args[0]
	}
	if runAsOfDate != "" {
		cfg.Run.AsOfDate = runAsOfDate
	}
	if runMaxUnresolved >= 0 {
		cfg.Run.MaxUnresolvedFraction = runMaxUnresolved
	}
	if runRetries >= 0 {
		cfg.Run.Retries = runRetries
	}

	// Validate configuration
	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	p, err := pipeline.Get(cfg.Run.Pipeline)
	if err != nil {
		return err
	}

	asOf, err := cfg.AsOf()
	if err != nil {
		return err
	}

	// Connect to database
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Verify the raw source schema before any stage runs
	src := source.NewPostgres(pool, cfg.Source.Schema)
	if err := src.VerifyContract(ctx); err != nil {
		return fmt.Errorf("source schema %q: %w", cfg.Source.Schema, err)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	deps := pipeline.Deps{
		Source:                src,
		Store:                 warehouse.NewPostgresStore(pool),
		BronzeSchema:          cfg.BronzeSchema(),
		SilverSchema:          cfg.SilverSchema(),
		SourceSystem:          cfg.Source.System,
		BatchID:               newBatchID(time.Now()),
		AsOf:                  asOf,
		MaxUnresolvedFraction: cfg.Run.MaxUnresolvedFraction,
		Retries:               cfg.Run.Retries,
		Staleness:             time.Duration(cfg.Quality.FreshnessHours) * time.Hour,
	}

	logging.Info().
		Str("pipeline", p.Name).
		Str("batch_id", deps.BatchID).
		Str("catalog", cfg.CatalogName()).
		Time("as_of", asOf).
		Msg("Starting pipeline run")

	summary, runErr := p.Execute(ctx, deps)
	printSummary(summary)

	if runErr != nil {
		return fmt.Errorf("pipeline %s: %w", p.Name, runErr)
	}
	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("pipeline %s: stages failed: %v", p.Name, failed)
	}
	return nil
}

func printSummary(summary *pipeline.Summary) {
	fmt.Printf("\nPipeline: %s  (batch %s, %s)\n\n",
		summary.Pipeline, summary.BatchID, summary.Duration.Round(time.Millisecond))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Stage", "Status", "Duration", "Detail"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, st := range summary.Stages {
		detail := ""
		if st.Err != nil {
			detail = st.Err.Error()
		}
		table.Append([]string{
			st.Name,
			string(st.Status),
			st.Duration.Round(time.Millisecond).String(),
			detail,
		})
	}
	table.Render()
	fmt.Println()
}
