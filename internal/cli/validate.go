package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-lakehouse/internal/db"
	"github.com/pgEdge/pgedge-lakehouse/internal/quality"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run quality checks against the committed warehouse relations",
	Long: `Run the quality validator against the currently committed bronze and
silver snapshots: row counts, freshness, referential integrity and
business-rule bounds. The command exits non-zero when any check fails.

Example:
  pgedge-lakehouse validate --connection "postgres://..." --env prod`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Quality.FreshnessHours < 1 {
		return fmt.Errorf("freshness_hours must be at least 1")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	validator := quality.New(warehouse.NewPostgresStore(pool), quality.Config{
		BronzeSchema: cfg.BronzeSchema(),
		SilverSchema: cfg.SilverSchema(),
		Staleness:    time.Duration(cfg.Quality.FreshnessHours) * time.Hour,
	})

	report := validator.Run(ctx)
	report.Render(os.Stdout)

	if !report.Passed() {
		return fmt.Errorf("%d quality checks failed", report.Failed())
	}
	return nil
}
