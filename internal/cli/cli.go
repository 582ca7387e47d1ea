//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-lakehouse.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-lakehouse/internal/config"
	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
	"github.com/pgEdge/pgedge-lakehouse/internal/pipeline"
	"github.com/pgEdge/pgedge-lakehouse/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	env        string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-lakehouse",
		Short: "Layered batch transformation engine over TPC-H sales data",
		Long: `pgedge-lakehouse reads raw TPC-H relations from PostgreSQL and refines
them through a layered warehouse: a bronze layer of normalized snapshots
with lineage, a silver layer of business-enriched relations, and gold
analytic views computed at read time. A quality validator reports on
every committed relation after each run.

Each pipeline run replaces relation snapshots atomically, so readers
always see either the previous complete snapshot or the new one.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-lakehouse.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&env, "env", "",
		"target environment (dev, stage, prod)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(pipelinesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if env != "" {
		cfg.Env = env
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List registered pipelines",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Registered pipelines:")
		cmd.Println()
		for _, name := range pipeline.List() {
			p, err := pipeline.Get(name)
			if err != nil {
				continue
			}
			cmd.Printf("  %-20s %s\n", name, p.Description)
		}
		cmd.Println()
		cmd.Println("Use 'pgedge-lakehouse run <pipeline>' to execute one.")
	},
}
