package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the directory and summarize it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("catalog"); err != nil {
			return err
		}

		cat, cleanup, err := initCatalog(ctx, cfg.Catalog)
		defer cleanup()
		if err != nil {
			return err
		}
		if _, err := cat.Load(ctx); err != nil {
			return err
		}

		s := cat.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:       %s (%s)\n", cfg.Catalog.Source, catalogLocation())
		fmt.Fprintf(out, "Entities:     %d\n", s.Entities)
		fmt.Fprintf(out, "Locatable:    %d\n", s.Locatable)
		fmt.Fprintf(out, "Unlocatable:  %d\n", s.Entities-s.Locatable)
		fmt.Fprintf(out, "Skipped:      %d\n", s.Skipped)
		fmt.Fprintf(out, "ZIP codes:    %d\n", s.DistinctZip)
		return nil
	},
}

func catalogLocation() string {
	if cfg.Catalog.Source == "postgres" {
		return cfg.Catalog.Table
	}
	return cfg.Catalog.Location
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
