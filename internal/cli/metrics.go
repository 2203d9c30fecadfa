package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

var fromHistoryFlag bool

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the metrics gauge knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !fromHistoryFlag {
			return printMetrics(cmd.OutOrStdout(), metric.MustNewRegistry(metric.Core()))
		}

		rootDir, cfg, _, err := loadEnvironment()
		if err != nil {
			return err
		}
		db, err := storage.Open(cfg.DatabasePath(rootDir))
		if err != nil {
			return err
		}
		defer db.Close()

		stored, err := storage.LoadMetrics(db)
		if err != nil {
			return err
		}
		registry, err := metric.NewRegistry(stored)
		if err != nil {
			return err
		}
		return printMetrics(cmd.OutOrStdout(), registry)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().BoolVar(&fromHistoryFlag, "from-history", false, "List the catalogue stored in the history database")
}

func printMetrics(out io.Writer, metrics metric.Repository) error {
	for _, m := range metrics.All() {
		flags := ""
		if m.DeveloperScoped {
			flags = "  (per developer)"
		}
		if _, err := fmt.Fprintf(out, "%4d  %-32s %-14s %s%s\n", m.ID, m.Key, m.Type, m.Name, flags); err != nil {
			return err
		}
	}
	return nil
}
