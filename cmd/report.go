package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		day    string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render an HTML report of one day's enriched offers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			start := time.Now().UTC().Truncate(24 * time.Hour)
			if day != "" {
				start, err = time.Parse("2006-01-02", day)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
			}
			end := start.Add(24 * time.Hour)

			offers, err := app.Store.JobsBetween(cmd.Context(), start, end)
			if err != nil {
				return fmt.Errorf("load offers: %w", err)
			}
			if len(offers) == 0 {
				app.Logger.Warn("no offers found for day", zap.String("day", start.Format("2006-01-02")))
				return nil
			}

			path, err := report.New(outDir, app.Logger).Generate(offers)
			if err != nil {
				return fmt.Errorf("generate report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "UTC day to report on, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&outDir, "out", "reports", "output directory")
	return cmd
}
