package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/h2cf/pkg/export"
)

var (
	analyzeYear  int
	analyzeMonth int
	analyzeNoOut bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute raw and constrained capacity factors for one month",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeYear, "year", 0, "analysis year")
	analyzeCmd.Flags().IntVar(&analyzeMonth, "month", 0, "analysis month (1-12)")
	analyzeCmd.Flags().BoolVar(&analyzeNoOut, "no-export", false, "print the summary only")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	year, month, err := period(cmd, analyzeYear, analyzeMonth)
	if err != nil {
		return err
	}
	svc, closeFn, err := newService()
	if err != nil {
		return err
	}
	defer closeFn()

	ds, err := svc.LoadDataset()
	if err != nil {
		return err
	}
	rep, err := svc.Analyze(ds, year, month)
	if err != nil {
		return err
	}
	if err := export.WriteSummary(cmd.OutOrStdout(), rep); err != nil {
		return err
	}
	if analyzeNoOut {
		return nil
	}
	paths, err := svc.Export(rep)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}
