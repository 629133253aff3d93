package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/h2cf/pkg/export"
)

var (
	sweepYear int
	sweepOut  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Analyse every configured month of a year",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepYear, "year", 0, "analysis year")
	sweepCmd.Flags().StringVarP(&sweepOut, "out", "o", "", "sweep result file (default <export.dir>/sweep_<year>.json)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	year, _, err := period(cmd, sweepYear, 0)
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
	res := svc.Sweep(ds, year)
	out := cmd.OutOrStdout()
	for _, m := range res.Months {
		if m.Report == nil {
			fmt.Fprintf(out, "%s: %s (%s)\n", m.Period, m.Status, m.Error)
			continue
		}
		fmt.Fprintln(out, export.Summary("Raw", m.Period, m.Report.Raw))
		fmt.Fprintln(out, export.Summary("Constrained", m.Period, m.Report.Constrained))
	}
	path := sweepOut
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, fmt.Sprintf("sweep_%04d.json", year))
	}
	if err := export.WriteJSONFile(path, res); err != nil {
		return fmt.Errorf("write sweep: %w", err)
	}
	fmt.Fprintf(out, "wrote %s (%d computed, %d failed)\n", path, res.Computed, res.Failed)
	return nil
}
