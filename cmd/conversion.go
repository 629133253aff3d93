package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/h2cf/pkg/export"
)

var (
	convYear   int
	convMonth  int
	convOutput string
	convNoCSV  bool
)

var conversionCmd = &cobra.Command{
	Use:   "conversion",
	Short: "Report hydrogen conversion and round-trip efficiency for one month",
	RunE:  runConversion,
}

func init() {
	conversionCmd.Flags().IntVar(&convYear, "year", 0, "analysis year")
	conversionCmd.Flags().IntVar(&convMonth, "month", 0, "analysis month (1-12)")
	conversionCmd.Flags().StringVar(&convOutput, "output", "", "CSV summary path (default <export.dir>/h2_conversion_summary_<period>.csv)")
	conversionCmd.Flags().BoolVar(&convNoCSV, "no-csv", false, "skip the CSV summary")
	rootCmd.AddCommand(conversionCmd)
}

func runConversion(cmd *cobra.Command, args []string) error {
	year, month, err := period(cmd, convYear, convMonth)
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
	res, err := svc.Conversion(ds, year, month)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if convNoCSV {
		return nil
	}
	path := convOutput
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, export.ConversionFileName(res.Period))
	}
	if err := export.WriteConversionFile(path, res); err != nil {
		return fmt.Errorf("write conversion summary: %w", err)
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
