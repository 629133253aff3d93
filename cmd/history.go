package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/h2cf/infra/history"
	"github.com/kilianp07/h2cf/pkg/export"
)

var (
	historyDB     string
	historyPeriod string
	historyUnit   string
	historyLimit  int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analysis runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the summary of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "h2cf.db", "history database written by the sqlite sink")
	historyCmd.Flags().StringVar(&historyPeriod, "period", "", "only runs for this period (YYYY-MM)")
	historyCmd.Flags().StringVar(&historyUnit, "unit", "", "only runs that include this unit")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the full report as JSON")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.NewSQLiteStore(historyDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(cmd.Context(), history.Query{Period: historyPeriod, Unit: historyUnit, Limit: historyLimit})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tPERIOD\tHOURS\tUNITS\tRAW MEAN\tCONSTRAINED MEAN")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d/%d\t%s\t%s\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"), r.Period, r.HoursInWindow,
			r.Computed, r.Computed+r.Excluded, r.RawMean, r.ConstrainedMean)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := history.NewSQLiteStore(historyDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	rep, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if historyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return export.WriteSummary(cmd.OutOrStdout(), rep)
}
