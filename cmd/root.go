package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/h2cf/app"
	"github.com/kilianp07/h2cf/config"
	"github.com/kilianp07/h2cf/infra/logger"
)

var (
	cfgPath string
	cfg     *config.Config

	flowsPath  string
	unitsPath  string
	pricesPath string
)

var rootCmd = &cobra.Command{
	Use:               "h2cf",
	Short:             "Electrolyser capacity-factor analysis",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&flowsPath, "flows", "", "flow table, overrides input.flows")
	rootCmd.PersistentFlags().StringVar(&unitsPath, "units", "", "unit table, overrides input.units")
	rootCmd.PersistentFlags().StringVar(&pricesPath, "prices", "", "price table, overrides input.prices")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flowsPath != "" {
		c.Input.Flows = flowsPath
	}
	if unitsPath != "" {
		c.Input.Units = unitsPath
	}
	if pricesPath != "" {
		c.Input.Prices = pricesPath
	}
	opts := logger.Options{Level: c.Logging.Level, Format: c.Logging.Format}
	if c.Logging.File != "" {
		w, err := logger.RotatingFile(c.Logging.File, c.Logging.MaxSizeMB, c.Logging.MaxBackups, c.Logging.MaxAgeDays)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		opts.Out = w
	}
	if err := logger.Configure(opts); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	cfg = c
	return nil
}

func newService() (*app.Service, func(), error) {
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}
	return svc, closeFn, nil
}

// period resolves the analysis year and month from flags, falling back to
// the configuration.
func period(cmd *cobra.Command, year, month int) (int, int, error) {
	if !cmd.Flags().Changed("year") {
		year = cfg.Analysis.Year
	}
	if !cmd.Flags().Changed("month") {
		month = cfg.Analysis.Month
	}
	if year == 0 {
		return 0, 0, fmt.Errorf("year is required (--year or analysis.year)")
	}
	if month == 0 && cmd.Flags().Lookup("month") != nil {
		return 0, 0, fmt.Errorf("month is required (--month or analysis.month)")
	}
	return year, month, nil
}
