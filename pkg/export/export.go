package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	"github.com/kilianp07/h2cf/core/model"
)

var unitHeader = []string{
	"unit",
	"status",
	"nominal_capacity",
	"raw_cf",
	"constrained_cf",
	"raw_energy",
	"constrained_energy",
	"active_hours_raw",
	"active_hours_constrained",
	"out_of_range",
}

var conversionHeader = []string{
	"period",
	"energy_in",
	"energy_out",
	"elec_eff",
	"fc_eff",
	"h2_energy",
	"potential_output",
	"theoretical_rt",
	"empirical_rt",
}

// WriteJSON writes the full report to w.
func WriteJSON(w io.Writer, r *capacity.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per unit. Undefined values are left empty.
func WriteCSV(w io.Writer, r *capacity.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(unitHeader); err != nil {
		return err
	}
	for _, u := range r.Units {
		rec := []string{
			u.Unit,
			string(u.Status),
			fmtNull(u.NominalCapacity),
			fmtNull(u.RawCF),
			fmtNull(u.ConstrainedCF),
			fmtFloat(u.RawEnergy),
			fmtFloat(u.ConstrainedEnergy),
			strconv.Itoa(u.ActiveHoursRaw),
			strconv.Itoa(u.ActiveHoursConstrained),
			strconv.FormatBool(u.OutOfRange),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary formats the cross-unit statistics of one series, e.g.
// "Raw CF (2020-01): Min 12.00%, Max 80.00%, Mean 40.00%".
func Summary(label string, period string, s capacity.Stats) string {
	if s.Count == 0 {
		return fmt.Sprintf("%s CF (%s): no computed units", label, period)
	}
	return fmt.Sprintf("%s CF (%s): Min %.2f%%, Max %.2f%%, Mean %.2f%%",
		label, period, s.Min.Float64*100, s.Max.Float64*100, s.Mean.Float64*100)
}

// WriteSummary prints the raw and constrained summaries followed by the
// window provenance and any warnings.
func WriteSummary(w io.Writer, r *capacity.Report) error {
	md := r.Metadata
	lines := []string{
		Summary("Raw", md.Period, r.Raw),
		Summary("Constrained", md.Period, r.Constrained),
		fmt.Sprintf("Window %s: %d hours, %d forced outage, %d price gated, %d computed, %d excluded",
			md.Period, md.HoursInWindow, md.HoursForcedOutage, md.HoursPriceGated, r.Computed, r.Excluded),
	}
	if md.UsedSyntheticPrice {
		lines = append(lines, "Prices: synthetic diurnal proxy (no price data supplied)")
	}
	if md.EmptyWindow {
		lines = append(lines, "Window is empty: capacity factors are not meaningful")
	}
	for _, wn := range r.Warnings {
		lines = append(lines, fmt.Sprintf("warning [%s] %s", wn.Kind, wn.Message))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// WriteFiles writes the report to dir in each format, named
// capacity_factors_<period>.<ext>, and returns the paths written.
func WriteFiles(dir string, formats []string, r *capacity.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, f := range formats {
		var write func(io.Writer, *capacity.Report) error
		switch f {
		case "csv":
			write = WriteCSV
		case "json":
			write = WriteJSON
		default:
			return paths, fmt.Errorf("unknown export format %s", f)
		}
		path := filepath.Join(dir, fmt.Sprintf("capacity_factors_%s.%s", r.Metadata.Period, f))
		if err := writeFile(path, func(w io.Writer) error { return write(w, r) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteConversionCSV writes the conversion metrics as a one-row table.
// Undefined values are left empty.
func WriteConversionCSV(w io.Writer, r *conversion.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(conversionHeader); err != nil {
		return err
	}
	if err := cw.Write([]string{
		r.Period,
		fmtFloat(r.EnergyIn),
		fmtFloat(r.EnergyOut),
		fmtNull(r.ElectrolyserEfficiency),
		fmtNull(r.FuelCellEfficiency),
		fmtNull(r.H2Energy),
		fmtNull(r.PotentialOutput),
		fmtNull(r.TheoreticalRoundTrip),
		fmtNull(r.EmpiricalRoundTrip),
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ConversionFileName is the default name of the conversion summary.
func ConversionFileName(period string) string {
	return fmt.Sprintf("h2_conversion_summary_%s.csv", period)
}

// WriteConversionFile writes the conversion summary to path, creating its
// directory.
func WriteConversionFile(path string, r *conversion.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return WriteConversionCSV(w, r) })
}

// WriteJSONFile writes any value as indented JSON to path.
func WriteJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fmtNull(n model.NullFloat) string {
	if !n.Valid {
		return ""
	}
	return fmtFloat(n.Float64)
}
