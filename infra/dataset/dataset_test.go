package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowsCSV = `snapshot,DE0 H2 Electrolysis,DE0 H2 Fuel Cell
2020-01-01 00:00:00,80,-10
2020-01-01 01:00:00,60.5,0
2020-01-01 02:00:00,0,-12
`

const unitsCSV = `Link,bus0,bus1,carrier,p_nom,p_nom_opt,efficiency
DE0 H2 Electrolysis,DE0,DE0 H2,H2 Electrolysis,0,100,0.7
DE0 H2 Fuel Cell,DE0 H2,DE0,H2 Fuel Cell,0,,
DE0 pipeline,DE0 H2,DE1 H2,H2 pipeline,0,250,1
`

func TestReadFlows(t *testing.T) {
	fs, err := ReadFlows("flows.csv", strings.NewReader(flowsCSV))
	require.NoError(t, err)
	require.Equal(t, 3, fs.Len())
	assert.Equal(t, time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC), fs.Timestamps[1])
	assert.Equal(t, []float64{80, 60.5, 0}, fs.Flows["DE0 H2 Electrolysis"])
	assert.Equal(t, []float64{-10, 0, -12}, fs.Flows["DE0 H2 Fuel Cell"])
	assert.NoError(t, fs.Validate())
}

func TestReadUnits(t *testing.T) {
	units, err := ReadUnits("links.csv", strings.NewReader(unitsCSV))
	require.NoError(t, err)
	require.Len(t, units, 3)
	el := units[0]
	assert.Equal(t, "DE0 H2 Electrolysis", el.ID)
	assert.Equal(t, "H2 Electrolysis", el.Carrier)
	assert.Equal(t, 100.0, el.NominalCapacity.Float64)
	assert.Equal(t, 0.7, el.Efficiency.Float64)
	fc := units[1]
	assert.False(t, fc.NominalCapacity.Valid)
	assert.False(t, fc.Efficiency.Valid)
}

func TestReadUnitsPNomFallback(t *testing.T) {
	data := "name,carrier,p_nom\nel,electrolysis,40\n"
	units, err := ReadUnits("links.csv", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40.0, units[0].NominalCapacity.Float64)
	assert.False(t, units[0].Efficiency.Valid)
}

func TestReadPrices(t *testing.T) {
	data := "snapshot,DE0,FR0\n2020-01-01T00:00:00Z,55,40\n2020-01-01T01:00:00Z,45,70\n"
	p, err := ReadPrices("prices.csv", strings.NewReader(data), "FR0")
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 70}, p.Prices)

	_, err = ReadPrices("prices.csv", strings.NewReader(data), "")
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = ReadPrices("prices.csv", strings.NewReader(data), "IT0")
	assert.True(t, errors.Is(err, ErrMalformed))

	single := "snapshot,price\n2020-01-01 00:00,30\n"
	p, err = ReadPrices("prices.csv", strings.NewReader(single), "")
	require.NoError(t, err)
	assert.Equal(t, []float64{30}, p.Prices)
}

func TestMalformedInputs(t *testing.T) {
	tests := map[string]func() error{
		"empty flows": func() error {
			_, err := ReadFlows("f.csv", strings.NewReader(""))
			return err
		},
		"bad timestamp": func() error {
			_, err := ReadFlows("f.csv", strings.NewReader("snapshot,a\nyesterday,1\n"))
			return err
		},
		"bad number": func() error {
			_, err := ReadFlows("f.csv", strings.NewReader("snapshot,a\n2020-01-01 00:00:00,x\n"))
			return err
		},
		"empty flow cell": func() error {
			_, err := ReadFlows("f.csv", strings.NewReader("snapshot,a\n2020-01-01 00:00:00,\n"))
			return err
		},
		"ragged row": func() error {
			_, err := ReadFlows("f.csv", strings.NewReader("snapshot,a\n2020-01-01 00:00:00,1,2\n"))
			return err
		},
		"duplicate column": func() error {
			_, err := ReadFlows("f.csv", strings.NewReader("snapshot,a,a\n2020-01-01 00:00:00,1,2\n"))
			return err
		},
		"units without carrier": func() error {
			_, err := ReadUnits("u.csv", strings.NewReader("name,p_nom_opt\na,1\n"))
			return err
		},
		"units without capacity": func() error {
			_, err := ReadUnits("u.csv", strings.NewReader("name,carrier\na,x\n"))
			return err
		},
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), err.Error())
		})
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2020, 5, 1, 13, 0, 0, 0, time.UTC)
	for _, s := range []string{"2020-05-01T13:00:00Z", "2020-05-01 13:00:00", "2020-05-01T13:00:00", "2020-05-01 13:00", "2020-05-01T15:00:00+02:00"} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
		return p
	}
	ds, err := Load(Files{
		Flows:  write("p0.csv", flowsCSV),
		Units:  write("links.csv", unitsCSV),
		Prices: write("prices.csv", "snapshot,DE0\n2020-01-01 00:00:00,60\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Flows.Len())
	assert.Len(t, ds.Units, 3)
	require.NotNil(t, ds.Prices)

	ds, err = Load(Files{Flows: filepath.Join(dir, "p0.csv"), Units: filepath.Join(dir, "links.csv")})
	require.NoError(t, err)
	assert.Nil(t, ds.Prices)

	_, err = Load(Files{Flows: filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}
