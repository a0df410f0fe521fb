/*
Copyright © 2022 the ADDER authors.
This file is part of ADDER.

ADDER is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ADDER is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ADDER.  If not, see <http://www.gnu.org/licenses/>.
*/

package adderutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/adder"
	"github.com/spatialmodel/adder/dose"
	"github.com/spatialmodel/adder/meteo"
	"github.com/spatialmodel/adder/science/plumerise/briggs"
	"github.com/spf13/cast"
)

// GridConfig holds the receptor grid setup.
type GridConfig struct {
	Xb, Yb, Zb float64
	Nx, Ny, Nz int
}

// MeteoSetup holds the meteorological input setup.
type MeteoSetup struct {
	File       string
	Start, End time.Time
	Mast       *meteo.Mast
}

// Config holds the setup of a simulation.
type Config struct {
	Grid GridConfig

	// Source holds the stack parameters. Its EmissionRates have either
	// one value per time step or a single value for all steps.
	Source adder.Source

	// Longitude and Latitude locate the stack, if known.
	Longitude, Latitude float64

	Meteo *MeteoSetup

	Reflection       adder.Reflection
	Rise             briggs.Policy
	MinWindSpeed     float64
	InversionHeight  float64
	InversionHeights []float64

	Nuclide      string
	NuclideDir   string
	AirDensity   float64
	Buildup      *dose.BuildupTable
	DetectorFile string

	ConcentrationFile  string
	DoseFile           string
	PlotFile           string
	GroundFile         string
	GroundVariables    map[string]string
	DepositionVelocity float64
	LogFile            string

	SourceProjection string
	GridProjection   string
}

// expandPath expands environment variables in a file path.
func expandPath(f string) string { return os.ExpandEnv(f) }

// checkOutputFile returns an error if the directory of output file f
// does not exist. Empty file names are allowed and mean that the output
// is not written.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = expandPath(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("adder: the directory of output file %s doesn't exist: %v", f, err)
	}
	return f, nil
}

// checkLogFile returns logFile, or a file next to the first non-empty
// output file if logFile is empty.
func checkLogFile(logFile string, outputFiles ...string) string {
	if logFile != "" {
		return expandPath(logFile)
	}
	for _, f := range outputFiles {
		if f != "" {
			return strings.TrimSuffix(f, filepath.Ext(f)) + ".log"
		}
	}
	return "adder.log"
}

// parseTime parses a configuration time.
func parseTime(name, s string) (time.Time, error) {
	t, err := time.Parse(meteo.TimeFormat, s)
	if err != nil {
		return t, fmt.Errorf("adder: invalid %s %q: should be in the format %q", name, s, meteo.TimeFormat)
	}
	return t, nil
}

// getFloat64Slice returns the configuration variable varName as a
// slice of numbers.
func getFloat64Slice(varName string, cfg *viper.Viper) ([]float64, error) {
	var raw []interface{}
	switch v := cfg.Get(varName).(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []string:
		for _, s := range v {
			for _, ss := range strings.Split(s, ",") {
				if ss = strings.TrimSpace(ss); ss != "" {
					raw = append(raw, ss)
				}
			}
		}
	case []interface{}:
		raw = v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		for _, ss := range strings.Split(strings.Trim(v, "[]"), ",") {
			raw = append(raw, strings.TrimSpace(ss))
		}
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("adder: invalid value for %s: %v", varName, err)
		}
		return []float64{f}, nil
	}
	o := make([]float64, len(raw))
	for i, r := range raw {
		f, err := cast.ToFloat64E(r)
		if err != nil {
			return nil, fmt.Errorf("adder: invalid value for %s: %v", varName, err)
		}
		o[i] = f
	}
	return o, nil
}

// GetStringMapString returns a map[string]string from the configuration
// variable varName, which may be a map or a JSON string.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("adder: invalid value for %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("adder: invalid type for variable %s: %#v", varName, i)
	}
}

// MeteoConfig returns the meteorological input setup from cfg.
func MeteoConfig(cfg *viper.Viper) (*MeteoSetup, error) {
	m := &MeteoSetup{
		File: expandPath(cfg.GetString("Meteo.File")),
		Mast: &meteo.Mast{
			LowerHeight:     cfg.GetFloat64("Meteo.LowerHeight"),
			UpperHeight:     cfg.GetFloat64("Meteo.UpperHeight"),
			ReferenceHeight: cfg.GetFloat64("Meteo.ReferenceHeight"),
			AveragingTime:   cfg.GetFloat64("Meteo.AveragingTime"),
			Classify:        cfg.GetBool("Meteo.ClassifyStability"),
		},
	}
	if m.File == "" {
		return nil, fmt.Errorf("adder: you need to specify a meteorological input file (for example: Meteo.File=\"met20190515.txt\")")
	}
	var err error
	if m.Start, err = parseTime("Meteo.Start", cfg.GetString("Meteo.Start")); err != nil {
		return nil, err
	}
	if m.End, err = parseTime("Meteo.End", cfg.GetString("Meteo.End")); err != nil {
		return nil, err
	}
	if m.End.Before(m.Start) {
		return nil, fmt.Errorf("adder: Meteo.End (%s) is before Meteo.Start (%s)",
			m.End.Format(meteo.TimeFormat), m.Start.Format(meteo.TimeFormat))
	}
	return m, nil
}

// RunConfig returns the simulation setup from cfg.
func RunConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		Grid: GridConfig{
			Xb: cfg.GetFloat64("Grid.Xb"),
			Yb: cfg.GetFloat64("Grid.Yb"),
			Zb: cfg.GetFloat64("Grid.Zb"),
			Nx: cfg.GetInt("Grid.Nx"),
			Ny: cfg.GetInt("Grid.Ny"),
			Nz: cfg.GetInt("Grid.Nz"),
		},
		Source: adder.Source{
			Height:          cfg.GetFloat64("Source.StackHeight"),
			ExitTemperature: cfg.GetFloat64("Source.ExitTemperature"),
			FlowRate:        cfg.GetFloat64("Source.FlowRate"),
		},
		Longitude:          cfg.GetFloat64("Source.Longitude"),
		Latitude:           cfg.GetFloat64("Source.Latitude"),
		MinWindSpeed:       cfg.GetFloat64("Plume.MinWindSpeed"),
		InversionHeight:    cfg.GetFloat64("Plume.InversionHeight"),
		Nuclide:            cfg.GetString("Dose.Nuclide"),
		NuclideDir:         expandPath(cfg.GetString("Dose.NuclideDir")),
		AirDensity:         cfg.GetFloat64("Dose.AirDensity"),
		DetectorFile:       expandPath(cfg.GetString("Dose.DetectorFile")),
		DepositionVelocity: cfg.GetFloat64("Output.DepositionVelocity"),
		SourceProjection:   cfg.GetString("Projection.Source"),
		GridProjection:     cfg.GetString("Projection.Grid"),
	}
	var err error
	if c.Meteo, err = MeteoConfig(cfg); err != nil {
		return nil, err
	}
	if c.Source.EmissionRates, err = getFloat64Slice("Source.EmissionRates", cfg); err != nil {
		return nil, err
	}
	if len(c.Source.EmissionRates) == 0 {
		return nil, fmt.Errorf("adder: you need to specify the release rates (for example: Source.EmissionRates=[8.3e6, 8.3e6, 0])")
	}
	if c.InversionHeights, err = getFloat64Slice("Plume.InversionHeights", cfg); err != nil {
		return nil, err
	}
	if c.Reflection, err = adder.ParseReflection(cfg.GetString("Plume.Reflection")); err != nil {
		return nil, err
	}
	if c.Rise, err = briggs.ParsePolicy(cfg.GetString("Plume.Rise")); err != nil {
		return nil, err
	}
	if c.Buildup, err = dose.BuildupTableByName(cfg.GetString("Dose.Buildup")); err != nil {
		return nil, err
	}
	if c.ConcentrationFile, err = checkOutputFile(cfg.GetString("Output.ConcentrationFile")); err != nil {
		return nil, err
	}
	if c.DoseFile, err = checkOutputFile(cfg.GetString("Output.DoseFile")); err != nil {
		return nil, err
	}
	if c.PlotFile, err = checkOutputFile(cfg.GetString("Output.PlotFile")); err != nil {
		return nil, err
	}
	if c.GroundFile, err = checkOutputFile(cfg.GetString("Output.GroundFile")); err != nil {
		return nil, err
	}
	if c.GroundFile != "" {
		if c.GroundVariables, err = GetStringMapString("Output.GroundVariables", cfg); err != nil {
			return nil, err
		}
	}
	c.LogFile = checkLogFile(cfg.GetString("LogFile"), c.DoseFile, c.ConcentrationFile, c.GroundFile)
	return c, nil
}

// emissionRates returns the release rate of each of n time steps.
func (c *Config) emissionRates(n int) ([]float64, error) {
	q := c.Source.EmissionRates
	switch len(q) {
	case n:
		return q, nil
	case 1:
		o := make([]float64, n)
		for i := range o {
			o[i] = q[0]
		}
		return o, nil
	default:
		return nil, fmt.Errorf("adder: %d emission rates were specified for %d meteorological time steps", len(q), n)
	}
}

// inversionHeights returns the inversion height setup for n time steps.
func (c *Config) inversionHeights(n int) (adder.InversionHeights, error) {
	if len(c.InversionHeights) == 0 {
		return adder.UniformInversionHeight(c.InversionHeight), nil
	}
	if len(c.InversionHeights) != n {
		return adder.InversionHeights{}, fmt.Errorf("adder: %d inversion heights were specified for %d time steps",
			len(c.InversionHeights), n)
	}
	return adder.InversionHeightSeries(c.InversionHeights), nil
}
