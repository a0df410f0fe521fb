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

// Package adderutil contains the command-line interface and configuration
// handling for ADDER.
package adderutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/adder"
	"github.com/spatialmodel/adder/coords"
	"github.com/spatialmodel/adder/science/bultynckmalet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to ADDER.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Grid.Xb",
			usage: `
              Grid.Xb is the half-width of the receptor grid in the x
              direction [m]. The grid spans [-Xb, Xb] around the stack.`,
			defaultVal: 500.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Yb",
			usage: `
              Grid.Yb is the half-width of the receptor grid in the y
              direction [m].`,
			defaultVal: 500.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Zb",
			usage: `
              Grid.Zb is the height of the receptor grid [m].`,
			defaultVal: 200.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Nx",
			usage: `
              Grid.Nx is the number of grid points in the x direction.`,
			defaultVal: 101,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Ny",
			usage: `
              Grid.Ny is the number of grid points in the y direction.`,
			defaultVal: 101,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Nz",
			usage: `
              Grid.Nz is the number of grid points in the z direction.`,
			defaultVal: 21,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Source.StackHeight",
			usage: `
              Source.StackHeight is the physical height of the stack [m].`,
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Source.ExitTemperature",
			usage: `
              Source.ExitTemperature is the temperature of the exhaust gas [°C].`,
			defaultVal: 15.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Source.FlowRate",
			usage: `
              Source.FlowRate is the volumetric flow rate of the exhaust gas [m³/s].`,
			defaultVal: 150000.0 / 3600,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Source.EmissionRates",
			usage: `
              Source.EmissionRates is the release rate [Bq/s] during each
              meteorological time step. A single value is used for every
              time step.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Source.Longitude",
			usage: `
              Source.Longitude is the longitude of the stack, used to locate
              detectors that are specified by longitude and latitude.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Source.Latitude",
			usage: `
              Source.Latitude is the latitude of the stack.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Meteo.File",
			usage: `
              Meteo.File is the path to the meteorological observations. It
              can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.Start",
			usage: `
              Meteo.Start is the first observation time to use, in the
              format "2006-01-02 15:04:05".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.End",
			usage: `
              Meteo.End is the last observation time to use (inclusive).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.ReferenceHeight",
			usage: `
              Meteo.ReferenceHeight is the wind speed measurement height [m].`,
			defaultVal: 69.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.AveragingTime",
			usage: `
              Meteo.AveragingTime is the duration of each observation [min].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.LowerHeight",
			usage: `
              Meteo.LowerHeight is the height of the lower temperature sensor [m].`,
			defaultVal: 8.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.UpperHeight",
			usage: `
              Meteo.UpperHeight is the height of the upper temperature sensor [m].`,
			defaultVal: 114.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Meteo.ClassifyStability",
			usage: `
              Meteo.ClassifyStability specifies whether to calculate the
              Bultynck-Malet stability class from the temperature gradient
              and wind speed instead of using the class in the file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), windstatsCmd.Flags()},
		},
		{
			name: "Plume.Reflection",
			usage: `
              Plume.Reflection specifies which boundaries reflect the plume:
              "none", "ground", or "inversion" (ground and inversion layer).`,
			defaultVal: "inversion",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Plume.Rise",
			usage: `
              Plume.Rise specifies how plume rise is calculated: "none",
              "hmax" (final rise everywhere), or "hx" (rise as a function
              of downwind distance).`,
			defaultVal: "hx",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Plume.MinWindSpeed",
			usage: `
              Plume.MinWindSpeed is the lower limit of wind speeds after
              scaling to the plume height [m/s].`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Plume.InversionHeight",
			usage: `
              Plume.InversionHeight is the height of the capping inversion
              [m], used for every time step. Negative values and values
              above the default mixing height of the stability class are
              replaced by the class default.`,
			defaultVal: bultynckmalet.Unbounded,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Plume.InversionHeights",
			usage: `
              Plume.InversionHeights optionally gives the height of the
              capping inversion [m] for each time step, overriding
              Plume.InversionHeight. Its length must equal the number of
              time steps.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Dose.Nuclide",
			usage: `
              Dose.Nuclide is the released radionuclide, for example "Se-75".`,
			defaultVal: "Se-75",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), nuclideCmd.Flags()},
		},
		{
			name: "Dose.NuclideDir",
			usage: `
              Dose.NuclideDir is the directory holding Laraweb nuclide
              sheets (e.g. Se-75.lara.txt).`,
			defaultVal: "data/nuclides",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), nuclideCmd.Flags()},
		},
		{
			name: "Dose.AirDensity",
			usage: `
              Dose.AirDensity is the density of air [g/cm³].`,
			defaultVal: 0.001161,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Dose.Buildup",
			usage: `
              Dose.Buildup selects the buildup factor table: "nucl"
              (ANSI/ANS-6.4.3-1991, 15 keV to 15 MeV) or "martin"
              (Martin 2013, 100 keV to 10 MeV).`,
			defaultVal: "nucl",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Dose.DetectorFile",
			usage: `
              Dose.DetectorFile is a TOML file listing the dose-rate
              detectors and, optionally, their observations.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Output.ConcentrationFile",
			usage: `
              Output.ConcentrationFile is the NetCDF file to write the
              concentration of every time step to. It is not written if empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Output.DoseFile",
			usage: `
              Output.DoseFile is the spreadsheet (.xlsx) to write detector
              dose rates and statistics to. It is not written if empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Output.PlotFile",
			usage: `
              Output.PlotFile is the image file (.png, .svg, or .pdf) to plot
              the detector dose rates to. It is not written if empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Output.GroundFile",
			usage: `
              Output.GroundFile is the shapefile to write ground-level
              results to. It is not written if empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Output.GroundVariables",
			usage: `
              Output.GroundVariables specifies which ground-level variables
              to output, as a map of names to expressions of the variables
              TIC, Cmax, Cmean, DEP, X, and Y.`,
			defaultVal: map[string]string{"TIC": "TIC", "DEP": "DEP"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Output.DepositionVelocity",
			usage: `
              Output.DepositionVelocity is the dry deposition velocity [m/s]
              used to calculate deposited activity.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the
              logfile will be saved next to the dose output file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Projection.Source",
			usage: `
              Projection.Source is the spatial reference of geographic
              coordinates in the detector file, as a proj4 string.`,
			defaultVal: coords.WGS84,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Projection.Grid",
			usage: `
              Projection.Grid is the projected spatial reference of the
              grid, as a proj4 string. The default is Belgian Lambert 72.`,
			defaultVal: coords.Lambert72,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ADDER")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(windstatsCmd)
	Root.AddCommand(nuclideCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("adder: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "adder",
	Short: "A Gaussian plume dispersion and gamma dose rate model.",
	Long: `ADDER calculates the atmospheric dispersion of radionuclides released
from a stack with a Gaussian plume model and the resulting external gamma
dose rates at detector locations.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ADDER_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ADDER.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ADDER v%s\n", adder.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd runs a dispersion and dose rate simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run calculates the concentration field of every meteorological time
step in the configured window, the time-integrated concentration, and the
dose rates at the configured detectors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := RunConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, c)
	},
	DisableAutoGenTag: true,
}

// windstatsCmd summarizes the wind directions in a meteorological window.
var windstatsCmd = &cobra.Command{
	Use:   "windstats",
	Short: "Summarize wind directions.",
	Long: `windstats prints the mean and standard deviation of the wind
direction in the configured meteorological window, accounting for the
wrap-around at north.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := MeteoConfig(Cfg)
		if err != nil {
			return err
		}
		return WindStats(cmd, m)
	},
	DisableAutoGenTag: true,
}

// nuclideCmd prints the gamma lines of a nuclide.
var nuclideCmd = &cobra.Command{
	Use:   "nuclide",
	Short: "Print the gamma lines of a nuclide.",
	Long: `nuclide prints the gamma emission lines that are used in dose
rate calculations for the configured nuclide.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return PrintNuclide(cmd, Cfg.GetString("Dose.Nuclide"), expandPath(Cfg.GetString("Dose.NuclideDir")))
	},
	DisableAutoGenTag: true,
}
