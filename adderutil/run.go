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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adder"
	"github.com/spatialmodel/adder/coords"
	"github.com/spatialmodel/adder/dose"
	"github.com/spatialmodel/adder/meteo"
	"github.com/spatialmodel/adder/nuclide"
	"github.com/spf13/cobra"
)

// newLogger returns a logger writing to w.
func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	}
	return l
}

// readMeteo reads the observations in the configured window.
func readMeteo(m *MeteoSetup, log logrus.FieldLogger) (meteo.Records, error) {
	all, err := meteo.ReadFile(m.File)
	if err != nil {
		return nil, err
	}
	r, err := all.Window(m.Start, m.End)
	if err != nil {
		return nil, err
	}
	mean, std, err := meteo.WindStatistics(r.Directions())
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"file":               m.File,
		"steps":              len(r),
		"mean direction [°]": fmt.Sprintf("%.1f", mean),
		"direction std [°]":  fmt.Sprintf("%.1f", std),
	}).Info("read meteorology")
	return r, nil
}

// converter returns a coordinate converter with its origin at the stack,
// or nil if the stack location is not configured.
func (c *Config) converter() (*coords.Converter, error) {
	if c.Longitude == 0 && c.Latitude == 0 {
		return nil, nil
	}
	conv, err := coords.NewConverter(c.SourceProjection, c.GridProjection)
	if err != nil {
		return nil, err
	}
	if err = conv.SetOrigin(c.Longitude, c.Latitude); err != nil {
		return nil, err
	}
	return conv, nil
}

// groundFrame returns the location of the stack and the spatial reference
// of ground-level output. Without a converter the output stays in
// stack-relative metres and has no spatial reference.
func (c *Config) groundFrame(conv *coords.Converter) (origin geom.Point, srs string) {
	if conv == nil {
		return geom.Point{}, ""
	}
	return conv.Origin, c.GridProjection
}

// Simulation returns the dispersion simulation described by c.
func (c *Config) Simulation(log logrus.FieldLogger) (*adder.Simulation, error) {
	r, err := readMeteo(c.Meteo, log)
	if err != nil {
		return nil, err
	}
	met, err := c.Meteo.Mast.Meteorology(r, c.Source.Height)
	if err != nil {
		return nil, err
	}
	g, err := adder.NewCenteredGrid(c.Grid.Xb, c.Grid.Yb, c.Grid.Zb, c.Grid.Nx, c.Grid.Ny, c.Grid.Nz)
	if err != nil {
		return nil, err
	}
	src := c.Source
	if src.EmissionRates, err = c.emissionRates(met.Len()); err != nil {
		return nil, err
	}
	inv, err := c.inversionHeights(met.Len())
	if err != nil {
		return nil, err
	}
	return &adder.Simulation{
		Grid:             g,
		Source:           &src,
		Meteorology:      met,
		MinWindSpeed:     c.MinWindSpeed,
		Reflection:       c.Reflection,
		Rise:             c.Rise,
		InversionHeights: inv,
		Log:              log,
	}, nil
}

// Run runs a simulation and writes the configured outputs.
func Run(cmd *cobra.Command, c *Config) error {
	startTime := time.Now()

	logfile, err := os.Create(c.LogFile)
	if err != nil {
		return fmt.Errorf("adder: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(cmd.OutOrStdout(), logfile))

	sim, err := c.Simulation(log)
	if err != nil {
		return err
	}
	conc, err := sim.Run()
	if err != nil {
		return err
	}

	if c.ConcentrationFile != "" {
		if err = writeConcentrations(c.ConcentrationFile, conc); err != nil {
			return err
		}
		log.WithField("file", c.ConcentrationFile).Info("wrote concentrations")
	}

	if c.DepositionVelocity > 0 {
		dep, err := conc.DepositedActivity(c.DepositionVelocity)
		if err != nil {
			return err
		}
		log.WithField("activity [Bq]", dep.Value()).Info("deposited activity")
	}

	conv, err := c.converter()
	if err != nil {
		return err
	}

	if c.GroundFile != "" {
		o, err := adder.NewOutputter(c.GroundFile, c.GroundVariables, nil)
		if err != nil {
			return err
		}
		origin, srs := c.groundFrame(conv)
		if err = o.Output(conc, c.DepositionVelocity, origin, srs); err != nil {
			return err
		}
		log.WithField("file", c.GroundFile).Info("wrote ground-level results")
	}

	if c.DetectorFile != "" {
		if err = c.doseRates(context.Background(), log, conc, conv); err != nil {
			return err
		}
	}

	log.WithField("elapsed", time.Since(startTime).String()).Info("simulation complete")
	return nil
}

// writeConcentrations writes conc to a new NetCDF file.
func writeConcentrations(path string, conc *adder.Concentrations) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("adder: creating concentration file: %v", err)
	}
	if err = conc.WriteNetCDF(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// doseRates calculates and reports the dose rates at the configured
// detectors.
func (c *Config) doseRates(ctx context.Context, log logrus.FieldLogger, conc *adder.Concentrations, conv *coords.Converter) error {
	nuc, err := nuclide.Load(c.NuclideDir, c.Nuclide)
	if err != nil {
		return err
	}
	net, err := ReadNetworkFile(c.DetectorFile)
	if err != nil {
		return err
	}
	detectors, err := net.Detectors(conv)
	if err != nil {
		return err
	}
	e, err := dose.NewEngine(conc.Grid, nuc.Lines, c.AirDensity, c.Buildup)
	if err != nil {
		return fmt.Errorf("%v (nuclide %s)", err, c.Nuclide)
	}
	e.Log = log
	log.WithFields(logrus.Fields{
		"nuclide":   nuc.Nuclide,
		"lines":     len(nuc.Lines),
		"detectors": len(detectors),
		"buildup":   c.Buildup.Name,
	}).Info("calculating dose rates")

	series, err := e.Network(ctx, conc, detectors)
	if err != nil {
		return err
	}
	for _, s := range series {
		h10, kerma := s.Cumulative()
		max, step := s.Max()
		log.WithFields(logrus.Fields{
			"detector":         s.Detector.Name,
			"max H10 [nSv/h]":  max,
			"max step":         step,
			"total H10 [Sv]":   h10.Value(),
			"total kerma [Gy]": kerma.Value(),
		}).Info("dose rates")
	}

	var stats []DetectorStatistics
	if net.HasObservations() {
		if stats, err = Compare(net, series); err != nil {
			return err
		}
		for _, s := range stats {
			log.WithFields(logrus.Fields{
				"detector": s.Name,
				"MB":       s.MB,
				"ME":       s.ME,
				"R2":       s.R2,
			}).Info("comparison with observations")
		}
	}

	if c.DoseFile != "" {
		if err = WriteReport(c.DoseFile, series, stats); err != nil {
			return err
		}
		log.WithField("file", c.DoseFile).Info("wrote dose rates")
	}
	if c.PlotFile != "" {
		if err = PlotSeries(c.PlotFile, series, net); err != nil {
			return err
		}
		log.WithField("file", c.PlotFile).Info("wrote dose rate plot")
	}
	return nil
}

// WindStats prints the wind direction statistics of the configured
// meteorological window.
func WindStats(cmd *cobra.Command, m *MeteoSetup) error {
	r, err := meteo.ReadFile(m.File)
	if err != nil {
		return err
	}
	if r, err = r.Window(m.Start, m.End); err != nil {
		return err
	}
	mean, std, err := meteo.WindStatistics(r.Directions())
	if err != nil {
		return err
	}
	cmd.Printf("%d observations from %s to %s\n", len(r),
		r[0].Time.Format(meteo.TimeFormat), r[len(r)-1].Time.Format(meteo.TimeFormat))
	cmd.Printf("wind direction: mean %.1f°, standard deviation %.1f°\n", mean, std)
	return nil
}

// PrintNuclide prints the gamma lines of nuclide name from the sheets in dir.
func PrintNuclide(cmd *cobra.Command, name, dir string) error {
	d, err := nuclide.Load(dir, name)
	if err != nil {
		return err
	}
	cmd.Printf("%s (%s): %d gamma lines\n", d.Nuclide, d.Element, len(d.Lines))
	cmd.Printf("%12s %12s\n", "Energy [keV]", "Intensity")
	for _, l := range d.Lines {
		cmd.Printf("%12.4f %12.6f\n", l.Energy, l.Intensity)
	}
	return nil
}
