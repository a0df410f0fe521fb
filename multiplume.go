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

package adder

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adder/science/bultynckmalet"
	"github.com/spatialmodel/adder/science/plumerise/briggs"
	"gonum.org/v1/gonum/floats"
)

// progressInterval is the number of time steps between progress messages.
const progressInterval = 50

// Simulation holds the setup of a time-resolved dispersion calculation.
type Simulation struct {
	Grid        *Grid
	Source      *Source
	Meteorology *Meteorology

	// MinWindSpeed is the lower limit of wind speeds after height
	// scaling [m/s].
	MinWindSpeed float64

	Reflection Reflection

	// Rise specifies how plume rise is calculated.
	Rise briggs.Policy

	// InversionHeights holds the capping inversion height for each time step.
	InversionHeights InversionHeights

	// Log receives progress messages. If nil, the standard logger is used.
	Log logrus.FieldLogger
}

// Concentrations holds the result of a Simulation.
type Concentrations struct {
	Grid *Grid

	// Steps holds the concentration field [Bq/m³] of each time step.
	Steps []*sparse.DenseArray

	// TIC is the time-integrated concentration [Bq·s/m³].
	TIC *sparse.DenseArray

	// StepDuration is the duration of each time step [s].
	StepDuration float64

	// Time holds the start of each time step, if known.
	Time []time.Time
}

// Len returns the number of time steps.
func (c *Concentrations) Len() int { return len(c.Steps) }

func (s *Simulation) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (s *Simulation) validate() error {
	if s.Grid == nil || s.Source == nil || s.Meteorology == nil {
		return fmt.Errorf("adder: simulation requires a grid, a source, and meteorology")
	}
	if err := s.Source.Validate(); err != nil {
		return err
	}
	if err := s.Meteorology.Validate(); err != nil {
		return err
	}
	n := s.Meteorology.Len()
	if len(s.Source.EmissionRates) != n {
		return fmt.Errorf("adder: %d emission rates for %d meteorological time steps",
			len(s.Source.EmissionRates), n)
	}
	if s.MinWindSpeed < 0 {
		return fmt.Errorf("adder: minimum wind speed %g m/s should be >= 0", s.MinWindSpeed)
	}
	return s.InversionHeights.check(n)
}

// Run calculates the concentration field of every time step and the
// time-integrated concentration. Time steps are calculated concurrently;
// the result does not depend on the number of processors.
func (s *Simulation) Run() (*Concentrations, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	log := s.log()
	n := s.Meteorology.Len()

	log.WithFields(logrus.Fields{
		"steps":      n,
		"grid":       s.Grid.Shape(),
		"reflection": s.Reflection,
		"rise":       s.Rise,
	}).Info("starting dispersion calculation")

	steps := make([]*sparse.DenseArray, n)
	errs := make([]error, n)
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for i := pp; i < n; i += nprocs {
				if i%progressInterval == 0 {
					log.WithFields(logrus.Fields{
						"step":       i,
						"completion": fmt.Sprintf("%d%%", i*100/n),
					}).Info("dispersion progress")
				}
				steps[i], errs[i] = s.Step(i)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("adder: time step %d: %v", i, err)
		}
	}

	tic := s.Grid.Zeros()
	dt := s.Meteorology.StepDuration()
	for _, c := range steps {
		floats.AddScaled(tic.Elements, dt, c.Elements)
	}
	log.WithField("max TIC", tic.Max()).Info("dispersion calculation complete")

	return &Concentrations{
		Grid:         s.Grid,
		Steps:        steps,
		TIC:          tic,
		StepDuration: dt,
		Time:         s.Meteorology.Time,
	}, nil
}

// Step calculates the concentration field [Bq/m³] for time step i.
func (s *Simulation) Step(i int) (*sparse.DenseArray, error) {
	m := s.Meteorology
	e := m.Class[i]
	hs := s.Source.Height

	xrot, yrot := s.Grid.Rotate(m.WindDirection[i])

	us, err := bultynckmalet.WindSpeed(m.ReferenceHeight, hs, m.WindSpeed[i], e, s.MinWindSpeed)
	if err != nil {
		return nil, err
	}
	rise, err := briggs.New(s.Source.FlowRate, s.Source.ExitTemperature, m.Temperature[i], us, s.Rise)
	if err != nil {
		return nil, err
	}
	heff := make([]float64, len(xrot))
	for j, x := range xrot {
		heff[j] = hs + rise.At(x)
	}
	// With rise disabled the transport wind is taken at the stack height,
	// not at the height of the unused final rise.
	hmax := hs
	if s.Rise != briggs.None {
		hmax += rise.Max()
	}
	ueff, err := bultynckmalet.WindSpeed(m.ReferenceHeight, hmax, m.WindSpeed[i], e, s.MinWindSpeed)
	if err != nil {
		return nil, err
	}
	p := &Plume{
		WindSpeed:       ueff,
		Class:           e,
		EmissionRate:    s.Source.EmissionRates[i],
		Height:          hs,
		AveragingTime:   m.AveragingTime,
		Reflection:      s.Reflection,
		InversionHeight: s.InversionHeights.At(i),
	}
	return p.Field(s.Grid, xrot, yrot, heff)
}
