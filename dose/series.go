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

package dose

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/adder"
	"gonum.org/v1/gonum/floats"
)

// Series is a dose-rate time series at one detector.
type Series struct {
	Detector Detector

	// Time holds the start of each time step, if known.
	Time []time.Time

	// H10 holds the ambient dose equivalent rate of each step [nSv/h].
	H10 []float64

	// Kerma holds the air kerma rate of each step [nGy/h].
	Kerma []float64

	// StepDuration is the duration of each step [s].
	StepDuration float64
}

// TimeSeries returns the dose rates at detector d for every time step of c.
func (e *Engine) TimeSeries(ctx context.Context, c *adder.Concentrations, d Detector) (*Series, error) {
	f, err := e.Factors(ctx, d)
	if err != nil {
		return nil, err
	}
	s := &Series{
		Detector:     d,
		Time:         c.Time,
		H10:          make([]float64, c.Len()),
		Kerma:        make([]float64, c.Len()),
		StepDuration: c.StepDuration,
	}
	for i, step := range c.Steps {
		if err := e.checkShape(step); err != nil {
			return nil, fmt.Errorf("dose: time step %d: %v", i, err)
		}
		s.H10[i] = floats.Dot(step.Elements, f.H10.Elements)
		s.Kerma[i] = floats.Dot(step.Elements, f.Kerma.Elements)
	}
	return s, nil
}

// Network returns the dose-rate time series for each of the detectors,
// calculating them concurrently.
func (e *Engine) Network(ctx context.Context, c *adder.Concentrations, detectors []Detector) ([]*Series, error) {
	out := make([]*Series, len(detectors))
	errs := make([]error, len(detectors))
	var wg sync.WaitGroup
	wg.Add(len(detectors))
	for i, d := range detectors {
		go func(i int, d Detector) {
			out[i], errs[i] = e.TimeSeries(ctx, c, d)
			wg.Done()
		}(i, d)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("dose: detector %s: %v", detectors[i].Name, err)
		}
	}
	return out, nil
}

// Cumulative returns the ambient dose equivalent [Sv] and air kerma [Gy]
// accumulated over the series.
func (s *Series) Cumulative() (h10, kerma *unit.Unit) {
	// nGy/h × s → Gy
	f := s.StepDuration / 3600 * 1e-9
	return unit.New(floats.Sum(s.H10)*f, Sievert), unit.New(floats.Sum(s.Kerma)*f, Gray)
}

// Max returns the largest ambient dose equivalent rate [nSv/h] in the
// series and its time step.
func (s *Series) Max() (h10 float64, step int) {
	if len(s.H10) == 0 {
		return 0, -1
	}
	step = floats.MaxIdx(s.H10)
	return s.H10[step], step
}
