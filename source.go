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
	"math"
	"time"

	"github.com/spatialmodel/adder/science/bultynckmalet"
)

// Source holds the properties of a stack release.
type Source struct {
	// Height is the stack height [m].
	Height float64

	// ExitTemperature is the temperature of the exhaust gas [°C].
	ExitTemperature float64

	// FlowRate is the volumetric exhaust gas flow rate [m³/s].
	FlowRate float64

	// EmissionRates holds the activity release rate [Bq/s] for each
	// meteorological time step.
	EmissionRates []float64
}

// Validate checks that s describes a physically meaningful release.
func (s *Source) Validate() error {
	if s.Height < 0 || !finite(s.Height) {
		return fmt.Errorf("adder: stack height %g m should be finite and >= 0", s.Height)
	}
	if s.FlowRate < 0 || !finite(s.FlowRate) {
		return fmt.Errorf("adder: stack flow rate %g m³/s should be finite and >= 0", s.FlowRate)
	}
	if !finite(s.ExitTemperature) || s.ExitTemperature <= -273.15 {
		return fmt.Errorf("adder: stack exit temperature %g °C is not valid", s.ExitTemperature)
	}
	for i, q := range s.EmissionRates {
		if q < 0 || !finite(q) {
			return fmt.Errorf("adder: emission rate %g Bq/s at step %d should be finite and >= 0", q, i)
		}
	}
	return nil
}

// Meteorology holds a time series of meteorological conditions. All
// per-step fields must have the same length.
type Meteorology struct {
	// Time holds the start of each time step. It is optional.
	Time []time.Time

	// WindDirection is the direction the wind comes from [degrees from north].
	WindDirection []float64

	// WindSpeed is measured at ReferenceHeight [m/s].
	WindSpeed []float64

	// Temperature is the ambient temperature at stack height [°C].
	Temperature []float64

	// Class is the stability class at each step.
	Class []bultynckmalet.Class

	// ReferenceHeight is the wind measurement height [m].
	ReferenceHeight float64

	// AveragingTime is the duration of each time step [min].
	AveragingTime float64
}

// Len returns the number of time steps.
func (m *Meteorology) Len() int { return len(m.WindDirection) }

// StepDuration returns the duration of one time step [s].
func (m *Meteorology) StepDuration() float64 { return m.AveragingTime * 60 }

// Validate checks the lengths and values of the meteorological data.
func (m *Meteorology) Validate() error {
	n := m.Len()
	if n == 0 {
		return fmt.Errorf("adder: no meteorological time steps")
	}
	for name, l := range map[string]int{
		"WindSpeed":   len(m.WindSpeed),
		"Temperature": len(m.Temperature),
		"Class":       len(m.Class),
	} {
		if l != n {
			return fmt.Errorf("adder: meteorology %s has length %d but WindDirection has length %d", name, l, n)
		}
	}
	if m.Time != nil && len(m.Time) != n {
		return fmt.Errorf("adder: meteorology Time has length %d but WindDirection has length %d", len(m.Time), n)
	}
	if !(m.ReferenceHeight > 0) {
		return fmt.Errorf("adder: wind reference height %g m should be > 0", m.ReferenceHeight)
	}
	if !(m.AveragingTime > 0) || !finite(m.AveragingTime) {
		return fmt.Errorf("adder: averaging time %g min should be finite and > 0", m.AveragingTime)
	}
	for i := 0; i < n; i++ {
		if !finite(m.WindDirection[i]) {
			return fmt.Errorf("adder: wind direction at step %d is not finite", i)
		}
		if m.WindSpeed[i] < 0 || !finite(m.WindSpeed[i]) {
			return fmt.Errorf("adder: wind speed %g m/s at step %d should be finite and >= 0", m.WindSpeed[i], i)
		}
		if !finite(m.Temperature[i]) {
			return fmt.Errorf("adder: temperature at step %d is not finite", i)
		}
		if err := m.Class[i].Validate(); err != nil {
			return fmt.Errorf("adder: step %d: %v", i, err)
		}
	}
	return nil
}

// InversionHeights specifies the capping inversion height [m] used in
// each time step. Use UniformInversionHeight or InversionHeightSeries to
// create one; the zero value uses the default height of each
// stability class.
type InversionHeights struct {
	uniform  float64
	series   []float64
	set      bool
	isSeries bool
}

// UniformInversionHeight uses inversion height l [m] for every time step.
func UniformInversionHeight(l float64) InversionHeights {
	return InversionHeights{uniform: l, set: true}
}

// InversionHeightSeries uses a separate inversion height [m] for each
// time step. The length of l must match the number of time steps.
func InversionHeightSeries(l []float64) InversionHeights {
	return InversionHeights{series: l, set: true, isSeries: true}
}

// check returns an error if the heights cannot be used for n time steps.
func (h InversionHeights) check(n int) error {
	if h.isSeries && len(h.series) != n {
		return fmt.Errorf("adder: %d inversion heights were specified for %d time steps", len(h.series), n)
	}
	return nil
}

// At returns the requested inversion height at step i.
func (h InversionHeights) At(i int) float64 {
	switch {
	case !h.set:
		return bultynckmalet.Unbounded
	case h.isSeries:
		return h.series[i]
	default:
		return h.uniform
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
