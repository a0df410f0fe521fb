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

// Package eval compares modelled dose-rate time series with observations.
package eval

import (
	"fmt"
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/atmos/evalstats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarizes the agreement between observed and modelled values.
type Statistics struct {
	// N is the number of observation/model pairs.
	N int

	// MB and ME are the mean bias and mean error, in the units of the data.
	MB, ME float64

	// MFB and MFE are the mean fractional bias and error.
	MFB, MFE float64

	// MR is the mean ratio of modelled to observed values.
	MR float64

	// Slope, Intercept, and R2 describe the linear regression of the
	// modelled values on the observations.
	Slope, Intercept, R2 float64

	// R is the Pearson correlation coefficient.
	R float64

	// WithinUncertainty is the fraction of pairs where the model is within
	// the measurement uncertainty of the observation. It is NaN if no
	// uncertainty was given.
	WithinUncertainty float64
}

// Compare calculates statistics for the observations obs and the
// corresponding model values mod. Pairs where the observation is NaN are
// skipped.
func Compare(obs, mod []float64) (*Statistics, error) {
	return CompareWithUncertainty(obs, mod, math.NaN())
}

// CompareWithUncertainty is like Compare but additionally counts the
// model values that fall within sigma of the observations.
func CompareWithUncertainty(obs, mod []float64, sigma float64) (*Statistics, error) {
	if len(obs) != len(mod) {
		return nil, fmt.Errorf("eval: %d observations but %d model values", len(obs), len(mod))
	}
	o := make([]float64, 0, len(obs))
	m := make([]float64, 0, len(mod))
	for i, v := range obs {
		if math.IsNaN(v) {
			continue
		}
		o = append(o, v)
		m = append(m, mod[i])
	}
	if len(o) < 2 {
		return nil, fmt.Errorf("eval: need at least 2 observations, have %d", len(o))
	}
	s := &Statistics{
		N:   len(o),
		MB:  evalstats.MB(o, m),
		ME:  evalstats.ME(o, m),
		MFB: evalstats.MFB(o, m),
		MFE: evalstats.MFE(o, m),
		MR:  evalstats.MR(o, m),
		R:   stat.Correlation(o, m, nil),

		WithinUncertainty: math.NaN(),
	}
	s.Slope, s.Intercept, s.R2, _, _, _ = stats.LinearRegression(o, m)
	if !math.IsNaN(sigma) {
		var n int
		for i, v := range o {
			if math.Abs(m[i]-v) <= sigma {
				n++
			}
		}
		s.WithinUncertainty = float64(n) / float64(len(o))
	}
	return s, nil
}

// Pool concatenates the series of several detectors into single
// observation and model slices, for network-wide statistics.
func Pool(obs, mod [][]float64) (o, m []float64, err error) {
	if len(obs) != len(mod) {
		return nil, nil, fmt.Errorf("eval: %d observed series but %d modelled series", len(obs), len(mod))
	}
	for i := range obs {
		if len(obs[i]) != len(mod[i]) {
			return nil, nil, fmt.Errorf("eval: series %d has %d observations but %d model values",
				i, len(obs[i]), len(mod[i]))
		}
		o = append(o, obs[i]...)
		m = append(m, mod[i]...)
	}
	return o, m, nil
}
