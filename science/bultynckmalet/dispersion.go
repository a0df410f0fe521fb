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

package bultynckmalet

import (
	"fmt"
	"math"
)

// referenceAveragingTime is the averaging time [min] of the
// Bultynck-Malet experiments.
const referenceAveragingTime = 60.

// Power-law coefficients of the horizontal (sigma_y = A·x^a) and vertical
// (sigma_z = B·x^b) dispersion parameters, indexed by class.
var (
	coefA = [NumClasses]float64{0.235, 0.297, 0.418, 0.586, 0.826, 0.946, 1.043}
	coefa = [NumClasses]float64{0.796, 0.796, 0.796, 0.796, 0.796, 0.796, 0.698}
	coefB = [NumClasses]float64{0.311, 0.382, 0.520, 0.700, 0.950, 1.321, 0.819}
	coefb = [NumClasses]float64{0.711, 0.711, 0.711, 0.711, 0.711, 0.711, 0.669}
)

// Dispersion holds the dispersion parameters of one stability class,
// corrected for a meteorological averaging time (Beychok, 1994).
type Dispersion struct {
	Class Class

	// AveragingTime is the averaging time of the meteorological data [min].
	AveragingTime float64

	corr, ay, by, az, bz float64
}

// NewDispersion validates the class and averaging time [min] and returns
// the corresponding dispersion parameters.
func NewDispersion(e Class, averagingTime float64) (*Dispersion, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if !(averagingTime > 0) || math.IsInf(averagingTime, 0) {
		return nil, fmt.Errorf("bultynckmalet: averaging time %g min should be finite and > 0", averagingTime)
	}
	i := e.index()
	return &Dispersion{
		Class:         e,
		AveragingTime: averagingTime,
		corr:          (220.2 + averagingTime) / (220.2 + referenceAveragingTime),
		ay:            coefA[i],
		by:            coefa[i],
		az:            coefB[i],
		bz:            coefb[i],
	}, nil
}

// Sigma returns the horizontal and vertical dispersion
// coefficients [m] at downwind distance x [m]. Upwind distances
// (x < 0) return NaN.
func (d *Dispersion) Sigma(x float64) (sigy, sigz float64) {
	sigy = d.corr * d.ay * math.Pow(x, d.by)
	sigz = d.corr * d.az * math.Pow(x, d.bz)
	return
}

// Sigmas is a convenience function that returns the horizontal and
// vertical dispersion coefficients [m] for class e at downwind distance x [m]
// with meteorological averaging time t [min].
func Sigmas(e Class, x, t float64) (sigy, sigz float64, err error) {
	d, err := NewDispersion(e, t)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	sigy, sigz = d.Sigma(x)
	return sigy, sigz, nil
}
