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

package meteo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WindStatistics returns the mean and sample standard deviation [°] of
// the wind directions wd [°], taking into account that directions wrap
// around at 360°. Directions are split into the half circles (0, 180] and
// (180, 360); when the means of the two halves are more than 180° apart,
// the upper half is shifted by -360° before the statistics are
// calculated. A single direction has a standard deviation of zero.
func WindStatistics(wd []float64) (mean, std float64, err error) {
	if len(wd) == 0 {
		return 0, 0, fmt.Errorf("meteo: no wind directions")
	}
	var lower, upper []float64
	for _, d := range wd {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, 0, fmt.Errorf("meteo: invalid wind direction %g", d)
		}
		if d <= 180 {
			lower = append(lower, d)
		} else {
			upper = append(upper, d)
		}
	}
	n := float64(len(wd))
	n2 := float64(len(upper))
	a1, a2 := floats.Sum(lower), floats.Sum(upper)
	s1, s2 := floats.Dot(lower, lower), floats.Dot(upper, upper)

	var variance float64
	switch {
	case len(upper) == 0 || len(lower) == 0 || a2/n2-a1/float64(len(lower)) <= 180:
		mean = (a1 + a2) / n
		variance = s1 + s2 - mean*mean*n
	default:
		mean = (a1 + a2 - n2*360) / n
		variance = s1 + s2 - mean*mean*n + n2*360*(360-2*a2/n2)
		if mean < 0 {
			mean += 360
		}
	}
	if len(wd) == 1 {
		return mean, 0, nil
	}
	// Rounding can make the variance of identical values slightly negative.
	return mean, math.Sqrt(math.Max(variance, 0) / (n - 1)), nil
}
