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

// Package bultynckmalet implements the Bultynck-Malet (1972) stability
// classification and the associated Gaussian plume dispersion parameters,
// wind profile exponents, and mixing heights.
package bultynckmalet

import (
	"fmt"
	"math"
)

// Class is a Bultynck-Malet stability class. Classes run from 1 (very
// stable) to 6 (very unstable); class 7 is reserved for high wind speeds.
type Class int

// The available stability classes.
const (
	E1 Class = iota + 1
	E2
	E3
	E4
	E5
	E6
	E7
)

// NumClasses is the number of stability classes.
const NumClasses = 7

// HighWindSpeed is the wind speed at 69 m [m/s] above which the
// atmosphere is assigned class E7 regardless of the temperature gradient.
const HighWindSpeed = 11.5

// Validate returns an error if e is not one of the seven classes.
func (e Class) Validate() error {
	if e < E1 || e > E7 {
		return fmt.Errorf("bultynckmalet: stability class %d is outside of the range [1, %d]", int(e), NumClasses)
	}
	return nil
}

// index converts the 1-based class into an index into the
// coefficient tables.
func (e Class) index() int { return int(e) - 1 }

func (e Class) String() string { return fmt.Sprintf("E%d", int(e)) }

// StabilityClass calculates the stability class from the temperatures
// tUp and tDown [°C] measured at heights hUp and hDown [m] and the wind
// speed u69 [m/s] at 69 m.
//
// The gradient parameter is S = ΔT/ΔH/u69², and the class is chosen from
// λ = log10(|S|·10⁶). A gradient of exactly zero gives class E3, which is
// the limit of both the stable and unstable branches as |S| goes to zero.
func StabilityClass(tUp, tDown, hUp, hDown, u69 float64) (Class, error) {
	for _, v := range []float64{tUp, tDown, hUp, hDown, u69} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("bultynckmalet: non-finite input to stability class "+
				"(tUp=%g, tDown=%g, hUp=%g, hDown=%g, u69=%g)", tUp, tDown, hUp, hDown, u69)
		}
	}
	if hUp == hDown {
		return 0, fmt.Errorf("bultynckmalet: measurement heights must differ but both are %g m", hUp)
	}
	if u69 < 0 {
		return 0, fmt.Errorf("bultynckmalet: wind speed %g m/s should be >= 0", u69)
	}
	if u69 > HighWindSpeed {
		return E7, nil
	}
	s := (tUp - tDown) / (hUp - hDown) / (u69 * u69)
	lamb := math.Log10(math.Abs(s) * 1e6)
	switch {
	case s > 0:
		if lamb >= 2.75 {
			return E1, nil
		} else if lamb > 1.75 {
			return E2, nil
		}
		return E3, nil
	case s < 0:
		if lamb <= 2 {
			return E3, nil
		} else if lamb < 2.75 {
			return E4, nil
		} else if lamb < 3.3 {
			return E5, nil
		}
		return E6, nil
	default:
		// Either no gradient, or no wind and no gradient (0/0).
		return E3, nil
	}
}
