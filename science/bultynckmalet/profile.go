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

// windExponents are the power-law wind profile exponents
// (Kretzschmar et al., 1984), indexed by class.
var windExponents = [NumClasses]float64{0.53, 0.40, 0.33, 0.23, 0.16, 0.10, 0.33}

// WindSpeed scales wind speed uRef [m/s] measured at height hRef [m] to
// height hNew [m] using the power-law profile for class e. The result is
// never lower than uMin [m/s].
func WindSpeed(hRef, hNew, uRef float64, e Class, uMin float64) (float64, error) {
	if err := e.Validate(); err != nil {
		return math.NaN(), err
	}
	if !(hRef > 0) {
		return math.NaN(), fmt.Errorf("bultynckmalet: reference height %g m should be > 0", hRef)
	}
	if hNew < 0 || math.IsNaN(hNew) {
		return math.NaN(), fmt.Errorf("bultynckmalet: target height %g m should be >= 0", hNew)
	}
	u := uRef * math.Pow(hNew/hRef, windExponents[e.index()])
	return math.Max(u, uMin), nil
}

// mixingHeights are the default capping inversion heights [m], indexed
// by class.
var mixingHeights = [NumClasses]float64{400, 400, 800, 850, 900, 1300, 800}

// Unbounded is an inversion height that is always replaced by the
// class default in MixingHeight.
const Unbounded = 1e20

// MixingHeight returns the capping inversion height [m] to use for class e.
// Requested heights l that are negative or above the class default are
// replaced by the class default.
func MixingHeight(e Class, l float64) (float64, error) {
	if err := e.Validate(); err != nil {
		return math.NaN(), err
	}
	lbm := mixingHeights[e.index()]
	if l > lbm || l < 0 || math.IsNaN(l) {
		return lbm, nil
	}
	return l, nil
}
