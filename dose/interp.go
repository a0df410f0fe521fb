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
	"fmt"
	"math"
	"sort"
)

// bracket returns the indices of the nodes of the ascending slice xs on
// either side of x and the fractional position of x between them. If x
// falls on a node, both indices point to it. ok is false if x is outside
// of the range of xs.
func bracket(xs []float64, x float64) (i0, i1 int, frac float64, ok bool) {
	if math.IsNaN(x) || x < xs[0] || x > xs[len(xs)-1] {
		return 0, 0, 0, false
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return i, i, 0, true
	}
	return i - 1, i, (x - xs[i-1]) / (xs[i] - xs[i-1]), true
}

// lerp linearly interpolates between a and b.
func lerp(a, b, frac float64) float64 {
	if frac == 0 {
		return a
	}
	return a + (b-a)*frac
}

// interpolate returns the value of ys at x by linear interpolation
// between the nodes xs. what describes the table for error messages.
func interpolate(xs, ys []float64, x float64, what string) (float64, error) {
	i0, i1, frac, ok := bracket(xs, x)
	if !ok {
		return math.NaN(), fmt.Errorf("dose: %g is outside of the %s table range [%g, %g]",
			x, what, xs[0], xs[len(xs)-1])
	}
	return lerp(ys[i0], ys[i1], frac), nil
}
