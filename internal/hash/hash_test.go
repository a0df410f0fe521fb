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

package hash

import (
	"math"
	"testing"
)

type detector struct {
	Name    string
	X, Y, Z float64
}

func TestHash(t *testing.T) {
	a := Hash(&detector{Name: "M03", X: -157.2, Y: -142.8, Z: 1}, 0.001161)
	b := Hash(&detector{Name: "M03", X: -157.2, Y: -142.8, Z: 1}, 0.001161)
	if a != b {
		t.Errorf("equal values give different keys: %s != %s", a, b)
	}
	c := Hash(&detector{Name: "M03", X: -157.2, Y: -142.8, Z: 2}, 0.001161)
	if a == c {
		t.Errorf("different values give the same key %s", a)
	}
	if len(a) != 32 {
		t.Errorf("key length: have %d, want 32", len(a))
	}
	if n1, n2 := Hash(math.NaN()), Hash(math.NaN()); n1 != n2 {
		t.Errorf("NaN keys differ: %s != %s", n1, n2)
	}
}
