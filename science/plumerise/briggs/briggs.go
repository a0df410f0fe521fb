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

// Package briggs calculates the rise of hot, buoyant, bent-over plumes
// as a function of downwind distance following Briggs (1971) in the
// form given by Beychok (1994).
package briggs

import (
	"fmt"
	"math"
	"strings"
)

// g is the acceleration due to gravity [m/s²].
const g = 9.81

// Policy specifies how plume rise varies with downwind distance.
type Policy int

const (
	// None disables plume rise.
	None Policy = iota
	// Constant applies the final plume rise everywhere.
	Constant
	// Distance lets the plume rise with downwind distance until it
	// reaches its final height.
	Distance
)

func (p Policy) String() string {
	switch p {
	case None:
		return "none"
	case Constant:
		return "hmax"
	case Distance:
		return "hx"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy returns the Policy named by s, which should be one of
// "none", "hmax", or "hx".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "hmax":
		return Constant, nil
	case "hx":
		return Distance, nil
	default:
		return None, fmt.Errorf("briggs: invalid plume rise policy %q; valid options are none, hmax, and hx", s)
	}
}

// Rise holds the plume rise properties of one stack for a single set
// of meteorological conditions.
type Rise struct {
	// F is the buoyancy flux parameter [m⁴/s³].
	F float64

	// XMax is the downwind distance [m] at which the plume reaches
	// its final height.
	XMax float64

	// DHMax is the final plume rise [m].
	DHMax float64

	policy Policy
	u      float64
}

// New calculates the plume rise of a stack with volumetric flow rate vs
// [m³/s] and exit temperature ts [°C] into ambient air at ta [°C] and
// wind speed u [m/s] at stack height. If the ambient air is warmer than
// the exhaust there is no rise. In calm air (u == 0) the rise is
// undefined and is taken as zero.
func New(vs, ts, ta, u float64, p Policy) (*Rise, error) {
	if p < None || p > Distance {
		return nil, fmt.Errorf("briggs: invalid plume rise policy %d", int(p))
	}
	if vs < 0 || math.IsNaN(vs) {
		return nil, fmt.Errorf("briggs: stack flow rate %g m³/s should be >= 0", vs)
	}
	r := &Rise{policy: p, u: u}
	if ta > ts {
		return r, nil
	}
	if u < 0 || math.IsNaN(u) {
		return nil, fmt.Errorf("briggs: wind speed %g m/s should be >= 0", u)
	}
	r.F = g * vs / math.Pi * (ts - ta) / (ts + 273.15)
	if r.F <= 55 {
		r.XMax = 49 * math.Pow(r.F, 0.625)
	} else {
		r.XMax = 119 * math.Pow(r.F, 0.4)
	}
	r.DHMax = r.riseAt(r.XMax)
	if math.IsNaN(r.DHMax) || math.IsInf(r.DHMax, 0) {
		r.DHMax = 0
	}
	return r, nil
}

func (r *Rise) riseAt(x float64) float64 {
	return 1.6 * math.Cbrt(r.F) * math.Pow(x, 2./3.) / r.u
}

// At returns the plume rise [m] at downwind distance x [m] according to
// the rise policy. Upwind and undefined values are zero.
func (r *Rise) At(x float64) float64 {
	var dh float64
	switch r.policy {
	case Constant:
		dh = r.DHMax
	case Distance:
		if x > r.XMax {
			dh = r.DHMax
		} else {
			dh = r.riseAt(x)
		}
	}
	if math.IsNaN(dh) || math.IsInf(dh, 0) {
		return 0
	}
	return dh
}

// Max returns the final plume rise [m].
func (r *Rise) Max() float64 { return r.DHMax }

// PlumeRise returns the plume rise [m] at each of the downwind distances
// x [m], along with the final plume rise.
func PlumeRise(x []float64, vs, ts, ta, u float64, p Policy) (dh []float64, dhMax float64, err error) {
	r, err := New(vs, ts, ta, u, p)
	if err != nil {
		return nil, 0, err
	}
	dh = make([]float64, len(x))
	for i, xx := range x {
		dh[i] = r.At(xx)
	}
	return dh, r.DHMax, nil
}
