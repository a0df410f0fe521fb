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

package eval

import (
	"math"
	"testing"
)

// Background-subtracted TELERAD observations [nSv/h] of the Se-75 release
// of 15 May 2019 at IMR/M03, IMR/M15, and IMR/M04, courtesy of FANC-AFCN.
var (
	telerad = [][]float64{
		{3.8684, 2.0684, 1.5684, 1.1684, -0.2316, 0.9684},
		{3.7368, 2.2368, 2.5368, 0.5368, 0.3368, 0.7368},
		{0.4053, 1.8053, -0.0947, 0.4053, 0.4053, -0.1947},
	}
	teleradSigma = []float64{1.0542, 0.9457, 0.8013}
)

func offset(x []float64, d float64) []float64 {
	o := make([]float64, len(x))
	for i, v := range x {
		o[i] = v + d
	}
	return o
}

func TestCompare(t *testing.T) {
	obs := telerad[0]
	s, err := CompareWithUncertainty(obs, offset(obs, 1), teleradSigma[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		name       string
		have, want float64
	}{
		{"N", float64(s.N), 6},
		{"MB", s.MB, 1},
		{"ME", s.ME, 1},
		{"Slope", s.Slope, 1},
		{"Intercept", s.Intercept, 1},
		{"R2", s.R2, 1},
		{"R", s.R, 1},
		{"WithinUncertainty", s.WithinUncertainty, 1},
	} {
		if math.Abs(c.have-c.want) > 1e-9 {
			t.Errorf("%s: have %g, want %g", c.name, c.have, c.want)
		}
	}

	s, err = CompareWithUncertainty(obs, offset(obs, -1.5), teleradSigma[0])
	if err != nil {
		t.Fatal(err)
	}
	if s.WithinUncertainty != 0 {
		t.Errorf("WithinUncertainty: have %g, want 0", s.WithinUncertainty)
	}
	if math.Abs(s.MB+1.5) > 1e-9 {
		t.Errorf("MB: have %g, want -1.5", s.MB)
	}
}

func TestCompareMissing(t *testing.T) {
	obs := append([]float64{math.NaN()}, telerad[1]...)
	mod := append([]float64{1000}, telerad[1]...)
	s, err := Compare(obs, mod)
	if err != nil {
		t.Fatal(err)
	}
	if s.N != 6 || s.ME != 0 || !math.IsNaN(s.WithinUncertainty) {
		t.Errorf("missing observation not skipped: %+v", s)
	}
}

func TestCompareErrors(t *testing.T) {
	if _, err := Compare([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("mismatched lengths should give an error")
	}
	if _, err := Compare([]float64{1, math.NaN()}, []float64{1, 2}); err == nil {
		t.Error("a single observation should give an error")
	}
}

func TestPool(t *testing.T) {
	o, m, err := Pool(telerad, telerad)
	if err != nil {
		t.Fatal(err)
	}
	if len(o) != 18 || len(m) != 18 || o[6] != telerad[1][0] {
		t.Errorf("pooled %d and %d values", len(o), len(m))
	}
	if _, _, err := Pool(telerad, telerad[:2]); err == nil {
		t.Error("mismatched series should give an error")
	}
	if _, _, err := Pool(telerad[:1], [][]float64{{1}}); err == nil {
		t.Error("mismatched series lengths should give an error")
	}
}
