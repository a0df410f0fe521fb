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

package coords

import (
	"math"
	"testing"
)

func TestLambert72(t *testing.T) {
	c, err := NewConverter(WGS84, Lambert72)
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.Project(4.367486666666666, 50.8)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.X-150000) > 500 {
		t.Errorf("central meridian: x = %g, want about 150000", p.X)
	}
	if p.Y < 150000 || p.Y > 200000 {
		t.Errorf("Brussels: y = %g, want between 150000 and 200000", p.Y)
	}
}

func TestRelative(t *testing.T) {
	c, err := NewConverter(WGS84, Lambert72)
	if err != nil {
		t.Fatal(err)
	}
	const lon, lat = 5.0947, 51.2180
	if err = c.SetOrigin(lon, lat); err != nil {
		t.Fatal(err)
	}
	o, err := c.Relative(lon, lat)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(o.X) > 1e-6 || math.Abs(o.Y) > 1e-6 {
		t.Errorf("origin: have %v, want (0, 0)", o)
	}

	east, err := c.Relative(lon+0.01, lat)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.01 * math.Pi / 180 * 6378137 * math.Cos(lat*math.Pi/180)
	d := math.Hypot(east.X, east.Y)
	if math.Abs(d-want)/want > 0.01 {
		t.Errorf("0.01° east: have %g m, want %g m", d, want)
	}
	if east.X <= 0 {
		t.Errorf("eastward point should have x > 0, have %g", east.X)
	}

	north, err := c.Relative(lon, lat+0.01)
	if err != nil {
		t.Fatal(err)
	}
	if north.Y < 1000 || north.Y > 1200 {
		t.Errorf("0.01° north: have y = %g m, want about 1113", north.Y)
	}
}

func TestNewConverterError(t *testing.T) {
	if _, err := NewConverter("not a projection", Lambert72); err == nil {
		t.Error("invalid projection should give an error")
	}
}
