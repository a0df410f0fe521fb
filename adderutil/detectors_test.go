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

package adderutil

import (
	"math"
	"strings"
	"testing"

	"github.com/spatialmodel/adder/coords"
)

func TestReadNetwork(t *testing.T) {
	n, err := ReadNetworkFile("testdata/detectors.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Detector) != 3 {
		t.Fatalf("have %d detectors, want 3", len(n.Detector))
	}
	d := n.Detector[1]
	if d.Name != "IMR-2" || d.X != -320 || d.Y != -300 || d.Z != 1 || d.Sigma != 5 {
		t.Errorf("IMR-2: %+v", d)
	}
	if len(d.Observations) != 6 || d.Observations[1] != 10.4 {
		t.Errorf("IMR-2 observations: %v", d.Observations)
	}
	if len(n.Detector[2].Observations) != 0 {
		t.Errorf("IMR-3 should have no observations")
	}
	if !n.HasObservations() {
		t.Error("network should have observations")
	}

	dets, err := n.Detectors(nil)
	if err != nil {
		t.Fatal(err)
	}
	if dets[0].Name != "IMR-1" || dets[0].X != -200 || dets[0].Y != -180 {
		t.Errorf("IMR-1: %+v", dets[0])
	}
}

func TestReadNetworkErrors(t *testing.T) {
	for name, file := range map[string]string{
		"empty":     ``,
		"no name":   "[[Detector]]\nX = 1.0\n",
		"duplicate": "[[Detector]]\nName = \"a\"\n[[Detector]]\nName = \"a\"\n",
		"half geo":  "[[Detector]]\nName = \"a\"\nLon = 5.1\n",
		"syntax":    "[[Detector]\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadNetwork(strings.NewReader(file)); err == nil {
				t.Error("should be an error")
			}
		})
	}
}

func TestDetectorsGeographic(t *testing.T) {
	n, err := ReadNetwork(strings.NewReader(`
[[Detector]]
Name = "stack"
Lon = 5.0925
Lat = 51.2178
Z = 1.0

[[Detector]]
Name = "north"
Lon = 5.0925
Lat = 51.2278
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = n.Detectors(nil); err == nil {
		t.Error("geographic detectors without a converter should be an error")
	}
	conv, err := coords.NewConverter(coords.WGS84, coords.Lambert72)
	if err != nil {
		t.Fatal(err)
	}
	if err = conv.SetOrigin(5.0925, 51.2178); err != nil {
		t.Fatal(err)
	}
	dets, err := n.Detectors(conv)
	if err != nil {
		t.Fatal(err)
	}
	if math.Hypot(dets[0].X, dets[0].Y) > 1e-6 || dets[0].Z != 1 {
		t.Errorf("detector at the stack: %+v", dets[0])
	}
	if dets[1].Y < 1000 || dets[1].Y > 1200 || math.Abs(dets[1].X) > 50 {
		t.Errorf("detector 0.01° north: %+v", dets[1])
	}
	if n.HasObservations() {
		t.Error("network should not have observations")
	}
}
