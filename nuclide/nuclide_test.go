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

package nuclide

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/adder/dose"
)

func TestLoad(t *testing.T) {
	d, err := Load("testdata", "Se-75")
	if err != nil {
		t.Fatal(err)
	}
	if d.Nuclide != "Se-75" || d.Element != "Selenium" {
		t.Errorf("nuclide %q, element %q", d.Nuclide, d.Element)
	}
	if d.Metadata["Z"] != "34" {
		t.Errorf("Z: have %q, want 34", d.Metadata["Z"])
	}
	gammas := [][2]float64{
		{24.3, 0.0054}, {66.0518, 1.112}, {96.734, 3.42}, {121.1155, 17.2},
		{136.0001, 58.2}, {198.606, 1.48}, {264.6576, 58.9}, {279.5422, 24.99},
		{303.9236, 1.316}, {400.6572, 11.47},
	}
	want := make([]dose.Line, len(gammas))
	for i, g := range gammas {
		want[i] = dose.Line{Energy: g[0], Intensity: g[1] / 100}
	}
	if !reflect.DeepEqual(d.Lines, want) {
		t.Errorf("lines:\n%s", pretty.Diff(d.Lines, want))
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name, file string
	}{
		{name: "Se-75", file: "Se-75.lara.txt"},
		{name: "Tc-99", file: "Tc-99.lara.txt"},
		{name: "Tc-99m", file: "Tc-99m.lara.txt"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path, err := Find("testdata", test.name)
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join("testdata", test.file); path != want {
				t.Errorf("have %s, want %s", path, want)
			}
		})
	}
	for _, name := range []string{"Se-7", "Cs-137", "Tc-9"} {
		if _, err := Find("testdata", name); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: have error %v, want ErrNotFound", name, err)
		}
	}
}

func TestMetastable(t *testing.T) {
	ground, err := Load("testdata", "Tc-99")
	if err != nil {
		t.Fatal(err)
	}
	if len(ground.Lines) != 1 || ground.Lines[0].Energy != 89.5 {
		t.Errorf("Tc-99 lines: %v", ground.Lines)
	}
	meta, err := Load("testdata", "Tc-99m")
	if err != nil {
		t.Fatal(err)
	}
	if len(meta.Lines) != 2 || meta.Lines[0].Energy != 140.511 || math.Abs(meta.Lines[0].Intensity-0.885) > 1e-12 {
		t.Errorf("Tc-99m lines: %v", meta.Lines)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, sheet string
	}{
		{name: "no table", sheet: "Nuclide ; Xx-1\n"},
		{name: "no header", sheet: "Nuclide ; Xx-1\n----------\n"},
		{name: "missing column", sheet: "----------\nEnergy (keV) ; Type\n1 ; g\n"},
		{name: "bad energy", sheet: "----------\nEnergy (keV) ; Intensity (%) ; Type\nx ; 1 ; g\n"},
		{name: "bad intensity", sheet: "----------\nEnergy (keV) ; Intensity (%) ; Type\n1 ; ; g\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(test.sheet)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
