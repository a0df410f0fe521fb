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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/adder/coords"
	"github.com/tealeg/xlsx"
)

func TestVersion(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "ADDER v") {
		t.Errorf("have %q", b.String())
	}
}

func TestWindStats(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "testdata/config.toml")
	Root.SetArgs([]string{"windstats"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "6 observations from 2019-05-15 15:20:00 to 2019-05-15 16:10:00") {
		t.Errorf("have %q", out)
	}
	if !strings.Contains(out, "mean 48.0°") {
		t.Errorf("mean direction: have %q", out)
	}
}

func TestPrintNuclide(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "testdata/config.toml")
	Root.SetArgs([]string{"nuclide"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "Se-75 (Selenium): 10 gamma lines") {
		t.Errorf("have %q", out)
	}
	if !strings.Contains(out, "264.6576     0.589000") {
		t.Errorf("missing 265 keV line: %q", out)
	}
}

func TestRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "adder")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "testdata/config.toml")
	Cfg.Set("Output.ConcentrationFile", filepath.Join(dir, "conc.ncf"))
	Cfg.Set("Output.DoseFile", filepath.Join(dir, "dose.xlsx"))
	Cfg.Set("Output.GroundFile", filepath.Join(dir, "ground.shp"))
	Cfg.Set("Output.PlotFile", filepath.Join(dir, "dose.png"))
	defer func() {
		for _, v := range []string{"Output.ConcentrationFile", "Output.DoseFile", "Output.GroundFile", "Output.PlotFile"} {
			Cfg.Set(v, "")
		}
	}()
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, f := range []string{"conc.ncf", "dose.xlsx", "ground.shp", "ground.dbf", "ground.prj", "dose.png", "dose.log"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	if !strings.Contains(b.String(), "simulation complete") {
		t.Errorf("log: %s", b.String())
	}

	f, err := xlsx.OpenFile(filepath.Join(dir, "dose.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	det := f.Sheet["Detectors"]
	if len(det.Rows) != 4 {
		t.Fatalf("Detectors sheet has %d rows, want 4", len(det.Rows))
	}
	max := make(map[string]float64)
	for _, row := range det.Rows[1:] {
		v, err := row.Cells[4].Float()
		if err != nil {
			t.Fatal(err)
		}
		max[row.Cells[0].Value] = v
	}
	if max["IMR-1"] <= 0 {
		t.Errorf("downwind detector should see the plume: %v", max)
	}
	if max["IMR-3"] >= max["IMR-1"] {
		t.Errorf("upwind detector should see less than downwind: %v", max)
	}
	if have := len(f.Sheet["Statistics"].Rows); have != 4 {
		t.Errorf("Statistics sheet has %d rows, want 4", have)
	}
}

func TestGroundFrame(t *testing.T) {
	c := &Config{GridProjection: coords.Lambert72}
	origin, srs := c.groundFrame(nil)
	if origin.X != 0 || origin.Y != 0 || srs != "" {
		t.Errorf("stack-relative output: have origin %v, srs %q", origin, srs)
	}

	conv, err := coords.NewConverter(coords.WGS84, coords.Lambert72)
	if err != nil {
		t.Fatal(err)
	}
	if err = conv.SetOrigin(5.0925, 51.2178); err != nil {
		t.Fatal(err)
	}
	origin, srs = c.groundFrame(conv)
	if origin != conv.Origin || srs != coords.Lambert72 {
		t.Errorf("projected output: have origin %v, srs %q", origin, srs)
	}
}
