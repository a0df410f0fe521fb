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

package adder

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/adder/science/bultynckmalet"
	"github.com/spatialmodel/adder/science/plumerise/briggs"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance {
		return true
	}
	return false
}

func TestNewCenteredGrid(t *testing.T) {
	g, err := NewCenteredGrid(500, 500, 200, 101, 101, 21)
	if err != nil {
		t.Fatal(err)
	}
	if g.Dx != 10 || g.Dy != 10 || g.Dz != 10 {
		t.Errorf("spacing: want (10, 10, 10), got (%g, %g, %g)", g.Dx, g.Dy, g.Dz)
	}
	if g.X[0] != -500 || g.X[100] != 500 || g.Z[0] != 0 || g.Z[20] != 200 {
		t.Errorf("bad axis limits: x=[%g, %g], z=[%g, %g]", g.X[0], g.X[100], g.Z[0], g.Z[20])
	}
	if g.Len() != 101*101*21 {
		t.Errorf("want %d points, got %d", 101*101*21, g.Len())
	}
	if i := g.Index(1, 2, 3); i != (1*101+2)*21+3 {
		t.Errorf("index: got %d", i)
	}

	g, err = NewCenteredGrid(5, 5, 7, 1, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if g.Dx != 1 || g.X[0] != 5 || g.Dz != 1 || g.Z[0] != 7 {
		t.Errorf("single point axes: x=%v dx=%g z=%v dz=%g", g.X, g.Dx, g.Z, g.Dz)
	}
	if _, err = NewCenteredGrid(5, 5, 7, 0, 3, 1); err == nil {
		t.Error("zero points should return an error")
	}
}

func TestRotate(t *testing.T) {
	g, err := NewCenteredGrid(200, 200, 10, 5, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Point (i=1, j=0) is (-100, -200).
	wd, r := WindDirectionTo(-100, -200)
	if wd < 0 || wd >= 360 {
		t.Errorf("wind direction %g out of range", wd)
	}
	xrot, yrot := g.Rotate(wd)
	col := 1*len(g.Y) + 0
	if different(xrot[col], r, 1e-12) {
		t.Errorf("downwind distance: want %g, got %g", r, xrot[col])
	}
	if math.Abs(yrot[col]) > 1e-9 {
		t.Errorf("crosswind distance: want 0, got %g", yrot[col])
	}
	// Wind from the north carries the plume south.
	xrot, yrot = g.Rotate(0)
	col = 2*len(g.Y) + 0 // (0, -200)
	if different(xrot[col], 200, 1e-12) || math.Abs(yrot[col]) > 1e-9 {
		t.Errorf("north wind: want (200, 0), got (%g, %g)", xrot[col], yrot[col])
	}
}

func TestPlumeScenario(t *testing.T) {
	p := &Plume{
		WindSpeed:     5,
		Class:         bultynckmalet.E3,
		EmissionRate:  1e6,
		Height:        20,
		AveragingTime: 10,
		Reflection:    GroundReflection,
	}
	g, err := NewCenteredGrid(50, 50, 20, 11, 11, 5)
	if err != nil {
		t.Fatal(err)
	}
	xrot, yrot := g.Rotate(270) // Wind from the west: plume along +x.
	c, err := p.Field(g, xrot, yrot, nil)
	if err != nil {
		t.Fatal(err)
	}
	center := c.Get(6, 5, 0) // (10, 0, 0)
	if !(center > 0) || math.IsInf(center, 0) {
		t.Errorf("c(10, 0, 0) should be positive and finite, got %g", center)
	}
	for _, j := range []int{0, 10} { // y = ±50
		if edge := c.Get(6, j, 0); !(edge < center/100) {
			t.Errorf("c(10, %g, 0) = %g should be < %g", g.Y[j], edge, center/100)
		}
	}
	direct, err := p.Concentration(10, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if different(direct, center, 1e-9) {
		t.Errorf("point and field evaluations differ: %g vs %g", direct, center)
	}
	for _, v := range c.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			t.Fatalf("invalid concentration %g", v)
		}
	}
}

func TestReflection(t *testing.T) {
	p := &Plume{
		WindSpeed:     3,
		Class:         bultynckmalet.E4,
		EmissionRate:  1e6,
		AveragingTime: 10,
	}
	const x, y = 300., 12.
	sigy, sigz, err := bultynckmalet.Sigmas(p.Class, x, p.AveragingTime)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("unreflected", func(t *testing.T) {
		p := *p
		p.Reflection = NoReflection
		p.Height = 0
		const z = 7.
		c, err := p.Concentration(x, y, z)
		if err != nil {
			t.Fatal(err)
		}
		want := p.EmissionRate / (2 * math.Pi * p.WindSpeed * sigy * sigz) *
			math.Exp(-y*y/(2*sigy*sigy)) * math.Exp(-z*z/(2*sigz*sigz))
		if different(c, want, 1e-12) {
			t.Errorf("want %g, got %g", want, c)
		}
	})
	t.Run("ground doubles", func(t *testing.T) {
		p := *p
		p.Height = 40
		p.Reflection = NoReflection
		c0, err := p.Concentration(x, y, 0)
		if err != nil {
			t.Fatal(err)
		}
		p.Reflection = GroundReflection
		c1, err := p.Concentration(x, y, 0)
		if err != nil {
			t.Fatal(err)
		}
		if different(c1, 2*c0, 1e-12) {
			t.Errorf("want %g, got %g", 2*c0, c1)
		}
	})
	t.Run("inversion adds", func(t *testing.T) {
		p := *p
		p.Height = 40
		p.Reflection = GroundReflection
		cg, err := p.Concentration(3000, 0, 100)
		if err != nil {
			t.Fatal(err)
		}
		p.Reflection = InversionReflection
		p.InversionHeight = 200
		ci, err := p.Concentration(3000, 0, 100)
		if err != nil {
			t.Fatal(err)
		}
		if !(ci > cg) {
			t.Errorf("inversion reflection should increase concentration: %g <= %g", ci, cg)
		}

		const xx, z, h, l = 3000., 100., 40., 200.
		sy, sz, err := bultynckmalet.Sigmas(p.Class, xx, p.AveragingTime)
		if err != nil {
			t.Fatal(err)
		}
		gz := func(dz float64) float64 { return math.Exp(-dz * dz / (2 * sz * sz)) }
		v := gz(z-h) + gz(z+h)
		for m := 1.; m <= 10; m++ {
			v += gz(z-h-2*m*l) + gz(z+h+2*m*l) + gz(z+h-2*m*l) + gz(z-h+2*m*l)
		}
		want := p.EmissionRate / (2 * math.Pi * p.WindSpeed * sy * sz) * v
		if different(ci, want, 1e-12) {
			t.Errorf("inversion series: want %g, got %g", want, ci)
		}
	})
	t.Run("undefined", func(t *testing.T) {
		for _, x := range []float64{-100, 0} {
			c, err := p.Concentration(x, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if c != 0 {
				t.Errorf("x=%g: want 0, got %g", x, c)
			}
		}
	})
}

func TestParseReflection(t *testing.T) {
	for _, r := range []Reflection{NoReflection, GroundReflection, InversionReflection} {
		rr, err := ParseReflection(r.String())
		if err != nil {
			t.Fatal(err)
		}
		if rr != r {
			t.Errorf("want %v, got %v", r, rr)
		}
	}
	if _, err := ParseReflection("ceiling"); err == nil {
		t.Error("invalid reflection should return an error")
	}
}

func TestSimulation(t *testing.T) {
	s := SimulationTestData()
	c, err := s.Run()
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 6 {
		t.Fatalf("want 6 steps, got %d", c.Len())
	}
	if c.StepDuration != 600 {
		t.Errorf("step duration: want 600, got %g", c.StepDuration)
	}
	for i := 3; i < 6; i++ {
		if c.Steps[i].Sum() != 0 {
			t.Errorf("step %d has no emissions but nonzero concentrations", i)
		}
	}
	if !(c.Steps[0].Max() > 0) {
		t.Errorf("step 0 should have positive concentrations")
	}
	// Compare to serial evaluation.
	for i := 0; i < c.Len(); i++ {
		want, err := s.Step(i)
		if err != nil {
			t.Fatal(err)
		}
		for j, v := range want.Elements {
			if c.Steps[i].Elements[j] != v {
				t.Fatalf("step %d element %d: want %g, got %g", i, j, v, c.Steps[i].Elements[j])
			}
		}
	}
	var ticSum float64
	for _, st := range c.Steps {
		ticSum += st.Sum() * c.StepDuration
	}
	if different(c.TIC.Sum(), ticSum, 1e-12) {
		t.Errorf("TIC: want %g, got %g", ticSum, c.TIC.Sum())
	}
}

func TestStepWindProfile(t *testing.T) {
	s := SimulationTestData()
	s.Source.ExitTemperature = 80
	m := s.Meteorology
	const i = 0
	hs := s.Source.Height

	us, err := bultynckmalet.WindSpeed(m.ReferenceHeight, hs, m.WindSpeed[i], m.Class[i], s.MinWindSpeed)
	if err != nil {
		t.Fatal(err)
	}
	rise, err := briggs.New(s.Source.FlowRate, s.Source.ExitTemperature, m.Temperature[i], us, s.Rise)
	if err != nil {
		t.Fatal(err)
	}
	if !(rise.Max() > 0) {
		t.Fatalf("test case should have plume rise")
	}
	ueff, err := bultynckmalet.WindSpeed(m.ReferenceHeight, hs+rise.Max(), m.WindSpeed[i], m.Class[i], s.MinWindSpeed)
	if err != nil {
		t.Fatal(err)
	}
	if !(ueff > us) {
		t.Fatalf("transport wind %g should exceed stack-height wind %g", ueff, us)
	}

	xrot, yrot := s.Grid.Rotate(m.WindDirection[i])
	heff := make([]float64, len(xrot))
	for j, x := range xrot {
		heff[j] = hs + rise.At(x)
	}
	field := func(u float64, heff []float64) []float64 {
		p := &Plume{
			WindSpeed:       u,
			Class:           m.Class[i],
			EmissionRate:    s.Source.EmissionRates[i],
			Height:          hs,
			AveragingTime:   m.AveragingTime,
			Reflection:      s.Reflection,
			InversionHeight: s.InversionHeights.At(i),
		}
		c, err := p.Field(s.Grid, xrot, yrot, heff)
		if err != nil {
			t.Fatal(err)
		}
		return c.Elements
	}
	want := field(ueff, heff)

	have, err := s.Step(i)
	if err != nil {
		t.Fatal(err)
	}
	for j, v := range want {
		if have.Elements[j] != v && different(have.Elements[j], v, 1e-12) {
			t.Fatalf("element %d: want %g, got %g", j, v, have.Elements[j])
		}
	}

	// The hand-built field must be sensitive to both passes.
	sum := func(x []float64) (v float64) {
		for _, e := range x {
			v += e
		}
		return v
	}
	if sum(field(us, heff)) == sum(want) {
		t.Error("stack-height wind should give a different field")
	}
	if sum(field(ueff, nil)) == sum(want) {
		t.Error("a constant release height should give a different field")
	}
}

func TestSimulationCalm(t *testing.T) {
	t.Run("calm step", func(t *testing.T) {
		s := SimulationTestData()
		s.Source.ExitTemperature = 80
		s.MinWindSpeed = 0
		s.Meteorology.WindSpeed[1] = 0
		c, err := s.Run()
		if err != nil {
			t.Fatal(err)
		}
		if v := c.Steps[1].Sum(); v != 0 {
			t.Errorf("calm step: want zero field, got sum %g", v)
		}
		if !(c.Steps[0].Max() > 0) {
			t.Error("step 0 should have positive concentrations")
		}
		if v := c.TIC.Sum(); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("TIC should be finite, got %g", v)
		}
	})
	t.Run("ground-level stack", func(t *testing.T) {
		for _, ts := range []float64{15, 80} {
			s := SimulationTestData()
			s.Source.Height = 0
			s.Source.ExitTemperature = ts
			s.MinWindSpeed = 0
			c, err := s.Run()
			if err != nil {
				t.Fatalf("exit temperature %g: %v", ts, err)
			}
			if v := c.TIC.Sum(); math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("exit temperature %g: TIC should be finite, got %g", ts, v)
			}
		}
	})
}

func TestSimulationValidation(t *testing.T) {
	t.Run("inversion heights", func(t *testing.T) {
		s := SimulationTestData()
		s.InversionHeights = InversionHeightSeries([]float64{500, 500})
		if _, err := s.Run(); err == nil {
			t.Error("mismatched inversion heights should return an error")
		}
		s.InversionHeights = InversionHeightSeries([]float64{500, 500, 600, 600, 700, 700})
		if _, err := s.Run(); err != nil {
			t.Error(err)
		}
	})
	t.Run("emission rates", func(t *testing.T) {
		s := SimulationTestData()
		s.Source.EmissionRates = s.Source.EmissionRates[1:]
		if _, err := s.Run(); err == nil {
			t.Error("mismatched emission rates should return an error")
		}
	})
	t.Run("class", func(t *testing.T) {
		s := SimulationTestData()
		s.Meteorology.Class[2] = 9
		if _, err := s.Run(); err == nil {
			t.Error("invalid stability class should return an error")
		}
	})
}

func TestInversionHeights(t *testing.T) {
	s := SimulationTestData()
	s.Reflection = InversionReflection
	s.InversionHeights = UniformInversionHeight(100)
	low, err := s.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	s.InversionHeights = InversionHeights{}
	high, err := s.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	if !(low.Sum() > high.Sum()) {
		t.Errorf("a lower inversion should trap more material: %g <= %g", low.Sum(), high.Sum())
	}
}

func TestPlumeRiseLowersGroundConcentration(t *testing.T) {
	s := SimulationTestData()
	s.Meteorology.Temperature = []float64{5, 5, 5, 5, 5, 5}
	s.Source.ExitTemperature = 80
	s.Rise = briggs.None
	flat, err := s.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	s.Rise = briggs.Constant
	risen, err := s.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	g := s.Grid
	if !(g.ground(risen).Max() < g.ground(flat).Max()) {
		t.Errorf("plume rise should lower the maximum ground-level concentration")
	}
}

func TestDeposition(t *testing.T) {
	c, err := SimulationTestData().Run()
	if err != nil {
		t.Fatal(err)
	}
	const vdep = 0.002
	dep, err := c.Deposition(vdep)
	if err != nil {
		t.Fatal(err)
	}
	if dep.Shape[0] != 41 || dep.Shape[1] != 41 || len(dep.Shape) != 2 {
		t.Fatalf("bad deposition shape %v", dep.Shape)
	}
	if want := vdep * c.TIC.Get(10, 12, 0); different(dep.Get(10, 12), want, 1e-12) {
		t.Errorf("want %g, got %g", want, dep.Get(10, 12))
	}
	total, err := c.DepositedActivity(vdep)
	if err != nil {
		t.Fatal(err)
	}
	if want := dep.Sum() * c.Grid.Dx * c.Grid.Dy; different(total.Value(), want, 1e-12) {
		t.Errorf("total: want %g, got %g", want, total.Value())
	}
	if _, err = c.Deposition(-1); err == nil {
		t.Error("negative deposition velocity should return an error")
	}
}

func TestNetCDFRoundTrip(t *testing.T) {
	c, err := SimulationTestData().Run()
	if err != nil {
		t.Fatal(err)
	}
	dir, err := ioutil.TempDir("", "adder")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f, err := os.Create(filepath.Join(dir, "c.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if err = c.WriteNetCDF(f); err != nil {
		t.Fatal(err)
	}
	c2, err := ReadNetCDF(f)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if c2.Len() != c.Len() || c2.StepDuration != c.StepDuration {
		t.Fatalf("want %d steps of %g s, got %d of %g s", c.Len(), c.StepDuration, c2.Len(), c2.StepDuration)
	}
	for i, x := range c.Grid.X {
		if math.Abs(c2.Grid.X[i]-x) > 1e-9 {
			t.Errorf("x[%d]: want %g, got %g", i, x, c2.Grid.X[i])
		}
	}
	for i := range c.Time {
		if !c.Time[i].Equal(c2.Time[i]) {
			t.Errorf("time %d: want %v, got %v", i, c.Time[i], c2.Time[i])
		}
	}
	for i, v := range c.TIC.Elements {
		if v > 1e-3 && different(c2.TIC.Elements[i], v, 1e-6) {
			t.Fatalf("TIC %d: want %g, got %g", i, v, c2.TIC.Elements[i])
		}
	}
	for j, v := range c.Steps[1].Elements {
		if v > 1e-6 && different(c2.Steps[1].Elements[j], v, 1e-6) {
			t.Fatalf("step 1 element %d: want %g, got %g", j, v, c2.Steps[1].Elements[j])
		}
	}
}

func TestOutputter(t *testing.T) {
	c, err := SimulationTestData().Run()
	if err != nil {
		t.Fatal(err)
	}
	dir, err := ioutil.TempDir("", "adder")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	o, err := NewOutputter(filepath.Join(dir, "ground.shp"), map[string]string{
		"TIC":  "TIC",
		"Dep2": "DEP * 2",
		"Dep4": "Dep2 * 2",
		"Peak": "Cmax",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	const vdep = 0.001
	r, err := o.Results(c, vdep)
	if err != nil {
		t.Fatal(err)
	}
	dep, err := c.Deposition(vdep)
	if err != nil {
		t.Fatal(err)
	}
	for i, d := range dep.Elements {
		if different(r["Dep4"][i], 4*d, 1e-12) && d != 0 {
			t.Fatalf("cell %d: want %g, got %g", i, 4*d, r["Dep4"][i])
		}
	}
	if err = o.Output(c, vdep, geom.Point{X: 150000, Y: 200000}, "+proj=lcc"); err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".shp", ".dbf", ".prj"} {
		if _, err := os.Stat(filepath.Join(dir, "ground"+ext)); err != nil {
			t.Error(err)
		}
	}

	if _, err = NewOutputter("x.shp", map[string]string{"VeryLongName": "TIC"}, nil); err == nil {
		t.Error("long output name should return an error")
	}
	if _, err = NewOutputter("x.shp", map[string]string{"A": "Population"}, nil); err == nil {
		t.Error("undefined variable should return an error")
	}
	if _, err = NewOutputter("x.shp", map[string]string{"A": "B", "B": "A"}, nil); err == nil {
		t.Error("circular definition should return an error")
	}
}
