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
	"fmt"
	"os"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// DataVersion is the version of the concentration file format.
const DataVersion = "1.0.0"

// WriteNetCDF writes the concentration time series and time-integrated
// concentration to netcdf file w.
func (c *Concentrations) WriteNetCDF(w *os.File) error {
	g := c.Grid
	nt := c.Len()
	if nt == 0 {
		return fmt.Errorf("adder: no time steps to write")
	}
	h := cdf.NewHeader(
		[]string{"t", "x", "y", "z"},
		[]int{nt, len(g.X), len(g.Y), len(g.Z)})
	h.AddAttribute("", "comment", "ADDER activity concentration file")
	h.AddAttribute("", "x0", []float64{g.X[0]})
	h.AddAttribute("", "y0", []float64{g.Y[0]})
	h.AddAttribute("", "z0", []float64{g.Z[0]})
	h.AddAttribute("", "dx", []float64{g.Dx})
	h.AddAttribute("", "dy", []float64{g.Dy})
	h.AddAttribute("", "dz", []float64{g.Dz})
	h.AddAttribute("", "step_duration", []float64{c.StepDuration})
	h.AddAttribute("", "data_version", DataVersion)

	h.AddVariable("C", []string{"t", "x", "y", "z"}, []float32{0})
	h.AddAttribute("C", "description", "Activity concentration")
	h.AddAttribute("C", "units", "Bq/m3")
	h.AddVariable("TIC", []string{"x", "y", "z"}, []float32{0})
	h.AddAttribute("TIC", "description", "Time-integrated activity concentration")
	h.AddAttribute("TIC", "units", "Bq s/m3")
	hasTime := len(c.Time) == nt
	if hasTime {
		h.AddVariable("time", []string{"t"}, []float64{0})
		h.AddAttribute("time", "description", "Start of time step")
		h.AddAttribute("time", "units", "seconds since 1970-01-01 00:00:00 UTC")
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("adder: creating netcdf file: %v", err)
	}

	all := sparse.ZerosDense(nt, len(g.X), len(g.Y), len(g.Z))
	n := g.Len()
	for i, s := range c.Steps {
		copy(all.Elements[i*n:(i+1)*n], s.Elements)
	}
	if err = writeNCF(f, "C", all); err != nil {
		return fmt.Errorf("adder: writing variable C to netcdf file: %v", err)
	}
	if err = writeNCF(f, "TIC", c.TIC); err != nil {
		return fmt.Errorf("adder: writing variable TIC to netcdf file: %v", err)
	}
	if hasTime {
		t := make([]float64, nt)
		for i, tt := range c.Time {
			t[i] = float64(tt.Unix())
		}
		if _, err = f.Writer("time", []int{0}, []int{nt}).Write(t); err != nil {
			return fmt.Errorf("adder: writing variable time to netcdf file: %v", err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes data to variable v of f in single precision.
func writeNCF(f *cdf.File, v string, data *sparse.DenseArray) error {
	n := 1
	for _, l := range data.Shape {
		n *= l
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	_, err := f.Writer(v, start, end).Write(data32)
	return err
}

// readNCF reads variable v of f.
func readNCF(f *cdf.File, v string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	o := sparse.ZerosDense(dims...)
	tmp := make([]float32, len(o.Elements))
	if _, err := f.Reader(v, nil, nil).Read(tmp); err != nil {
		return nil, err
	}
	for i, e := range tmp {
		o.Elements[i] = float64(e)
	}
	return o, nil
}

// ReadNetCDF reads concentrations written by WriteNetCDF.
func ReadNetCDF(rw cdf.ReaderWriterAt) (*Concentrations, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("adder.ReadNetCDF: %v", err)
	}
	if v, ok := f.Header.GetAttribute("", "data_version").(string); !ok || v != DataVersion {
		return nil, fmt.Errorf("adder.ReadNetCDF: data version %v is incompatible with the required version %s",
			f.Header.GetAttribute("", "data_version"), DataVersion)
	}
	attr := func(name string) float64 {
		return f.Header.GetAttribute("", name).([]float64)[0]
	}
	dims := f.Header.Lengths("C")
	if len(dims) != 4 {
		return nil, fmt.Errorf("adder.ReadNetCDF: variable C has %d dimensions; want 4", len(dims))
	}
	g := &Grid{Dx: attr("dx"), Dy: attr("dy"), Dz: attr("dz")}
	g.X = axis(attr("x0"), g.Dx, dims[1])
	g.Y = axis(attr("y0"), g.Dy, dims[2])
	g.Z = axis(attr("z0"), g.Dz, dims[3])

	all, err := readNCF(f, "C")
	if err != nil {
		return nil, fmt.Errorf("adder.ReadNetCDF: %v", err)
	}
	c := &Concentrations{Grid: g, StepDuration: attr("step_duration")}
	n := g.Len()
	c.Steps = make([]*sparse.DenseArray, dims[0])
	for i := range c.Steps {
		s := g.Zeros()
		copy(s.Elements, all.Elements[i*n:(i+1)*n])
		c.Steps[i] = s
	}
	if c.TIC, err = readNCF(f, "TIC"); err != nil {
		return nil, fmt.Errorf("adder.ReadNetCDF: %v", err)
	}
	for _, v := range f.Header.Variables() {
		if v != "time" {
			continue
		}
		t := make([]float64, dims[0])
		if _, err = f.Reader("time", nil, nil).Read(t); err != nil {
			return nil, fmt.Errorf("adder.ReadNetCDF: %v", err)
		}
		c.Time = make([]time.Time, len(t))
		for i, tt := range t {
			c.Time[i] = time.Unix(int64(tt), 0).UTC()
		}
	}
	return c, nil
}

// axis returns n coordinates starting at x0 with spacing d.
func axis(x0, d float64, n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = x0 + float64(i)*d
	}
	return o
}
