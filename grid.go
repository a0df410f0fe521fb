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
	"math"

	"github.com/ctessum/sparse"
)

// Grid is a regular three-dimensional receptor mesh centered horizontally
// on the stack. Coordinates are in meters; Z is height above the ground
// and starts at zero. Array data on the grid are stored in
// sparse.DenseArrays with shape [Nx, Ny, Nz].
type Grid struct {
	// X, Y, and Z are the axis coordinates [m].
	X, Y, Z []float64

	// Dx, Dy, and Dz are the cell spacings [m].
	Dx, Dy, Dz float64
}

// NewCenteredGrid creates a grid spanning [-bx, bx] × [-by, by] × [0, bz]
// with nx, ny, and nz points along each axis. An axis with a single point
// is placed at its boundary value with unit spacing.
func NewCenteredGrid(bx, by, bz float64, nx, ny, nz int) (*Grid, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("adder: grid dimensions (%d, %d, %d) should all be >= 1", nx, ny, nz)
	}
	for _, b := range []float64{bx, by, bz} {
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("adder: grid boundaries (%g, %g, %g) should be finite and >= 0", bx, by, bz)
		}
	}
	g := new(Grid)
	g.X, g.Dx = linspace(-bx, bx, nx)
	g.Y, g.Dy = linspace(-by, by, ny)
	g.Z, g.Dz = linspace(0, bz, nz)
	return g, nil
}

// linspace returns n evenly spaced values from lo to hi and their spacing.
func linspace(lo, hi float64, n int) ([]float64, float64) {
	if n == 1 {
		return []float64{hi}, 1
	}
	d := (hi - lo) / float64(n-1)
	o := make([]float64, n)
	for i := range o {
		o[i] = lo + float64(i)*d
	}
	o[n-1] = hi
	return o, d
}

// Shape returns the number of points along each axis.
func (g *Grid) Shape() []int { return []int{len(g.X), len(g.Y), len(g.Z)} }

// Len returns the total number of grid points.
func (g *Grid) Len() int { return len(g.X) * len(g.Y) * len(g.Z) }

// Columns returns the number of horizontal grid columns.
func (g *Grid) Columns() int { return len(g.X) * len(g.Y) }

// Index returns the 1-D index of point (i, j, k) in a grid array.
func (g *Grid) Index(i, j, k int) int { return (i*len(g.Y)+j)*len(g.Z) + k }

// Zeros returns an empty array on the grid.
func (g *Grid) Zeros() *sparse.DenseArray { return sparse.ZerosDense(g.Shape()...) }

// CellVolume returns the volume [m³] associated with each grid point.
func (g *Grid) CellVolume() float64 { return g.Dx * g.Dy * g.Dz }

// Rotate returns the plume-aligned horizontal coordinates of each grid
// column for wind direction wd [degrees from north, the direction the
// wind comes from]. After rotation the plume travels along +X.
// Columns are ordered with the y index varying fastest.
func (g *Grid) Rotate(wd float64) (xrot, yrot []float64) {
	xrot = make([]float64, g.Columns())
	yrot = make([]float64, g.Columns())
	offset := -math.Pi + (wd-90)/180*math.Pi
	n := 0
	for _, x := range g.X {
		for _, y := range g.Y {
			r := math.Hypot(x, y)
			phi := math.Atan2(y, x) + offset
			xrot[n] = r * math.Cos(phi)
			yrot[n] = r * math.Sin(phi)
			n++
		}
	}
	return xrot, yrot
}

// WindDirectionTo returns the wind direction [degrees from north] that
// carries a plume from the stack directly over the point (x, y), and the
// horizontal distance [m] to it.
func WindDirectionTo(x, y float64) (wd, r float64) {
	wd = math.Mod(-(math.Atan2(y, x)*180/math.Pi - 270), 360)
	if wd < 0 {
		wd += 360
	}
	return wd, math.Hypot(x, y)
}
