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
	"github.com/ctessum/unit"
)

// Becquerel is the dimension of activity [1/s].
var Becquerel = unit.Dimensions{unit.TimeDim: -1}

// ground returns the ground-level (k = 0) values of grid array a with
// shape [Nx, Ny].
func (g *Grid) ground(a *sparse.DenseArray) *sparse.DenseArray {
	nx, ny, nz := len(g.X), len(g.Y), len(g.Z)
	o := sparse.ZerosDense(nx, ny)
	for col := 0; col < nx*ny; col++ {
		o.Elements[col] = a.Elements[col*nz]
	}
	return o
}

// Deposition returns the activity deposited on the ground [Bq/m²] in each
// grid column over the simulation, for deposition velocity vdep [m/s].
// The result has shape [Nx, Ny].
func (c *Concentrations) Deposition(vdep float64) (*sparse.DenseArray, error) {
	if vdep < 0 || math.IsNaN(vdep) || math.IsInf(vdep, 0) {
		return nil, fmt.Errorf("adder: deposition velocity %g m/s should be finite and >= 0", vdep)
	}
	dep := c.Grid.ground(c.TIC)
	dep.Scale(vdep)
	return dep, nil
}

// DepositedActivity returns the total activity [Bq] deposited within
// the grid for deposition velocity vdep [m/s].
func (c *Concentrations) DepositedActivity(vdep float64) (*unit.Unit, error) {
	if vdep < 0 || math.IsNaN(vdep) || math.IsInf(vdep, 0) {
		return nil, fmt.Errorf("adder: deposition velocity %g m/s should be finite and >= 0", vdep)
	}
	// Bq·s/m³ is dimensionally 1/m³.
	tic := unit.New(c.Grid.ground(c.TIC).Sum(), unit.Dimensions{unit.LengthDim: -3})
	total := unit.Mul(
		unit.New(vdep, unit.MeterPerSecond),
		tic,
		unit.New(c.Grid.Dx*c.Grid.Dy, unit.Meter2),
	)
	if err := total.Check(Becquerel); err != nil {
		return nil, fmt.Errorf("adder: deposited activity: %v", err)
	}
	return total, nil
}
