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
	"strings"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/adder/science/bultynckmalet"
)

// Reflection specifies which surfaces reflect the plume.
type Reflection int

const (
	// NoReflection treats the ground as a perfect absorber.
	NoReflection Reflection = iota
	// GroundReflection reflects the plume at the ground.
	GroundReflection
	// InversionReflection reflects the plume at the ground and at
	// the capping inversion.
	InversionReflection
)

func (r Reflection) String() string {
	switch r {
	case NoReflection:
		return "none"
	case GroundReflection:
		return "ground"
	case InversionReflection:
		return "inversion"
	default:
		return fmt.Sprintf("Reflection(%d)", int(r))
	}
}

// ParseReflection returns the Reflection named by s, which should be
// one of "none", "ground", or "inversion".
func ParseReflection(s string) (Reflection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return NoReflection, nil
	case "ground":
		return GroundReflection, nil
	case "inversion":
		return InversionReflection, nil
	default:
		return NoReflection, fmt.Errorf("adder: invalid plume reflection %q; valid options are none, ground, and inversion", s)
	}
}

// imagePairs is the number of image sources on each side of the
// mixing layer used for inversion reflection.
const imagePairs = 10

// Plume is a steady-state Gaussian plume for a single time step, in a
// coordinate system where the wind blows along +X.
type Plume struct {
	// WindSpeed is the transport wind speed [m/s].
	WindSpeed float64

	// Class is the stability class.
	Class bultynckmalet.Class

	// EmissionRate is the activity release rate [Bq/s].
	EmissionRate float64

	// Height is the effective release height [m]. It is used where no
	// per-column height is supplied.
	Height float64

	// AveragingTime is the meteorological averaging time [min].
	AveragingTime float64

	Reflection Reflection

	// InversionHeight is the requested capping inversion height [m].
	// Values above the class default, and negative values, are replaced
	// by the class default.
	InversionHeight float64
}

// plumeKernel evaluates a validated Plume.
type plumeKernel struct {
	d *bultynckmalet.Dispersion
	q float64
	u float64
	l float64
	r Reflection
}

func (p *Plume) kernel() (*plumeKernel, error) {
	d, err := bultynckmalet.NewDispersion(p.Class, p.AveragingTime)
	if err != nil {
		return nil, err
	}
	if p.WindSpeed < 0 || math.IsNaN(p.WindSpeed) {
		return nil, fmt.Errorf("adder: plume wind speed %g m/s should be >= 0", p.WindSpeed)
	}
	if p.EmissionRate < 0 || math.IsNaN(p.EmissionRate) {
		return nil, fmt.Errorf("adder: plume emission rate %g Bq/s should be >= 0", p.EmissionRate)
	}
	if p.Reflection < NoReflection || p.Reflection > InversionReflection {
		return nil, fmt.Errorf("adder: invalid plume reflection %d", int(p.Reflection))
	}
	l, err := bultynckmalet.MixingHeight(p.Class, p.InversionHeight)
	if err != nil {
		return nil, err
	}
	return &plumeKernel{d: d, q: p.EmissionRate, u: p.WindSpeed, l: l, r: p.Reflection}, nil
}

// gauss returns the vertical Gaussian term for vertical offset dz.
func gauss(dz, sigz float64) float64 {
	return math.Exp(-dz * dz / (2 * sigz * sigz))
}

// vertical returns the vertical part of the plume equation at height z
// for release height h, including image sources.
func (k *plumeKernel) vertical(z, h, sigz float64) float64 {
	g := gauss(z-h, sigz)
	if k.r == NoReflection {
		return g
	}
	g += gauss(z+h, sigz)
	if k.r == GroundReflection {
		return g
	}
	for m := 1; m <= imagePairs; m++ {
		d := 2 * float64(m) * k.l
		g += gauss(z-h-d, sigz) + gauss(z+h+d, sigz) +
			gauss(z+h-d, sigz) + gauss(z-h+d, sigz)
	}
	return g
}

// at returns the concentration [Bq/m³] at plume-aligned position
// (x, y, z) for release height h. Undefined values, such as upwind of
// the source, are zero.
func (k *plumeKernel) at(x, y, z, h float64) float64 {
	sigy, sigz := k.d.Sigma(x)
	c := k.q / (2 * math.Pi * k.u * sigy * sigz) *
		math.Exp(-y*y/(2*sigy*sigy)) * k.vertical(z, h, sigz)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return c
}

// Concentration returns the concentration [Bq/m³] at plume-aligned
// position (x, y, z) [m].
func (p *Plume) Concentration(x, y, z float64) (float64, error) {
	k, err := p.kernel()
	if err != nil {
		return 0, err
	}
	return k.at(x, y, z, p.Height), nil
}

// Field returns the concentration field [Bq/m³] on grid g, where xrot and
// yrot are the plume-aligned coordinates of each grid column as returned
// by Grid.Rotate. heff optionally holds a separate effective release
// height [m] for each column; if it is nil, p.Height is used.
func (p *Plume) Field(g *Grid, xrot, yrot, heff []float64) (*sparse.DenseArray, error) {
	k, err := p.kernel()
	if err != nil {
		return nil, err
	}
	n := g.Columns()
	if len(xrot) != n || len(yrot) != n {
		return nil, fmt.Errorf("adder: plume coordinates have lengths %d and %d but the grid has %d columns",
			len(xrot), len(yrot), n)
	}
	if heff != nil && len(heff) != n {
		return nil, fmt.Errorf("adder: %d effective heights for %d grid columns", len(heff), n)
	}
	c := g.Zeros()
	nz := len(g.Z)
	for col := 0; col < n; col++ {
		h := p.Height
		if heff != nil {
			h = heff[col]
		}
		x, y := xrot[col], yrot[col]
		for kk, z := range g.Z {
			c.Elements[col*nz+kk] = k.at(x, y, z, h)
		}
	}
	return c, nil
}
