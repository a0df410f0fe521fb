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

// Package coords converts geographic coordinates into the local
// projected coordinates of a model grid.
package coords

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// WGS84 is the spatial reference of GPS longitude and latitude.
const WGS84 = "+proj=longlat +datum=WGS84"

// Lambert72 is the Belgian Lambert 72 projection (EPSG:31370).
const Lambert72 = "+proj=lcc +lat_1=51.16666723333333 +lat_2=49.8333339 +lat_0=90 " +
	"+lon_0=4.367486666666666 +x_0=150000.013 +y_0=5400088.438 +ellps=intl " +
	"+towgs84=-106.869,52.2978,-103.724,0.3366,-0.457,1.8422,-1.2747 +units=m +no_defs"

// Converter projects points from one spatial reference to another and
// optionally expresses them relative to an origin, such as the base of
// a stack.
type Converter struct {
	trans proj.Transformer

	// Origin is subtracted from projected coordinates by Relative.
	Origin geom.Point
}

// NewConverter returns a converter from spatial reference src to dst,
// both given as proj4 strings.
func NewConverter(src, dst string) (*Converter, error) {
	srcSR, err := proj.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("coords: parsing source projection: %v", err)
	}
	dstSR, err := proj.Parse(dst)
	if err != nil {
		return nil, fmt.Errorf("coords: parsing destination projection: %v", err)
	}
	t, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, fmt.Errorf("coords: %v", err)
	}
	return &Converter{trans: t}, nil
}

// Project returns the projected coordinates of the point (x, y), which
// for a geographic source are longitude and latitude in degrees.
func (c *Converter) Project(x, y float64) (geom.Point, error) {
	g, err := geom.Point{X: x, Y: y}.Transform(c.trans)
	if err != nil {
		return geom.Point{}, fmt.Errorf("coords: projecting (%g, %g): %v", x, y, err)
	}
	return g.(geom.Point), nil
}

// SetOrigin projects (x, y) and uses it as the origin of Relative.
func (c *Converter) SetOrigin(x, y float64) error {
	p, err := c.Project(x, y)
	if err != nil {
		return err
	}
	c.Origin = p
	return nil
}

// Relative returns the projected coordinates of (x, y) relative to the
// origin.
func (c *Converter) Relative(x, y float64) (geom.Point, error) {
	p, err := c.Project(x, y)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: p.X - c.Origin.X, Y: p.Y - c.Origin.Y}, nil
}
