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
	"fmt"
	"math"

	"github.com/spatialmodel/adder/dose"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 7 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// PlotSeries plots the ambient dose equivalent rate at each detector
// against time since the start of the simulation. Observations in n, if
// any, are added as points. n may be nil. The image format follows the
// extension of path.
func PlotSeries(path string, series []*dose.Series, n *Network) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "Ambient dose equivalent rate"
	p.X.Label.Text = "Time since start (min)"
	p.Y.Label.Text = "H*(10) rate (nSv/h)"
	p.Legend.Top = true

	var lines, points []interface{}
	for i, s := range series {
		dt := s.StepDuration / 60
		xy := make(plotter.XYs, len(s.H10))
		for j, v := range s.H10 {
			xy[j].X = float64(j) * dt
			xy[j].Y = v
		}
		lines = append(lines, s.Detector.Name, xy)

		if n == nil || i >= len(n.Detector) || len(n.Detector[i].Observations) == 0 {
			continue
		}
		o := n.Detector[i].Observations
		obs := make(plotter.XYs, 0, len(o))
		for j, v := range o {
			if math.IsNaN(v) {
				continue
			}
			obs = obs[:len(obs)+1]
			obs[len(obs)-1].X = float64(j) * dt
			obs[len(obs)-1].Y = v
		}
		points = append(points, s.Detector.Name+" (observed)", obs)
	}
	if err = plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("adder: plotting dose rates: %v", err)
	}
	if len(points) > 0 {
		if err = plotutil.AddScatters(p, points...); err != nil {
			return fmt.Errorf("adder: plotting observations: %v", err)
		}
	}
	p.Y.Min = 0
	if err = p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("adder: writing plot: %v", err)
	}
	return nil
}
