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
	"time"

	"github.com/spatialmodel/adder/science/bultynckmalet"
	"github.com/spatialmodel/adder/science/plumerise/briggs"
)

// SimulationTestData returns a small simulation of a one-hour release
// from a 60 m stack with ten-minute meteorology, for use in tests.
func SimulationTestData() *Simulation {
	g, err := NewCenteredGrid(500, 500, 200, 41, 41, 11)
	if err != nil {
		panic(err)
	}
	t0 := time.Date(2019, 5, 15, 15, 20, 0, 0, time.UTC)
	times := make([]time.Time, 6)
	for i := range times {
		times[i] = t0.Add(time.Duration(i) * 10 * time.Minute)
	}
	return &Simulation{
		Grid: g,
		Source: &Source{
			Height:          60,
			ExitTemperature: 15,
			FlowRate:        150000. / 3600.,
			EmissionRates:   []float64{8.3e6, 8.3e6, 8.3e6, 0, 0, 0},
		},
		Meteorology: &Meteorology{
			Time:            times,
			WindDirection:   []float64{45.2, 48.9, 52.3, 47.1, 43.8, 50.6},
			WindSpeed:       []float64{3.1, 2.8, 3.4, 3.0, 2.6, 2.9},
			Temperature:     []float64{17.43, 17.51, 17.62, 17.58, 17.66, 17.71},
			Class:           []bultynckmalet.Class{4, 4, 4, 4, 5, 4},
			ReferenceHeight: 69,
			AveragingTime:   10,
		},
		MinWindSpeed: 0.5,
		Reflection:   InversionReflection,
		Rise:         briggs.Distance,
	}
}
