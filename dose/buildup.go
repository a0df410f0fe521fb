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

package dose

import (
	"fmt"
	"math"
	"sort"
)

// BuildupTable holds exposure buildup factors of air tabulated against
// photon energy and optical depth.
type BuildupTable struct {
	// Name identifies the table in configuration files.
	Name string

	// energies [keV] and depths (mean free paths) are ascending.
	energies []float64
	depths   []float64

	// factors[depth][energy]
	factors [][]float64
}

// Martin holds the buildup factors of Martin (2013), Physics for
// Radiation Protection, for 0.1 to 10 MeV and up to 30 mean free paths.
var Martin = &BuildupTable{
	Name:     "martin",
	energies: []float64{100, 500, 1000, 2000, 3000, 4000, 5000, 6000, 8000, 10000},
	depths:   []float64{0, 0.5, 1, 2, 3, 4, 5, 6, 7, 8, 10, 15, 20, 25, 30},
	factors: [][]float64{
		{1.00, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00},
		{2.35, 1.6, 1.47, 1.38, 1.34, 1.31, 1.29, 1.27, 1.23, 1.2},
		{4.46, 2.44, 2.08, 1.83, 1.71, 1.63, 1.57, 1.52, 1.43, 1.37},
		{11.4, 4.84, 3.6, 2.81, 2.46, 2.25, 2.09, 1.97, 1.8, 1.68},
		{22.5, 8.21, 5.46, 3.86, 3.22, 2.85, 2.6, 2.41, 2.15, 1.97},
		{38.4, 12.6, 7.6, 4.96, 4, 3.46, 3.11, 2.85, 2.5, 2.26},
		{59.9, 17.9, 10.0, 6.13, 4.79, 4.07, 3.61, 3.28, 2.84, 2.54},
		{87.8, 24.2, 12.7, 7.35, 5.6, 4.69, 4.12, 3.71, 3.17, 2.82},
		{123, 31.6, 15.6, 8.61, 6.43, 5.31, 4.62, 4.14, 3.51, 3.1},
		{166, 40.1, 18.8, 9.92, 7.26, 5.94, 5.12, 4.57, 3.84, 3.37},
		{282, 60.6, 25.8, 12.6, 8.97, 7.19, 6.13, 5.42, 4.49, 3.92},
		{800, 134, 47.0, 20, 13.4, 10.3, 8.63, 7.51, 6.08, 5.25},
		{1810, 241, 72.8, 27.9, 17.9, 13.5, 11.1, 9.58, 7.64, 6.55},
		{3570, 385, 103, 36.2, 22.5, 16.7, 13.6, 11.6, 9.17, 7.84},
		{6430, 567, 136, 45, 27.2, 19.9, 16.1, 13.6, 10.7, 9.11},
	},
}

// ANS holds the air buildup factors of ANSI/ANS-6.4.3-1991 (Trubey et al.)
// for 0.015 to 15 MeV and up to 40 mean free paths.
var ANS = &BuildupTable{
	Name: "nucl",
	energies: []float64{
		15, 20, 30, 40, 50, 60, 80, 100, 150, 200,
		300, 400, 500, 600, 800, 1000, 1500, 2000, 3000, 4000,
		5000, 6000, 8000, 10000, 15000,
	},
	depths: []float64{0, 0.5, 1, 2, 3, 4, 5, 6, 7, 8, 10, 15, 20, 25, 30, 35, 40},
	factors: [][]float64{
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{1.12, 1.27, 1.76, 2.2, 2.48, 2.58, 2.52, 2.35, 2.16, 1.9, 1.75, 1.66, 1.6, 1.56, 1.5, 1.47, 1.42, 1.38, 1.34, 1.31, 1.29, 1.27, 1.23, 1.2, 1.15},
		{1.17, 1.41, 2.31, 3.38, 4.28, 4.76, 4.83, 4.46, 3.83, 3.28, 2.83, 2.59, 2.44, 2.33, 2.17, 2.08, 1.92, 1.83, 1.71, 1.63, 1.57, 1.52, 1.43, 1.37, 1.28},
		{1.25, 1.62, 3.19, 5.85, 8.72, 10.8, 12, 11.4, 9.21, 7.74, 6.2, 5.37, 4.84, 4.46, 3.94, 3.6, 3.09, 2.81, 2.46, 2.25, 2.09, 1.97, 1.8, 1.68, 1.49},
		{1.31, 1.79, 3.99, 8.47, 14.1, 18.9, 22.9, 22.5, 18.2, 15, 11.4, 9.45, 8.21, 7.34, 6.19, 5.46, 4.42, 3.86, 3.22, 2.85, 2.6, 2.41, 2.15, 1.97, 1.7},
		{1.36, 1.93, 4.75, 11.2, 20.5, 29.1, 37.9, 38.4, 31.5, 25.6, 18.7, 14.9, 12.6, 10.9, 8.88, 7.6, 5.86, 4.96, 4, 3.46, 3.11, 2.85, 2.5, 2.26, 1.9},
		{1.39, 2.04, 5.46, 14.1, 27.6, 41.5, 57.4, 59.9, 49.9, 40, 28.2, 21.8, 17.9, 15.3, 12, 10, 7.42, 6.13, 4.79, 4.07, 3.61, 3.28, 2.84, 2.54, 2.11},
		{1.43, 2.15, 6.14, 17, 35.7, 56.1, 82, 87.8, 74.2, 58.9, 40.2, 30.2, 24.2, 20.3, 15.5, 12.7, 9.08, 7.35, 5.6, 4.69, 4.12, 3.71, 3.17, 2.82, 2.3},
		{1.46, 2.25, 6.79, 20.1, 44.6, 73.2, 112, 123, 105, 82.8, 54.9, 40.2, 31.6, 26, 19.4, 15.6, 10.8, 8.61, 6.43, 5.31, 4.62, 4.14, 3.51, 3.1, 2.5},
		{1.48, 2.34, 7.43, 23.3, 54.4, 92.7, 148, 166, 144, 112, 72.7, 52, 40.1, 32.5, 23.7, 18.8, 12.7, 9.92, 7.26, 5.94, 5.12, 4.57, 3.84, 3.37, 2.7},
		{1.53, 2.5, 8.69, 30, 76.8, 140, 242, 282, 249, 192, 118, 81.1, 60.6, 47.9, 33.5, 25.8, 16.7, 12.6, 8.97, 7.19, 6.13, 5.42, 4.49, 3.92, 3.08},
		{1.62, 2.83, 11.8, 49, 151, 316, 636, 800, 735, 545, 304, 191, 134, 100, 64.9, 47, 27.7, 20, 13.4, 10.3, 8.63, 7.51, 6.08, 5.25, 4.03},
		{1.68, 3.11, 14.8, 71.4, 256, 596, 1350, 1810, 1700, 1220, 624, 365, 241, 173, 105, 72.8, 40.2, 27.9, 17.9, 13.5, 11.1, 9.58, 7.64, 6.55, 4.96},
		{1.74, 3.35, 18, 97.2, 395, 1010, 2540, 3570, 3410, 2360, 1120, 611, 385, 266, 154, 103, 53.9, 36.2, 22.5, 16.7, 13.6, 11.6, 9.17, 7.84, 5.87},
		{1.78, 3.56, 21.5, 126, 574, 1600, 4390, 6430, 6210, 4150, 1820, 938, 567, 379, 210, 136, 68.5, 45, 27.2, 19.9, 16.1, 13.6, 10.7, 9.11, 6.75},
		{1.82, 3.74, 25.4, 159, 798, 2410, 7140, 10600, 10500, 6770, 2770, 1350, 788, 512, 274, 173, 84, 54, 32, 23.1, 18.5, 15.4, 12.3, 10.4, 7.58},
		{1.85, 3.88, 29.7, 195, 1070, 3480, 11100, 15700, 17000, 10500, 4010, 1870, 1050, 665, 345, 212, 100, 63.2, 36.7, 26.3, 21, 16.9, 14.1, 11.6, 8.31},
	},
}

// BuildupTableByName returns the buildup table with the given name
// ("martin" or "nucl").
func BuildupTableByName(name string) (*BuildupTable, error) {
	switch name {
	case Martin.Name:
		return Martin, nil
	case ANS.Name:
		return ANS, nil
	default:
		return nil, fmt.Errorf("dose: invalid buildup table %q; valid options are %q and %q",
			name, Martin.Name, ANS.Name)
	}
}

// Column returns the buildup factors at every tabulated optical depth,
// interpolated to photon energy ey [keV].
func (b *BuildupTable) Column(ey float64) ([]float64, error) {
	i0, i1, frac, ok := bracket(b.energies, ey)
	if !ok {
		return nil, fmt.Errorf("dose: energy %g keV is outside of the %s buildup table range [%g, %g] keV",
			ey, b.Name, b.energies[0], b.energies[len(b.energies)-1])
	}
	col := make([]float64, len(b.depths))
	for d, row := range b.factors {
		col[d] = lerp(row[i0], row[i1], frac)
	}
	return col, nil
}

// Factor returns the buildup factor for photon energy ey [keV] at optical
// depth mux.
func (b *BuildupTable) Factor(ey, mux float64) (float64, error) {
	f, err := b.Factors(ey, []float64{mux})
	if err != nil {
		return 0, err
	}
	return f[0], nil
}

// Factors returns the buildup factors for photon energy ey [keV] at each
// of the optical depths in mux. The table is interpolated across energy
// once and then across depth for each value. Depths beyond the last
// tabulated row take the last row's value.
func (b *BuildupTable) Factors(ey float64, mux []float64) ([]float64, error) {
	col, err := b.Column(ey)
	if err != nil {
		return nil, err
	}
	maxDepth := b.depths[len(b.depths)-1]
	out := make([]float64, len(mux))
	for i, m := range mux {
		switch {
		case math.IsNaN(m) || m < 0:
			return nil, fmt.Errorf("dose: invalid optical depth %g", m)
		case m >= maxDepth:
			out[i] = col[len(col)-1]
		default:
			j := sort.SearchFloat64s(b.depths, m)
			if b.depths[j] == m {
				out[i] = col[j]
				continue
			}
			frac := (m - b.depths[j-1]) / (b.depths[j] - b.depths[j-1])
			out[i] = lerp(col[j-1], col[j], frac)
		}
	}
	return out, nil
}
