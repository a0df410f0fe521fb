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

import "github.com/ctessum/unit"

// Gray is the dimension of absorbed dose and kerma [J/kg].
var Gray = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}

// Sievert is the dimension of dose equivalent [J/kg].
var Sievert = Gray

// Ratios of ambient dose equivalent H*(10) to air kerma [Sv/Gy]
// for photons (ICRP Publication 74, 1996).
var (
	conversionEnergies = []float64{ // MeV
		0.010, 0.015, 0.020, 0.030, 0.040, 0.050, 0.060, 0.080, 0.100, 0.150,
		0.200, 0.300, 0.400, 0.500, 0.600, 0.800, 1, 1.5, 2, 3,
		4, 5, 6, 8, 10,
	}
	h10PerKerma = []float64{
		0.008, 0.26, 0.61, 1.10, 1.47, 1.67, 1.74, 1.72, 1.65, 1.49,
		1.40, 1.31, 1.26, 1.23, 1.21, 1.19, 1.17, 1.15, 1.14, 1.13,
		1.12, 1.11, 1.11, 1.11, 1.10,
	}
)

// H10PerKerma returns the ratio of ambient dose equivalent to air kerma
// [Sv/Gy] for photons of energy ey [keV].
func H10PerKerma(ey float64) (float64, error) {
	return interpolate(conversionEnergies, h10PerKerma, ey/1e3, "H*(10) conversion energy [MeV]")
}

// KermaToH10 converts air kerma (or kerma rate) ka to ambient dose
// equivalent (or its rate) for photons of energy ey [keV].
func KermaToH10(ka, ey float64) (float64, error) {
	r, err := H10PerKerma(ey)
	if err != nil {
		return 0, err
	}
	return ka * r, nil
}
