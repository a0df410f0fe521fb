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

// Attenuation coefficients of air (Martin, 2013).
var (
	// attenuationEnergies are the tabulated photon energies [keV].
	attenuationEnergies = []float64{
		10, 15, 20, 30, 40, 50, 60, 70, 80, 100,
		150, 200, 300, 400, 500, 600, 662, 800, 1000, 1173,
		1250, 1333, 1500, 2000, 3000, 4000, 5000, 6000, 6129, 7000,
		7115, 10000,
	}

	// massAttenuation holds mu/rho [cm²/g].
	massAttenuation = []float64{
		5.120, 1.614, 0.7779, 0.3538, 0.2485, 0.2080, 0.1875, 0.1744, 0.1662, 0.1541,
		0.1356, 0.1233, 0.1067, 0.0955, 0.0871, 0.0806, 0.0775, 0.0707, 0.0636, 0.0585,
		0.0569, 0.0550, 0.0518, 0.0445, 0.0358, 0.0308, 0.0275, 0.0252, 0.0250, 0.0235,
		0.0234, 0.0205,
	}

	// massEnergyAbsorption holds mu_en/rho [cm²/g].
	massEnergyAbsorption = []float64{
		4.742, 1.334, 0.5389, 0.1537, 0.0683, 0.0410, 0.0304, 0.0255, 0.0241, 0.0233,
		0.0250, 0.0267, 0.0287, 0.0295, 0.0297, 0.0295, 0.0293, 0.0288, 0.0279, 0.0271,
		0.0267, 0.0263, 0.0255, 0.0235, 0.0206, 0.0187, 0.0174, 0.0165, 0.0164, 0.0159,
		0.0158, 0.0145,
	}
)

// Attenuation returns the linear attenuation coefficient mu and the
// linear energy absorption coefficient muEn [1/m] of air with density
// rho [g/cm³] for photons of energy ey [keV].
func Attenuation(ey, rho float64) (mu, muEn float64, err error) {
	muRho, err := interpolate(attenuationEnergies, massAttenuation, ey, "attenuation energy")
	if err != nil {
		return 0, 0, err
	}
	muEnRho, err := interpolate(attenuationEnergies, massEnergyAbsorption, ey, "attenuation energy")
	if err != nil {
		return 0, 0, err
	}
	// cm²/g · g/cm³ = 1/cm; ×100 gives 1/m.
	return muRho * rho * 100, muEnRho * rho * 100, nil
}
