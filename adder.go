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

// Package adder is a Gaussian plume model for the atmospheric dispersion
// of airborne radionuclides released from a stack. It calculates
// time-resolved three-dimensional activity concentration fields from
// stack and meteorological data; see package dose for the calculation of
// the resulting external gamma dose rates.
package adder

// Version gives the version number.
const Version = "0.3.0"
