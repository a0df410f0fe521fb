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
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/adder/coords"
	"github.com/spatialmodel/adder/dose"
)

// DetectorConfig describes a detector in a detector file. The location is
// given either as X and Y relative to the stack [m] or as Lon and Lat.
type DetectorConfig struct {
	Name    string
	X, Y, Z float64

	Lon, Lat *float64

	// Observations holds background-subtracted measured ambient dose
	// equivalent rates [nSv/h], one per time step. It may be empty.
	Observations []float64

	// Sigma is the measurement uncertainty [nSv/h].
	Sigma float64
}

// Network is the content of a detector file.
type Network struct {
	Detector []DetectorConfig
}

// ReadNetwork reads a TOML detector file from r.
func ReadNetwork(r io.Reader) (*Network, error) {
	var n Network
	if _, err := toml.DecodeReader(r, &n); err != nil {
		return nil, fmt.Errorf("adder: reading detector file: %v", err)
	}
	if len(n.Detector) == 0 {
		return nil, fmt.Errorf("adder: detector file contains no detectors")
	}
	names := make(map[string]bool)
	for i, d := range n.Detector {
		if d.Name == "" {
			return nil, fmt.Errorf("adder: detector %d has no name", i)
		}
		if names[d.Name] {
			return nil, fmt.Errorf("adder: duplicate detector name %q", d.Name)
		}
		names[d.Name] = true
		if (d.Lon == nil) != (d.Lat == nil) {
			return nil, fmt.Errorf("adder: detector %s needs both Lon and Lat", d.Name)
		}
	}
	return &n, nil
}

// ReadNetworkFile reads a TOML detector file.
func ReadNetworkFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("adder: %v", err)
	}
	defer f.Close()
	return ReadNetwork(f)
}

// Detectors returns the detector locations relative to the stack.
// Detectors given by longitude and latitude are projected with conv,
// whose origin must be the stack. conv may be nil if no detector uses
// geographic coordinates.
func (n *Network) Detectors(conv *coords.Converter) ([]dose.Detector, error) {
	o := make([]dose.Detector, len(n.Detector))
	for i, d := range n.Detector {
		o[i] = dose.Detector{Name: d.Name, X: d.X, Y: d.Y, Z: d.Z}
		if d.Lon == nil {
			continue
		}
		if conv == nil {
			return nil, fmt.Errorf("adder: detector %s is given by longitude and latitude "+
				"but the stack location is unknown", d.Name)
		}
		p, err := conv.Relative(*d.Lon, *d.Lat)
		if err != nil {
			return nil, fmt.Errorf("adder: detector %s: %v", d.Name, err)
		}
		o[i].X, o[i].Y = p.X, p.Y
	}
	return o, nil
}

// HasObservations reports whether any detector has observations.
func (n *Network) HasObservations() bool {
	for _, d := range n.Detector {
		if len(d.Observations) > 0 {
			return true
		}
	}
	return false
}
