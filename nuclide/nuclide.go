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

// Package nuclide reads radionuclide emission data from the ASCII sheets
// produced by Laraweb (http://www.nucleide.org/Laraweb).
package nuclide

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spatialmodel/adder/dose"
)

// Suffix is the file name suffix of Laraweb sheets.
const Suffix = ".lara.txt"

// ErrNotFound is returned when no sheet exists for a requested nuclide.
var ErrNotFound = errors.New("nuclide: no emission data found")

const (
	separator       = ";"
	rule            = "----------"
	trailer         = "="
	energyColumn    = "Energy (keV)"
	intensityColumn = "Intensity (%)"
	typeColumn      = "Type"
	gammaType       = "g"
	nuclideKey      = "Nuclide"
	elementKey      = "Element"
	percentPerUnit  = 100
)

// Data holds the gamma emission lines of a radionuclide.
type Data struct {
	Nuclide string
	Element string

	// Metadata holds the key/value pairs from the sheet header.
	Metadata map[string]string

	// Lines holds the gamma lines, with intensities in photons per decay.
	Lines []dose.Line
}

func splitFields(line string) []string {
	f := strings.Split(line, separator)
	for i, s := range f {
		f[i] = strings.TrimSpace(s)
	}
	return f
}

// Parse reads a Laraweb sheet from r. Only lines of type "g" are kept.
func Parse(r io.Reader) (*Data, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		lines = append(lines, strings.TrimRight(s.Text(), "\r"))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("nuclide: reading sheet: %v", err)
	}

	firstRule, lastRule := -1, -1
	for i, l := range lines {
		if strings.Contains(l, rule) {
			if firstRule < 0 {
				firstRule = i
			}
			lastRule = i
		}
	}
	if lastRule < 0 || lastRule+1 >= len(lines) {
		return nil, fmt.Errorf("nuclide: sheet has no emission table")
	}

	d := &Data{Metadata: make(map[string]string)}
	for _, l := range lines[:firstRule] {
		f := splitFields(l)
		if len(f) < 2 || f[0] == "" {
			continue
		}
		d.Metadata[f[0]] = f[1]
	}
	d.Nuclide = d.Metadata[nuclideKey]
	d.Element = d.Metadata[elementKey]

	header := splitFields(lines[lastRule+1])
	col := func(name string) (int, error) {
		for i, h := range header {
			if h == name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("nuclide: emission table has no %q column", name)
	}
	iE, err := col(energyColumn)
	if err != nil {
		return nil, err
	}
	iI, err := col(intensityColumn)
	if err != nil {
		return nil, err
	}
	iT, err := col(typeColumn)
	if err != nil {
		return nil, err
	}

	for n, l := range lines[lastRule+2:] {
		if strings.HasPrefix(l, trailer) || strings.TrimSpace(l) == "" {
			continue
		}
		f := splitFields(l)
		if len(f) <= iT || f[iT] != gammaType {
			continue
		}
		lineNum := lastRule + 3 + n
		if len(f) <= iE || len(f) <= iI {
			return nil, fmt.Errorf("nuclide: line %d: too few columns", lineNum)
		}
		e, err := strconv.ParseFloat(f[iE], 64)
		if err != nil {
			return nil, fmt.Errorf("nuclide: line %d: energy: %v", lineNum, err)
		}
		i, err := strconv.ParseFloat(f[iI], 64)
		if err != nil {
			return nil, fmt.Errorf("nuclide: line %d: intensity: %v", lineNum, err)
		}
		d.Lines = append(d.Lines, dose.Line{Energy: e, Intensity: i / percentPerUnit})
	}
	return d, nil
}

// Find returns the path of the sheet for nuclide name (for example
// "Se-75") in dir. A metastable state ("Tc-99m") never matches a request
// for the ground state ("Tc-99") or the other way around.
func Find(dir, name string) (string, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("nuclide: %v", err)
	}
	var names []string
	for _, f := range files {
		if !f.IsDir() {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)
	for _, f := range names {
		if !strings.HasPrefix(f, name) {
			continue
		}
		// The character following the name must end it.
		if rest := f[len(name):]; strings.HasPrefix(rest, ".") {
			return filepath.Join(dir, f), nil
		}
	}
	return "", fmt.Errorf("%w for %s in %s; download the ASCII data and emissions sheet "+
		"(e.g. %s%s) from http://www.nucleide.org/Laraweb", ErrNotFound, name, dir, name, Suffix)
}

// Load finds and parses the sheet for nuclide name in dir.
func Load(dir, name string) (*Data, error) {
	path, err := Find(dir, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nuclide: %v", err)
	}
	defer f.Close()
	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%v (%s)", err, path)
	}
	return d, nil
}
