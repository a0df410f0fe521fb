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
	"github.com/spatialmodel/adder/eval"
	"github.com/spatialmodel/adder/meteo"
	"github.com/tealeg/xlsx"
)

// pooledName is the name given to statistics over all detectors.
const pooledName = "All"

// DetectorStatistics holds the comparison of modelled and observed dose
// rates at one detector, or over all detectors.
type DetectorStatistics struct {
	Name string
	*eval.Statistics
}

// Compare compares the modelled ambient dose equivalent rates in series
// with the observations in n. Detectors without observations are
// skipped. If more than one detector has observations, statistics over
// all detectors are appended.
func Compare(n *Network, series []*dose.Series) ([]DetectorStatistics, error) {
	if len(n.Detector) != len(series) {
		return nil, fmt.Errorf("adder: %d detectors but %d dose rate series", len(n.Detector), len(series))
	}
	var out []DetectorStatistics
	var obs, mod [][]float64
	for i, d := range n.Detector {
		if len(d.Observations) == 0 {
			continue
		}
		if len(d.Observations) != len(series[i].H10) {
			return nil, fmt.Errorf("adder: detector %s has %d observations for %d time steps",
				d.Name, len(d.Observations), len(series[i].H10))
		}
		s, err := eval.CompareWithUncertainty(d.Observations, series[i].H10, d.Sigma)
		if err != nil {
			return nil, fmt.Errorf("adder: detector %s: %v", d.Name, err)
		}
		out = append(out, DetectorStatistics{Name: d.Name, Statistics: s})
		obs = append(obs, d.Observations)
		mod = append(mod, series[i].H10)
	}
	if len(obs) > 1 {
		o, m, err := eval.Pool(obs, mod)
		if err != nil {
			return nil, err
		}
		s, err := eval.Compare(o, m)
		if err != nil {
			return nil, err
		}
		out = append(out, DetectorStatistics{Name: pooledName, Statistics: s})
	}
	return out, nil
}

// addRow adds a row of string cells to sheet.
func addRow(sheet *xlsx.Sheet, values ...string) *xlsx.Row {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
	return row
}

// addRateSheet adds a sheet with one column of rates per detector.
func addRateSheet(f *xlsx.File, name string, series []*dose.Series, rate func(*dose.Series) []float64) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return fmt.Errorf("adder: creating %s sheet: %v", name, err)
	}
	header := []string{"Step", "Time"}
	for _, s := range series {
		header = append(header, s.Detector.Name)
	}
	addRow(sheet, header...)
	if len(series) == 0 {
		return nil
	}
	for i := range rate(series[0]) {
		var t string
		if i < len(series[0].Time) {
			t = series[0].Time[i].Format(meteo.TimeFormat)
		}
		row := sheet.AddRow()
		row.AddCell().SetInt(i)
		row.AddCell().SetString(t)
		for _, s := range series {
			row.AddCell().SetFloat(rate(s)[i])
		}
	}
	return nil
}

// WriteReport writes the dose rate time series (sheets H10 [nSv/h] and
// Kerma [nGy/h]), cumulative doses, and observation statistics to the
// spreadsheet file path.
func WriteReport(path string, series []*dose.Series, stats []DetectorStatistics) error {
	f := xlsx.NewFile()
	if err := addRateSheet(f, "H10", series, func(s *dose.Series) []float64 { return s.H10 }); err != nil {
		return err
	}
	if err := addRateSheet(f, "Kerma", series, func(s *dose.Series) []float64 { return s.Kerma }); err != nil {
		return err
	}

	sheet, err := f.AddSheet("Detectors")
	if err != nil {
		return fmt.Errorf("adder: creating Detectors sheet: %v", err)
	}
	addRow(sheet, "Detector", "X [m]", "Y [m]", "Z [m]", "Max H10 [nSv/h]", "H10 [Sv]", "Kerma [Gy]")
	for _, s := range series {
		h10, kerma := s.Cumulative()
		max, _ := s.Max()
		row := addRow(sheet, s.Detector.Name)
		for _, v := range []float64{s.Detector.X, s.Detector.Y, s.Detector.Z, max, h10.Value(), kerma.Value()} {
			row.AddCell().SetFloat(v)
		}
	}

	if len(stats) > 0 {
		sheet, err = f.AddSheet("Statistics")
		if err != nil {
			return fmt.Errorf("adder: creating Statistics sheet: %v", err)
		}
		addRow(sheet, "Detector", "N", "MB", "ME", "MFB", "MFE", "MR",
			"Slope", "Intercept", "R2", "R", "Within uncertainty")
		for _, s := range stats {
			row := addRow(sheet, s.Name)
			row.AddCell().SetInt(s.N)
			for _, v := range []float64{s.MB, s.ME, s.MFB, s.MFE, s.MR, s.Slope, s.Intercept, s.R2, s.R, s.WithinUncertainty} {
				cell := row.AddCell()
				if !math.IsNaN(v) {
					cell.SetFloat(v)
				}
			}
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("adder: writing dose file: %v", err)
	}
	return nil
}
