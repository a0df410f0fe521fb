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

// Package meteo reads meteorological mast observations and converts them
// into the time series used by the dispersion model.
package meteo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/adder"
	"github.com/spatialmodel/adder/science/bultynckmalet"
)

// TimeFormat is the layout of the Date_Time column.
const TimeFormat = "2006-01-02 15:04:05"

// ErrNoData is returned when no observations fall in a requested window.
var ErrNoData = errors.New("meteo: no observations in time window")

// Column names.
const (
	colTime      = "Date_Time"
	colLowerT    = "T8"
	colUpperT    = "T114"
	colSpeed     = "Speed"
	colDirection = "Azimuth"
	colSigma     = "AzimSigma"
	colClass     = "E_dT"
)

// Record is a single mast observation.
type Record struct {
	Time time.Time

	// LowerTemperature and UpperTemperature are the air temperatures [°C]
	// at the lower and upper measurement heights.
	LowerTemperature, UpperTemperature float64

	// Speed is the wind speed [m/s] at the reference height.
	Speed float64

	// Direction is the wind direction [°] and DirectionSigma its
	// standard deviation.
	Direction, DirectionSigma float64

	// Class is the reported stability class.
	Class bultynckmalet.Class
}

// Records is a time series of observations.
type Records []Record

// Read reads ';'-separated observations from r. The first line must be
// a header naming the columns.
func Read(r io.Reader) (Records, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("meteo: %v", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("meteo: empty file")
	}
	cols := make(map[string]int)
	for i, h := range lines[0] {
		cols[strings.TrimSpace(h)] = i
	}
	for _, c := range []string{colTime, colLowerT, colUpperT, colSpeed, colDirection, colSigma, colClass} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("meteo: missing column %q", c)
		}
	}

	out := make(Records, 0, len(lines)-1)
	for n, line := range lines[1:] {
		var rec Record
		rec.Time, err = time.Parse(TimeFormat, strings.TrimSpace(line[cols[colTime]]))
		if err != nil {
			return nil, fmt.Errorf("meteo: line %d: %v", n+2, err)
		}
		f := func(col string) float64 {
			if err != nil {
				return 0
			}
			var v float64
			v, err = strconv.ParseFloat(strings.TrimSpace(line[cols[col]]), 64)
			if err != nil {
				err = fmt.Errorf("meteo: line %d: column %s: %v", n+2, col, err)
			}
			return v
		}
		rec.LowerTemperature = f(colLowerT)
		rec.UpperTemperature = f(colUpperT)
		rec.Speed = f(colSpeed)
		rec.Direction = f(colDirection)
		rec.DirectionSigma = f(colSigma)
		rec.Class = bultynckmalet.Class(f(colClass))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadFile reads observations from the named file.
func ReadFile(path string) (Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meteo: %v", err)
	}
	defer f.Close()
	return Read(f)
}

// Window returns the records with times in [t0, t1].
func (r Records) Window(t0, t1 time.Time) (Records, error) {
	var out Records
	for _, rec := range r {
		if !rec.Time.Before(t0) && !rec.Time.After(t1) {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrNoData, t0.Format(TimeFormat), t1.Format(TimeFormat))
	}
	return out, nil
}

// Directions returns the wind direction of each record.
func (r Records) Directions() []float64 {
	o := make([]float64, len(r))
	for i, rec := range r {
		o[i] = rec.Direction
	}
	return o
}

// Mast describes the measurement heights of the observations and how
// they are converted to model input.
type Mast struct {
	// LowerHeight and UpperHeight are the temperature measurement
	// heights [m].
	LowerHeight, UpperHeight float64

	// ReferenceHeight is the wind speed measurement height [m].
	ReferenceHeight float64

	// AveragingTime is the duration of each observation [min].
	AveragingTime float64

	// Classify specifies that stability classes are calculated from the
	// temperature gradient and wind speed rather than taken from the
	// records.
	Classify bool
}

// DefaultMast returns the measurement setup of the SCK CEN mast.
func DefaultMast() *Mast {
	return &Mast{
		LowerHeight:     8,
		UpperHeight:     114,
		ReferenceHeight: 69,
		AveragingTime:   10,
	}
}

// Meteorology converts the records into model input for a release at
// stack height hs [m]. Air temperature at the stack is interpolated
// linearly between the two measurement heights.
func (m *Mast) Meteorology(r Records, hs float64) (*adder.Meteorology, error) {
	if len(r) == 0 {
		return nil, ErrNoData
	}
	if m.UpperHeight == m.LowerHeight {
		return nil, fmt.Errorf("meteo: temperature measurement heights must differ")
	}
	met := &adder.Meteorology{
		Time:            make([]time.Time, len(r)),
		WindDirection:   make([]float64, len(r)),
		WindSpeed:       make([]float64, len(r)),
		Temperature:     make([]float64, len(r)),
		Class:           make([]bultynckmalet.Class, len(r)),
		ReferenceHeight: m.ReferenceHeight,
		AveragingTime:   m.AveragingTime,
	}
	for i, rec := range r {
		met.Time[i] = rec.Time
		met.WindDirection[i] = rec.Direction
		met.WindSpeed[i] = rec.Speed
		lapse := (rec.UpperTemperature - rec.LowerTemperature) / (m.UpperHeight - m.LowerHeight)
		met.Temperature[i] = rec.LowerTemperature + lapse*(hs-m.LowerHeight)
		if m.Classify {
			e, err := bultynckmalet.StabilityClass(rec.UpperTemperature, rec.LowerTemperature,
				m.UpperHeight, m.LowerHeight, rec.Speed)
			if err != nil {
				return nil, fmt.Errorf("meteo: %s: %v", rec.Time.Format(TimeFormat), err)
			}
			met.Class[i] = e
		} else {
			met.Class[i] = rec.Class
		}
	}
	if err := met.Validate(); err != nil {
		return nil, err
	}
	return met, nil
}
