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

// Package dose calculates external gamma dose rates from airborne
// radionuclide concentrations using a point-kernel integration with
// attenuation and buildup in air (Healy and Baker, 1968).
package dose

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adder"
	"github.com/spatialmodel/adder/internal/hash"
)

// DefaultAirDensity is the density of air [g/cm³] used when none is given.
const DefaultAirDensity = 0.001161

// curie is the number of decays per second in one curie.
const curie = 3.7e10

// Line is a gamma emission line of a radionuclide.
type Line struct {
	// Energy is the photon energy [keV].
	Energy float64

	// Intensity is the number of photons emitted per decay.
	Intensity float64
}

// Detector is a dose-rate receptor. Coordinates are relative to the
// stack base [m].
type Detector struct {
	Name    string
	X, Y, Z float64
}

// Engine calculates dose rates on a fixed grid for a fixed set of
// emission lines.
type Engine struct {
	Grid  *adder.Grid
	Lines []Line

	// AirDensity is the density of air [g/cm³].
	AirDensity float64

	Buildup *BuildupTable

	// Log receives diagnostic messages. If nil, the standard logger is used.
	Log logrus.FieldLogger

	cacheOnce sync.Once
	cache     *requestcache.Cache
}

// NewEngine returns a dose engine for the given grid and emission lines.
// A non-positive air density is replaced by DefaultAirDensity and a nil
// buildup table by ANS. All line energies must be covered by the
// attenuation, buildup, and dose conversion tables.
func NewEngine(g *adder.Grid, lines []Line, rho float64, b *BuildupTable) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("dose: nil grid")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("dose: no emission lines")
	}
	if rho <= 0 {
		rho = DefaultAirDensity
	}
	if b == nil {
		b = ANS
	}
	for _, l := range lines {
		if l.Intensity < 0 || math.IsNaN(l.Intensity) {
			return nil, fmt.Errorf("dose: invalid intensity %g for %g keV line", l.Intensity, l.Energy)
		}
		if _, _, err := Attenuation(l.Energy, rho); err != nil {
			return nil, err
		}
		if _, err := b.Column(l.Energy); err != nil {
			return nil, err
		}
		if _, err := H10PerKerma(l.Energy); err != nil {
			return nil, err
		}
	}
	return &Engine{
		Grid:       g,
		Lines:      lines,
		AirDensity: rho,
		Buildup:    b,
	}, nil
}

func (e *Engine) log() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

// response returns the air kerma rate [nGy/h] at detector d caused by a
// unit activity concentration [Bq/m³] in each grid cell, for one photon
// of energy l.Energy per decay.
func (e *Engine) response(l Line, d Detector) ([]float64, error) {
	g := e.Grid
	mu, muEn, err := Attenuation(l.Energy, e.AirDensity)
	if err != nil {
		return nil, err
	}
	prefac := 0.0364 * (1293 / (e.AirDensity * 1e6)) * (muEn / 100) * l.Energy * 1e-3
	q := g.CellVolume() / curie

	r := make([]float64, g.Len())
	mux := make([]float64, g.Len())
	for i, x := range g.X {
		for j, y := range g.Y {
			for k, z := range g.Z {
				n := g.Index(i, j, k)
				dx, dy, dz := x-d.X, y-d.Y, z-d.Z
				r[n] = math.Sqrt(dx*dx + dy*dy + dz*dz)
				mux[n] = mu * r[n]
			}
		}
	}
	b, err := e.Buildup.Factors(l.Energy, mux)
	if err != nil {
		return nil, err
	}
	nz := len(g.Z)
	out := make([]float64, len(r))
	for n := range out {
		if mux[n] == 0 {
			continue
		}
		out[n] = prefac * q * b[n] * math.Exp(-mux[n]) / (r[n] * r[n]) * 1e9 * 3600
		if g.Z[n%nz] == 0 {
			out[n] /= 2
		}
	}
	return out, nil
}

// DoseRate returns the ambient dose equivalent rate h10 [nSv/h] and the
// air kerma rate [nGy/h] at detector d caused by the activity
// concentration field c [Bq/m³].
func (e *Engine) DoseRate(c *sparse.DenseArray, d Detector) (h10, kerma float64, err error) {
	if err = e.checkShape(c); err != nil {
		return 0, 0, err
	}
	for _, l := range e.Lines {
		resp, err := e.response(l, d)
		if err != nil {
			return 0, 0, err
		}
		var sum float64
		for n, v := range c.Elements {
			sum += v * resp[n]
		}
		ka := l.Intensity * sum
		kerma += ka
		h, err := KermaToH10(ka, l.Energy)
		if err != nil {
			return 0, 0, err
		}
		h10 += h
	}
	return h10, kerma, nil
}

func (e *Engine) checkShape(c *sparse.DenseArray) error {
	if c == nil {
		return fmt.Errorf("dose: nil concentration field")
	}
	if len(c.Elements) != e.Grid.Len() {
		return fmt.Errorf("dose: concentration field shape %v does not match grid shape %v",
			c.Shape, e.Grid.Shape())
	}
	return nil
}

// Factors holds the dose rate at a detector per unit activity
// concentration in each grid cell. The dose rate caused by a
// concentration field is the sum over cells of the product of the
// concentration and the factor.
type Factors struct {
	Detector Detector

	// H10 holds ambient dose equivalent rate factors [(nSv/h)/(Bq/m³)].
	H10 *sparse.DenseArray

	// Kerma holds air kerma rate factors [(nGy/h)/(Bq/m³)].
	Kerma *sparse.DenseArray
}

func (e *Engine) computeFactors(d Detector) (*Factors, error) {
	f := &Factors{
		Detector: d,
		H10:      e.Grid.Zeros(),
		Kerma:    e.Grid.Zeros(),
	}
	for _, l := range e.Lines {
		resp, err := e.response(l, d)
		if err != nil {
			return nil, err
		}
		ratio, err := H10PerKerma(l.Energy)
		if err != nil {
			return nil, err
		}
		for n, r := range resp {
			ka := l.Intensity * r
			f.Kerma.Elements[n] += ka
			f.H10.Elements[n] += ratio * ka
		}
	}
	e.log().WithFields(logrus.Fields{
		"detector": d.Name,
		"lines":    len(e.Lines),
	}).Debug("calculated dose factors")
	return f, nil
}

func (e *Engine) factorCache() *requestcache.Cache {
	e.cacheOnce.Do(func() {
		e.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return e.computeFactors(request.(Detector))
		}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(100))
	})
	return e.cache
}

// Factors returns the dose rate factors for detector d. Results are
// memoized, so concurrent and repeated requests for the same detector
// only calculate the factors once.
func (e *Engine) Factors(ctx context.Context, d Detector) (*Factors, error) {
	r := e.factorCache().NewRequest(ctx, d, hash.Hash(d))
	result, err := r.Result()
	if err != nil {
		return nil, err
	}
	return result.(*Factors), nil
}
