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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/sparse"
	goshp "github.com/jonas-p/go-shp"
	"gonum.org/v1/gonum/floats"
)

// Outputter writes ground-level results to a shapefile. Output variables
// are expressions of the ground-level model variables listed by
// GroundVariables.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

// GroundVariables lists the model variables available for output
// expressions, and their descriptions.
var GroundVariables = map[string]string{
	"TIC":   "Ground-level time-integrated concentration [Bq s/m3]",
	"Cmax":  "Maximum ground-level concentration over all time steps [Bq/m3]",
	"Cmean": "Mean ground-level concentration over all time steps [Bq/m3]",
	"DEP":   "Deposited activity [Bq/m2]",
	"X":     "Cell center easting relative to the stack [m]",
	"Y":     "Cell center northing relative to the stack [m]",
}

// NewOutputter creates an Outputter that writes outputVariables, a map of
// output field names to expressions, to fileName. outputFunctions holds
// functions that can be used in the expressions in addition to the
// defaults (exp, log10, and sqrt). Output variables may be defined in
// terms of each other.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("adder: no output variables specified")
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":   unaryFunc("exp", math.Exp),
		"log10": unaryFunc("log10", math.Log10),
		"sqrt":  unaryFunc("sqrt", math.Sqrt),
	}
	for k, f := range outputFunctions {
		funcs[k] = f
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}
	o := &Outputter{
		fileName:        fileName,
		outputVariables: make(map[string]string),
		outputFunctions: funcs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
	}
	for k, v := range outputVariables {
		o.outputVariables[k] = strings.Replace(strings.Replace(v, "\r\n", " ", -1), "\n", " ", -1)
	}
	for k := range o.outputVariables {
		expr, err := o.expand(k, nil)
		if err != nil {
			return nil, err
		}
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("adder: output variable %s: %v", k, err)
		}
		for _, v := range e.Vars() {
			if _, ok := GroundVariables[v]; !ok {
				return nil, fmt.Errorf("adder: undefined variable name '%s' in output variable %s", v, k)
			}
		}
		o.expressions[k] = e
	}
	return o, nil
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("adder: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		return f(arg[0].(float64)), nil
	}
}

// expand returns the expression for output variable k with any
// references to other output variables replaced by their expressions.
func (o *Outputter) expand(k string, seen []string) (string, error) {
	for _, s := range seen {
		if s == k {
			return "", fmt.Errorf("adder: output variable %s is defined in terms of itself", k)
		}
	}
	expr := o.outputVariables[k]
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
	if err != nil {
		return "", fmt.Errorf("adder: output variable %s: %v", k, err)
	}
	for _, v := range e.Vars() {
		if _, ok := o.outputVariables[v]; !ok || v == k {
			continue
		}
		sub, err := o.expand(v, append(seen, k))
		if err != nil {
			return "", err
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`)
		expr = re.ReplaceAllString(expr, "("+sub+")")
	}
	return expr, nil
}

// checkOutputNames checks that output variable names are valid
// shapefile field names.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		if len(key) > 10 {
			return fmt.Errorf("adder: output variable name '%s' exceeds 10 characters", key)
		} else if !valid.MatchString(key) {
			return fmt.Errorf("adder: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// groundVariables calculates the values of GroundVariables in each
// ground-level grid cell.
func groundVariables(c *Concentrations, dep *sparse.DenseArray) map[string][]float64 {
	g := c.Grid
	n := g.Columns()
	nz := len(g.Z)
	v := map[string][]float64{
		"TIC":   g.ground(c.TIC).Elements,
		"Cmax":  make([]float64, n),
		"Cmean": make([]float64, n),
		"DEP":   dep.Elements,
		"X":     make([]float64, n),
		"Y":     make([]float64, n),
	}
	ts := make([]float64, c.Len())
	for col := 0; col < n; col++ {
		for i, s := range c.Steps {
			ts[i] = s.Elements[col*nz]
		}
		if len(ts) > 0 {
			v["Cmax"][col] = floats.Max(ts)
			v["Cmean"][col] = floats.Sum(ts) / float64(len(ts))
		}
		v["X"][col] = g.X[col/len(g.Y)]
		v["Y"][col] = g.Y[col%len(g.Y)]
	}
	return v
}

// Results evaluates the output expressions for each ground-level grid
// cell, with deposition calculated using velocity vdep [m/s].
func (o *Outputter) Results(c *Concentrations, vdep float64) (map[string][]float64, error) {
	dep, err := c.Deposition(vdep)
	if err != nil {
		return nil, err
	}
	vars := groundVariables(c, dep)
	n := c.Grid.Columns()
	r := make(map[string][]float64)
	params := make(map[string]interface{}, len(vars))
	for name, e := range o.expressions {
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			for _, v := range e.Vars() {
				params[v] = vars[v][i]
			}
			val, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("adder: evaluating output variable %s: %v", name, err)
			}
			f, ok := val.(float64)
			if !ok {
				return nil, fmt.Errorf("adder: output variable %s evaluated to %T; want a number", name, val)
			}
			out[i] = f
		}
		r[name] = out
	}
	return r, nil
}

// Output writes the ground-level results to a shapefile. origin is the
// location of the stack in the output projection, which is described by
// the proj4 or WKT string srs. If srs is empty no .prj file is written.
func (o *Outputter) Output(c *Concentrations, vdep float64, origin geom.Point, srs string) error {
	results, err := o.Results(c, vdep)
	if err != nil {
		return err
	}
	vars := make([]string, 0, len(results))
	for v := range results {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	fields := make([]goshp.Field, len(vars))
	for i, v := range vars {
		fields[i] = goshp.FloatField(v, 14, 8)
	}

	fileBase := strings.TrimSuffix(o.fileName, filepath.Ext(o.fileName))
	shape, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("adder: creating output shapefile: %v", err)
	}
	g := c.Grid
	hx, hy := g.Dx/2, g.Dy/2
	col := 0
	for _, x := range g.X {
		for _, y := range g.Y {
			cx, cy := origin.X+x, origin.Y+y
			cell := geom.Polygon{{
				{X: cx - hx, Y: cy - hy},
				{X: cx + hx, Y: cy - hy},
				{X: cx + hx, Y: cy + hy},
				{X: cx - hx, Y: cy + hy},
				{X: cx - hx, Y: cy - hy},
			}}
			outFields := make([]interface{}, len(vars))
			for j, v := range vars {
				outFields[j] = results[v][col]
			}
			if err = shape.EncodeFields(cell, outFields...); err != nil {
				shape.Close()
				return fmt.Errorf("adder: writing output shapefile: %v", err)
			}
			col++
		}
	}
	shape.Close()

	if srs == "" {
		return nil
	}
	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("adder: creating output prj file: %v", err)
	}
	fmt.Fprint(f, srs)
	return f.Close()
}
