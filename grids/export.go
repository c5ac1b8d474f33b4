/*
 * export.go, part of gomwfn.
 *
 * Copyright 2024 The gomwfn Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package grids

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/multiwfn"
	v3 "github.com/mwfntools/gomwfn/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// codes are the options of Multiwfn's grid analysis menu (main function 5)
// for each supported property.
var codes = map[string]string{
	"esp": "12", //total electrostatic potential
	"vdw": "25", //van der Waals potential, carbon test atom
}

// Properties are the grid properties that can be exported.
var Properties = []string{"esp", "vdw"}

// GridModes are Multiwfn's grid qualities: low, medium and high.
var GridModes = []string{"1", "2", "3"}

// Script returns the script that evaluates the property with the given
// Multiwfn code on a grid and exports it to output.txt.
func Script(wfn, code, mode string) string {
	return multiwfn.ComposeScript(wfn, "5", code, mode, "3", "0", "q")
}

const number = `([-+0-9.EeDd]+)`

var (
	originRe  = regexp.MustCompile(`Coordinate of origin in X,Y,Z is\s+` + number + `\s+` + number + `\s+` + number + `\s+Bohr`)
	endRe     = regexp.MustCompile(`Coordinate of end point in X,Y,Z is\s+` + number + `\s+` + number + `\s+` + number + `\s+Bohr`)
	spacingRe = regexp.MustCompile(`Grid spacing in X,Y,Z is\s+` + number + `\s+` + number + `\s+` + number + `\s+Bohr`)
	countsRe  = regexp.MustCompile(`Number of points in X,Y,Z is\s+(\d+)\s+(\d+)\s+(\d+)`)
)

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(s), 64)
}

// ParseMetadata extracts the grid geometry Multiwfn prints while
// evaluating a property on a grid.
func ParseMetadata(stdout string) (*Metadata, error) {
	M := new(Metadata)
	for _, v := range []struct {
		re  *regexp.Regexp
		dst *[3]float64
	}{{originRe, &M.Origin}, {endRe, &M.End}, {spacingRe, &M.Spacing}} {
		m := v.re.FindStringSubmatch(stdout)
		if m == nil {
			return nil, Error{message: "failed to parse Multiwfn output with pattern " + v.re.String(), deco: []string{"ParseMetadata"}}
		}
		for i := 0; i < 3; i++ {
			f, err := parseFloat(m[i+1])
			if err != nil {
				return nil, Error{message: "bad number in grid metadata", deco: []string{"ParseMetadata"}, err: err}
			}
			v.dst[i] = f
		}
	}
	m := countsRe.FindStringSubmatch(stdout)
	if m == nil {
		return nil, Error{message: "failed to parse grid point counts from Multiwfn output", deco: []string{"ParseMetadata"}}
	}
	for i := 0; i < 3; i++ {
		M.Counts[i], _ = strconv.Atoi(m[i+1])
	}
	return M, nil
}

// Equal reports whether M and N describe the same grid within tol.
func (M *Metadata) Equal(N *Metadata, tol float64) bool {
	if M.Counts != N.Counts {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.Abs(M.Origin[i]-N.Origin[i]) > tol || math.Abs(M.End[i]-N.End[i]) > tol || math.Abs(M.Spacing[i]-N.Spacing[i]) > tol {
			return false
		}
	}
	return true
}

// ReadGridFile reads the output.txt file Multiwfn exports grid data to:
// four columns with x, y, z, in bohr, and the value.
func ReadGridFile(r io.Reader) (*v3.Matrix, []float64, error) {
	var coords, vals []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, nil, Error{message: fmt.Sprintf("line %d: expected four columns (x, y, z, value), found %d", line, len(fields)), deco: []string{"ReadGridFile"}}
		}
		for i, f := range fields {
			v, err := parseFloat(f)
			if err != nil {
				return nil, nil, Error{message: fmt.Sprintf("line %d", line), deco: []string{"ReadGridFile"}, err: err}
			}
			if i < 3 {
				coords = append(coords, v)
			} else {
				vals = append(vals, v)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, Error{message: "unable to read grid data", deco: []string{"ReadGridFile"}, err: err}
	}
	if len(vals) == 0 {
		return nil, nil, Error{message: "grid file did not contain any data", deco: []string{"ReadGridFile"}}
	}
	m, err := v3.NewMatrix(coords)
	return m, vals, err
}

// scan is the result of evaluating one property.
type scan struct {
	coords *v3.Matrix
	values []float64
	meta   *Metadata
}

func runProperty(ctx context.Context, H *multiwfn.Handle, wfn, prop, mode string) (*scan, error) {
	s := new(scan)
	err := H.InTempDir(ctx, "multiwfn-grid-", Script(wfn, codes[prop], mode), func(dir string, out *multiwfn.Output) error {
		var err error
		if s.meta, err = ParseMetadata(out.Stdout); err != nil {
			return err
		}
		name := filepath.Join(dir, "output.txt")
		f, err := os.Open(name)
		if err != nil {
			return Error{message: "Multiwfn did not produce the expected output.txt grid file", filename: name, deco: []string{"runProperty"}, err: err}
		}
		defer f.Close()
		s.coords, s.values, err = ReadGridFile(f)
		return err
	})
	if err != nil {
		return nil, mwfn.ErrDecorate(err, "runProperty")
	}
	return s, nil
}

// Options for Export.
type Options struct {
	Properties []string
	GridMode   string //1, 2 or 3; 2 if empty
	Jobs       int    //concurrent Multiwfn runs, values < 1 mean 1
	Log        *zap.Logger
}

// tolerance for comparing grids from different runs, in bohr.
const tolerance = 1e-6

// Export evaluates O.Properties on a grid around the system in wfn, each in
// its own Multiwfn run, and returns them as a grid archive. All properties
// must be evaluated on the same grid. The structure is exported from the
// wavefunction with multiwfn.GeometrySource.
func Export(ctx context.Context, H *multiwfn.Handle, wfn string, O Options) (*Grid, error) {
	mode := O.GridMode
	if mode == "" {
		mode = "2"
	}
	if !slices.Contains(GridModes, mode) {
		return nil, Error{message: fmt.Sprintf("grid mode must be one of 1, 2 or 3, got %q", mode), deco: []string{"Export"}}
	}
	var props []string
	for _, p := range O.Properties {
		p = strings.ToLower(p)
		if _, ok := codes[p]; !ok {
			return nil, Error{message: fmt.Sprintf("unsupported property %q, supported: %s", p, strings.Join(Properties, ", ")), deco: []string{"Export"}}
		}
		if !slices.Contains(props, p) {
			props = append(props, p)
		}
	}
	if len(props) == 0 {
		return nil, Error{message: "no grid properties specified", deco: []string{"Export"}}
	}
	abs, err := filepath.Abs(wfn)
	if err == nil {
		_, err = os.Stat(abs)
	}
	if err != nil {
		return nil, Error{message: "wavefunction file not found", filename: wfn, deco: []string{"Export"}, err: err}
	}
	log := O.Log
	if log == nil {
		log = zap.NewNop()
	}

	scans := make([]*scan, len(props))
	var S *mwfn.Structure
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(O.Jobs, 1))
	for i, p := range props {
		g.Go(func() error {
			log.Info("evaluating grid property", zap.String("property", p), zap.String("grid_mode", mode))
			s, err := runProperty(gctx, H, abs, p, mode)
			scans[i] = s
			return err
		})
	}
	g.Go(func() error {
		var err error
		S, err = multiwfn.GeometrySource{Handle: H, Wavefunction: abs}.Structure(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mwfn.ErrDecorate(err, "Export")
	}

	first := scans[0]
	P := mwfn.NewPointSet(first.coords)
	for i, s := range scans {
		if !s.coords.Equal(first.coords, tolerance) {
			return nil, Error{message: fmt.Sprintf("grid mismatch detected when processing property %s; all properties must use the same grid", props[i]), deco: []string{"Export"}}
		}
		if !s.meta.Equal(first.meta, tolerance) {
			return nil, Error{message: fmt.Sprintf("grid metadata of property %s differs from that of %s", props[i], props[0]), deco: []string{"Export"}}
		}
		if err := P.AddProperty(props[i]+mwfn.AUSuffix, s.values); err != nil {
			return nil, Error{message: "bad grid data", deco: []string{"Export"}, err: err}
		}
	}
	A, err := NewArchive(P, S, first.meta)
	if err != nil {
		return nil, err
	}
	log.Info("exported grid", zap.Int("points", P.Len()), zap.Ints("shape", first.meta.Counts[:]), zap.Int("atoms", S.Len()))
	return &Grid{Points: P, Structure: S, Archive: A, pointsKey: PointsKey}, nil
}

// DefaultOutput returns <stem>_grid.npz next to the wavefunction.
func DefaultOutput(wfn string) string {
	return filepath.Join(filepath.Dir(wfn), multiwfn.Stem(wfn)+"_grid.npz")
}

// ToFile exports the grid properties of wfn to out, or to
// DefaultOutput(wfn) if out is empty, and returns the archive name.
func ToFile(ctx context.Context, H *multiwfn.Handle, wfn, out string, O Options) (string, error) {
	G, err := Export(ctx, H, wfn, O)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = DefaultOutput(wfn)
	}
	if err := G.Archive.Save(out); err != nil {
		return "", mwfn.ErrDecorate(err, "ToFile")
	}
	return out, nil
}
