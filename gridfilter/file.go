/*
 * file.go, part of gomwfn.
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

package gridfilter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/grids"
	"go.uber.org/zap"
)

// DefaultOutput returns the archive name used when none is given:
// the input name with "_filtered" added before the extension.
func DefaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_filtered.npz"
}

// sameFile reports whether a and b name the same file, or would.
func sameFile(a, b string) bool {
	absa, erra := filepath.Abs(a)
	absb, errb := filepath.Abs(b)
	if erra == nil && errb == nil && filepath.Clean(absa) == filepath.Clean(absb) {
		return true
	}
	ia, erra := os.Stat(a)
	ib, errb := os.Stat(b)
	return erra == nil && errb == nil && os.SameFile(ia, ib)
}

// structure returns the structure to filter with: stored, which comes with
// the points, or else the first of sources that yields one.
func (F *Filter) structure(ctx context.Context, stored *mwfn.Structure, sources []mwfn.StructureSource) (*mwfn.Structure, error) {
	if stored != nil {
		F.log.Debug("using the structure stored with the points", zap.Int("atoms", stored.Len()))
		return stored, nil
	}
	var errs []error
	for _, src := range sources {
		if src == nil {
			continue
		}
		S, err := src.Structure(ctx)
		if err != nil {
			F.log.Warn("structure source failed", zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if S != nil {
			return S, nil
		}
	}
	return nil, Error{kind: ConfigurationError, message: "distance filtering needs a structure: the points come without one and no wavefunction or structure file yielded one", deco: []string{"structure"}, err: errors.Join(errs...)}
}

// Grid filters the grid G, read from the file input, and writes the result
// to out, or to DefaultOutput(input) if out is empty. The output is written
// to a temporary file in its directory and then renamed, so a failed run
// leaves nothing behind. Arrays other than the points and the per-point
// properties are copied unchanged.
func (F *Filter) Grid(ctx context.Context, G *grids.Grid, input, out string, sources ...mwfn.StructureSource) (*Result, error) {
	if out == "" {
		out = DefaultOutput(input)
	}
	if input != "" && sameFile(input, out) {
		return nil, Error{kind: ConfigurationError, message: "output would overwrite the input grid", filename: out, deco: []string{"Grid"}}
	}
	var S *mwfn.Structure
	if F.opts.Proximity() {
		var err error
		if S, err = F.structure(ctx, G.Structure, sources); err != nil {
			return nil, err
		}
	}
	res, err := F.Run(G.Points, S)
	if err != nil {
		return nil, err
	}
	A, err := G.Subset(res.Indices)
	if err != nil {
		return nil, Error{kind: DataShapeError, message: "unable to subset the grid archive", filename: input, deco: []string{"Grid"}, err: err}
	}
	if err := A.Save(out); err != nil {
		return nil, mwfn.ErrDecorate(err, "gridfilter.Grid")
	}
	res.Output = out
	F.log.Info("wrote filtered grid", zap.String("file", out), zap.Int("points", len(res.Indices)))
	return res, nil
}

// File reads the grid archive input and filters it as Grid does.
func (F *Filter) File(ctx context.Context, input, out string, sources ...mwfn.StructureSource) (*Result, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, Error{kind: ConfigurationError, message: "unable to open grid", filename: input, deco: []string{"File"}, err: err}
	}
	G, err := grids.Load(input)
	if err != nil {
		return nil, Error{kind: DataShapeError, message: "unable to read grid", filename: input, deco: []string{"File"}, err: err}
	}
	return F.Grid(ctx, G, input, out, sources...)
}

// Source filters the points supplied by P in memory and returns them along
// with the result. The structure, if the options need one, is taken from
// the first of sources that yields one.
func (F *Filter) Source(ctx context.Context, P mwfn.PointSource, sources ...mwfn.StructureSource) (*Result, *mwfn.PointSet, error) {
	pts, err := P.Points(ctx)
	if err != nil {
		return nil, nil, Error{kind: DataShapeError, message: "unable to obtain the points", deco: []string{"Source"}, err: err}
	}
	var S *mwfn.Structure
	if F.opts.Proximity() {
		if S, err = F.structure(ctx, nil, sources); err != nil {
			return nil, nil, err
		}
	}
	res, err := F.Run(pts, S)
	if err != nil {
		return nil, nil, err
	}
	return res, pts.Subset(res.Indices), nil
}
