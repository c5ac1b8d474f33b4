/*
 * archive.go, part of gomwfn.
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
	"fmt"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/npz"
	v3 "github.com/mwfntools/gomwfn/v3"
)

// Keys of a grid archive. Everything is in atomic units except the
// _angstrom copies of the grid geometry.
const (
	PointsKey         = "grid_points_bohr"
	AtomNumbersKey    = "atom_numbers"
	AtomCoordsKey     = "atom_coords_bohr"
	ShapeKey          = "grid_shape"
	OriginKey         = "grid_origin_bohr"
	EndKey            = "grid_end_bohr"
	SpacingKey        = "grid_spacing_bohr"
	OriginAKey        = "grid_origin_angstrom"
	EndAKey           = "grid_end_angstrom"
	SpacingAKey       = "grid_spacing_angstrom"
	OriginalCountKey  = "original_point_count"
	FilteredCountKey  = "filtered_point_count"
	legacyPointsKey   = "grid_points_angstrom"
	legacyAtomsKey    = "atom_coords_angstrom"
	legacySymbolsKey  = "atom_symbols"
	coordinateColumns = 3
)

// keys that never hold per-point data, even if their leading dimension
// happens to match the number of points.
var fixedKeys = map[string]bool{
	AtomNumbersKey:   true,
	AtomCoordsKey:    true,
	legacyAtomsKey:   true,
	legacySymbolsKey: true,
	ShapeKey:         true,
	OriginKey:        true,
	EndKey:           true,
	SpacingKey:       true,
	OriginAKey:       true,
	EndAKey:          true,
	SpacingAKey:      true,
	OriginalCountKey: true,
	FilteredCountKey: true,
}

// Grid is a property grid read from an archive.
type Grid struct {
	Points    *mwfn.PointSet
	Structure *mwfn.Structure //nil if the archive has no usable structure
	Archive   *npz.Archive
	pointsKey string
}

// Load reads a grid archive.
func Load(name string) (*Grid, error) {
	A, err := npz.Open(name)
	if err != nil {
		return nil, err
	}
	G, err := FromArchive(A)
	if err != nil {
		return nil, Error{"not a grid archive", name, []string{"Load"}, err}
	}
	return G, nil
}

// FromArchive interprets A as a grid archive. Points are read from
// grid_points_bohr, or from grid_points_angstrom (converted to bohr) in
// archives written by older versions. Every other 1-D numeric array with one
// value per point is a property.
func FromArchive(A *npz.Archive) (*Grid, error) {
	G := &Grid{Archive: A}
	scale := 1.0
	switch {
	case A.Has(PointsKey):
		G.pointsKey = PointsKey
	case A.Has(legacyPointsKey):
		G.pointsKey = legacyPointsKey
		scale = mwfn.A2Bohr
	default:
		return nil, Error{fmt.Sprintf("no %s array; available: %s", PointsKey, strings.Join(A.Keys(), ", ")), "", []string{"FromArchive"}, nil}
	}
	pts, shape, err := A.Float64s(G.pointsKey)
	if err != nil {
		return nil, Error{"unable to read grid points", "", []string{"FromArchive"}, err}
	}
	if len(pts) > 0 && (len(shape) != 2 || shape[1] != coordinateColumns) {
		return nil, Error{fmt.Sprintf("%s has shape %v, expected (N, 3)", G.pointsKey, shape), "", []string{"FromArchive"}, nil}
	}
	coords, err := v3.NewMatrix(pts)
	if err != nil {
		return nil, Error{"bad grid points", "", []string{"FromArchive"}, err}
	}
	if scale != 1 {
		coords.Scale(scale)
	}
	G.Points = mwfn.NewPointSet(coords)
	n := coords.NVecs()
	for _, k := range A.Keys() {
		E, _ := A.Entry(k)
		if k == G.pointsKey || fixedKeys[k] || !E.Numeric() || len(E.Shape) != 1 || E.Len() != n {
			continue
		}
		vals, _, err := A.Float64s(k)
		if err != nil {
			return nil, Error{"unable to read property " + k, "", []string{"FromArchive"}, err}
		}
		if err := G.Points.AddProperty(k, vals); err != nil {
			return nil, Error{"bad property " + k, "", []string{"FromArchive"}, err}
		}
	}
	G.Structure, err = structureFromArchive(A)
	if err != nil {
		return nil, err
	}
	return G, nil
}

func structureFromArchive(A *npz.Archive) (*mwfn.Structure, error) {
	if !A.Has(AtomNumbersKey) && !A.Has(legacySymbolsKey) {
		return nil, nil
	}
	coordKey := AtomCoordsKey
	scale := 1.0
	if !A.Has(coordKey) {
		if !A.Has(legacyAtomsKey) {
			return nil, nil
		}
		coordKey = legacyAtomsKey
		scale = mwfn.A2Bohr
	}
	coords, _, err := A.Float64s(coordKey)
	if err != nil {
		return nil, Error{"unable to read atomic coordinates", "", []string{"structureFromArchive"}, err}
	}
	var S *mwfn.Structure
	if A.Has(AtomNumbersKey) {
		nums, _, err := A.Int64s(AtomNumbersKey)
		if err != nil {
			return nil, Error{"unable to read atomic numbers", "", []string{"structureFromArchive"}, err}
		}
		S, err = mwfn.StructureFromNumbers(nums, coords)
		if err != nil {
			return nil, Error{"inconsistent structure in archive", "", []string{"structureFromArchive"}, err}
		}
	} else {
		S, err = structureFromSymbols(A, coords)
		if err != nil {
			return nil, errDecorate(err, "structureFromArchive")
		}
	}
	if scale != 1 {
		S.Coords.Scale(scale)
	}
	return S, nil
}

// structureFromSymbols builds the structure of old archives, which stored
// element symbols instead of atomic numbers.
func structureFromSymbols(A *npz.Archive, coords []float64) (*mwfn.Structure, error) {
	symbols, _, err := A.Strings(legacySymbolsKey)
	if err != nil {
		return nil, Error{"unable to read atomic symbols", "", []string{"structureFromSymbols"}, err}
	}
	atoms := make([]*mwfn.Atom, len(symbols))
	for i, s := range symbols {
		atoms[i] = mwfn.NewAtom(s)
		if atoms[i].Z == 0 {
			return nil, Error{fmt.Sprintf("unknown element %q in %s", s, legacySymbolsKey), "", []string{"structureFromSymbols"}, nil}
		}
	}
	c, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, Error{"bad atomic coordinates", "", []string{"structureFromSymbols"}, err}
	}
	S, err := mwfn.NewStructure(atoms, c)
	if err != nil {
		return nil, Error{"inconsistent structure in archive", "", []string{"structureFromSymbols"}, err}
	}
	return S, nil
}

// PerPointKeys returns the names of the arrays whose leading dimension runs
// over the grid points, in archive order.
func (G *Grid) PerPointKeys() []string {
	n := G.Points.Len()
	ret := make([]string, 0, len(G.Points.Names)+1)
	for _, k := range G.Archive.Keys() {
		E, _ := G.Archive.Entry(k)
		if k == G.pointsKey || (!fixedKeys[k] && len(E.Shape) > 0 && E.Len() == n) {
			ret = append(ret, k)
		}
	}
	return ret
}

// Subset returns a new archive with the points idx and every per-point array
// restricted to them. All other arrays are copied unchanged, and the
// original and retained point counts are recorded.
func (G *Grid) Subset(idx []int) (*npz.Archive, error) {
	perPoint := make(map[string]bool)
	for _, k := range G.PerPointKeys() {
		perPoint[k] = true
	}
	out := npz.New()
	for _, k := range G.Archive.Keys() {
		var err error
		if perPoint[k] {
			err = out.SubsetRows(G.Archive, k, idx)
		} else {
			err = out.Copy(G.Archive, k)
		}
		if err != nil {
			return nil, Error{"unable to subset " + k, "", []string{"Subset"}, err}
		}
	}
	original := int64(G.Points.Len())
	if G.Archive.Has(OriginalCountKey) {
		//keep the count of the very first grid when filtering twice
		if prev, _, err := G.Archive.Int64s(OriginalCountKey); err == nil && len(prev) == 1 {
			original = prev[0]
		}
	}
	if err := out.SetInt64(OriginalCountKey, original); err != nil {
		return nil, err
	}
	if err := out.SetInt64(FilteredCountKey, int64(len(idx))); err != nil {
		return nil, err
	}
	return out, nil
}

// Metadata describes the regular grid Multiwfn evaluated a property on.
type Metadata struct {
	Origin  [3]float64 //bohr
	End     [3]float64
	Spacing [3]float64
	Counts  [3]int
}

// NewArchive builds a grid archive from points, an optional structure and
// the grid metadata.
func NewArchive(P *mwfn.PointSet, S *mwfn.Structure, meta *Metadata) (*npz.Archive, error) {
	if err := P.Validate(); err != nil {
		return nil, Error{"inconsistent points", "", []string{"NewArchive"}, err}
	}
	A := npz.New()
	set := func(err error) error {
		if err != nil {
			return Error{"unable to build archive", "", []string{"NewArchive"}, err}
		}
		return nil
	}
	for k, name := range P.Names {
		if err := set(A.SetFloat64s(name, P.Values[k])); err != nil {
			return nil, err
		}
	}
	if err := set(A.SetRows(PointsKey, P.Coords.Flat(), coordinateColumns)); err != nil {
		return nil, err
	}
	if meta != nil {
		counts := []int64{int64(meta.Counts[0]), int64(meta.Counts[1]), int64(meta.Counts[2])}
		if err := set(A.SetInt64s(ShapeKey, counts)); err != nil {
			return nil, err
		}
		for _, v := range []struct {
			bohr, angstrom string
			val            [3]float64
		}{
			{OriginKey, OriginAKey, meta.Origin},
			{EndKey, EndAKey, meta.End},
			{SpacingKey, SpacingAKey, meta.Spacing},
		} {
			b := v.val[:]
			a := []float64{b[0] * mwfn.Bohr2A, b[1] * mwfn.Bohr2A, b[2] * mwfn.Bohr2A}
			if err := set(A.SetFloat64s(v.bohr, append([]float64(nil), b...))); err != nil {
				return nil, err
			}
			if err := set(A.SetFloat64s(v.angstrom, a)); err != nil {
				return nil, err
			}
		}
	}
	if S != nil {
		if err := set(A.SetInt64s(AtomNumbersKey, S.Numbers())); err != nil {
			return nil, err
		}
		if err := set(A.SetRows(AtomCoordsKey, S.Coords.Flat(), coordinateColumns)); err != nil {
			return nil, err
		}
	}
	return A, nil
}
