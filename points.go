/*
 * points.go, part of gomwfn.
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

package mwfn

import (
	"strings"

	v3 "github.com/mwfntools/gomwfn/v3"
)

// AUSuffix is appended to property names when they are stored in archives.
const AUSuffix = "_au"

// PointSet is a set of grid points, in bohr, and the values of one or more
// properties on each point. Values[k][i] is property Names[k] on point i.
type PointSet struct {
	Coords *v3.Matrix
	Names  []string
	Values [][]float64
}

// NewPointSet returns an empty PointSet over coords.
func NewPointSet(coords *v3.Matrix) *PointSet {
	return &PointSet{Coords: coords}
}

// Len returns the number of points.
func (P *PointSet) Len() int {
	return P.Coords.NVecs()
}

// AddProperty adds a property. values must have one element per point.
func (P *PointSet) AddProperty(name string, values []float64) error {
	if len(values) != P.Len() {
		return errorf("", "AddProperty", "property %s has %d values for %d points", name, len(values), P.Len())
	}
	if P.index(name) >= 0 {
		return errorf("", "AddProperty", "property %s already present", name)
	}
	P.Names = append(P.Names, name)
	P.Values = append(P.Values, values)
	return nil
}

func (P *PointSet) index(name string) int {
	for i, v := range P.Names {
		if v == name {
			return i
		}
	}
	return -1
}

// Lookup returns the stored name of the property called name. Names match
// exactly or with AUSuffix appended, so "esp" finds "esp_au".
func (P *PointSet) Lookup(name string) (string, bool) {
	if P.index(name) >= 0 {
		return name, true
	}
	if !strings.HasSuffix(name, AUSuffix) && P.index(name+AUSuffix) >= 0 {
		return name + AUSuffix, true
	}
	return "", false
}

// Property returns the values of the property name (see Lookup).
func (P *PointSet) Property(name string) ([]float64, bool) {
	n, ok := P.Lookup(name)
	if !ok {
		return nil, false
	}
	return P.Values[P.index(n)], true
}

// Validate checks that every property has one value per point.
func (P *PointSet) Validate() error {
	if len(P.Names) != len(P.Values) {
		return errorf("", "Validate", "%d property names but %d value sets", len(P.Names), len(P.Values))
	}
	for k, v := range P.Values {
		if len(v) != P.Len() {
			return errorf("", "Validate", "property %s has %d values for %d points", P.Names[k], len(v), P.Len())
		}
	}
	return nil
}

// Subset returns a new PointSet with copies of the points in idx,
// in that order.
func (P *PointSet) Subset(idx []int) *PointSet {
	ret := &PointSet{
		Coords: P.Coords.SomeVecs(idx),
		Names:  append([]string(nil), P.Names...),
		Values: make([][]float64, len(P.Values)),
	}
	for k, vals := range P.Values {
		sub := make([]float64, len(idx))
		for j, i := range idx {
			sub[j] = vals[i]
		}
		ret.Values[k] = sub
	}
	return ret
}
