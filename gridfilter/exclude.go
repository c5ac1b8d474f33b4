/*
 * exclude.go, part of gomwfn.
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
	"math"

	"github.com/mwfntools/gomwfn"
	"gonum.org/v1/gonum/floats"
)

// Exclusion counts the points removed by each rule. A point can be
// removed by more than one rule.
type Exclusion struct {
	Kept       []int          //indices of the surviving points, ascending
	ByDistance int            //too close to a nucleus
	ByValue    map[string]int //above the threshold of a property, by property name
}

// cutoffs returns the exclusion radius around each nucleus of S, or nil if
// O does not filter by distance.
func cutoffs(S *mwfn.Structure, O *Options) []float64 {
	switch {
	case O.MinDistance != nil:
		ret := make([]float64, S.Len())
		for i := range ret {
			ret[i] = *O.MinDistance
		}
		return ret
	case O.RadiusScale != nil:
		ret := S.Radii(O.fallback())
		floats.Scale(*O.RadiusScale, ret)
		return ret
	}
	return nil
}

// Exclude applies the distance and value rules of O to P. S is only needed,
// and must not be nil, when O filters by distance. A point is excluded when
// its distance to some nucleus is strictly smaller than that nucleus' cutoff,
// or when a thresholded property is strictly larger than its maximum, or NaN.
// An empty result is not an error here.
func Exclude(P *mwfn.PointSet, S *mwfn.Structure, O *Options) (*Exclusion, error) {
	if err := O.Validate(); err != nil {
		return nil, err
	}
	if err := P.Validate(); err != nil {
		return nil, Error{kind: DataShapeError, message: "inconsistent point set", deco: []string{"Exclude"}, err: err}
	}
	var cut []float64
	if O.Proximity() {
		if S == nil {
			return nil, errorf(ConfigurationError, "Exclude", "distance filtering needs a structure")
		}
		if err := S.Validate(); err != nil {
			return nil, Error{kind: DataShapeError, message: "inconsistent structure", deco: []string{"Exclude"}, err: err}
		}
		cut = cutoffs(S, O)
	}
	ths, err := O.thresholds(P)
	if err != nil {
		return nil, err
	}
	ex := &Exclusion{Kept: make([]int, 0, P.Len()), ByValue: make(map[string]int, len(ths))}
	for i := 0; i < P.Len(); i++ {
		keep := true
		if cut != nil && tooClose(P, i, S, cut) {
			ex.ByDistance++
			keep = false
		}
		for _, t := range ths {
			if t.exceeded(i) {
				ex.ByValue[t.name]++
				keep = false
			}
		}
		if keep {
			ex.Kept = append(ex.Kept, i)
		}
	}
	return ex, nil
}

func tooClose(P *mwfn.PointSet, i int, S *mwfn.Structure, cut []float64) bool {
	p := P.Coords.Vec(i)
	for j, c := range cut {
		if floats.Distance(p, S.Coords.Vec(j), 2) < c {
			return true
		}
	}
	return false
}

func (t threshold) exceeded(i int) bool {
	v := t.values[i]
	if math.IsNaN(v) {
		return true
	}
	if t.abs {
		v = math.Abs(v)
	}
	return v > t.max
}
