/*
 * histogram.go, part of gomwfn.
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

// Package gridplot draws histograms that compare the values of a grid
// property before and after filtering.
package gridplot

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram counts values in the bins defined by Dividers. Bin i holds
// the values v with Dividers[i] <= v < Dividers[i+1].
type Histogram struct {
	Dividers []float64
	Counts   []float64
	Total    int //values counted
	Outside  int //values out of range, including NaNs
}

// Dividers returns n+1 evenly spaced bin edges covering the finite values
// of every set given. The last edge is nudged up so the maximum falls
// in the last bin.
func Dividers(n int, sets ...[]float64) ([]float64, error) {
	if n < 1 {
		return nil, Error{message: fmt.Sprintf("need at least one bin, got %d", n), deco: []string{"Dividers"}}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, set := range sets {
		for _, v := range set {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return nil, Error{message: "no finite values to bin", deco: []string{"Dividers"}}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	d := make([]float64, n+1)
	floats.Span(d, lo, hi)
	d[n] = math.Nextafter(hi, math.Inf(1))
	return d, nil
}

// NewHistogram bins values. values is not modified.
func NewHistogram(dividers, values []float64) *Histogram {
	H := &Histogram{Dividers: append([]float64(nil), dividers...)}
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	sort.Float64s(data)
	//stat.Histogram panics on values off the limits, so they go first.
	mini := sort.SearchFloat64s(data, dividers[0])
	maxi := sort.SearchFloat64s(data, dividers[len(dividers)-1])
	data = data[mini:maxi]
	H.Total = len(data)
	H.Outside = len(values) - H.Total
	H.Counts = stat.Histogram(nil, H.Dividers, data, nil)
	return H
}

// Sum returns the number of counted values.
func (H *Histogram) Sum() float64 {
	return floats.Sum(H.Counts)
}

// Width returns the width of the bins.
func (H *Histogram) Width() float64 {
	if len(H.Dividers) < 2 {
		return 0
	}
	return H.Dividers[1] - H.Dividers[0]
}
