/*
 * sample.go, part of gomwfn.
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
	"math/rand/v2"
	"sort"

	v3 "github.com/mwfntools/gomwfn/v3"
	"gonum.org/v1/gonum/floats"
)

// newRand returns a generator seeded with seed, or from entropy if
// seed is nil.
func newRand(seed *int64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(*seed), 0x853c49e6748fea9b))
}

// Uniform returns target elements of candidates chosen uniformly at random
// without replacement, in ascending order. If target is not smaller than
// the number of candidates, a copy of candidates is returned.
func Uniform(candidates []int, target int, r *rand.Rand) []int {
	if target >= len(candidates) {
		return append([]int(nil), candidates...)
	}
	pool := append([]int(nil), candidates...)
	//partial Fisher-Yates: the first target elements end up sampled
	for i := 0; i < target; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	ret := pool[:target]
	sort.Ints(ret)
	return ret
}

// Farthest selects target elements of candidates, which index vectors in
// coords, by greedy farthest-point sampling. The first selected point is
// candidates[start]. Every following one is the candidate whose distance to
// the nearest selected point is largest, the lowest position in candidates
// winning ties. Each step only measures distances to the point added last,
// so the cost is O(target*len(candidates)). The selection is returned in
// ascending order. If target is not smaller than the number of candidates,
// a copy of candidates is returned.
func Farthest(coords *v3.Matrix, candidates []int, target, start int) []int {
	if target >= len(candidates) {
		return append([]int(nil), candidates...)
	}
	if target <= 0 {
		return []int{}
	}
	mind := make([]float64, len(candidates))
	for i := range mind {
		mind[i] = math.Inf(1)
	}
	ret := make([]int, 0, target)
	cur := start
	for {
		ret = append(ret, candidates[cur])
		mind[cur] = -1 //never picked again
		if len(ret) == target {
			break
		}
		p := coords.Vec(candidates[cur])
		for j, d := range mind {
			if d < 0 {
				continue
			}
			if dd := floats.Distance(p, coords.Vec(candidates[j]), 2); dd < d {
				mind[j] = dd
			}
		}
		cur = floats.MaxIdx(mind)
	}
	sort.Ints(ret)
	return ret
}
