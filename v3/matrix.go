/*
 * matrix.go, part of gomwfn.
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

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of 3D vectors, one per row. A Matrix with no vectors
// has a nil Dense, since gonum does not allow zero-sized matrices.
type Matrix struct {
	*mat.Dense
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	if vecs <= 0 {
		return &Matrix{}
	}
	return &Matrix{mat.NewDense(vecs, 3, nil)}
}

// NewMatrix builds a Matrix from a flat, row-major slice. The slice
// is used as backing data, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	if len(data)%3 != 0 {
		return nil, Error{fmt.Sprintf("%d values can't be split into 3D vectors", len(data)), []string{"NewMatrix"}}
	}
	if len(data) == 0 {
		return &Matrix{}, nil
	}
	return &Matrix{mat.NewDense(len(data)/3, 3, data)}, nil
}

// Dense2Matrix wraps a gonum Dense with 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	if A == nil {
		return &Matrix{}
	}
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	if F == nil || F.Dense == nil {
		return 0
	}
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// Vec returns the i-th vector. The returned slice shares
// storage with F.
func (F *Matrix) Vec(i int) []float64 {
	if i < 0 || i >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	return F.RawRowView(i)
}

// SomeVecs returns a new Matrix with copies of the vectors of F
// given by idx, in that order.
func (F *Matrix) SomeVecs(idx []int) *Matrix {
	ret := Zeros(len(idx))
	for k, i := range idx {
		copy(ret.RawRowView(k), F.Vec(i))
	}
	return ret
}

// Flat returns a copy of the coordinates as a row-major slice.
func (F *Matrix) Flat() []float64 {
	n := F.NVecs()
	ret := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		ret = append(ret, F.RawRowView(i)...)
	}
	return ret
}

// Dist returns the Euclidean distance between vector i of F
// and vector j of A.
func (F *Matrix) Dist(i int, A *Matrix, j int) float64 {
	return floats.Distance(F.Vec(i), A.Vec(j), 2)
}

// Scale multiplies every coordinate in F by f, in place.
func (F *Matrix) Scale(f float64) {
	if F.NVecs() == 0 {
		return
	}
	F.Dense.Scale(f, F.Dense)
}

// Equal reports whether A and F have the same vectors within tol.
func (F *Matrix) Equal(A *Matrix, tol float64) bool {
	if F.NVecs() != A.NVecs() {
		return false
	}
	if F.NVecs() == 0 {
		return true
	}
	for i := 0; i < F.NVecs(); i++ {
		a, b := F.RawRowView(i), A.RawRowView(i)
		for k := range a {
			if math.Abs(a[k]-b[k]) > tol {
				return false
			}
		}
	}
	return true
}
