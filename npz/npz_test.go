/*
 * npz_test.go, part of gomwfn.
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

package npz

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArchive(Te *testing.T) *Archive {
	A := New()
	require.NoError(Te, A.SetRows("grid_points_bohr", []float64{0, 0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0}, 3))
	require.NoError(Te, A.SetFloat64s("esp_au", []float64{0.1, 0.2, 0.3, 0.4}))
	require.NoError(Te, A.SetInt64s("grid_shape", []int64{4, 1, 1}))
	return A
}

func TestSaveOpen(Te *testing.T) {
	A := sampleArchive(Te)
	name := filepath.Join(Te.TempDir(), "sub", "grid.npz")
	require.NoError(Te, A.Save(name))

	B, err := Open(name)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"grid_points_bohr", "esp_au", "grid_shape"}, B.Keys())

	pts, shape, err := B.Float64s("grid_points_bohr")
	require.NoError(Te, err)
	assert.Equal(Te, []int{4, 3}, shape)
	assert.Equal(Te, 3.0, pts[9])

	gs, _, err := B.Int64s("grid_shape")
	require.NoError(Te, err)
	assert.Equal(Te, []int64{4, 1, 1}, gs)

	_, _, err = B.Int64s("esp_au")
	assert.Error(Te, err)
	_, _, err = B.Float64s("nothing")
	assert.ErrorContains(Te, err, "no array nothing")

	//no temporary files left around
	files, err := os.ReadDir(filepath.Dir(name))
	require.NoError(Te, err)
	assert.Len(Te, files, 1)
}

func TestSubsetRows(Te *testing.T) {
	A := sampleArchive(Te)
	B := New()
	idx := []int{3, 1}
	require.NoError(Te, B.SubsetRows(A, "grid_points_bohr", idx))
	require.NoError(Te, B.SubsetRows(A, "esp_au", idx))
	require.NoError(Te, B.Copy(A, "grid_shape"))

	pts, shape, err := B.Float64s("grid_points_bohr")
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 3}, shape)
	assert.Equal(Te, []float64{3, 0, 0, 1, 0, 0}, pts)
	esp, _, _ := B.Float64s("esp_au")
	assert.Equal(Te, []float64{0.4, 0.2}, esp)

	E, _ := A.Entry("grid_shape")
	F, _ := B.Entry("grid_shape")
	assert.Equal(Te, E.raw, F.raw)

	require.NoError(Te, B.SubsetRows(A, "esp_au", nil))
	esp, shape, _ = B.Float64s("esp_au")
	assert.Empty(Te, esp)
	assert.Equal(Te, []int{0}, shape)
}

func TestDelete(Te *testing.T) {
	A := sampleArchive(Te)
	A.Delete("grid_points_bohr")
	A.Delete("missing")
	assert.Equal(Te, []string{"esp_au", "grid_shape"}, A.Keys())
	assert.False(Te, A.Has("grid_points_bohr"))
	E, ok := A.Entry("grid_shape")
	require.True(Te, ok)
	assert.Equal(Te, 3, E.Len())
}

func TestSetRowsShape(Te *testing.T) {
	A := New()
	assert.Error(Te, A.SetRows("x", []float64{1, 2}, 3))
	require.NoError(Te, A.SetRows("x", nil, 3))
	E, _ := A.Entry("x")
	assert.Equal(Te, "<f8", E.Type)
	assert.Equal(Te, 0, E.Len())
	assert.Equal(Te, []int{0, 3}, E.Shape)

	//the empty array survives a trip to disk with its columns
	name := filepath.Join(Te.TempDir(), "empty.npz")
	require.NoError(Te, A.Save(name))
	B, err := Open(name)
	require.NoError(Te, err)
	d, shape, err := B.Float64s("x")
	require.NoError(Te, err)
	assert.Empty(Te, d)
	assert.Equal(Te, []int{0, 3}, shape)

	C := New()
	require.NoError(Te, C.SubsetRows(sampleArchive(Te), "grid_points_bohr", nil))
	_, shape, err = C.Float64s("grid_points_bohr")
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 3}, shape)
}

func TestHeaderLength(Te *testing.T) {
	for _, shape := range [][]int{{}, {7}, {0, 3}, {2, 3, 4}} {
		h := npyHeader("<f8", shape)
		assert.Zero(Te, len(h)%64, "shape %v", shape)
		assert.Equal(Te, byte('\n'), h[len(h)-1])
	}
}

// fortranRaw stores data as a Fortran-ordered array.
func fortranRaw(Te *testing.T, A *Archive, name, descr string, shape []int, data []byte) {
	raw := npyHeader(descr, shape)
	raw = bytes.Replace(raw, []byte("'fortran_order': False, "), []byte("'fortran_order': True, "), 1)
	raw = append(raw[:len(raw)-1], ' ', '\n')
	E, err := newEntry(name, append(raw, data...))
	require.NoError(Te, err)
	require.True(Te, E.Fortran)
	A.put(E)
}

func le32(v ...int32) []byte {
	var ret []byte
	for _, i := range v {
		ret = binary.LittleEndian.AppendUint32(ret, uint32(i))
	}
	return ret
}

func TestSubsetRowsDtypes(Te *testing.T) {
	A := New()
	f4 := make([]byte, 0, 12)
	for _, v := range []float32{0.5, 1.5, 2.5} {
		f4 = binary.LittleEndian.AppendUint32(f4, math.Float32bits(v))
	}
	require.NoError(Te, A.putRaw("esp_f4", "<f4", []int{3}, f4))
	require.NoError(Te, A.putRaw("pairs", "<i4", []int{3, 2}, le32(0, 1, 10, 11, 20, 21)))
	require.NoError(Te, A.putRaw("cube", "<i4", []int{3, 2, 2}, le32(0, 1, 2, 3, 10, 11, 12, 13, 20, 21, 22, 23)))
	fortranRaw(Te, A, "fpairs", "<i4", []int{3, 2}, le32(0, 10, 20, 1, 11, 21))
	require.NoError(Te, A.SetStrings("labels", []string{"O", "H", "Cl"}))

	B := New()
	idx := []int{2, 0}
	for _, k := range A.Keys() {
		require.NoError(Te, B.SubsetRows(A, k, idx), k)
	}

	E, _ := B.Entry("esp_f4")
	assert.Equal(Te, "<f4", E.Type)
	f, shape, err := B.Float64s("esp_f4")
	require.NoError(Te, err)
	assert.Equal(Te, []int{2}, shape)
	assert.Equal(Te, []float64{2.5, 0.5}, f)

	E, _ = B.Entry("pairs")
	assert.Equal(Te, "<i4", E.Type)
	p, shape, err := B.Int64s("pairs")
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 2}, shape)
	assert.Equal(Te, []int64{20, 21, 0, 1}, p)

	c, shape, err := B.Int64s("cube")
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 2, 2}, shape)
	assert.Equal(Te, []int64{20, 21, 22, 23, 0, 1, 2, 3}, c)

	E, _ = B.Entry("fpairs")
	assert.False(Te, E.Fortran)
	fp, _, err := B.Int64s("fpairs")
	require.NoError(Te, err)
	assert.Equal(Te, []int64{20, 21, 0, 1}, fp)

	s, _, err := B.Strings("labels")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"Cl", "O"}, s)

	assert.Error(Te, B.SubsetRows(A, "pairs", []int{3}))
	require.NoError(Te, A.SetInt64("count", 3))
	assert.Error(Te, B.SubsetRows(A, "count", idx))
}

func TestStrings(Te *testing.T) {
	A := New()
	require.NoError(Te, A.SetStrings("atom_symbols", []string{"O", "H", "H"}))
	E, _ := A.Entry("atom_symbols")
	assert.Equal(Te, "<U1", E.Type)
	name := filepath.Join(Te.TempDir(), "s.npz")
	require.NoError(Te, A.Save(name))
	B, err := Open(name)
	require.NoError(Te, err)
	s, shape, err := B.Strings("atom_symbols")
	require.NoError(Te, err)
	assert.Equal(Te, []int{3}, shape)
	assert.Equal(Te, []string{"O", "H", "H"}, s)

	require.NoError(Te, A.putRaw("bytes", "|S3", []int{2}, []byte("Na\x00Cl\x00")))
	s, _, err = A.Strings("bytes")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"Na", "Cl"}, s)

	_, _, err = B.Strings("missing")
	assert.Error(Te, err)
	require.NoError(Te, A.SetFloat64s("x", []float64{1}))
	_, _, err = A.Strings("x")
	assert.ErrorContains(Te, err, "not a string array")
}

func TestScalar(Te *testing.T) {
	A := New()
	require.NoError(Te, A.SetInt64("original_point_count", 42))
	name := filepath.Join(Te.TempDir(), "c.npz")
	require.NoError(Te, A.Save(name))
	B, err := Open(name)
	require.NoError(Te, err)
	E, ok := B.Entry("original_point_count")
	require.True(Te, ok)
	assert.Empty(Te, E.Shape)
	assert.Equal(Te, 1, E.Size())
	v, shape, err := B.Int64s("original_point_count")
	require.NoError(Te, err)
	assert.Empty(Te, shape)
	assert.Equal(Te, []int64{42}, v)
}

func TestTranspose(Te *testing.T) {
	//2x3 matrix stored column after column
	d := []int{1, 4, 2, 5, 3, 6}
	assert.Equal(Te, []int{1, 2, 3, 4, 5, 6}, transpose(d, 2, 3))
}

func TestOpenGarbage(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "bad.npz")
	require.NoError(Te, os.WriteFile(name, []byte("not a zip"), 0644))
	_, err := Open(name)
	assert.ErrorContains(Te, err, "not a zip archive")
}
