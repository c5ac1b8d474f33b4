/*
 * mwfn_test.go, part of gomwfn.
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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/mwfntools/gomwfn/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterPDB = `REMARK   Generated by Multiwfn
CRYST1    0.000    0.000    0.000  90.00  90.00  90.00 P 1
HETATM    1  O1  MOL     1       0.000   0.000   0.119  1.00  0.00           O
HETATM    2  H2  MOL     1       0.000   0.763  -0.477  1.00  0.00           H
HETATM    3  H3  MOL     1       0.000  -0.763  -0.477  1.00  0.00           H
END
`

const waterXYZ = `3
water
O    0.000000    0.000000    0.119000
H    0.000000    0.763000   -0.477000
H    0.000000   -0.763000   -0.477000
`

func TestPDBRead(Te *testing.T) {
	S, err := PDBRead(strings.NewReader(waterPDB))
	require.NoError(Te, err)
	assert.Equal(Te, []string{"O", "H", "H"}, S.Symbols())
	assert.Equal(Te, []int64{8, 1, 1}, S.Numbers())
	assert.InDelta(Te, 0.763*A2Bohr, S.Coords.Vec(1)[1], 1e-9)
}

func TestPDBReadNoElementColumn(Te *testing.T) {
	in := "ATOM      1  CA  ALA A   1       1.000   2.000   3.000  1.00  0.00\n" +
		"HETATM    2 CA   CA  A   2       0.000   0.000   0.000  1.00  0.00\n"
	S, err := PDBRead(strings.NewReader(in))
	require.NoError(Te, err)
	assert.Equal(Te, []string{"C", "Ca"}, S.Symbols())

	_, err = PDBRead(strings.NewReader("REMARK nothing here\n"))
	assert.Error(Te, err)
}

func TestXYZReadWrite(Te *testing.T) {
	S, err := XYZRead(strings.NewReader(waterXYZ))
	require.NoError(Te, err)
	P, err := PDBRead(strings.NewReader(waterPDB))
	require.NoError(Te, err)
	assert.True(Te, S.Coords.Equal(P.Coords, 1e-9))

	var buf bytes.Buffer
	require.NoError(Te, XYZWrite(&buf, S, "again"))
	S2, err := XYZRead(&buf)
	require.NoError(Te, err)
	assert.True(Te, S.Coords.Equal(S2.Coords, 1e-6))

	_, err = XYZRead(strings.NewReader("4\ncomment\nO 0 0 0\n"))
	assert.Error(Te, err)
}

func TestFileStructure(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "water.xyz")
	require.NoError(Te, os.WriteFile(name, []byte(waterXYZ), 0644))
	S, err := FileStructure(name).Structure(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, 3, S.Len())

	bad := filepath.Join(dir, "water.mol2")
	require.NoError(Te, os.WriteFile(bad, []byte(waterXYZ), 0644))
	_, err = StructureFileRead(bad)
	assert.ErrorContains(Te, err, "unknown structure format")
}

func TestRadii(Te *testing.T) {
	c, _ := v3.NewMatrix(make([]float64, 9))
	S, err := NewStructure([]*Atom{NewAtom("c"), NewAtom("H"), NewAtom("Uuo")}, c)
	require.NoError(Te, err)
	r := S.Radii(DefaultFallbackRadius)
	assert.InDelta(Te, 0.76*A2Bohr, r[0], 1e-12)
	assert.InDelta(Te, 0.31*A2Bohr, r[1], 1e-12)
	assert.InDelta(Te, 1.5*A2Bohr, r[2], 1e-12)
	assert.Equal(Te, 0, S.Atoms[2].Z)

	_, err = NewStructure([]*Atom{NewAtom("C")}, c)
	assert.ErrorContains(Te, err, "1 atoms but 3 coordinates")
}

func TestStructureFromNumbers(Te *testing.T) {
	S, err := StructureFromNumbers([]int64{6, 17}, []float64{0, 0, 0, 1, 1, 1})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"C", "Cl"}, S.Symbols())
	_, err = StructureFromNumbers([]int64{6}, []float64{0, 0})
	assert.Error(Te, err)
}

func TestPointSet(Te *testing.T) {
	c, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0, 2, 0, 0})
	P := NewPointSet(c)
	require.NoError(Te, P.AddProperty("esp_au", []float64{0.1, 0.2, 0.3}))
	assert.Error(Te, P.AddProperty("esp_au", []float64{1, 2, 3}))
	assert.Error(Te, P.AddProperty("vdw_au", []float64{1}))

	name, ok := P.Lookup("esp")
	assert.True(Te, ok)
	assert.Equal(Te, "esp_au", name)
	_, ok = P.Lookup("vdw")
	assert.False(Te, ok)

	sub := P.Subset([]int{2, 0})
	v, _ := sub.Property("esp_au")
	assert.Equal(Te, []float64{0.3, 0.1}, v)
	assert.Equal(Te, []float64{2, 0, 0, 0, 0, 0}, sub.Coords.Flat())
	require.NoError(Te, sub.Validate())

	P.Values[0] = P.Values[0][:2]
	assert.Error(Te, P.Validate())
}

func TestSymbols(Te *testing.T) {
	z, ok := AtomicNumber("FE")
	assert.True(Te, ok)
	assert.Equal(Te, 26, z)
	assert.Equal(Te, "Fe", Symbol(26))
	assert.Equal(Te, "X", Symbol(500))
	_, ok = AtomicNumber("X")
	assert.False(Te, ok)
}
