/*
 * grids_test.go, part of gomwfn.
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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/multiwfn"
	"github.com/mwfntools/gomwfn/npz"
	v3 "github.com/mwfntools/gomwfn/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const metadataOut = ` Coordinate of origin in X,Y,Z is     -1.000000    -2.000000    -3.000000 Bohr
 Coordinate of end point in X,Y,Z is       1.000000     2.000000     3.000000 Bohr
 Grid spacing in X,Y,Z is        2.000000     4.000000     6.000000 Bohr
 Number of points in X,Y,Z is       2     1     2   Total:        4
`

// fake evaluates grids (main function 5) and exports geometries
// (main function 100).
const fake = `#!/bin/sh
read -r wfn
read -r func
read -r code
cat > /dev/null
if [ "$func" = "100" ]; then
	stem=$(basename "$wfn")
	stem=${stem%.*}
	printf '%s\n' \
'HETATM    1  O1  MOL     1       0.000   0.000   0.119  1.00  0.00           O' \
'HETATM    2  H2  MOL     1       0.000   0.763  -0.477  1.00  0.00           H' \
'HETATM    3  H3  MOL     1       0.000  -0.763  -0.477  1.00  0.00           H' \
'END' > "$stem.pdb"
	exit 0
fi
z=-3.0
if [ "$code" = "25" ] && [ -n "$FAKE_SHIFT" ]; then z=-2.0; fi
cat <<EOF
` + metadataOut + `EOF
cat > output.txt <<EOF
  -1.000000000000E+00  -2.000000000000E+00  $z  0.$code
   1.000000000000E+00  -2.000000000000E+00  -3.0  0.${code}1
  -1.000000000000E+00  -2.000000000000E+00   3.0  -0.$code
   1.000000000000E+00  -2.000000000000E+00   3.0  1.0D-02
EOF
exit 24
`

func setup(Te *testing.T) (*multiwfn.Handle, string) {
	dir := Te.TempDir()
	bin := filepath.Join(dir, "Multiwfn")
	require.NoError(Te, os.WriteFile(bin, []byte(fake), 0o755))
	wfn := filepath.Join(dir, "h2o.fchk")
	require.NoError(Te, os.WriteFile(wfn, []byte("fake"), 0o644))
	H := multiwfn.NewHandle(bin)
	H.SetLogger(zaptest.NewLogger(Te))
	return H, wfn
}

func TestParseMetadata(Te *testing.T) {
	M, err := ParseMetadata("blah\n" + metadataOut)
	require.NoError(Te, err)
	assert.Equal(Te, [3]float64{-1, -2, -3}, M.Origin)
	assert.Equal(Te, [3]float64{1, 2, 3}, M.End)
	assert.Equal(Te, [3]float64{2, 4, 6}, M.Spacing)
	assert.Equal(Te, [3]int{2, 1, 2}, M.Counts)
	assert.True(Te, M.Equal(M, 0))

	_, err = ParseMetadata(strings.Replace(metadataOut, "Number of points", "Points", 1))
	assert.ErrorContains(Te, err, "counts")
	_, err = ParseMetadata("")
	assert.ErrorContains(Te, err, "origin")
}

func TestReadGridFile(Te *testing.T) {
	c, v, err := ReadGridFile(strings.NewReader("1 2 3 0.5\n\n4 5 6 1D-1\n"))
	require.NoError(Te, err)
	assert.Equal(Te, 2, c.NVecs())
	assert.Equal(Te, []float64{4, 5, 6}, c.Vec(1))
	assert.Equal(Te, []float64{0.5, 0.1}, v)

	_, _, err = ReadGridFile(strings.NewReader("1 2 3\n"))
	assert.ErrorContains(Te, err, "four columns")
	_, _, err = ReadGridFile(strings.NewReader(""))
	assert.Error(Te, err)
}

func TestExport(Te *testing.T) {
	H, wfn := setup(Te)
	out := filepath.Join(Te.TempDir(), "grid.npz")
	name, err := ToFile(context.Background(), H, wfn, out, Options{Properties: []string{"esp", "VDW"}, Jobs: 2, Log: zaptest.NewLogger(Te)})
	require.NoError(Te, err)
	assert.Equal(Te, out, name)

	G, err := Load(out)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"esp_au", "vdw_au"}, G.Points.Names)
	esp, _ := G.Points.Property("esp")
	assert.Equal(Te, []float64{0.12, 0.121, -0.12, 0.01}, esp)
	vdw, _ := G.Points.Property("vdw")
	assert.Equal(Te, []float64{0.25, 0.251, -0.25, 0.01}, vdw)
	assert.Equal(Te, []float64{1, -2, 3}, G.Points.Coords.Vec(3))
	require.NotNil(Te, G.Structure)
	assert.Equal(Te, []int64{8, 1, 1}, G.Structure.Numbers())

	A := G.Archive
	shape, _, err := A.Int64s(ShapeKey)
	require.NoError(Te, err)
	assert.Equal(Te, []int64{2, 1, 2}, shape)
	sp, _, err := A.Float64s(SpacingAKey)
	require.NoError(Te, err)
	assert.InDelta(Te, 2*mwfn.Bohr2A, sp[0], 1e-12)
	assert.ElementsMatch(Te, []string{PointsKey, "esp_au", "vdw_au"}, G.PerPointKeys())
}

func TestExportErrors(Te *testing.T) {
	H, wfn := setup(Te)
	ctx := context.Background()
	_, err := Export(ctx, H, wfn, Options{})
	assert.ErrorContains(Te, err, "no grid properties")
	_, err = Export(ctx, H, wfn, Options{Properties: []string{"rho"}})
	assert.ErrorContains(Te, err, "unsupported property")
	_, err = Export(ctx, H, wfn, Options{Properties: []string{"esp"}, GridMode: "4"})
	assert.ErrorContains(Te, err, "grid mode")
	_, err = Export(ctx, H, wfn+".nope", Options{Properties: []string{"esp"}})
	assert.ErrorContains(Te, err, "not found")

	Te.Setenv("FAKE_SHIFT", "1")
	_, err = Export(ctx, H, wfn, Options{Properties: []string{"esp", "vdw"}})
	assert.ErrorContains(Te, err, "grid mismatch")
}

func TestLegacyArchive(Te *testing.T) {
	A := npz.New()
	require.NoError(Te, A.SetRows("grid_points_angstrom", []float64{0, 0, 0, 1, 0, 0, 2, 0, 0}, 3))
	require.NoError(Te, A.SetFloat64s("esp", []float64{1, 2, 3}))
	require.NoError(Te, A.SetInt64s(AtomNumbersKey, []int64{6}))
	require.NoError(Te, A.SetRows("atom_coords_angstrom", []float64{1, 0, 0}, 3))
	require.NoError(Te, A.SetInt64s("grid_shape", []int64{3, 1, 1}))

	G, err := FromArchive(A)
	require.NoError(Te, err)
	assert.InDelta(Te, 2*mwfn.A2Bohr, G.Points.Coords.Vec(2)[0], 1e-12)
	assert.InDelta(Te, mwfn.A2Bohr, G.Structure.Coords.Vec(0)[0], 1e-12)
	assert.Equal(Te, []string{"esp"}, G.Points.Names)

	B, err := G.Subset([]int{2, 0})
	require.NoError(Te, err)
	//values are subset as stored, in A
	pts, shape, err := B.Float64s("grid_points_angstrom")
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 3}, shape)
	assert.Equal(Te, []float64{2, 0, 0, 0, 0, 0}, pts)
	esp, _, _ := B.Float64s("esp")
	assert.Equal(Te, []float64{3, 1}, esp)
	n, _, _ := B.Int64s(FilteredCountKey)
	assert.Equal(Te, []int64{2}, n)
	n, _, _ = B.Int64s(OriginalCountKey)
	assert.Equal(Te, []int64{3}, n)
	for _, k := range []string{OriginalCountKey, FilteredCountKey} {
		E, ok := B.Entry(k)
		require.True(Te, ok)
		assert.Empty(Te, E.Shape, "%s should be a 0-d array", k)
	}
	atoms, _, _ := B.Float64s("atom_coords_angstrom")
	assert.Equal(Te, []float64{1, 0, 0}, atoms)

	//filtering the subset again keeps the first count
	G2, err := FromArchive(B)
	require.NoError(Te, err)
	C, err := G2.Subset([]int{0})
	require.NoError(Te, err)
	n, _, _ = C.Int64s(OriginalCountKey)
	assert.Equal(Te, []int64{3}, n)
}

func TestLegacySymbols(Te *testing.T) {
	A := npz.New()
	require.NoError(Te, A.SetRows("grid_points_angstrom", []float64{0, 0, 0, 1, 0, 0}, 3))
	require.NoError(Te, A.SetFloat64s("esp", []float64{1, 2}))
	require.NoError(Te, A.SetStrings("atom_symbols", []string{"O", "H"}))
	require.NoError(Te, A.SetRows("atom_coords_angstrom", []float64{0, 0, 0, 1, 0, 0}, 3))

	G, err := FromArchive(A)
	require.NoError(Te, err)
	require.NotNil(Te, G.Structure)
	assert.Equal(Te, []int64{8, 1}, G.Structure.Numbers())
	assert.InDelta(Te, mwfn.A2Bohr, G.Structure.Coords.Vec(1)[0], 1e-12)
	assert.Equal(Te, []string{"esp"}, G.Points.Names)

	B, err := G.Subset([]int{1})
	require.NoError(Te, err)
	s, _, err := B.Strings("atom_symbols")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"O", "H"}, s)

	require.NoError(Te, A.SetStrings("atom_symbols", []string{"O", "Xx"}))
	_, err = FromArchive(A)
	assert.ErrorContains(Te, err, "unknown element")
	require.NoError(Te, A.SetStrings("atom_symbols", []string{"O"}))
	_, err = FromArchive(A)
	assert.ErrorContains(Te, err, "inconsistent structure")
}

func TestFromArchiveErrors(Te *testing.T) {
	A := npz.New()
	require.NoError(Te, A.SetFloat64s("esp_au", []float64{1}))
	_, err := FromArchive(A)
	assert.ErrorContains(Te, err, "no grid_points_bohr")

	require.NoError(Te, A.SetFloat64s(PointsKey, []float64{1, 2, 3}))
	_, err = FromArchive(A)
	assert.ErrorContains(Te, err, "expected (N, 3)")

	_, err = Load(filepath.Join(Te.TempDir(), "none.npz"))
	assert.Error(Te, err)
}

func TestEmptyGrid(Te *testing.T) {
	P := mwfn.NewPointSet(v3.Zeros(0))
	require.NoError(Te, P.AddProperty("esp_au", nil))
	A, err := NewArchive(P, nil, nil)
	require.NoError(Te, err)
	G, err := FromArchive(A)
	require.NoError(Te, err)
	assert.Equal(Te, 0, G.Points.Len())
	assert.Nil(Te, G.Structure)
}

func TestSources(Te *testing.T) {
	H, wfn := setup(Te)
	ctx := context.Background()
	P, err := Source{Handle: H, Wavefunction: wfn, Options: Options{Properties: []string{"esp"}}}.Points(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, 4, P.Len())
	assert.Equal(Te, []string{"esp_au"}, P.Names)

	out := filepath.Join(Te.TempDir(), "grid.npz")
	_, err = ToFile(ctx, H, wfn, out, Options{Properties: []string{"vdw"}})
	require.NoError(Te, err)
	Q, err := File(out).Points(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"vdw_au"}, Q.Names)
	S, err := File(out).Structure(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, 3, S.Len())

	_, err = File(filepath.Join(Te.TempDir(), "none.npz")).Points(ctx)
	assert.Error(Te, err)
	bare := filepath.Join(Te.TempDir(), "bare.npz")
	A, err := NewArchive(P, nil, nil)
	require.NoError(Te, err)
	require.NoError(Te, A.Save(bare))
	_, err = File(bare).Structure(ctx)
	assert.ErrorContains(Te, err, "no structure")
}
