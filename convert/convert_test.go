/*
 * convert_test.go, part of gomwfn.
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

package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwfntools/gomwfn/multiwfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake copies the input to the destination given after the menu choices,
// unless the input is empty, in which case it only complains.
const fake = `#!/bin/sh
read -r in
read -r a
read -r b
read -r c
read -r dest
cat > /dev/null
if [ ! -s "$in" ]; then
	echo "Error: no basis set information"
	exit 24
fi
cp "$in" "$dest"
exit 24
`

func setup(Te *testing.T) (*multiwfn.Handle, string) {
	dir := Te.TempDir()
	bin := filepath.Join(dir, "Multiwfn")
	require.NoError(Te, os.WriteFile(bin, []byte(fake), 0o755))
	in := filepath.Join(dir, "h2o.fchk")
	require.NoError(Te, os.WriteFile(in, []byte("wavefunction"), 0o644))
	return multiwfn.NewHandle(bin), in
}

func TestScript(Te *testing.T) {
	assert.Equal(Te, "/a/x.fchk\n100\n2\n32\n/a/x.mwfn\n0\n0\nq\n", Script("/a/x.fchk", "/a/x.mwfn"))
	assert.Equal(Te, "a/x.mwfn", DefaultOutput("a/x.fchk"))
}

func TestToMwfn(Te *testing.T) {
	H, in := setup(Te)
	ctx := context.Background()
	out, err := ToMwfn(ctx, H, in, "", false)
	require.NoError(Te, err)
	assert.Equal(Te, filepath.Join(filepath.Dir(in), "h2o.mwfn"), out)
	b, err := os.ReadFile(out)
	require.NoError(Te, err)
	assert.Equal(Te, "wavefunction", string(b))

	_, err = ToMwfn(ctx, H, in, out, false)
	assert.ErrorContains(Te, err, "already exists")
	_, err = ToMwfn(ctx, H, in, out, true)
	assert.NoError(Te, err)

	other := filepath.Join(Te.TempDir(), "sub", "w.mwfn")
	out, err = ToMwfn(ctx, H, in, other, false)
	require.NoError(Te, err)
	assert.Equal(Te, other, out)

	_, err = ToMwfn(ctx, H, in, in, true)
	assert.ErrorContains(Te, err, "is the input")
	_, err = ToMwfn(ctx, H, in+".missing", "", false)
	assert.ErrorContains(Te, err, "not found")
}

func TestToMwfnNoOutput(Te *testing.T) {
	H, in := setup(Te)
	require.NoError(Te, os.WriteFile(in, nil, 0o644))
	_, err := ToMwfn(context.Background(), H, in, "", false)
	assert.ErrorContains(Te, err, "did not create")
	assert.ErrorContains(Te, err, "no basis set information")
}
