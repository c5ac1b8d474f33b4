/*
 * scripts_test.go, part of gomwfn.
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

package scripts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(Te *testing.T, files map[string]string) string {
	base := filepath.Join(Te.TempDir(), "examples")
	for name, content := range files {
		p := filepath.Join(base, filepath.FromSlash(name))
		require.NoError(Te, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(Te, os.WriteFile(p, []byte(content), 0o644))
	}
	return base
}

func TestDetect(Te *testing.T) {
	base := writeTree(Te, map[string]string{
		"esp.txt":    "5\n1\n3\n2\n0\nq\n",
		"table.txt":  "x y z\n1.0 2.0 3.0\n4.0 5.0 6.0\nq\n",
		"empty.txt":  "\n\n",
		"run.sh":     "echo hi\n",
		"RUN.BAT":    "echo hi\n",
		"plot.gnu":   "plot x\n",
		"view.vmd":   "mol new\n",
		"draw.tcl":   "puts hi\n",
		"notes.md":   "# notes\n",
		"mostly.txt": "1\n2\n3\nsome words here\n4\n5\n6\n7\n8\n9\n",
	})
	for name, want := range map[string]Executor{
		"esp.txt":    Multiwfn,
		"table.txt":  Data,
		"empty.txt":  Unknown,
		"run.sh":     Shell,
		"RUN.BAT":    Batch,
		"plot.gnu":   Gnuplot,
		"view.vmd":   VMD,
		"draw.tcl":   Tcl,
		"notes.md":   Unknown,
		"mostly.txt": Multiwfn,
		"absent.txt": Unknown,
	} {
		assert.Equal(Te, want, Detect(filepath.Join(base, name)), name)
	}
}

func TestDiscoverFind(Te *testing.T) {
	base := writeTree(Te, map[string]string{
		"ESP/esp.txt":        "5\n1\n3\n2\n0\nq\n",
		"ESP/esp.sh":         "Multiwfn < esp.txt\n",
		"charges/CHELPG.txt": "7\n12\n1\ny\n0\nq\n",
		"top.txt":            "q\n",
		"RESP/a_resp.txt":    "7\n18\n1\ny\n0\nq\n",
		"RESP/b_resp.txt":    "7\n18\n1\ny\n0\nq\n",
	})
	list, err := Discover(base, filepath.Join(Te.TempDir(), "missing"))
	require.NoError(Te, err)
	require.Len(Te, list, 6)
	var ids []string
	for _, S := range list {
		ids = append(ids, S.ID)
	}
	assert.Equal(Te, []string{
		"examples:charges/CHELPG.txt",
		"examples:ESP/esp.sh",
		"examples:ESP/esp.txt",
		"examples:RESP/a_resp.txt",
		"examples:RESP/b_resp.txt",
		"examples:top.txt",
	}, ids)
	assert.Equal(Te, ".", list[5].Category)
	assert.Equal(Te, "charges", list[0].Category)
	assert.True(Te, filepath.IsAbs(list[0].Path))

	//the stem matches both esp files; the Multiwfn one wins
	S, ok := Find(list, "esp")
	require.True(Te, ok)
	assert.Equal(Te, "examples:ESP/esp.txt", S.ID)
	assert.Equal(Te, Multiwfn, S.Executor)

	S, ok = Find(list, "esp/ESP.SH")
	require.True(Te, ok)
	assert.Equal(Te, Shell, S.Executor)

	S, ok = Find(list, "chelpg")
	require.True(Te, ok)
	assert.Equal(Te, "charges/CHELPG.txt", S.Relative())

	S, ok = Find(list, "a_resp.txt")
	require.True(Te, ok)
	assert.Equal(Te, "a_resp", S.Stem())

	//suffix matches must be unique
	_, ok = Find(list, "resp.txt")
	assert.False(Te, ok)
	S, ok = Find(list, "elpg.txt")
	require.True(Te, ok)
	assert.Equal(Te, "CHELPG.txt", S.Name())

	_, ok = Find(list, "  ")
	assert.False(Te, ok)

	assert.Len(Te, Filter(list, Multiwfn), 5)
	assert.Len(Te, Filter(list, Shell), 1)

	head, err := list[0].Head(2)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"7", "12"}, head)
	all, err := list[0].Head(0)
	require.NoError(Te, err)
	assert.Len(Te, all, 6)
}

func TestParseExecutor(Te *testing.T) {
	e, err := ParseExecutor("GnuPlot")
	require.NoError(Te, err)
	assert.Equal(Te, Gnuplot, e)
	assert.Equal(Te, "gnuplot", e.String())
	_, err = ParseExecutor("python")
	assert.ErrorContains(Te, err, "unknown executor")
}
