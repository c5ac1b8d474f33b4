/*
 * main_test.go, part of gomwfn.
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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/grids"
	v3 "github.com/mwfntools/gomwfn/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// execute runs gomwfn with args and returns its standard output.
func execute(Te *testing.T, args ...string) (string, error) {
	Te.Helper()
	Te.Setenv("HOME", Te.TempDir())
	root := newRootCmd(zaptest.NewLogger(Te))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func scriptDir(Te *testing.T) string {
	dir := filepath.Join(Te.TempDir(), "scripts")
	require.NoError(Te, os.MkdirAll(filepath.Join(dir, "esp"), 0o755))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "esp", "surface.txt"), []byte("12\n0\n5\n1\n3\n2\n0\nq\n"), 0o644))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "batch.sh"), []byte("#!/bin/sh\necho hi\n"), 0o755))
	return dir
}

func TestList(Te *testing.T) {
	dir := scriptDir(Te)
	out, err := execute(Te, "list", "--scripts-dir", dir)
	require.NoError(Te, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(Te, lines, 3)
	assert.Equal(Te, []string{"IDENTIFIER", "EXECUTOR", "CATEGORY"}, strings.Fields(lines[0]))
	assert.Equal(Te, []string{"scripts:batch.sh", "shell", "."}, strings.Fields(lines[1]))
	assert.Equal(Te, []string{"scripts:esp/surface.txt", "multiwfn", "esp"}, strings.Fields(lines[2]))

	out, err = execute(Te, "list", "--scripts-dir", dir, "--executor", "multiwfn")
	require.NoError(Te, err)
	assert.NotContains(Te, out, "batch.sh")

	out, err = execute(Te, "list", "--scripts-dir", filepath.Join(dir, "nothing"))
	require.NoError(Te, err)
	assert.Contains(Te, out, "No scripts found")

	_, err = execute(Te, "list", "--scripts-dir", dir, "--executor", "python")
	assert.ErrorContains(Te, err, "unknown executor")
}

func TestShow(Te *testing.T) {
	dir := scriptDir(Te)
	out, err := execute(Te, "show", "surface", "--scripts-dir", dir, "--head", "2")
	require.NoError(Te, err)
	assert.Equal(Te, "12\n0\n", out)
	_, err = execute(Te, "show", "missing", "--scripts-dir", dir)
	assert.ErrorContains(Te, err, "unknown script: missing")
}

func TestRun(Te *testing.T) {
	dir := scriptDir(Te)
	out, err := execute(Te, "run", "surface.txt", "--scripts-dir", dir, "--multiwfn", "/opt/Multiwfn", "--dry-run", "--extra-arg", "-nt", "--extra-arg", "4")
	require.NoError(Te, err)
	assert.Contains(Te, out, "Command: /opt/Multiwfn -nt 4\n")
	assert.Contains(Te, out, "Input script:\n12\n0\n5")

	_, err = execute(Te, "run", "batch.sh", "--scripts-dir", dir, "--dry-run")
	assert.ErrorContains(Te, err, "executor shell")
	_, err = execute(Te, "run", "surface", "--scripts-dir", dir)
	assert.ErrorContains(Te, err, "--wavefunction is required")
}

func TestConfigFlag(Te *testing.T) {
	_, err := execute(Te, "list", "--config", filepath.Join(Te.TempDir(), "none.yaml"))
	assert.ErrorContains(Te, err, "configuration file")

	dir := scriptDir(Te)
	cfg := filepath.Join(Te.TempDir(), "config.yaml")
	require.NoError(Te, os.WriteFile(cfg, []byte("script_dirs: ["+dir+"]\n"), 0o644))
	out, err := execute(Te, "list", "--config", cfg)
	require.NoError(Te, err)
	assert.Contains(Te, out, "scripts:esp/surface.txt")

	require.NoError(Te, os.WriteFile(cfg, []byte("scripts: nope\n"), 0o644))
	_, err = execute(Te, "list", "--config", cfg)
	assert.ErrorContains(Te, err, "malformed configuration")
}

// writeGrid writes a grid of 10 points along x, with an oxygen at the
// origin, and returns its name.
func writeGrid(Te *testing.T) string {
	flat := make([]float64, 0, 30)
	esp := make([]float64, 10)
	for i := 0; i < 10; i++ {
		x := float64(i)
		if i == 0 {
			x = 0.1
		}
		flat = append(flat, x, 0, 0)
		esp[i] = float64(i)
	}
	coords, err := v3.NewMatrix(flat)
	require.NoError(Te, err)
	P := mwfn.NewPointSet(coords)
	require.NoError(Te, P.AddProperty("esp_au", esp))
	S, err := mwfn.StructureFromNumbers([]int64{8}, []float64{0, 0, 0})
	require.NoError(Te, err)
	A, err := grids.NewArchive(P, S, nil)
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), "water_grid.npz")
	require.NoError(Te, A.Save(name))
	return name
}

func TestGridfilter(Te *testing.T) {
	name := writeGrid(Te)
	png := filepath.Join(filepath.Dir(name), "esp.png")
	out, err := execute(Te, "gridfilter", name, "--min-distance", "0.5", "--max", "esp=8", "--target", "4", "--method", "farthest", "--histogram", png)
	require.NoError(Te, err)
	assert.Contains(Te, out, "Kept 4 of 10 grid points (8 after exclusion, sampling: farthest)")
	assert.Contains(Te, out, "excluded near nuclei: 1\n")
	assert.Contains(Te, out, "excluded by esp_au: 1\n")
	filtered := filepath.Join(filepath.Dir(name), "water_grid_filtered.npz")
	assert.Contains(Te, out, "Wrote "+filtered)

	G, err := grids.Load(filtered)
	require.NoError(Te, err)
	assert.Equal(Te, 4, G.Points.Len())
	st, err := os.Stat(png)
	require.NoError(Te, err)
	assert.NotZero(Te, st.Size())

	_, err = execute(Te, "gridfilter", name, "--min-distance", "0.5", "--radius-scale", "1")
	assert.Error(Te, err)
	_, err = execute(Te, "gridfilter", name, "--max", "esp")
	assert.ErrorContains(Te, err, "expected property=value")
	_, err = execute(Te, "gridfilter", name, "-o", name)
	assert.ErrorContains(Te, err, "overwrite the input")
}

func TestSlurm(Te *testing.T) {
	out, err := execute(Te, "slurm", "a.fchk", "b.fchk", "c.fchk", "--command", "gomwfn grid {input}", "--chunk", "2", "--name", "esp")
	require.NoError(Te, err)
	assert.True(Te, strings.HasPrefix(out, "#!/bin/bash\n"))
	assert.Contains(Te, out, "#SBATCH --array=0-1\n")
	assert.Contains(Te, out, "#SBATCH --job-name=esp\n")

	script := filepath.Join(Te.TempDir(), "job.sh")
	out, err = execute(Te, "slurm", "a.fchk", "--command", "echo {input}", "-o", script)
	require.NoError(Te, err)
	assert.Contains(Te, out, "sbatch "+script)
	assert.FileExists(Te, script)

	_, err = execute(Te, "slurm", "a.fchk")
	assert.ErrorContains(Te, err, "command")
}

func TestParseThresholds(Te *testing.T) {
	m, err := parseThresholds("max", []string{"esp=0.5", " vdw = -1e-3 "})
	require.NoError(Te, err)
	assert.Equal(Te, map[string]float64{"esp": 0.5, "vdw": -1e-3}, m)
	m, err = parseThresholds("max", nil)
	require.NoError(Te, err)
	assert.Nil(Te, m)
	_, err = parseThresholds("max", []string{"=1"})
	assert.Error(Te, err)
	_, err = parseThresholds("max-abs", []string{"esp=big"})
	assert.ErrorContains(Te, err, "--max-abs")
}
