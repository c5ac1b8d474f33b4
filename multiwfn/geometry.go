/*
 * geometry.go, part of gomwfn.
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

package multiwfn

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwfntools/gomwfn"
)

// GeometrySource obtains the nuclei of a wavefunction by making Multiwfn
// export them to a PDB file. It implements mwfn.StructureSource.
type GeometrySource struct {
	Handle       *Handle
	Wavefunction string
}

// Stem returns the file name of wfn without directory and extension, which
// is the name Multiwfn gives the files it exports.
func Stem(wfn string) string {
	base := filepath.Base(wfn)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GeometryScript returns the script that exports the geometry of wfn to
// <stem>.pdb in the working directory.
func GeometryScript(wfn string) string {
	return ComposeScript(wfn, "100", "2", "1", "", "0", "0", "q")
}

// Structure runs Multiwfn and reads the PDB it exports. Coordinates are
// returned in bohr.
func (G GeometrySource) Structure(ctx context.Context) (*mwfn.Structure, error) {
	wfn, err := filepath.Abs(G.Wavefunction)
	if err != nil {
		return nil, Error{message: "bad wavefunction path", filename: G.Wavefunction, deco: []string{"GeometrySource"}, err: err}
	}
	if _, err := os.Stat(wfn); err != nil {
		return nil, Error{message: "wavefunction file not found", filename: wfn, deco: []string{"GeometrySource"}, err: err}
	}
	var S *mwfn.Structure
	err = G.Handle.InTempDir(ctx, "multiwfn-geom-", GeometryScript(wfn), func(dir string, out *Output) error {
		pdb := filepath.Join(dir, Stem(wfn)+".pdb")
		if _, err := os.Stat(pdb); err != nil {
			return Error{message: "Multiwfn did not emit the expected PDB when exporting geometry", filename: pdb, deco: []string{"GeometrySource"}, stdout: out.Stdout, stderr: out.Stderr}
		}
		var err error
		S, err = mwfn.StructureFileRead(pdb)
		return err
	})
	if err != nil {
		return nil, mwfn.ErrDecorate(err, "GeometrySource")
	}
	return S, nil
}
