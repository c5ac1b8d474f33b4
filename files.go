/*
 * files.go, part of gomwfn.
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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	v3 "github.com/mwfntools/gomwfn/v3"
)

//PDB and XYZ readers. Both formats store coordinates in A, which are
//converted to bohr on reading.

// symbolFromName guesses a chemical element symbol from the 4-character
// PDB atom name field. Following the PDB convention, one-letter elements
// are right-justified in the first two columns (" CA " is carbon) while
// two-letter elements fill them ("CA  " is calcium).
func symbolFromName(field string) (string, error) {
	if len(field) < 2 {
		field = " " + strings.TrimSpace(field)
	}
	var candidate string
	if field[0] == ' ' || unicode.IsDigit(rune(field[0])) {
		candidate = field[1:2]
	} else {
		candidate = field[0:2]
	}
	candidate = strings.TrimFunc(candidate, func(r rune) bool { return !unicode.IsLetter(r) })
	if _, ok := AtomicNumber(candidate); ok {
		return NormalizeSymbol(candidate), nil
	}
	//some programs write left-justified names regardless of the element.
	if len(candidate) == 2 {
		if _, ok := AtomicNumber(candidate[:1]); ok {
			return NormalizeSymbol(candidate[:1]), nil
		}
	}
	return "", fmt.Errorf("Couldn't guess symbol from PDB name %q", field)
}

// parsePDBLine parses an ATOM or HETATM line, returning the element
// and the coordinates in A.
func parsePDBLine(line string) (string, [3]float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return "", c, fmt.Errorf("line too short for a PDB atom record")
	}
	var err error
	for i, r := range [][2]int{{30, 38}, {38, 46}, {46, 54}} {
		c[i], err = strconv.ParseFloat(strings.TrimSpace(line[r[0]:r[1]]), 64)
		if err != nil {
			return "", c, err
		}
	}
	symbol := ""
	if len(line) >= 78 {
		symbol = strings.TrimSpace(line[76:78])
	}
	if symbol == "" {
		symbol, err = symbolFromName(line[12:16])
		if err != nil {
			return "", c, err
		}
	}
	return NormalizeSymbol(symbol), c, nil
}

// PDBRead reads the first model of a PDB stream.
func PDBRead(r io.Reader) (*Structure, error) {
	atoms := make([]*Atom, 0)
	coords := make([]float64, 0)
	scanner := bufio.NewScanner(r)
	contlines := 0
	for scanner.Scan() {
		contlines++
		line := scanner.Text()
		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		symbol, c, err := parsePDBLine(line)
		if err != nil {
			return nil, newError(fmt.Sprintf("line %d", contlines), "", err, "PDBRead")
		}
		atoms = append(atoms, NewAtom(symbol))
		coords = append(coords, c[0]*A2Bohr, c[1]*A2Bohr, c[2]*A2Bohr)
	}
	if err := scanner.Err(); err != nil {
		return nil, newError("reading PDB", "", err, "PDBRead")
	}
	if len(atoms) == 0 {
		return nil, errorf("", "PDBRead", "no atom records found")
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, newError("bad coordinates", "", err, "PDBRead")
	}
	return NewStructure(atoms, m)
}

// XYZRead reads the first frame of an XYZ stream.
func XYZRead(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, errorf("", "XYZRead", "empty XYZ input")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, newError("bad atom count", "", err, "XYZRead")
	}
	scanner.Scan() //the comment line
	atoms := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for len(atoms) < natoms && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, errorf("", "XYZRead", "bad line for atom %d: %q", len(atoms)+1, scanner.Text())
		}
		for _, f := range fields[1:4] {
			c, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, newError(fmt.Sprintf("atom %d", len(atoms)+1), "", err, "XYZRead")
			}
			coords = append(coords, c*A2Bohr)
		}
		atoms = append(atoms, NewAtom(fields[0]))
	}
	if err := scanner.Err(); err != nil {
		return nil, newError("reading XYZ", "", err, "XYZRead")
	}
	if len(atoms) != natoms {
		return nil, errorf("", "XYZRead", "expected %d atoms, found %d", natoms, len(atoms))
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, newError("bad coordinates", "", err, "XYZRead")
	}
	return NewStructure(atoms, m)
}

// XYZWrite writes S in XYZ format, with coordinates in A.
func XYZWrite(w io.Writer, S *Structure, comment string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", S.Len(), comment)
	for i, a := range S.Atoms {
		c := S.Coords.Vec(i)
		fmt.Fprintf(bw, "%-2s %14.8f %14.8f %14.8f\n", a.Symbol, c[0]*Bohr2A, c[1]*Bohr2A, c[2]*Bohr2A)
	}
	return bw.Flush()
}

// StructureFileRead reads a PDB or XYZ file, chosen by extension.
func StructureFileRead(name string) (*Structure, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError("unable to open file", name, err, "StructureFileRead")
	}
	defer f.Close()
	var S *Structure
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdb", ".ent":
		S, err = PDBRead(f)
	case ".xyz":
		S, err = XYZRead(f)
	default:
		return nil, errorf(name, "StructureFileRead", "unknown structure format %q", filepath.Ext(name))
	}
	if err != nil {
		if e, ok := err.(*CError); ok && e.filename == "" {
			e.filename = name
		}
		return nil, ErrDecorate(err, "StructureFileRead")
	}
	return S, nil
}

// FileStructure is a StructureSource backed by a PDB or XYZ file.
type FileStructure string

func (F FileStructure) Structure(ctx context.Context) (*Structure, error) {
	return StructureFileRead(string(F))
}
