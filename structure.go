/*
 * structure.go, part of gomwfn.
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
	"context"
	"fmt"

	v3 "github.com/mwfntools/gomwfn/v3"
)

// Atom is a nucleus.
type Atom struct {
	Symbol string
	Z      int
}

// NewAtom returns an Atom for the element symbol. Unknown symbols
// get Z=0.
func NewAtom(symbol string) *Atom {
	s := NormalizeSymbol(symbol)
	z, _ := AtomicNumber(s)
	return &Atom{Symbol: s, Z: z}
}

// Structure is a set of nuclei with coordinates in bohr.
type Structure struct {
	Atoms  []*Atom
	Coords *v3.Matrix
}

// NewStructure builds a Structure and checks that there is one set of
// coordinates per atom.
func NewStructure(atoms []*Atom, coords *v3.Matrix) (*Structure, error) {
	S := &Structure{Atoms: atoms, Coords: coords}
	if err := S.Validate(); err != nil {
		return nil, ErrDecorate(err, "NewStructure")
	}
	return S, nil
}

// StructureFromNumbers builds a Structure from atomic numbers and a flat
// slice of coordinates in bohr, as stored in grid archives.
func StructureFromNumbers(numbers []int64, coords []float64) (*Structure, error) {
	c, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, newError("bad coordinates", "", err, "StructureFromNumbers")
	}
	atoms := make([]*Atom, len(numbers))
	for i, z := range numbers {
		atoms[i] = &Atom{Symbol: Symbol(int(z)), Z: int(z)}
	}
	return NewStructure(atoms, c)
}

// Len returns the number of atoms.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

// Validate checks that the number of atoms and coordinates match.
func (S *Structure) Validate() error {
	if S.Coords.NVecs() != len(S.Atoms) {
		return errorf("", "Validate", "%d atoms but %d coordinates", len(S.Atoms), S.Coords.NVecs())
	}
	return nil
}

// Numbers returns the atomic numbers of the atoms.
func (S *Structure) Numbers() []int64 {
	ret := make([]int64, len(S.Atoms))
	for i, a := range S.Atoms {
		ret[i] = int64(a.Z)
	}
	return ret
}

// Symbols returns the element symbols of the atoms.
func (S *Structure) Symbols() []string {
	ret := make([]string, len(S.Atoms))
	for i, a := range S.Atoms {
		ret[i] = a.Symbol
	}
	return ret
}

// Radii returns the covalent radius of each atom, in bohr. fallback (in A)
// is used for elements without a tabulated radius.
func (S *Structure) Radii(fallback float64) []float64 {
	ret := make([]float64, len(S.Atoms))
	for i, a := range S.Atoms {
		r, ok := CovalentRadius(a.Symbol)
		if !ok {
			r = fallback
		}
		ret[i] = r * A2Bohr
	}
	return ret
}

// Structure makes a Structure its own source.
func (S *Structure) Structure(ctx context.Context) (*Structure, error) {
	return S, nil
}

func (S *Structure) String() string {
	return fmt.Sprintf("structure with %d atoms", S.Len())
}
