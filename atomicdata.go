/*
 * atomicdata.go, part of gomwfn.
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

import "strings"

// A map for assigning covalent radii (A) to elements
// Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
// Only elements up to Xe are present.
var symbolCovrad = map[string]float64{
	"H":  0.31,
	"He": 0.28,
	"Li": 1.28,
	"Be": 0.96,
	"B":  0.84,
	"C":  0.76, //the sp3 radius
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Ne": 0.58,
	"Na": 1.66,
	"Mg": 1.41,
	"Al": 1.21,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Ar": 1.06,
	"K":  2.03,
	"Ca": 1.76,
	"Sc": 1.70,
	"Ti": 1.60,
	"V":  1.53,
	"Cr": 1.39,
	"Mn": 1.39, //ls
	"Fe": 1.32, //ls
	"Co": 1.26, //ls
	"Ni": 1.24,
	"Cu": 1.32,
	"Zn": 1.22,
	"Ga": 1.22,
	"Ge": 1.20,
	"As": 1.19,
	"Se": 1.20,
	"Br": 1.20,
	"Kr": 1.16,
	"Rb": 2.20,
	"Sr": 1.95,
	"Y":  1.90,
	"Zr": 1.75,
	"Nb": 1.64,
	"Mo": 1.54,
	"Tc": 1.47,
	"Ru": 1.46,
	"Rh": 1.42,
	"Pd": 1.39,
	"Ag": 1.45,
	"Cd": 1.44,
	"In": 1.42,
	"Sn": 1.39,
	"Sb": 1.39,
	"Te": 1.38,
	"I":  1.39,
	"Xe": 1.40,
}

// Element symbols ordered by atomic number. Index 0 is a placeholder
// for ghost atoms / unknown elements.
var numberSymbol = []string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

var symbolNumber map[string]int

func init() {
	symbolNumber = make(map[string]int, len(numberSymbol))
	for i, s := range numberSymbol {
		symbolNumber[s] = i
	}
}

// NormalizeSymbol returns symbol with the first letter in upper case
// and the rest in lower case, as in "CL" -> "Cl".
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return symbol
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// AtomicNumber returns the atomic number for symbol, and false
// if the symbol is not known.
func AtomicNumber(symbol string) (int, bool) {
	z, ok := symbolNumber[NormalizeSymbol(symbol)]
	if !ok || z == 0 {
		return 0, false
	}
	return z, true
}

// Symbol returns the element symbol for the atomic number z,
// or "X" if z is out of range.
func Symbol(z int) string {
	if z <= 0 || z >= len(numberSymbol) {
		return numberSymbol[0]
	}
	return numberSymbol[z]
}

// CovalentRadius returns the covalent radius of symbol in A,
// and false if it is not tabulated.
func CovalentRadius(symbol string) (float64, bool) {
	r, ok := symbolCovrad[NormalizeSymbol(symbol)]
	return r, ok
}
