/*
 * parse.go, part of gomwfn.
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

package charges

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseFloats parses fields as float64s, accepting Fortran D exponents.
func parseFloats(fields []string) ([]float64, error) {
	ret := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(f), 64)
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

// ParseChg reads a Multiwfn .chg file, where each line has an element
// symbol, x, y and z in A, and the atomic charge. Lines with fewer
// fields are skipped. Coordinates are returned as a flat slice.
func ParseChg(r io.Reader) (symbols []string, coords, charges []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 {
			continue
		}
		vals, err := parseFloats(fields[1:5])
		if err != nil {
			return nil, nil, nil, Error{message: fmt.Sprintf("bad charge line %d", line), deco: []string{"ParseChg"}, err: err}
		}
		symbols = append(symbols, fields[0])
		coords = append(coords, vals[:3]...)
		charges = append(charges, vals[3])
	}
	if err := sc.Err(); err != nil {
		return nil, nil, nil, Error{message: "unable to read charges", deco: []string{"ParseChg"}, err: err}
	}
	if len(symbols) == 0 {
		return nil, nil, nil, Error{message: "charge file did not contain any data", deco: []string{"ParseChg"}}
	}
	return symbols, coords, charges, nil
}

// Multipoles are the atomic multipoles of an MBIS analysis. Dipoles have
// 3 components per atom and quadrupoles 6, all stored atom after atom.
type Multipoles struct {
	Charges       []float64
	Dipoles       []float64
	QuadCartesian []float64
	QuadTraceless []float64
}

// ParseMBIS reads the .mbis_mpl file Multiwfn writes in MBIS analyses,
// and checks that every section has natoms entries.
func ParseMBIS(r io.Reader, natoms int) (*Multipoles, error) {
	M := new(Multipoles)
	type section struct {
		header string
		dst    *[]float64
		cols   int
	}
	sections := []section{
		{"Atomic charges", &M.Charges, 1},
		{"Atomic dipoles", &M.Dipoles, 3},
		{"Atomic quadrupoles, Cartesian", &M.QuadCartesian, 6},
		{"Atomic quadrupoles, Traceless", &M.QuadTraceless, 6},
	}
	cur := -1
	sc := bufio.NewScanner(r)
	line := 0
scan:
	for sc.Scan() {
		line++
		l := strings.TrimSpace(sc.Text())
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "Atomic to molecular condensed") {
			break scan
		}
		for i, s := range sections {
			if strings.HasPrefix(l, s.header) {
				cur = i
				continue scan
			}
		}
		if cur < 0 {
			continue
		}
		s := sections[cur]
		fields := strings.Fields(l)
		if len(fields) < s.cols+1 {
			continue
		}
		vals, err := parseFloats(fields[1 : s.cols+1])
		if err != nil {
			return nil, Error{message: fmt.Sprintf("bad multipole line %d", line), deco: []string{"ParseMBIS"}, err: err}
		}
		*s.dst = append(*s.dst, vals...)
	}
	if err := sc.Err(); err != nil {
		return nil, Error{message: "unable to read multipoles", deco: []string{"ParseMBIS"}, err: err}
	}
	for _, s := range sections {
		if n := len(*s.dst) / s.cols; n != natoms {
			return nil, Error{message: fmt.Sprintf("%d entries in section %q for %d atoms", n, s.header, natoms), deco: []string{"ParseMBIS"}}
		}
	}
	return M, nil
}
