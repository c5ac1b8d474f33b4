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

// Package cp reads the CPprop.txt files Multiwfn writes after a topology
// analysis, with the properties of each critical point, and stores them as
// .npz archives.
package cp

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe  = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[Ee][-+]?\d+)?`)
	headerRe  = regexp.MustCompile(`CP\s+(\d+),\s+Type\s+\(([^)]+)\)`)
	nucleusRe = regexp.MustCompile(`^Corresponding nucleus:\s*(\d+)\(([^)]+)\)`)
	keyRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// SanitizeKey turns a field label into a lower case identifier made of
// letters, digits and underscores.
func SanitizeKey(label string) string {
	s := strings.ReplaceAll(strings.ToLower(label), "(columns)", "columns")
	s = strings.Trim(keyRe.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "field"
	}
	return s
}

// Numbers returns the numbers in s. Fortran D exponents are accepted.
func Numbers(s string) []float64 {
	m := numberRe.FindAllString(strings.ReplaceAll(s, "D", "E"), -1)
	ret := make([]float64, 0, len(m))
	for _, v := range m {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			ret = append(ret, f)
		}
	}
	return ret
}

// Field is a numeric property of a critical point. Shape is nil for
// scalars, has one element for vectors and two for matrices.
type Field struct {
	Values []float64
	Shape  []int
}

// Record is a critical point.
type Record struct {
	Index        int
	Type         string //as in "3,-3"
	NucleusIndex int    //0 if the CP is not a nuclear one
	NucleusLabel string
	Keys         []string //numeric fields, in order of appearance
	Numeric      map[string]Field
	Text         map[string]string
	KeyMap       map[string]string //sanitized key to original label
	Raw          string
}

// Signature returns the rank and signature of the CP type, as 3 and -3
// for "3,-3".
func (R *Record) Signature() (rank, signature int, err error) {
	a, b, ok := strings.Cut(R.Type, ",")
	if !ok {
		return 0, 0, Error{message: fmt.Sprintf("bad CP type %q", R.Type), deco: []string{"Signature"}}
	}
	if rank, err = strconv.Atoi(strings.TrimSpace(a)); err == nil {
		signature, err = strconv.Atoi(strings.TrimSpace(b))
	}
	if err != nil {
		return 0, 0, Error{message: fmt.Sprintf("bad CP type %q", R.Type), deco: []string{"Signature"}, err: err}
	}
	return rank, signature, nil
}

func newRecord(index int, typ string) *Record {
	return &Record{
		Index:   index,
		Type:    strings.TrimSpace(typ),
		Numeric: make(map[string]Field),
		Text:    make(map[string]string),
		KeyMap:  map[string]string{"cp_index": "CP index", "cp_type": "CP type"},
	}
}

func (R *Record) set(label string, f Field) {
	key := SanitizeKey(label)
	if _, ok := R.Numeric[key]; !ok {
		R.Keys = append(R.Keys, key)
	}
	R.Numeric[key] = f
	R.KeyMap[key] = label
}

// parser holds the state of Parse while it goes through a block.
type parser struct {
	cur       *Record
	raw       []string
	matrixKey string
	rows      [][]float64
	values    [][]float64
	out       []*Record
}

func (p *parser) endMatrix() {
	if p.matrixKey != "" && len(p.rows) > 0 {
		p.cur.set(p.matrixKey, stack(p.rows))
	}
	p.matrixKey, p.rows = "", nil
}

func (p *parser) endRecord() {
	if p.cur == nil {
		return
	}
	p.endMatrix()
	if len(p.values) > 0 {
		p.cur.set("values", stack(p.values))
	}
	p.cur.Raw = strings.TrimSpace(strings.Join(p.raw, "\n"))
	p.out = append(p.out, p.cur)
	p.cur, p.raw, p.values = nil, nil, nil
}

// stack builds a matrix from rows, or a flat vector if they have
// different lengths.
func stack(rows [][]float64) Field {
	var vals []float64
	same := true
	for _, r := range rows {
		vals = append(vals, r...)
		same = same && len(r) == len(rows[0])
	}
	if !same {
		return Field{Values: vals, Shape: []int{len(vals)}}
	}
	return Field{Values: vals, Shape: []int{len(rows), len(rows[0])}}
}

func (p *parser) line(line string) {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "----------------") && strings.Contains(s, "CP") && strings.Contains(s, "Type") {
		p.endRecord()
		m := headerRe.FindStringSubmatch(s)
		if m == nil {
			return
		}
		idx, _ := strconv.Atoi(m[1])
		p.cur = newRecord(idx, m[2])
		p.raw = []string{s}
		return
	}
	if p.cur == nil {
		return
	}
	p.raw = append(p.raw, strings.TrimRight(line, "\r\n"))
	if s == "" {
		p.endMatrix()
		return
	}
	if m := nucleusRe.FindStringSubmatch(s); m != nil {
		p.cur.NucleusIndex, _ = strconv.Atoi(m[1])
		p.cur.NucleusLabel = strings.TrimSpace(m[2])
		p.cur.KeyMap["corresponding_nucleus_index"] = "Corresponding nucleus index"
		p.cur.KeyMap["corresponding_nucleus_label"] = "Corresponding nucleus label"
		return
	}
	if label, value, ok := strings.Cut(s, ":"); ok {
		p.endMatrix()
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		lower := strings.ToLower(label)
		if strings.HasSuffix(lower, "matrix") || strings.HasPrefix(lower, "eigenvectors") {
			p.matrixKey = label
			p.cur.KeyMap[SanitizeKey(label)] = label
		}
		nums := Numbers(value)
		switch {
		case len(nums) == 1:
			p.cur.set(label, Field{Values: nums})
		case len(nums) > 1:
			p.cur.set(label, Field{Values: nums, Shape: []int{len(nums)}})
		case value != "":
			key := SanitizeKey(label)
			p.cur.Text[key] = value
			p.cur.KeyMap[key] = label
		}
		return
	}
	nums := Numbers(s)
	if len(nums) == 0 {
		return
	}
	if p.matrixKey != "" {
		p.rows = append(p.rows, nums)
		return
	}
	p.values = append(p.values, nums)
}

// Parse reads a CPprop.txt file. Each block starts with a line like
// "---------------- CP 1, Type (3,-3) ----------------" and holds
// "label: value" lines. Matrices follow a label that ends in "matrix" or
// starts with "Eigenvectors", one row per line, up to a blank line.
func Parse(r io.Reader) ([]*Record, error) {
	p := new(parser)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, Error{message: "unable to read CP file", deco: []string{"Parse"}, err: err}
	}
	p.endRecord()
	return p.out, nil
}
