/*
 * archive.go, part of gomwfn.
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

package cp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/npz"
)

// Sidecar holds what does not fit in the numeric arrays of the archive.
type Sidecar struct {
	Source       string            `json:"source,omitempty"`
	Count        int               `json:"count"`
	Arrays       []string          `json:"arrays"`
	MatrixShapes map[string][]int  `json:"matrix_shapes,omitempty"`
	KeyMap       map[string]string `json:"key_map"`
	Records      []SidecarRecord   `json:"records"`
}

// SidecarRecord is the part of a Record that is not in the archive.
type SidecarRecord struct {
	Index        int                  `json:"cp_index"`
	Type         string               `json:"cp_type"`
	NucleusLabel string               `json:"corresponding_nucleus_label,omitempty"`
	Text         map[string]string    `json:"text,omitempty"`
	Numeric      map[string][]float64 `json:"numeric,omitempty"`
	KeyMap       map[string]string    `json:"key_map"`
	Raw          string               `json:"raw_block"`
}

// uniform reports whether every record has the field key with the
// same shape.
func uniform(recs []*Record, key string) bool {
	first, ok := recs[0].Numeric[key]
	if !ok {
		return false
	}
	for _, R := range recs[1:] {
		f, ok := R.Numeric[key]
		if !ok || !slices.Equal(f.Shape, first.Shape) {
			return false
		}
	}
	return true
}

// Aggregate collects the records into an archive and its sidecar. cp_index,
// cp_rank and cp_signature are int64 arrays, as is
// corresponding_nucleus_index (0 for non nuclear CPs) when any CP has a
// nucleus. A numeric field present in every CP with the same shape becomes
// a float64 array with one row per CP; matrices are flattened row by row
// and their shapes recorded in the sidecar. Everything else goes to the
// sidecar.
func Aggregate(recs []*Record) (*npz.Archive, *Sidecar, error) {
	if len(recs) == 0 {
		return nil, nil, Error{message: "no critical points found", deco: []string{"Aggregate"}}
	}
	A := npz.New()
	sc := &Sidecar{Count: len(recs), KeyMap: make(map[string]string), MatrixShapes: make(map[string][]int)}
	n := len(recs)
	idx := make([]int64, n)
	rank := make([]int64, n)
	sig := make([]int64, n)
	nuc := make([]int64, n)
	hasNuc := false
	var keys []string
	for i, R := range recs {
		r, s, err := R.Signature()
		if err != nil {
			return nil, nil, mwfn.ErrDecorate(err, "Aggregate")
		}
		idx[i], rank[i], sig[i], nuc[i] = int64(R.Index), int64(r), int64(s), int64(R.NucleusIndex)
		hasNuc = hasNuc || R.NucleusIndex > 0
		for _, k := range R.Keys {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
		for k, v := range R.KeyMap {
			sc.KeyMap[k] = v
		}
	}
	set := func(name string, f func() error) error {
		if err := f(); err != nil {
			return mwfn.ErrDecorate(err, "Aggregate")
		}
		sc.Arrays = append(sc.Arrays, name)
		return nil
	}
	type intArray struct {
		name string
		vals []int64
	}
	ints := []intArray{{"cp_index", idx}, {"cp_rank", rank}, {"cp_signature", sig}}
	if hasNuc {
		ints = append(ints, intArray{"corresponding_nucleus_index", nuc})
	}
	for _, v := range ints {
		if err := set(v.name, func() error { return A.SetInt64s(v.name, v.vals) }); err != nil {
			return nil, nil, err
		}
	}
	inArchive := make(map[string]bool)
	for _, k := range keys {
		if !uniform(recs, k) || A.Has(k) {
			continue
		}
		inArchive[k] = true
		shape := recs[0].Numeric[k].Shape
		var data []float64
		for _, R := range recs {
			data = append(data, R.Numeric[k].Values...)
		}
		var err error
		switch len(shape) {
		case 0:
			err = set(k, func() error { return A.SetFloat64s(k, data) })
		default:
			cols := 1
			for _, d := range shape {
				cols *= d
			}
			if len(shape) > 1 {
				sc.MatrixShapes[k] = shape
			}
			err = set(k, func() error { return A.SetRows(k, data, cols) })
		}
		if err != nil {
			return nil, nil, err
		}
	}
	for _, R := range recs {
		sr := SidecarRecord{Index: R.Index, Type: R.Type, NucleusLabel: R.NucleusLabel, KeyMap: R.KeyMap, Raw: R.Raw}
		if len(R.Text) > 0 {
			sr.Text = R.Text
		}
		for _, k := range R.Keys {
			if inArchive[k] {
				continue
			}
			if sr.Numeric == nil {
				sr.Numeric = make(map[string][]float64)
			}
			sr.Numeric[k] = R.Numeric[k].Values
		}
		sc.Records = append(sc.Records, sr)
	}
	return A, sc, nil
}

// DefaultOutput returns <stem>_cp.npz next to the CP file.
func DefaultOutput(name string) string {
	base := filepath.Base(name)
	return filepath.Join(filepath.Dir(name), strings.TrimSuffix(base, filepath.Ext(base))+"_cp.npz")
}

// SidecarName returns the name of the JSON sidecar of the archive out.
func SidecarName(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".json"
}

// ToFile parses the CP file name and writes the archive to out, or to
// DefaultOutput(name) if out is empty, with its JSON sidecar next to it.
// It returns the names of both files.
func ToFile(name, out string) (archive, sidecar string, err error) {
	f, err := os.Open(name)
	if err != nil {
		return "", "", Error{message: "unable to open CP file", filename: name, deco: []string{"ToFile"}, err: err}
	}
	defer f.Close()
	recs, err := Parse(f)
	if err != nil {
		return "", "", Error{message: "unable to parse", filename: name, deco: []string{"ToFile"}, err: err}
	}
	A, sc, err := Aggregate(recs)
	if err != nil {
		return "", "", Error{message: fmt.Sprintf("unable to collect %d critical points", len(recs)), filename: name, deco: []string{"ToFile"}, err: err}
	}
	sc.Source = name
	if out == "" {
		out = DefaultOutput(name)
	}
	if err := A.Save(out); err != nil {
		return "", "", mwfn.ErrDecorate(err, "ToFile")
	}
	b, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return "", "", Error{message: "unable to encode sidecar", deco: []string{"ToFile"}, err: err}
	}
	sidecar = SidecarName(out)
	if err := os.WriteFile(sidecar, b, 0o644); err != nil {
		return "", "", Error{message: "unable to write sidecar", filename: sidecar, deco: []string{"ToFile"}, err: err}
	}
	return out, sidecar, nil
}
