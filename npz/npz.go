/*
 * npz.go, part of gomwfn.
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

package npz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/sbinet/npyio/npy"
	"gonum.org/v1/gonum/mat"
)

const npySuffix = ".npy"

// Entry is one array in an archive. The encoded .npy member is kept as is,
// so entries that are never decoded are written back byte for byte.
type Entry struct {
	Name    string
	Type    string //NumPy dtype descriptor, as in "<f8"
	Shape   []int
	Fortran bool
	raw     []byte
}

// Len returns the size of the leading dimension, or 0 for scalars.
func (E *Entry) Len() int {
	if len(E.Shape) == 0 {
		return 0
	}
	return E.Shape[0]
}

// Size returns the total number of elements.
func (E *Entry) Size() int {
	n := 1
	for _, v := range E.Shape {
		n *= v
	}
	return n
}

// Numeric reports whether the entry holds a dtype that this package can decode.
func (E *Entry) Numeric() bool {
	switch E.Type {
	case "<f8", "<f4", "<i8", "<i4":
		return true
	}
	return false
}

func newEntry(name string, raw []byte) (*Entry, error) {
	r, err := npy.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, Error{"bad npy header", name, []string{"newEntry"}, err}
	}
	return &Entry{
		Name:    name,
		Type:    r.Header.Descr.Type,
		Shape:   append([]int(nil), r.Header.Descr.Shape...),
		Fortran: r.Header.Descr.Fortran,
		raw:     raw,
	}, nil
}

// Archive is an in-memory NumPy .npz archive. Entry order is kept.
type Archive struct {
	entries []*Entry
	index   map[string]int
}

// New returns an empty Archive.
func New() *Archive {
	return &Archive{index: make(map[string]int)}
}

// Open reads the .npz file name.
func Open(name string) (*Archive, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, Error{"unable to open file", name, []string{"Open"}, err}
	}
	A, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = name
			e.deco = append(e.deco, "Open")
			return nil, e
		}
		return nil, err
	}
	return A, nil
}

// Read reads an archive of the given size from r.
func Read(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, Error{"not a zip archive", "", []string{"Read"}, err}
	}
	A := New()
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, Error{"unable to open member " + f.Name, "", []string{"Read"}, err}
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, Error{"unable to read member " + f.Name, "", []string{"Read"}, err}
		}
		E, err := newEntry(strings.TrimSuffix(f.Name, npySuffix), raw)
		if err != nil {
			return nil, err
		}
		A.put(E)
	}
	return A, nil
}

func (A *Archive) put(E *Entry) {
	if i, ok := A.index[E.Name]; ok {
		A.entries[i] = E
		return
	}
	A.index[E.Name] = len(A.entries)
	A.entries = append(A.entries, E)
}

// Keys returns the array names, in archive order.
func (A *Archive) Keys() []string {
	ret := make([]string, len(A.entries))
	for i, E := range A.entries {
		ret[i] = E.Name
	}
	return ret
}

// Has reports whether the archive has an array called name.
func (A *Archive) Has(name string) bool {
	_, ok := A.index[name]
	return ok
}

// Entry returns the entry called name.
func (A *Archive) Entry(name string) (*Entry, bool) {
	i, ok := A.index[name]
	if !ok {
		return nil, false
	}
	return A.entries[i], true
}

// Delete removes the array name, if present.
func (A *Archive) Delete(name string) {
	i, ok := A.index[name]
	if !ok {
		return
	}
	A.entries = append(A.entries[:i], A.entries[i+1:]...)
	delete(A.index, name)
	for k, E := range A.entries[i:] {
		A.index[E.Name] = i + k
	}
}

// Copy puts the entry name of B in A, without decoding it.
func (A *Archive) Copy(B *Archive, name string) error {
	E, ok := B.Entry(name)
	if !ok {
		return Error{"no array " + name, "", []string{"Copy"}, nil}
	}
	A.put(E)
	return nil
}

func (A *Archive) encode(name string, val any) error {
	var buf bytes.Buffer
	if err := npy.Write(&buf, val); err != nil {
		return Error{"unable to encode " + name, "", []string{"encode"}, err}
	}
	E, err := newEntry(name, buf.Bytes())
	if err != nil {
		return err
	}
	A.put(E)
	return nil
}

// SetFloat64s stores a 1-D float64 array.
func (A *Archive) SetFloat64s(name string, data []float64) error {
	if data == nil {
		data = []float64{}
	}
	return A.encode(name, data)
}

// SetInt64s stores a 1-D int64 array.
func (A *Archive) SetInt64s(name string, data []int64) error {
	if data == nil {
		data = []int64{}
	}
	return A.encode(name, data)
}

// SetRows stores data as a 2-D float64 array with cols columns. An empty
// data slice gives an array of shape (0, cols).
func (A *Archive) SetRows(name string, data []float64, cols int) error {
	if cols <= 0 || len(data)%cols != 0 {
		return Error{fmt.Sprintf("%d values can't be split in rows of %d", len(data), cols), "", []string{"SetRows"}, nil}
	}
	if len(data) == 0 {
		return A.putRaw(name, "<f8", []int{0, cols}, nil)
	}
	return A.encode(name, mat.NewDense(len(data)/cols, cols, data))
}

func (A *Archive) decode(name string) (*Entry, any, error) {
	E, ok := A.Entry(name)
	if !ok {
		return nil, nil, Error{"no array " + name, "", []string{"decode"}, nil}
	}
	data, err := E.data()
	if err != nil {
		return nil, nil, errDecorate(err, "decode")
	}
	r := bytes.NewReader(data)
	n := E.Size()
	var dst any
	switch E.Type {
	case "<f8":
		d := make([]float64, n)
		err = binary.Read(r, binary.LittleEndian, d)
		dst = d
	case "<f4":
		d := make([]float32, n)
		err = binary.Read(r, binary.LittleEndian, d)
		dst = d
	case "<i8":
		d := make([]int64, n)
		err = binary.Read(r, binary.LittleEndian, d)
		dst = d
	case "<i4":
		d := make([]int32, n)
		err = binary.Read(r, binary.LittleEndian, d)
		dst = d
	default:
		return nil, nil, Error{fmt.Sprintf("unsupported dtype %s for %s", E.Type, name), "", []string{"decode"}, nil}
	}
	if err != nil {
		return nil, nil, Error{"unable to decode " + name, "", []string{"decode"}, err}
	}
	return E, dst, nil
}

// Float64s returns the array name as a flat, C-ordered float64 slice,
// and its shape. Float32 and integer arrays are converted.
func (A *Archive) Float64s(name string) ([]float64, []int, error) {
	E, d, err := A.decode(name)
	if err != nil {
		return nil, nil, errDecorate(err, "Float64s")
	}
	var ret []float64
	switch v := d.(type) {
	case []float64:
		ret = v
	case []float32:
		ret = make([]float64, len(v))
		for i := range v {
			ret[i] = float64(v[i])
		}
	case []int64:
		ret = make([]float64, len(v))
		for i := range v {
			ret[i] = float64(v[i])
		}
	case []int32:
		ret = make([]float64, len(v))
		for i := range v {
			ret[i] = float64(v[i])
		}
	}
	if E.Fortran && len(E.Shape) == 2 {
		ret = transpose(ret, E.Shape[0], E.Shape[1])
	}
	return ret, append([]int(nil), E.Shape...), nil
}

// Int64s returns the integer array name as a flat int64 slice, and its shape.
func (A *Archive) Int64s(name string) ([]int64, []int, error) {
	E, d, err := A.decode(name)
	if err != nil {
		return nil, nil, errDecorate(err, "Int64s")
	}
	var ret []int64
	switch v := d.(type) {
	case []int64:
		ret = v
	case []int32:
		ret = make([]int64, len(v))
		for i := range v {
			ret[i] = int64(v[i])
		}
	default:
		return nil, nil, Error{fmt.Sprintf("%s is not an integer array (%s)", name, E.Type), "", []string{"Int64s"}, nil}
	}
	if E.Fortran && len(E.Shape) == 2 {
		ret = transpose(ret, E.Shape[0], E.Shape[1])
	}
	return ret, append([]int(nil), E.Shape...), nil
}

// SubsetRows stores in A the rows idx of the array name of B, that is, the
// elements idx along its first axis. The dtype and the trailing dimensions
// are kept. Fortran-ordered arrays of rank 2 are stored in C order.
func (A *Archive) SubsetRows(B *Archive, name string, idx []int) error {
	E, ok := B.Entry(name)
	if !ok {
		return Error{"no array " + name, "", []string{"SubsetRows"}, nil}
	}
	size, err := itemSize(E.Type)
	if err != nil || len(E.Shape) == 0 || (E.Fortran && len(E.Shape) > 2) {
		return Error{fmt.Sprintf("can't take rows of %s (dtype %s, shape %v)", name, E.Type, E.Shape), "", []string{"SubsetRows"}, err}
	}
	data, err := E.data()
	if err != nil {
		return errDecorate(err, "SubsetRows")
	}
	rows := E.Shape[0]
	per := 1 //elements in one row
	for _, v := range E.Shape[1:] {
		per *= v
	}
	if len(data) < E.Size()*size {
		return Error{fmt.Sprintf("%s is truncated", name), "", []string{"SubsetRows"}, nil}
	}
	out := make([]byte, 0, len(idx)*per*size)
	for _, i := range idx {
		if i < 0 || i >= rows {
			return Error{fmt.Sprintf("row %d out of range for %s with %d rows", i, name, rows), "", []string{"SubsetRows"}, nil}
		}
		if !E.Fortran || len(E.Shape) == 1 {
			out = append(out, data[i*per*size:(i+1)*per*size]...)
			continue
		}
		for j := 0; j < per; j++ {
			o := (j*rows + i) * size
			out = append(out, data[o:o+size]...)
		}
	}
	shape := append([]int{len(idx)}, E.Shape[1:]...)
	return A.putRaw(name, E.Type, shape, out)
}

// Write writes A as a zip archive to w.
func (A *Archive) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, E := range A.entries {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: E.Name + npySuffix, Method: zip.Deflate})
		if err != nil {
			return Error{"unable to add " + E.Name, "", []string{"Write"}, err}
		}
		if _, err := f.Write(E.raw); err != nil {
			return Error{"unable to write " + E.Name, "", []string{"Write"}, err}
		}
	}
	if err := zw.Close(); err != nil {
		return Error{"unable to finish archive", "", []string{"Write"}, err}
	}
	return nil
}

// Save writes A to the file name. The data goes first to a temporary file
// in the same directory, which is then renamed, so name is either the full
// archive or untouched.
func (A *Archive) Save(name string) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Error{"unable to create directory", dir, []string{"Save"}, err}
	}
	tmp, err := os.CreateTemp(dir, ".npz-*")
	if err != nil {
		return Error{"unable to create temporary file", dir, []string{"Save"}, err}
	}
	defer os.Remove(tmp.Name()) //no-op after the rename
	if err := A.Write(tmp); err != nil {
		tmp.Close()
		if e, ok := err.(Error); ok {
			e.filename = name
			err = errDecorate(e, "Save")
		}
		return err
	}
	if err := tmp.Close(); err != nil {
		return Error{"unable to close temporary file", name, []string{"Save"}, err}
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return Error{"unable to move archive in place", name, []string{"Save"}, err}
	}
	return nil
}

func transpose[T any](d []T, r, c int) []T {
	ret := make([]T, len(d))
	//d holds the data column after column
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			ret[i*c+j] = d[j*r+i]
		}
	}
	return ret
}
