/*
 * raw.go, part of gomwfn.
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
	"strconv"
	"strings"
	"unicode/utf8"
)

const npyMagic = "\x93NUMPY"

// data returns the array bytes of E, past the header.
func (E *Entry) data() ([]byte, error) {
	if len(E.raw) < 10 || string(E.raw[:6]) != npyMagic {
		return nil, Error{"not an npy array", E.Name, []string{"data"}, nil}
	}
	off := 10 + int(binary.LittleEndian.Uint16(E.raw[8:10]))
	if E.raw[6] > 1 {
		if len(E.raw) < 12 {
			return nil, Error{"truncated npy header", E.Name, []string{"data"}, nil}
		}
		off = 12 + int(binary.LittleEndian.Uint32(E.raw[8:12]))
	}
	if off > len(E.raw) {
		return nil, Error{"truncated npy header", E.Name, []string{"data"}, nil}
	}
	return E.raw[off:], nil
}

// itemSize returns the bytes taken by one element of the dtype descr.
func itemSize(descr string) (int, error) {
	if len(descr) < 3 {
		return 0, fmt.Errorf("unsupported dtype %q", descr)
	}
	n, err := strconv.Atoi(descr[2:])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported dtype %q", descr)
	}
	if descr[1] == 'U' {
		n *= 4 //UCS-4
	}
	return n, nil
}

// npyHeader returns a version 1.0 header for a C-ordered array.
func npyHeader(descr string, shape []int) []byte {
	dims := make([]string, len(shape))
	for i, v := range shape {
		dims[i] = strconv.Itoa(v)
	}
	tuple := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		tuple += ","
	}
	tuple += ")"
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, tuple)
	//magic, version and length take 10 bytes. The whole header ends in a
	//newline and its length is a multiple of 64.
	pad := (64 - (10+len(dict)+1)%64) % 64
	dict += strings.Repeat(" ", pad) + "\n"
	buf := make([]byte, 10, 10+len(dict))
	copy(buf, npyMagic)
	buf[6], buf[7] = 1, 0
	binary.LittleEndian.PutUint16(buf[8:], uint16(len(dict)))
	return append(buf, dict...)
}

// putRaw stores data, already encoded with the dtype descr, as a C-ordered
// array of the given shape.
func (A *Archive) putRaw(name, descr string, shape []int, data []byte) error {
	raw := append(npyHeader(descr, shape), data...)
	E, err := newEntry(name, raw)
	if err != nil {
		return errDecorate(err, "putRaw")
	}
	A.put(E)
	return nil
}

// SetInt64 stores v as a 0-d int64 array.
func (A *Archive) SetInt64(name string, v int64) error {
	return A.putRaw(name, "<i8", []int{}, binary.LittleEndian.AppendUint64(nil, uint64(v)))
}

// SetStrings stores a 1-D unicode array, with the width of its longest element.
func (A *Archive) SetStrings(name string, s []string) error {
	w := 1
	for _, v := range s {
		w = max(w, utf8.RuneCountInString(v))
	}
	data := make([]byte, 0, 4*w*len(s))
	for _, v := range s {
		n := 0
		for _, r := range v {
			data = binary.LittleEndian.AppendUint32(data, uint32(r))
			n++
		}
		for ; n < w; n++ {
			data = binary.LittleEndian.AppendUint32(data, 0)
		}
	}
	return A.putRaw(name, "<U"+strconv.Itoa(w), []int{len(s)}, data)
}

// Strings returns the unicode or byte-string array name as a flat slice,
// and its shape. Trailing NULs are dropped, as NumPy does.
func (A *Archive) Strings(name string) ([]string, []int, error) {
	E, ok := A.Entry(name)
	if !ok {
		return nil, nil, Error{"no array " + name, "", []string{"Strings"}, nil}
	}
	if len(E.Type) < 3 || (E.Type[1] != 'U' && E.Type[1] != 'S') || (E.Type[1] == 'U' && E.Type[0] == '>') {
		return nil, nil, Error{fmt.Sprintf("%s is not a string array (%s)", name, E.Type), "", []string{"Strings"}, nil}
	}
	size, err := itemSize(E.Type)
	if err != nil {
		return nil, nil, Error{"bad dtype for " + name, "", []string{"Strings"}, err}
	}
	data, err := E.data()
	if err != nil {
		return nil, nil, errDecorate(err, "Strings")
	}
	n := E.Size()
	if len(data) < n*size {
		return nil, nil, Error{fmt.Sprintf("%s is truncated", name), "", []string{"Strings"}, nil}
	}
	ret := make([]string, n)
	for i := range ret {
		item := data[i*size : (i+1)*size]
		if E.Type[1] == 'S' {
			ret[i] = string(bytes.TrimRight(item, "\x00"))
			continue
		}
		var sb strings.Builder
		for j := 0; j < len(item); j += 4 {
			sb.WriteRune(rune(binary.LittleEndian.Uint32(item[j:])))
		}
		ret[i] = strings.TrimRight(sb.String(), "\x00")
	}
	if E.Fortran && len(E.Shape) == 2 {
		ret = transpose(ret, E.Shape[0], E.Shape[1])
	}
	return ret, append([]int(nil), E.Shape...), nil
}
