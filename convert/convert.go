/*
 * convert.go, part of gomwfn.
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

// Package convert makes Multiwfn write wavefunctions in its own .mwfn
// format.
package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/multiwfn"
)

// Script returns the Multiwfn input that loads in and exports it
// as dest.
func Script(in, dest string) string {
	return multiwfn.ComposeScript(in, "100", "2", "32", dest, "0", "0", "q")
}

// DefaultOutput returns the input name with the extension changed to .mwfn.
func DefaultOutput(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".mwfn"
}

// ToMwfn converts the wavefunction in to the .mwfn format, writing it to
// out, or to DefaultOutput(in) if out is empty. An existing file is only
// replaced if overwrite is true. It returns the name of the new file.
func ToMwfn(ctx context.Context, H *multiwfn.Handle, in, out string, overwrite bool) (string, error) {
	src, err := filepath.Abs(in)
	if err == nil {
		_, err = os.Stat(src)
	}
	if err != nil {
		return "", Error{message: "input file not found", filename: in, deco: []string{"ToMwfn"}, err: err}
	}
	if out == "" {
		out = DefaultOutput(src)
	}
	dest, err := filepath.Abs(out)
	if err != nil {
		return "", Error{message: "bad destination", filename: out, deco: []string{"ToMwfn"}, err: err}
	}
	if dest == src {
		return "", Error{message: "the destination is the input file", filename: dest, deco: []string{"ToMwfn"}}
	}
	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return "", Error{message: "the destination already exists; use --overwrite to replace it", filename: dest, deco: []string{"ToMwfn"}}
		}
		//Multiwfn may ask before replacing a file, so it gets a clean slate
		if err := os.Remove(dest); err != nil {
			return "", Error{message: "unable to replace the destination", filename: dest, deco: []string{"ToMwfn"}, err: err}
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", Error{message: "unable to create the destination directory", filename: dest, deco: []string{"ToMwfn"}, err: err}
	}
	res, err := H.Run(ctx, Script(src, dest), filepath.Dir(dest))
	if err != nil {
		return "", mwfn.ErrDecorate(err, "ToMwfn")
	}
	if _, err := os.Stat(dest); err != nil {
		return "", Error{
			message: "Multiwfn did not create the expected .mwfn file; check that the input has basis set information. Multiwfn output:\n" +
				strings.TrimSpace(res.Stdout),
			filename: dest,
			deco:     []string{"ToMwfn"},
		}
	}
	return dest, nil
}
