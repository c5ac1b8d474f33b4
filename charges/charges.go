/*
 * charges.go, part of gomwfn.
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

// Package charges runs Multiwfn population analyses and collects the
// atomic charges they produce into .npz archives.
package charges

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/multiwfn"
	"github.com/mwfntools/gomwfn/npz"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// menus holds the Multiwfn input, after the wavefunction, for each method.
var menus = map[string][]string{
	"hirshfeld": {"7", "1", "1", "y", "0", "q"},
	"vdd":       {"7", "2", "1", "y", "0", "q"},
	"becke":     {"7", "10", "0", "y", "0", "q"},
	"adch":      {"7", "11", "1", "y", "0", "q"},
	"chelpg":    {"7", "12", "1", "y", "0", "0", "q"},
	"mk":        {"7", "13", "1", "y", "0", "0", "q"},
	"cm5":       {"7", "16", "1", "y", "0", "q"},
	"mbis":      {"7", "20", "-3", "-4", "1", "n", "y", "y", "0", "0", "q"},
}

// Methods are the supported population analyses.
var Methods = []string{"hirshfeld", "vdd", "becke", "adch", "chelpg", "mk", "cm5", "mbis"}

// Script returns the Multiwfn script for method on the wavefunction wfn.
func Script(method, wfn string) (string, error) {
	m, ok := menus[method]
	if !ok {
		return "", Error{message: fmt.Sprintf("unsupported method %q, supported: %s", method, strings.Join(Methods, ", ")), deco: []string{"Script"}}
	}
	return multiwfn.ComposeScript(append([]string{wfn}, m...)...), nil
}

// Set holds the charges of one system from several methods.
type Set struct {
	Symbols []string
	Coords  []float64 //A, atom after atom
	Methods []string  //in the order requested
	Charges map[string][]float64
	MBIS    *Multipoles //nil unless mbis was requested
}

// result is what a single method run yields.
type result struct {
	symbols []string
	coords  []float64
	charges []float64
	mbis    *Multipoles
}

func readChg(name string) (*result, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, c, q, err := ParseChg(f)
	if err != nil {
		return nil, err
	}
	return &result{symbols: s, coords: c, charges: q}, nil
}

func readMBIS(name string, natoms int) (*Multipoles, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMBIS(f, natoms)
}

// runMethod runs one analysis in its own temporary directory.
func runMethod(ctx context.Context, H *multiwfn.Handle, method, wfn string) (*result, error) {
	script, err := Script(method, wfn)
	if err != nil {
		return nil, err
	}
	stem := multiwfn.Stem(wfn)
	var res *result
	err = H.InTempDir(ctx, "multiwfn-charges-", script, func(dir string, out *multiwfn.Output) error {
		var err error
		chg := filepath.Join(dir, stem+".chg")
		if res, err = readChg(chg); err != nil {
			return Error{message: fmt.Sprintf("Multiwfn did not produce the expected charge file for method %s", method), filename: chg, deco: []string{"runMethod"}, err: err}
		}
		if method != "mbis" {
			return nil
		}
		mpl := filepath.Join(dir, stem+".mbis_mpl")
		if res.mbis, err = readMBIS(mpl, len(res.symbols)); err != nil {
			return Error{message: "bad or missing MBIS multipole file", filename: mpl, deco: []string{"runMethod"}, err: err}
		}
		return nil
	})
	return res, err
}

// Options for Compute.
type Options struct {
	Methods []string
	Jobs    int //concurrent Multiwfn runs, values < 1 mean 1
	Log     *zap.Logger
}

// Compute runs the analyses in O.Methods on the wavefunction wfn. Each
// method runs in its own temporary directory, up to O.Jobs at the same time.
// All methods must report the same atoms in the same order.
func Compute(ctx context.Context, H *multiwfn.Handle, wfn string, O Options) (*Set, error) {
	if len(O.Methods) == 0 {
		return nil, Error{message: "no charge analysis methods specified", deco: []string{"Compute"}}
	}
	methods := make([]string, 0, len(O.Methods))
	for _, m := range O.Methods {
		m = strings.ToLower(m)
		if _, ok := menus[m]; !ok {
			return nil, Error{message: fmt.Sprintf("unsupported method %q, supported: %s", m, strings.Join(Methods, ", ")), deco: []string{"Compute"}}
		}
		if !slices.Contains(methods, m) {
			methods = append(methods, m)
		}
	}
	log := O.Log
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(wfn)
	if err == nil {
		_, err = os.Stat(abs)
	}
	if err != nil {
		return nil, Error{message: "wavefunction file not found", filename: wfn, deco: []string{"Compute"}, err: err}
	}
	results := make([]*result, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(O.Jobs, 1))
	for i, m := range methods {
		g.Go(func() error {
			log.Info("running charge analysis", zap.String("method", m), zap.String("wavefunction", abs))
			r, err := runMethod(gctx, H, m, abs)
			if err != nil {
				return mwfn.ErrDecorate(err, "Compute")
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	S := &Set{Symbols: results[0].symbols, Coords: results[0].coords, Methods: methods, Charges: make(map[string][]float64, len(methods))}
	for i, r := range results {
		if !slices.Equal(r.symbols, S.Symbols) {
			return nil, Error{message: fmt.Sprintf("atomic ordering mismatch between methods %s and %s", methods[0], methods[i]), deco: []string{"Compute"}}
		}
		S.Charges[methods[i]] = r.charges
		if r.mbis != nil {
			S.MBIS = r.mbis
		}
	}
	return S, nil
}

// Archive returns the charges as an .npz archive with the arrays
// atom_numbers, coordinates_angstrom, charges_<method> and, for MBIS,
// mbis_charges_raw, mbis_dipoles, mbis_quadrupole_cartesian and
// mbis_quadrupole_traceless.
func (S *Set) Archive() (*npz.Archive, error) {
	A := npz.New()
	nums := make([]int64, len(S.Symbols))
	for i, s := range S.Symbols {
		z, _ := mwfn.AtomicNumber(s)
		nums[i] = int64(z)
	}
	steps := []func() error{
		func() error { return A.SetInt64s("atom_numbers", nums) },
		func() error { return A.SetRows("coordinates_angstrom", S.Coords, 3) },
	}
	for _, m := range S.Methods {
		steps = append(steps, func() error { return A.SetFloat64s("charges_"+m, S.Charges[m]) })
	}
	if M := S.MBIS; M != nil {
		steps = append(steps,
			func() error { return A.SetFloat64s("mbis_charges_raw", M.Charges) },
			func() error { return A.SetRows("mbis_dipoles", M.Dipoles, 3) },
			func() error { return A.SetRows("mbis_quadrupole_cartesian", M.QuadCartesian, 6) },
			func() error { return A.SetRows("mbis_quadrupole_traceless", M.QuadTraceless, 6) },
		)
	}
	for _, f := range steps {
		if err := f(); err != nil {
			return nil, mwfn.ErrDecorate(err, "Archive")
		}
	}
	return A, nil
}

// DefaultOutput returns <stem>_charges.npz next to the wavefunction.
func DefaultOutput(wfn string) string {
	return filepath.Join(filepath.Dir(wfn), multiwfn.Stem(wfn)+"_charges.npz")
}

// ToFile computes the charges of wfn and saves them to out, or to
// DefaultOutput(wfn) if out is empty. It returns the name of the archive.
func ToFile(ctx context.Context, H *multiwfn.Handle, wfn, out string, O Options) (string, error) {
	S, err := Compute(ctx, H, wfn, O)
	if err != nil {
		return "", err
	}
	A, err := S.Archive()
	if err != nil {
		return "", err
	}
	if out == "" {
		out = DefaultOutput(wfn)
	}
	if err := A.Save(out); err != nil {
		return "", mwfn.ErrDecorate(err, "ToFile")
	}
	return out, nil
}
