/*
 * scripts.go, part of gomwfn.
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

// Package scripts finds the example scripts that come with Multiwfn and
// tells how each of them is meant to be run.
package scripts

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Executor tells how a script is run.
type Executor int

// Executors, in order of priority when several scripts match a query.
const (
	Multiwfn Executor = iota
	Shell
	Batch
	VMD
	Tcl
	Gnuplot
	Data
	Unknown
)

var executorNames = [...]string{"multiwfn", "shell", "batch", "vmd", "tcl", "gnuplot", "data", "unknown"}

func (e Executor) String() string {
	if e < 0 || int(e) >= len(executorNames) {
		return "unknown"
	}
	return executorNames[e]
}

// ParseExecutor returns the Executor called s.
func ParseExecutor(s string) (Executor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range executorNames {
		if n == s {
			return Executor(i), nil
		}
	}
	return Unknown, Error{message: fmt.Sprintf("unknown executor %q, choose one of %s", s, strings.Join(executorNames[:], ", ")), deco: []string{"ParseExecutor"}}
}

// Script is a script or helper file found in a script directory.
type Script struct {
	ID       string //<directory name>:<path relative to the directory>
	Path     string //absolute
	Executor Executor
	Category string //directory relative to the script directory, "." for the top
}

// Name returns the file name of the script.
func (S *Script) Name() string { return filepath.Base(S.Path) }

// Stem returns the file name of the script without extension.
func (S *Script) Stem() string {
	n := S.Name()
	return strings.TrimSuffix(n, filepath.Ext(n))
}

// Relative returns the path of the script relative to its script directory.
func (S *Script) Relative() string {
	_, rel, _ := strings.Cut(S.ID, ":")
	return rel
}

// Head returns the first n lines of the script, or all of them if n <= 0.
func (S *Script) Head(n int) ([]string, error) {
	f, err := os.Open(S.Path)
	if err != nil {
		return nil, Error{message: "unable to read script", filename: S.Path, deco: []string{"Head"}, err: err}
	}
	defer f.Close()
	var ret []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if n > 0 && len(ret) == n {
			break
		}
		ret = append(ret, sc.Text())
	}
	return ret, sc.Err()
}

// a Multiwfn script line: a menu choice, a number or a file name.
var simpleToken = regexp.MustCompile(`^[A-Za-z0-9+\-_.]+$`)

// multiwfnRatio is the fraction of simple lines a .txt file needs to be
// taken as a Multiwfn script.
const multiwfnRatio = 0.7

// Detect returns the executor for the file name, looking into the
// contents for .txt files.
func Detect(name string) Executor {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".sh", ".bash":
		return Shell
	case ".bat":
		return Batch
	case ".vmd":
		return VMD
	case ".tcl":
		return Tcl
	case ".gnu":
		return Gnuplot
	case ".txt":
		return detectText(name)
	}
	return Unknown
}

func detectText(name string) Executor {
	f, err := os.Open(name)
	if err != nil {
		return Unknown
	}
	defer f.Close()
	var lines, simple int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" {
			continue
		}
		lines++
		if simpleToken.MatchString(l) {
			simple++
		}
	}
	if sc.Err() != nil || lines == 0 {
		return Unknown
	}
	if float64(simple)/float64(lines) >= multiwfnRatio {
		return Multiwfn
	}
	return Data
}

// Discover walks dirs and returns every file found, sorted by
// identifier without regard to case. Directories that do not exist
// are skipped.
func Discover(dirs ...string) ([]*Script, error) {
	var ret []*Script
	for _, d := range dirs {
		st, err := os.Stat(d)
		if err != nil || !st.IsDir() {
			continue
		}
		base, err := filepath.Abs(d)
		if err != nil {
			return nil, Error{message: "bad script directory", filename: d, deco: []string{"Discover"}, err: err}
		}
		err = filepath.WalkDir(base, func(path string, e fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if e.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			cat := filepath.ToSlash(filepath.Dir(rel))
			ret = append(ret, &Script{
				ID:       filepath.Base(base) + ":" + rel,
				Path:     path,
				Executor: Detect(path),
				Category: cat,
			})
			return nil
		})
		if err != nil {
			return nil, Error{message: "unable to walk script directory", filename: d, deco: []string{"Discover"}, err: err}
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return strings.ToLower(ret[i].ID) < strings.ToLower(ret[j].ID)
	})
	return ret, nil
}

// Find returns the script matching query. A script matches exactly if its
// identifier, relative path, file name or stem equals the query, ignoring
// case. Exact matches win, the best executor and then the smallest
// identifier first. Otherwise a script whose identifier, relative path or
// name ends with the query is returned, but only if it is the only one.
func Find(list []*Script, query string) (*Script, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, false
	}
	var exact, suffix []*Script
	for _, S := range list {
		id := strings.ToLower(S.ID)
		rel := strings.ToLower(S.Relative())
		name := strings.ToLower(S.Name())
		stem := strings.ToLower(S.Stem())
		switch {
		case q == id || q == rel || q == name || q == stem:
			exact = append(exact, S)
		case strings.HasSuffix(id, q) || strings.HasSuffix(rel, q) || strings.HasSuffix(name, q):
			suffix = append(suffix, S)
		}
	}
	if len(exact) > 0 {
		sort.SliceStable(exact, func(i, j int) bool {
			if exact[i].Executor != exact[j].Executor {
				return exact[i].Executor < exact[j].Executor
			}
			return exact[i].ID < exact[j].ID
		})
		return exact[0], true
	}
	if len(suffix) == 1 {
		return suffix[0], true
	}
	return nil, false
}

// Filter returns the scripts in list run by e.
func Filter(list []*Script, e Executor) []*Script {
	var ret []*Script
	for _, S := range list {
		if S.Executor == e {
			ret = append(ret, S)
		}
	}
	return ret
}
