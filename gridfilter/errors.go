/*
 * errors.go, part of gomwfn.
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

package gridfilter

import (
	"fmt"
	"strings"
)

// Kind classifies the errors of a filter run.
type Kind int

const (
	ConfigurationError Kind = iota + 1 //bad or conflicting options, unknown properties
	DataShapeError                     //arrays of inconsistent lengths
	EmptyResultError                   //every point was excluded
)

func (k Kind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration error"
	case DataShapeError:
		return "data shape error"
	case EmptyResultError:
		return "empty result"
	}
	return "unknown error"
}

// Sentinels for errors.Is. Any Error matches the sentinel of its Kind.
var (
	ErrConfiguration = Error{kind: ConfigurationError}
	ErrDataShape     = Error{kind: DataShapeError}
	ErrEmptyResult   = Error{kind: EmptyResultError}
)

// Error is the error type of the gridfilter package. It fulfills mwfn.Error.
type Error struct {
	kind     Kind
	message  string
	filename string
	deco     []string
	err      error
}

func errorf(kind Kind, caller, format string, a ...any) Error {
	return Error{kind: kind, message: fmt.Sprintf(format, a...), deco: []string{caller}}
}

func (err Error) Error() string {
	msg := err.kind.String()
	if err.message != "" {
		msg += ": " + err.message
	}
	if err.err != nil {
		msg += ": " + err.err.Error()
	}
	where := "gridfilter"
	if len(err.deco) > 0 {
		where += "/" + strings.Join(err.deco, "/")
	}
	if err.filename != "" {
		return fmt.Sprintf("%s: file %s: %s", where, err.filename, msg)
	}
	return fmt.Sprintf("%s: %s", where, msg)
}

// Kind returns the class of the error.
func (err Error) Kind() Kind { return err.kind }

// Is reports whether target is the sentinel for err's Kind.
func (err Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.message == "" && t.err == nil && t.kind == err.kind
}

// Decorate Adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) Unwrap() error { return err.err }

// FileName returns the file associated with the error, if any.
func (err Error) FileName() string { return err.filename }
