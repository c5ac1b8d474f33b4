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

package mwfn

import (
	"errors"
	"fmt"
	"strings"
)

// CError is the error type of the root package. It fulfills Error.
type CError struct {
	msg      string
	filename string
	deco     []string
	err      error
}

func (err *CError) Error() string {
	var b strings.Builder
	b.WriteString("gomwfn")
	if len(err.deco) > 0 {
		b.WriteString("/" + strings.Join(err.deco, "/"))
	}
	if err.filename != "" {
		b.WriteString(" (" + err.filename + ")")
	}
	b.WriteString(": " + err.msg)
	if err.err != nil {
		b.WriteString(": " + err.err.Error())
	}
	return b.String()
}

// Decorate adds dec to the list of callers the error went through.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *CError) Unwrap() error { return err.err }

// FileName returns the file associated with the error, if any.
func (err *CError) FileName() string { return err.filename }

func newError(msg, filename string, cause error, deco ...string) *CError {
	return &CError{msg: msg, filename: filename, deco: deco, err: cause}
}

func errorf(filename, caller string, format string, a ...any) *CError {
	return newError(fmt.Sprintf(format, a...), filename, nil, caller)
}

// ErrDecorate adds caller to err's decoration if err implements Error,
// and returns err unchanged otherwise.
func ErrDecorate(err error, caller string) error {
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
