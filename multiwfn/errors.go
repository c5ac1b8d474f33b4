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

package multiwfn

import (
	"fmt"
	"strings"
)

// Error is the error type of the multiwfn package. It fulfills mwfn.Error.
// Errors from failed runs carry the output of the program.
type Error struct {
	message  string
	filename string
	deco     []string
	err      error
	exitCode int
	stdout   string
	stderr   string
}

func (err Error) Error() string {
	msg := err.message
	if err.err != nil {
		msg += ": " + err.err.Error()
	}
	where := "multiwfn"
	if len(err.deco) > 0 {
		where += "/" + strings.Join(err.deco, "/")
	}
	if err.filename != "" {
		msg = fmt.Sprintf("%s: file %s: %s", where, err.filename, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", where, msg)
	}
	if err.stdout != "" || err.stderr != "" {
		msg += fmt.Sprintf("\nSTDOUT:\n%s\nSTDERR:\n%s", err.stdout, err.stderr)
	}
	return msg
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

// ExitCode returns the exit status of the failed run, or -1 if the
// program did not run to completion.
func (err Error) ExitCode() int { return err.exitCode }

// Output returns what the failed run wrote to its standard output
// and standard error.
func (err Error) Output() (stdout, stderr string) { return err.stdout, err.stderr }
