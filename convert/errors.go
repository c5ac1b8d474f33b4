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

package convert

import (
	"fmt"
	"strings"
)

// Error is the error type of the convert package. It fulfills mwfn.Error.
type Error struct {
	message  string
	filename string
	deco     []string
	err      error
}

func (err Error) Error() string {
	msg := err.message
	if err.err != nil {
		msg += ": " + err.err.Error()
	}
	where := "convert"
	if len(err.deco) > 0 {
		where += "/" + strings.Join(err.deco, "/")
	}
	if err.filename != "" {
		return fmt.Sprintf("%s: file %s: %s", where, err.filename, msg)
	}
	return fmt.Sprintf("%s: %s", where, msg)
}

// Decorate Adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) Unwrap() error { return err.err }

func (err Error) FileName() string { return err.filename }
