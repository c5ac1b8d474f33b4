/*
 * interfaces.go, part of gomwfn.
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

import "context"

// StructureSource supplies the nuclei of a system. Implementations may
// read a file, an archive, or drive an external program.
type StructureSource interface {
	Structure(ctx context.Context) (*Structure, error)
}

// PointSource supplies grid points and the properties evaluated on them.
type PointSource interface {
	Points(ctx context.Context) (*PointSet, error)
}

// StructureFunc adapts an ordinary function to StructureSource.
type StructureFunc func(ctx context.Context) (*Structure, error)

func (f StructureFunc) Structure(ctx context.Context) (*Structure, error) { return f(ctx) }

//Errors

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string
}
