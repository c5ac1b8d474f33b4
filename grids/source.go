/*
 * source.go, part of gomwfn.
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

package grids

import (
	"context"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/multiwfn"
)

// File is a grid archive on disk. It is both a mwfn.PointSource and a
// mwfn.StructureSource.
type File string

// Points reads the points and properties of the archive.
func (F File) Points(ctx context.Context) (*mwfn.PointSet, error) {
	G, err := Load(string(F))
	if err != nil {
		return nil, errDecorate(err, "File.Points")
	}
	return G.Points, nil
}

// Structure reads the structure stored in the archive, which must have one.
func (F File) Structure(ctx context.Context) (*mwfn.Structure, error) {
	G, err := Load(string(F))
	if err != nil {
		return nil, errDecorate(err, "File.Structure")
	}
	if G.Structure == nil {
		return nil, Error{"the archive has no structure", string(F), []string{"File.Structure"}, nil}
	}
	return G.Structure, nil
}

// Source evaluates grid properties with Multiwfn when the points are
// asked for. It is a mwfn.PointSource.
type Source struct {
	Handle       *multiwfn.Handle
	Wavefunction string
	Options      Options
}

// Points runs Export and returns the points.
func (S Source) Points(ctx context.Context) (*mwfn.PointSet, error) {
	G, err := Export(ctx, S.Handle, S.Wavefunction, S.Options)
	if err != nil {
		return nil, err
	}
	return G.Points, nil
}
