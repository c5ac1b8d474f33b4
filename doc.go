/*
 * doc.go, part of gomwfn.
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

// Package mwfn is the base package of the gomwfn tools for Multiwfn. It provides atom,
// structure and point set types, the element data and units they need, and readers for the
// structure files Multiwfn writes.
//
// gomwfn capabilities:
//
//   - Reads and writes XYZ files, reads PDB files.
//   - Keeps property grids as point sets: a set of points with any number of named
//     scalar properties, one value per point.
//   - Obtains structures from several sources behind one interface, StructureSource:
//     files, grid archives and Multiwfn itself.
//   - Drives Multiwfn to evaluate property grids, compute atomic charges and convert
//     wavefunctions (packages multiwfn, grids, charges, convert).
//   - Reads and writes NumPy .npz archives (package npz), and turns Multiwfn critical
//     point output into them (package cp).
//   - Filters property grids by distance to the nuclei and by property thresholds, and
//     subsamples them uniformly or by farthest point sampling (package gridfilter).
//   - Plots property histograms before and after filtering (package gridplot), and writes
//     Slurm array jobs to run any of the above over many inputs (package slurm).
//
// Coordinates are kept in a v3.Matrix, based on gonum's mat.Dense, with one point per row.
// Unless a name says otherwise, coordinates and distances are in bohr.
package mwfn
