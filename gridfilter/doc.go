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

// Package gridfilter culls the points of a property grid. Points too close
// to a nucleus, or with property values above a threshold, are excluded,
// and the survivors can be subsampled down to a target count, either
// uniformly at random or by farthest-point sampling.
//
// The package never creates points: every point in a result is one of the
// input points, with all of its property values, and results keep the
// original relative order of the points.
package gridfilter
