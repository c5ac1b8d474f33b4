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

// Package multiwfn drives the Multiwfn program. Multiwfn is menu driven, so
// every task is a script: the lines a user would type, fed to the program's
// standard input.
//
// In order to use this part of the library you need the Multiwfn program,
// which must be obtained from Tian Lu (http://sobereva.com/multiwfn).
// Please cite the Multiwfn references if you use the program.
package multiwfn
