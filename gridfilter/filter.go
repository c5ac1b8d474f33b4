/*
 * filter.go, part of gomwfn.
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
	"math"

	"github.com/mwfntools/gomwfn"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of a filter run.
type Result struct {
	Indices   []int //points kept, ascending
	Input     int   //number of input points
	Survivors int   //points left after exclusion, before sampling
	Method    Method
	Exclusion *Exclusion
	Output    string //archive written, if any
}

// Filter runs the exclusion and sampling steps with fixed options.
type Filter struct {
	opts Options
	log  *zap.Logger
}

// New returns a Filter for the options O, which are validated.
func New(O Options) (*Filter, error) {
	if err := O.Validate(); err != nil {
		return nil, err
	}
	return &Filter{opts: O, log: zap.NewNop()}, nil
}

// SetLogger sets the logger used to report each step. A nil logger
// disables logging.
func (F *Filter) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	F.log = l
}

// Options returns a copy of the options of F.
func (F *Filter) Options() Options {
	return F.opts
}

// Run filters P. S is the structure for distance filtering, and may be nil
// if the options do not filter by distance.
func (F *Filter) Run(P *mwfn.PointSet, S *mwfn.Structure) (*Result, error) {
	O := &F.opts
	ex, err := Exclude(P, S, O)
	if err != nil {
		return nil, err
	}
	res := &Result{Input: P.Len(), Survivors: len(ex.Kept), Exclusion: ex, Method: MethodNone}
	F.log.Info("excluded grid points",
		zap.Int("input", res.Input),
		zap.Int("survivors", res.Survivors),
		zap.Int("by_distance", ex.ByDistance),
		zap.Any("by_value", ex.ByValue))
	if len(ex.Kept) == 0 && !O.AllowEmpty {
		return nil, errorf(EmptyResultError, "Run", "all %d grid points were excluded; adjust the thresholds", res.Input)
	}
	res.Indices = ex.Kept
	if O.Target > 0 && O.Target < len(ex.Kept) {
		res.Method = O.method()
		switch res.Method {
		case MethodUniform:
			res.Indices = Uniform(ex.Kept, O.Target, newRand(O.Seed))
		case MethodFarthest:
			start := 0
			if O.Seed != nil {
				start = newRand(O.Seed).IntN(len(ex.Kept))
			}
			res.Indices = Farthest(P.Coords, ex.Kept, O.Target, start)
		}
		F.log.Info("subsampled grid points",
			zap.Stringer("method", res.Method),
			zap.Int("target", O.Target),
			zap.Int("kept", len(res.Indices)))
	}
	if F.log.Core().Enabled(zap.DebugLevel) {
		for k, name := range P.Names {
			F.log.Debug("property summary",
				zap.String("property", name),
				zap.Object("before", summary(P.Values[k], nil)),
				zap.Object("after", summary(P.Values[k], res.Indices)))
		}
	}
	return res, nil
}

// stats summarizes the finite values of a property, for the logs.
type stats struct {
	n, nan              int
	min, max, mean, std float64
}

func summary(values []float64, idx []int) stats {
	var vals []float64
	var s stats
	add := func(v float64) {
		if math.IsNaN(v) {
			s.nan++
			return
		}
		vals = append(vals, v)
	}
	if idx == nil {
		for _, v := range values {
			add(v)
		}
	} else {
		for _, i := range idx {
			add(values[i])
		}
	}
	s.n = len(vals)
	if s.n == 0 {
		return s
	}
	s.min, s.max = floats.Min(vals), floats.Max(vals)
	s.mean, s.std = stat.MeanStdDev(vals, nil)
	return s
}

func (s stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("n", s.n)
	if s.nan > 0 {
		enc.AddInt("nan", s.nan)
	}
	if s.n > 0 {
		enc.AddFloat64("min", s.min)
		enc.AddFloat64("max", s.max)
		enc.AddFloat64("mean", s.mean)
		if s.n > 1 {
			enc.AddFloat64("std", s.std)
		}
	}
	return nil
}
