/*
 * options.go, part of gomwfn.
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
	"math"
	"sort"
	"strings"

	"github.com/mwfntools/gomwfn"
)

// Method is a subsampling method.
type Method int

const (
	MethodAuto     Method = iota //none without a target, uniform with one
	MethodNone                   //keep every survivor
	MethodUniform                //uniform random sampling without replacement
	MethodFarthest               //greedy farthest-point sampling
)

// ParseMethod returns the Method called s. "random" is accepted as another
// name for uniform, and the empty string gives MethodAuto.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return MethodAuto, nil
	case "none":
		return MethodNone, nil
	case "uniform", "random":
		return MethodUniform, nil
	case "farthest", "fps":
		return MethodFarthest, nil
	}
	return MethodAuto, errorf(ConfigurationError, "ParseMethod", "unsupported sampling method %q, choose none, uniform or farthest", s)
}

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodUniform:
		return "uniform"
	case MethodFarthest:
		return "farthest"
	}
	return "auto"
}

// Options configures a filter run. Distances are in bohr, except for
// FallbackRadius which, like the covalent radius table, is in A.
type Options struct {
	MinDistance    *float64           //fixed cutoff around every nucleus
	RadiusScale    *float64           //cutoff is RadiusScale times the covalent radius of each nucleus
	FallbackRadius float64            //radius for elements missing from the table, 0 means mwfn.DefaultFallbackRadius
	Max            map[string]float64 //points with a larger value are excluded
	MaxAbs         map[string]float64 //points with a larger absolute value are excluded
	Target         int                //subsample the survivors down to this many points, 0 means no target
	Method         Method
	Seed           *int64 //nil seeds the random sampling from entropy
	AllowEmpty     bool   //an empty result is not an error
}

// Validate checks the options for consistency.
func (O *Options) Validate() error {
	if O.MinDistance != nil && O.RadiusScale != nil {
		return errorf(ConfigurationError, "Validate", "a minimum distance and a radius scale can't be used together")
	}
	if O.MinDistance != nil && !(*O.MinDistance >= 0) {
		return errorf(ConfigurationError, "Validate", "minimum distance must be non-negative, got %v", *O.MinDistance)
	}
	if O.RadiusScale != nil && !(*O.RadiusScale >= 0) {
		return errorf(ConfigurationError, "Validate", "radius scale must be non-negative, got %v", *O.RadiusScale)
	}
	if O.FallbackRadius < 0 || math.IsNaN(O.FallbackRadius) {
		return errorf(ConfigurationError, "Validate", "fallback radius must be non-negative, got %v", O.FallbackRadius)
	}
	for _, m := range []map[string]float64{O.Max, O.MaxAbs} {
		for k, v := range m {
			if math.IsNaN(v) {
				return errorf(ConfigurationError, "Validate", "threshold for %s is NaN", k)
			}
		}
	}
	if O.Target < 0 {
		return errorf(ConfigurationError, "Validate", "target point count must be positive, got %d", O.Target)
	}
	if O.Target > 0 && O.Method == MethodNone {
		return errorf(ConfigurationError, "Validate", "a target point count of %d needs a sampling method", O.Target)
	}
	if O.Method < MethodAuto || O.Method > MethodFarthest {
		return errorf(ConfigurationError, "Validate", "unknown sampling method %d", O.Method)
	}
	return nil
}

// Proximity reports whether the options exclude points near nuclei,
// which requires a structure.
func (O *Options) Proximity() bool {
	return O.MinDistance != nil || O.RadiusScale != nil
}

// method returns the sampling method actually used.
func (O *Options) method() Method {
	if O.Target == 0 {
		return MethodNone
	}
	if O.Method == MethodAuto {
		return MethodUniform
	}
	return O.Method
}

func (O *Options) fallback() float64 {
	if O.FallbackRadius == 0 {
		return mwfn.DefaultFallbackRadius
	}
	return O.FallbackRadius
}

// threshold is a maximum on one property, resolved against a point set.
type threshold struct {
	name   string //as stored in the point set
	max    float64
	abs    bool
	values []float64
}

func (t threshold) String() string {
	if t.abs {
		return fmt.Sprintf("|%s| <= %g", t.name, t.max)
	}
	return fmt.Sprintf("%s <= %g", t.name, t.max)
}

// thresholds resolves the configured property names against P, in a
// stable order.
func (O *Options) thresholds(P *mwfn.PointSet) ([]threshold, error) {
	var ret []threshold
	for _, m := range []struct {
		vals map[string]float64
		abs  bool
	}{{O.Max, false}, {O.MaxAbs, true}} {
		keys := make([]string, 0, len(m.vals))
		for k := range m.vals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name, ok := P.Lookup(k)
			if !ok {
				return nil, errorf(ConfigurationError, "thresholds", "property %s not found; available: %s", k, strings.Join(P.Names, ", "))
			}
			vals, _ := P.Property(name)
			ret = append(ret, threshold{name: name, max: m.vals[k], abs: m.abs, values: vals})
		}
	}
	return ret, nil
}
