/*
 * gridfilter.go, part of gomwfn.
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

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mwfntools/gomwfn"
	"github.com/mwfntools/gomwfn/gridfilter"
	"github.com/mwfntools/gomwfn/gridplot"
	"github.com/mwfntools/gomwfn/grids"
	"github.com/mwfntools/gomwfn/multiwfn"
	"github.com/spf13/cobra"
)

// parseThresholds parses prop=value pairs.
func parseThresholds(flag string, pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ret := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--%s %q: expected property=value", flag, p)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s %q: %w", flag, p, err)
		}
		ret[k] = f
	}
	return ret, nil
}

// histogramProperty picks the property to plot: the one asked for, else
// the first one with a threshold, else the first one in the grid.
func histogramProperty(asked string, O *gridfilter.Options, P *mwfn.PointSet) string {
	if asked != "" {
		return asked
	}
	for _, m := range []map[string]float64{O.Max, O.MaxAbs} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			return keys[0]
		}
	}
	if len(P.Names) > 0 {
		return P.Names[0]
	}
	return ""
}

func (a *app) gridfilterCmd() *cobra.Command {
	var (
		wfn, structure   string
		minDist, rscale  float64
		maxs, maxAbs     []string
		method           string
		seed             int64
		out              string
		histogram, hprop string
		bins             int
		O                gridfilter.Options
	)
	cmd := &cobra.Command{
		Use:   "gridfilter <grid.npz>",
		Short: "Drop grid points near nuclei or above thresholds and subsample the rest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("min-distance") {
				O.MinDistance = &minDist
			}
			if flags.Changed("radius-scale") {
				O.RadiusScale = &rscale
			}
			if flags.Changed("seed") {
				O.Seed = &seed
			}
			if !flags.Changed("fallback-radius") {
				O.FallbackRadius = a.cfg.FallbackRadius
			}
			var err error
			if O.Max, err = parseThresholds("max", maxs); err != nil {
				return err
			}
			if O.MaxAbs, err = parseThresholds("max-abs", maxAbs); err != nil {
				return err
			}
			if O.Method, err = gridfilter.ParseMethod(method); err != nil {
				return err
			}
			F, err := gridfilter.New(O)
			if err != nil {
				return err
			}
			F.SetLogger(a.log.Named("gridfilter"))

			var sources []mwfn.StructureSource
			if structure != "" {
				sources = append(sources, mwfn.FileStructure(structure))
			}
			if wfn != "" {
				sources = append(sources, multiwfn.GeometrySource{Handle: a.H, Wavefunction: wfn})
			}
			input := args[0]
			var res *gridfilter.Result
			var G *grids.Grid
			if histogram == "" {
				res, err = F.File(cmd.Context(), input, out, sources...)
			} else {
				if G, err = grids.Load(input); err != nil {
					return err
				}
				res, err = F.Grid(cmd.Context(), G, input, out, sources...)
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Kept %d of %d grid points (%d after exclusion, sampling: %s)\n",
				len(res.Indices), res.Input, res.Survivors, res.Method)
			if ex := res.Exclusion; ex != nil {
				fmt.Fprintf(w, "  excluded near nuclei: %d\n", ex.ByDistance)
				keys := make([]string, 0, len(ex.ByValue))
				for k := range ex.ByValue {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(w, "  excluded by %s: %d\n", k, ex.ByValue[k])
				}
			}
			fmt.Fprintln(w, "Wrote", res.Output)
			if histogram == "" {
				return nil
			}
			prop := histogramProperty(hprop, &O, G.Points)
			before, ok := G.Points.Property(prop)
			if !ok {
				return fmt.Errorf("no property %q to plot; available: %s", prop, strings.Join(G.Points.Names, ", "))
			}
			after := make([]float64, len(res.Indices))
			for i, j := range res.Indices {
				after[i] = before[j]
			}
			if err := gridplot.File(histogram, prop, before, after, bins); err != nil {
				return err
			}
			fmt.Fprintln(w, "Wrote", histogram)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&wfn, "wavefunction", "", "wavefunction to take the structure from, if the grid has none")
	f.StringVar(&structure, "structure", "", "PDB or XYZ file to take the structure from, if the grid has none")
	f.Float64Var(&minDist, "min-distance", 0, "drop points closer than this to any nucleus, in bohr")
	f.Float64Var(&rscale, "radius-scale", 0, "drop points closer than this times the covalent radius of a nucleus")
	f.Float64Var(&O.FallbackRadius, "fallback-radius", 0, "covalent radius for elements without one, in A")
	f.StringArrayVar(&maxs, "max", nil, "drop points with property above value, as property=value (repeatable)")
	f.StringArrayVar(&maxAbs, "max-abs", nil, "drop points with |property| above value, as property=value (repeatable)")
	f.IntVar(&O.Target, "target", 0, "subsample the remaining points down to this many")
	f.StringVar(&method, "method", "", "sampling method: uniform or farthest (default uniform)")
	f.Int64Var(&seed, "seed", 0, "seed for the sampling")
	f.BoolVar(&O.AllowEmpty, "allow-empty", false, "write an empty grid instead of failing")
	f.StringVarP(&out, "output", "o", "", "output archive (default <stem>_filtered.npz)")
	f.StringVar(&histogram, "histogram", "", "write a histogram of a property before and after filtering to this image")
	f.StringVar(&hprop, "histogram-property", "", "property to plot (default: the first one filtered on)")
	f.IntVar(&bins, "bins", gridplot.DefaultBins, "histogram bins")
	cmd.MarkFlagsMutuallyExclusive("min-distance", "radius-scale")
	cmd.MarkFlagsMutuallyExclusive("wavefunction", "structure")
	return cmd
}
