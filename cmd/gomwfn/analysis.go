/*
 * analysis.go, part of gomwfn.
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

	"github.com/mwfntools/gomwfn/charges"
	"github.com/mwfntools/gomwfn/convert"
	"github.com/mwfntools/gomwfn/cp"
	"github.com/mwfntools/gomwfn/grids"
	"github.com/spf13/cobra"
)

func (a *app) chargesCmd() *cobra.Command {
	var (
		methods []string
		out     string
		jobs    int
	)
	cmd := &cobra.Command{
		Use:   "charges <wavefunction>",
		Short: "Compute atomic charges and save them to an .npz archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(methods) == 0 {
				methods = charges.Methods
			}
			O := charges.Options{Methods: methods, Jobs: a.jobs(jobs), Log: a.log.Named("charges")}
			name, err := charges.ToFile(cmd.Context(), a.H, args[0], out, O)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&methods, "method", "m", nil, fmt.Sprintf("charge method, one of %v (repeatable, default all)", charges.Methods))
	f.StringVarP(&out, "output", "o", "", "output archive (default <stem>_charges.npz)")
	f.IntVarP(&jobs, "jobs", "j", 0, "concurrent Multiwfn runs")
	return cmd
}

func (a *app) gridCmd() *cobra.Command {
	var (
		props []string
		mode  string
		out   string
		jobs  int
	)
	cmd := &cobra.Command{
		Use:   "grid <wavefunction>",
		Short: "Evaluate properties on a grid and save them to an .npz archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(props) == 0 {
				props = grids.Properties
			}
			O := grids.Options{Properties: props, GridMode: mode, Jobs: a.jobs(jobs), Log: a.log.Named("grids")}
			name, err := grids.ToFile(cmd.Context(), a.H, args[0], out, O)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&props, "property", "p", nil, fmt.Sprintf("property, one of %v (repeatable, default all)", grids.Properties))
	f.StringVar(&mode, "grid-mode", "2", "Multiwfn grid quality, 1, 2 or 3")
	f.StringVarP(&out, "output", "o", "", "output archive (default <stem>_grid.npz)")
	f.IntVarP(&jobs, "jobs", "j", 0, "concurrent Multiwfn runs")
	return cmd
}

func (a *app) cpCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "cp <CPprop.txt>",
		Short: "Convert a Multiwfn critical point file to an .npz archive and JSON sidecar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, sidecar, err := cp.ToFile(args[0], out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", archive, "and", sidecar)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output archive (default <stem>_cp.npz)")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var (
		out       string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "convert <wavefunction>",
		Short: "Convert a wavefunction file to the .mwfn format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := convert.ToMwfn(cmd.Context(), a.H, args[0], out, overwrite)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <stem>.mwfn)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing output file")
	return cmd
}
