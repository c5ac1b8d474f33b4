/*
 * scripts.go, part of gomwfn.
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
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mwfntools/gomwfn/multiwfn"
	"github.com/mwfntools/gomwfn/scripts"
	"github.com/spf13/cobra"
)

// find discovers the scripts and returns the one matching query.
func (a *app) find(query string) (*scripts.Script, error) {
	list, err := scripts.Discover(a.cfg.ScriptDirs...)
	if err != nil {
		return nil, err
	}
	S, ok := scripts.Find(list, query)
	if !ok {
		return nil, fmt.Errorf("unknown script: %s", query)
	}
	return S, nil
}

func (a *app) listCmd() *cobra.Command {
	var executor string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scripts in the script directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := scripts.Discover(a.cfg.ScriptDirs...)
			if err != nil {
				return err
			}
			if executor != "" {
				e, err := scripts.ParseExecutor(executor)
				if err != nil {
					return err
				}
				list = scripts.Filter(list, e)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No scripts found. Adjust --scripts-dir or check your configuration.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "IDENTIFIER\tEXECUTOR\tCATEGORY")
			for _, S := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", S.ID, S.Executor, S.Category)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&executor, "executor", "", "only list scripts run by this executor")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	var head int
	cmd := &cobra.Command{
		Use:   "show <script>",
		Short: "Print a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			S, err := a.find(args[0])
			if err != nil {
				return err
			}
			lines, err := S.Head(head)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return nil
		},
	}
	cmd.Flags().IntVar(&head, "head", 0, "print only the first N lines")
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var O multiwfn.RunOptions
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a Multiwfn script on a wavefunction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			S, err := a.find(args[0])
			if err != nil {
				return err
			}
			if S.Executor != scripts.Multiwfn {
				return fmt.Errorf("script %s uses executor %s, which the run command does not support", S.ID, S.Executor)
			}
			if !O.DryRun && O.Wavefunction == "" {
				return fmt.Errorf("--wavefunction is required")
			}
			O.Script = S.Path
			out := cmd.OutOrStdout()
			O.Stdout, O.Stderr = out, cmd.ErrOrStderr()
			res, err := a.H.Execute(cmd.Context(), O)
			if err != nil {
				return err
			}
			if res.DryRun {
				fmt.Fprintln(out, "Command:", strings.Join(res.Command, " "))
				fmt.Fprintln(out, "Input script:")
				data, err := os.ReadFile(S.Path)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
				return nil
			}
			if res.Note != "" {
				fmt.Fprintln(out, res.Note)
			}
			fmt.Fprintf(out, "Multiwfn completed with exit code %d.\n", res.ExitCode)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&O.Wavefunction, "wavefunction", "", "wavefunction file")
	f.StringVar(&O.WorkDir, "cwd", "", "working directory (default: the directory of the script)")
	f.BoolVar(&O.DryRun, "dry-run", false, "print the command without running it")
	f.StringArrayVar(&O.ExtraArgs, "extra-arg", nil, "extra argument for Multiwfn (repeatable)")
	return cmd
}
