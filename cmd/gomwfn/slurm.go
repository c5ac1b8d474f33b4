/*
 * slurm.go, part of gomwfn.
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

	"github.com/mwfntools/gomwfn/slurm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) slurmCmd() *cobra.Command {
	var (
		J   slurm.Job
		out string
	)
	cmd := &cobra.Command{
		Use:   "slurm <inputs...>",
		Short: "Write a Slurm array job that runs a command on every input",
		Long: `Write a Slurm array job that runs a command on every input.

The inputs are split into chunks of --chunk inputs, one per array task.
Each task runs the --command template once for each of its inputs, with
{input} replaced by the input. The script goes to standard output unless
-o is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			J.Inputs = args
			if out == "" {
				return J.Write(cmd.OutOrStdout())
			}
			if err := J.WriteFile(out); err != nil {
				return err
			}
			a.log.Info("wrote Slurm job", zap.String("file", out), zap.String("name", J.Name), zap.Int("tasks", J.Tasks()))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d tasks); submit it with: sbatch %s\n", out, J.Tasks(), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&J.Command, "command", "", "command template, with {input} for the input")
	f.IntVar(&J.ChunkSize, "chunk", 1, "inputs per array task")
	f.StringVar(&J.Name, "name", "", "job name (default gomwfn-<random>)")
	f.IntVar(&J.CPUs, "cpus", 1, "CPUs per task")
	f.StringVar(&J.Mem, "mem", "4G", "memory per task")
	f.StringVar(&J.Time, "time", "01:00:00", "time limit per task")
	f.StringVarP(&out, "output", "o", "", "job script (default: standard output)")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}
