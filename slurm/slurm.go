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

// Package slurm writes Slurm array job scripts that split a list of
// inputs over the tasks of the array.
package slurm

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Placeholder is replaced by each input in the command template.
const Placeholder = "{input}"

// Job describes an array job.
type Job struct {
	Name      string //a random gomwfn-xxxxxxxx name if empty
	Inputs    []string
	Command   string //run once per input, with Placeholder replaced by the input
	ChunkSize int    //inputs per array task, at least 1
	CPUs      int
	Mem       string
	Time      string
	Output    string //Slurm's output pattern
}

// SetDefaults fills the empty fields of J.
func (J *Job) SetDefaults() {
	if J.Name == "" {
		J.Name = "gomwfn-" + uuid.NewString()[:8]
	}
	if J.ChunkSize < 1 {
		J.ChunkSize = 1
	}
	if J.CPUs < 1 {
		J.CPUs = 1
	}
	if J.Mem == "" {
		J.Mem = "4G"
	}
	if J.Time == "" {
		J.Time = "01:00:00"
	}
	if J.Output == "" {
		J.Output = "%x-%A_%a.out"
	}
}

// Tasks returns the number of array tasks needed for the inputs.
func (J *Job) Tasks() int {
	c := max(J.ChunkSize, 1)
	return (len(J.Inputs) + c - 1) / c
}

// Chunk returns the inputs handled by array task i.
func (J *Job) Chunk(i int) []string {
	c := max(J.ChunkSize, 1)
	start := i * c
	if i < 0 || start >= len(J.Inputs) {
		return nil
	}
	return J.Inputs[start:min(start+c, len(J.Inputs))]
}

// quote returns s quoted for bash.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Head returns the shebang and #SBATCH lines.
func (J *Job) Head() []string {
	return []string{
		"#!/bin/bash",
		"#SBATCH --job-name=" + J.Name,
		fmt.Sprintf("#SBATCH --array=0-%d", J.Tasks()-1),
		"#SBATCH --ntasks=1",
		"#SBATCH --cpus-per-task=" + strconv.Itoa(J.CPUs),
		"#SBATCH --mem=" + J.Mem,
		"#SBATCH --time=" + J.Time,
		"#SBATCH --output=" + J.Output,
		"#SBATCH --no-requeue",
	}
}

// Body returns the lines that pick the chunk of the current task and
// run the command on each of its inputs.
func (J *Job) Body() []string {
	lines := []string{"", "set -euo pipefail", "", "INPUTS=("}
	for _, in := range J.Inputs {
		lines = append(lines, "\t"+quote(in))
	}
	lines = append(lines,
		")",
		"CHUNK="+strconv.Itoa(max(J.ChunkSize, 1)),
		"START=$(( SLURM_ARRAY_TASK_ID * CHUNK ))",
		"END=$(( START + CHUNK ))",
		`if [ "$END" -gt "${#INPUTS[@]}" ]; then END=${#INPUTS[@]}; fi`,
		"",
		`for (( i=START; i<END; i++ )); do`,
		`	input="${INPUTS[$i]}"`,
		`	echo "task ${SLURM_ARRAY_TASK_ID}: $input"`,
		"\t"+strings.ReplaceAll(J.Command, Placeholder, `"$input"`),
		"done",
	)
	return lines
}

// Validate checks that J can be written.
func (J *Job) Validate() error {
	if len(J.Inputs) == 0 {
		return Error{message: "no inputs given", deco: []string{"Validate"}}
	}
	if !strings.Contains(J.Command, Placeholder) {
		return Error{message: fmt.Sprintf("the command template %q does not contain %s", J.Command, Placeholder), deco: []string{"Validate"}}
	}
	if strings.ContainsAny(J.Name, " \n") {
		return Error{message: fmt.Sprintf("bad job name %q", J.Name), deco: []string{"Validate"}}
	}
	return nil
}

// Write writes the job script to w, after filling in the defaults.
func (J *Job) Write(w io.Writer) error {
	J.SetDefaults()
	if err := J.Validate(); err != nil {
		return err
	}
	lines := append(J.Head(), J.Body()...)
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteFile writes the job script to the executable file name. Nothing is
// created if the job is not valid.
func (J *Job) WriteFile(name string) error {
	J.SetDefaults()
	if err := J.Validate(); err != nil {
		if e, ok := err.(Error); ok {
			e.filename = name
			e.deco = append(e.deco, "WriteFile")
			return e
		}
		return err
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return Error{message: "unable to create job script", filename: name, deco: []string{"WriteFile"}, err: err}
	}
	if err := J.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return Error{message: "unable to write job script", filename: name, deco: []string{"WriteFile"}, err: err}
	}
	return nil
}
