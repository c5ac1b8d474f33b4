/*
 * execute.go, part of gomwfn.
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

package multiwfn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// RunOptions describes the run of a script file.
type RunOptions struct {
	Script       string   //the script file, fed to Multiwfn's standard input
	Wavefunction string   //required unless DryRun is set
	WorkDir      string   //defaults to the directory of Script
	ExtraArgs    []string //passed to Multiwfn after the wavefunction
	DryRun       bool     //only build the command line
	Stdout       io.Writer
	Stderr       io.Writer
}

// RunResult describes a finished, or merely planned, run.
type RunResult struct {
	Command  []string
	Dir      string
	ExitCode int
	DryRun   bool
	Note     string
}

// resolve returns an absolute path for a wavefunction file given relative
// to the current directory or to dir.
func resolve(wfn, dir string) (string, error) {
	candidates := []string{wfn}
	if !filepath.IsAbs(wfn) && dir != "" {
		candidates = append(candidates, filepath.Join(dir, wfn))
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return filepath.Abs(c)
		}
	}
	return "", Error{message: "wavefunction file not found", filename: wfn, deco: []string{"resolve"}}
}

// Execute runs a script file with Multiwfn, streaming the program's output
// to O.Stdout and O.Stderr (os.Stdout and os.Stderr by default). With DryRun
// set, it only returns the command line that would be used.
func (H *Handle) Execute(ctx context.Context, O RunOptions) (*RunResult, error) {
	dir := O.WorkDir
	if dir == "" {
		dir = filepath.Dir(O.Script)
	}
	res := &RunResult{Command: []string{H.command}, Dir: dir, DryRun: O.DryRun}
	wfn := O.Wavefunction
	if wfn != "" {
		if abs, err := resolve(wfn, dir); err == nil {
			wfn = abs
		} else if !O.DryRun {
			return nil, err
		}
		res.Command = append(res.Command, wfn)
	}
	res.Command = append(res.Command, O.ExtraArgs...)
	if O.DryRun {
		return res, nil
	}
	if wfn == "" {
		return nil, Error{message: "a wavefunction file is required to run Multiwfn", deco: []string{"Execute"}}
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, Error{message: "working directory does not exist", filename: dir, deco: []string{"Execute"}, err: err}
	}
	script, err := os.Open(O.Script)
	if err != nil {
		return nil, Error{message: "unable to open script", filename: O.Script, deco: []string{"Execute"}, err: err}
	}
	defer script.Close()

	cmd := exec.CommandContext(ctx, res.Command[0], res.Command[1:]...)
	cmd.Dir = dir
	cmd.Stdin = script
	cmd.Stdout, cmd.Stderr = O.Stdout, O.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	H.log.Info("running script", zap.Strings("command", res.Command), zap.String("script", O.Script), zap.String("dir", dir))
	err = cmd.Run()
	res.ExitCode = exitCode(cmd, err)
	var ee *exec.ExitError
	switch {
	case err == nil:
	case res.ExitCode == ExitEOF:
		res.Note = "Multiwfn reached the end of the script (exit code 24), which is a normal way for a script to finish"
	case errors.As(err, &ee):
		return res, Error{message: fmt.Sprintf("Multiwfn exited with code %d; re-run with --dry-run to inspect the command", res.ExitCode), filename: O.Script, deco: []string{"Execute"}, exitCode: res.ExitCode}
	default:
		return res, Error{message: "unable to run Multiwfn", filename: H.command, deco: []string{"Execute"}, err: err, exitCode: -1}
	}
	return res, nil
}
