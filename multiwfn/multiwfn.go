/*
 * multiwfn.go, part of gomwfn.
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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// ExitEOF is the status Multiwfn exits with when it reaches the end of its
// input, which is how most scripts end.
const ExitEOF = 24

// DefaultCommand returns ./Multiwfn if such a file exists, and Multiwfn,
// to be searched in the PATH, otherwise.
func DefaultCommand() string {
	if st, err := os.Stat("Multiwfn"); err == nil && !st.IsDir() {
		abs, err := filepath.Abs("Multiwfn")
		if err == nil {
			return abs
		}
	}
	return "Multiwfn"
}

// ComposeScript joins the lines of a Multiwfn script, ending it with a
// newline.
func ComposeScript(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// Success reports whether code is an exit status Multiwfn uses for
// successful runs.
func Success(code int) bool {
	return code == 0 || code == ExitEOF
}

// Handle runs a Multiwfn executable.
type Handle struct {
	command string
	logDir  string
	log     *zap.Logger
}

// NewHandle returns a Handle for the executable command, or for
// DefaultCommand() if command is empty.
func NewHandle(command string) *Handle {
	H := new(Handle)
	H.SetDefaults()
	if command != "" {
		H.command = command
	}
	return H
}

// SetDefaults sets the command to DefaultCommand(), disables
// transcripts and logging.
func (H *Handle) SetDefaults() {
	H.command = DefaultCommand()
	H.logDir = ""
	H.log = zap.NewNop()
}

func (H *Handle) Command() string {
	return H.command
}

func (H *Handle) SetCommand(command string) {
	H.command = command
}

// SetLogger sets the logger for H. A nil logger disables logging.
func (H *Handle) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	H.log = l
}

// SetLogDir makes H store a zstd-compressed transcript of every run in dir.
// An empty dir disables transcripts.
func (H *Handle) SetLogDir(dir string) {
	H.logDir = dir
}

// Output is the result of a Multiwfn run.
type Output struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	Transcript string //empty if no transcript was written
}

// Run runs Multiwfn in dir with script as its standard input, and returns
// its output. Exit status 0 and ExitEOF are success. Any other status gives
// an Error that includes the output of the program.
func (H *Handle) Run(ctx context.Context, script, dir string) (*Output, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, H.command)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	out := &Output{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode(cmd, err)}
	H.log.Debug("ran Multiwfn",
		zap.String("command", H.command),
		zap.String("dir", dir),
		zap.Int("exit", out.ExitCode),
		zap.Duration("elapsed", time.Since(start)))
	if H.logDir != "" {
		t, terr := H.transcript(script, out)
		if terr != nil {
			H.log.Warn("unable to write transcript", zap.Error(terr))
		}
		out.Transcript = t
	}
	if err != nil && !Success(out.ExitCode) {
		if ctx.Err() != nil {
			return out, Error{message: "Multiwfn run interrupted", deco: []string{"Run"}, err: ctx.Err(), exitCode: out.ExitCode}
		}
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return out, Error{message: "unable to start Multiwfn", filename: H.command, deco: []string{"Run"}, err: err, exitCode: -1}
		}
		return out, Error{message: fmt.Sprintf("Multiwfn execution failed with exit code %d", out.ExitCode), deco: []string{"Run"}, exitCode: out.ExitCode, stdout: out.Stdout, stderr: out.Stderr}
	}
	return out, nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	if err != nil || cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// transcript stores the script and the output of a run in the log
// directory, and returns the file name.
func (H *Handle) transcript(script string, out *Output) (string, error) {
	if err := os.MkdirAll(H.logDir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Join(H.logDir, uuid.NewString()+".log.zst")
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return "", err
	}
	_, err = fmt.Fprintf(zw, "# command: %s\n# exit code: %d\n# script:\n%s# stdout:\n%s# stderr:\n%s", H.command, out.ExitCode, script, out.Stdout, out.Stderr)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	return name, f.Close()
}

// ReadTranscript returns the decompressed contents of a transcript.
func ReadTranscript(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return "", err
	}
	defer zr.Close()
	b, err := io.ReadAll(zr)
	return string(b), err
}

// InTempDir runs script in a new temporary directory, then calls collect
// with the directory and the output of the run, so output files can be read
// before the directory is removed.
func (H *Handle) InTempDir(ctx context.Context, prefix, script string, collect func(dir string, out *Output) error) error {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return Error{message: "unable to create a working directory", deco: []string{"InTempDir"}, err: err}
	}
	defer os.RemoveAll(dir)
	out, err := H.Run(ctx, script, dir)
	if err != nil {
		return err
	}
	return collect(dir, out)
}
