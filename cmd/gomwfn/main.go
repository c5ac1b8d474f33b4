/*
 * main.go, part of gomwfn.
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

// Command gomwfn drives Multiwfn: it lists and runs analysis scripts,
// exports charges, property grids and critical points to NumPy archives,
// filters property grids and writes Slurm array jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwfntools/gomwfn/config"
	"github.com/mwfntools/gomwfn/multiwfn"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the global flags and what is built from them before any
// subcommand runs.
type app struct {
	configFile string
	multiwfn   string
	scriptDirs []string
	logDir     string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
	H   *multiwfn.Handle
}

// setup loads the configuration, applies the flags over it and builds
// the logger and the Multiwfn handle.
func (a *app) setup(cmd *cobra.Command) error {
	name := a.configFile
	if cmd.Flags().Changed("config") {
		//an explicit file must exist
		if _, err := os.Stat(name); err != nil {
			return fmt.Errorf("configuration file: %w", err)
		}
	} else {
		name = config.DefaultPath()
	}
	cfg, err := config.Load(name)
	if err != nil {
		return err
	}
	if a.multiwfn != "" {
		cfg.MultiwfnPath = a.multiwfn
	}
	if len(a.scriptDirs) > 0 {
		cfg.ScriptDirs = a.scriptDirs
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = a.logDir
	}
	a.cfg = cfg

	if a.log == nil {
		zc := zap.NewProductionConfig()
		if a.verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if a.log, err = zc.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	a.H = multiwfn.NewHandle(cfg.MultiwfnPath)
	a.H.SetLogger(a.log.Named("multiwfn"))
	a.H.SetLogDir(cfg.LogDir)
	a.log.Debug("configuration",
		zap.String("file", name),
		zap.String("multiwfn", cfg.MultiwfnPath),
		zap.Strings("script_dirs", cfg.ScriptDirs),
		zap.String("log_dir", cfg.LogDir),
		zap.Int("jobs", cfg.Jobs))
	return nil
}

// jobs returns n if the flag was given, or the configured value.
func (a *app) jobs(n int) int {
	if n > 0 {
		return n
	}
	return a.cfg.Jobs
}

// newRootCmd builds the command tree. A non-nil logger is used instead
// of building one from the flags.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	a := &app{log: logger}
	root := &cobra.Command{
		Use:           "gomwfn",
		Short:         "Run and post-process Multiwfn analyses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "configuration file (default ~/.config/gomwfn/config.yaml)")
	f.StringVar(&a.multiwfn, "multiwfn", "", "Multiwfn executable")
	f.StringArrayVar(&a.scriptDirs, "scripts-dir", nil, "directory to search for scripts (repeatable)")
	f.StringVar(&a.logDir, "log-dir", "", "directory for compressed Multiwfn transcripts")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.runCmd(),
		a.chargesCmd(),
		a.gridCmd(),
		a.cpCmd(),
		a.convertCmd(),
		a.gridfilterCmd(),
		a.slurmCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gomwfn:", err)
		stop()
		os.Exit(1)
	}
}
