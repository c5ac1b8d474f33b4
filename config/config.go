/*
 * config.go, part of gomwfn.
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

// Package config reads the gomwfn configuration file.
//
// Values are resolved with flags taking precedence over the file, and the
// file over the defaults. A missing file just means defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mwfntools/gomwfn/multiwfn"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the gomwfn commands.
type Config struct {
	MultiwfnPath   string   `yaml:"multiwfn_path"`
	ScriptDirs     []string `yaml:"script_dirs"`
	LogDir         string   `yaml:"log_dir"`         //transcripts are not kept if empty
	Jobs           int      `yaml:"jobs"`            //concurrent Multiwfn processes
	FallbackRadius float64  `yaml:"fallback_radius"` //A, 0 means the filter's own default
}

// DefaultScriptDirs are searched for scripts when nothing else is given.
var DefaultScriptDirs = []string{filepath.Join("examples", "scripts"), filepath.Join("examples", "EDA")}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MultiwfnPath: multiwfn.DefaultCommand(),
		ScriptDirs:   append([]string(nil), DefaultScriptDirs...),
		Jobs:         1,
	}
}

// DefaultPath returns ~/.config/gomwfn/config.yaml, or the empty string
// if there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gomwfn", "config.yaml")
}

// Load returns the defaults overridden by the file name. A missing file
// is not an error, but one that can't be parsed, or that has unknown
// keys, is.
func Load(name string) (*Config, error) {
	C := Default()
	if name == "" {
		return C, nil
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return C, nil
	}
	if err != nil {
		return nil, Error{message: "unable to read configuration", filename: name, deco: []string{"Load"}, err: err}
	}
	if err := C.decode(data); err != nil {
		return nil, Error{message: "malformed configuration", filename: name, deco: []string{"Load"}, err: err}
	}
	if err := C.Validate(); err != nil {
		return nil, Error{message: "invalid configuration", filename: name, deco: []string{"Load"}, err: err}
	}
	return C, nil
}

func (C *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(C)
	if errors.Is(err, io.EOF) {
		//empty file
		return nil
	}
	return err
}

// Validate checks the values that can't be checked by the parser.
func (C *Config) Validate() error {
	if C.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", C.Jobs)
	}
	if C.FallbackRadius < 0 {
		return fmt.Errorf("fallback_radius must not be negative, got %g", C.FallbackRadius)
	}
	if C.MultiwfnPath == "" {
		return errors.New("multiwfn_path is empty")
	}
	return nil
}

// Save writes C to name, creating its directory if needed.
func (C *Config) Save(name string) error {
	data, err := yaml.Marshal(C)
	if err != nil {
		return Error{message: "unable to encode configuration", filename: name, deco: []string{"Save"}, err: err}
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return Error{message: "unable to create configuration directory", filename: name, deco: []string{"Save"}, err: err}
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return Error{message: "unable to write configuration", filename: name, deco: []string{"Save"}, err: err}
	}
	return nil
}
