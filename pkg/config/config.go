// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/capmon/pkg/defaults"
	cerrors "github.com/NVIDIA/capmon/pkg/errors"
	"github.com/NVIDIA/capmon/pkg/kernlog"
	"github.com/NVIDIA/capmon/pkg/sink"
)

// maxFileSize caps the configuration file size.
const maxFileSize = 1 << 20

// KernelLog selects the kernel log source. File takes precedence over Command.
type KernelLog struct {
	Command []string `yaml:"command,omitempty"`
	File    string   `yaml:"file,omitempty"`
}

// Config is the complete sampler configuration.
type Config struct {
	// Output is the CSV file samples are appended to.
	Output string `yaml:"output"`

	// Pause is the delay after each tick.
	Pause time.Duration `yaml:"pause"`

	// ProbeWindow is the CPU measurement window. Zero selects non-blocking mode.
	ProbeWindow time.Duration `yaml:"probeWindow"`

	// FetchTimeout bounds a kernel log query command.
	FetchTimeout time.Duration `yaml:"fetchTimeout"`

	// Signature is the substring that marks a fault line.
	Signature string `yaml:"signature"`

	KernelLog KernelLog `yaml:"kernelLog"`

	// MetricsAddress enables the metrics server when not empty.
	MetricsAddress string `yaml:"metricsAddress,omitempty"`

	// Count stops after that many ticks. Zero runs until interrupted.
	Count int `yaml:"count,omitempty"`

	// NoSync skips fsync after each row.
	NoSync bool `yaml:"noSync,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output:       sink.DefaultPath,
		Pause:        defaults.TickPause,
		ProbeWindow:  defaults.ProbeWindow,
		FetchTimeout: defaults.KernelLogFetchTimeout,
		Signature:    kernlog.DefaultSignature,
		KernelLog: KernelLog{
			Command: append([]string(nil), kernlog.DefaultCommand...),
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.WrapWithContext(cerrors.Classify(err), "failed to read config file", err,
			map[string]any{"path": path})
	}
	if len(b) > maxFileSize {
		return nil, cerrors.NewWithContext(cerrors.ErrCodeInvalidRequest,
			fmt.Sprintf("config file exceeds maximum size of %d bytes", maxFileSize),
			map[string]any{"path": path})
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, cerrors.WrapWithContext(cerrors.ErrCodeInvalidRequest, "failed to parse config file", err,
			map[string]any{"path": path})
	}

	return cfg, nil
}

// Validate checks the configuration for values the sampler cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "output path cannot be empty")
	}
	if c.Pause < 0 {
		problems = append(problems, "pause cannot be negative")
	}
	if c.ProbeWindow < 0 {
		problems = append(problems, "probe window cannot be negative")
	}
	if c.FetchTimeout < 0 {
		problems = append(problems, "fetch timeout cannot be negative")
	}
	if c.Signature == "" {
		problems = append(problems, "signature cannot be empty")
	}
	if c.KernelLog.File == "" && (len(c.KernelLog.Command) == 0 || c.KernelLog.Command[0] == "") {
		problems = append(problems, "kernel log command or file is required")
	}
	if c.Count < 0 {
		problems = append(problems, "count cannot be negative")
	}

	if len(problems) > 0 {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, "invalid configuration: "+strings.Join(problems, "; "))
	}
	return nil
}

// KernelLogSource builds the configured kernel log source.
func (c *Config) KernelLogSource() kernlog.Source {
	if c.KernelLog.File != "" {
		return kernlog.NewFileSource(c.KernelLog.File)
	}
	src := kernlog.NewCommandSource(c.KernelLog.Command...)
	src.Timeout = c.FetchTimeout
	return src
}
