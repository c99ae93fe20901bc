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

package kernlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NVIDIA/capmon/pkg/defaults"
)

// DefaultCommand is the kernel log query used when none is configured.
var DefaultCommand = []string{"dmesg"}

// Source returns the full kernel log as ordered lines, newest last.
type Source interface {
	ReadAll(ctx context.Context) ([]string, error)
}

// CommandSource reads the kernel log from the standard output of a command.
type CommandSource struct {
	// Name is the executable, looked up in PATH.
	Name string

	// Args are passed to the executable.
	Args []string

	// Timeout bounds a single invocation. Zero means no bound beyond ctx.
	Timeout time.Duration

	// MaxBytes keeps only the newest MaxBytes of output. Zero means unlimited.
	MaxBytes int
}

// NewCommandSource creates a source for the given command line.
// An empty command selects DefaultCommand.
func NewCommandSource(command ...string) *CommandSource {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &CommandSource{
		Name:     command[0],
		Args:     append([]string(nil), command[1:]...),
		Timeout:  defaults.KernelLogFetchTimeout,
		MaxBytes: defaults.KernelLogMaxBytes,
	}
}

// ReadAll runs the command and splits its output into lines.
func (c *CommandSource) ReadAll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s: %w", c.Name, c.Timeout, context.DeadlineExceeded)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%s %w: %s", c.Name, err, msg)
			}
			return nil, fmt.Errorf("%s %w", c.Name, err)
		}
		return nil, err
	}

	return decodeLines(c.Name, tail(out, c.MaxBytes))
}

// String describes the source for logs.
func (c *CommandSource) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// FileSource reads the kernel log from a file.
type FileSource struct {
	// Path of the log file.
	Path string

	// MaxBytes keeps only the newest MaxBytes of the file. Zero means unlimited.
	MaxBytes int
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		Path:     path,
		MaxBytes: defaults.KernelLogMaxBytes,
	}
}

// ReadAll reads the file and splits it into lines.
func (f *FileSource) ReadAll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Path == "" {
		return nil, fmt.Errorf("kernel log file path cannot be empty")
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", f.Path, err)
	}

	if f.MaxBytes > 0 && info.Size() > int64(f.MaxBytes) {
		// Start one byte early so a line beginning exactly at the cut survives.
		off := info.Size() - int64(f.MaxBytes) - 1
		if _, err := file.Seek(off, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek %q: %w", f.Path, err)
		}
		b, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", f.Path, err)
		}
		return decodeLines(f.Path, dropPartialLine(b))
	}

	b, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", f.Path, err)
	}
	return decodeLines(f.Path, b)
}

// String describes the source for logs.
func (f *FileSource) String() string {
	return f.Path
}

// tail returns the newest n bytes of b, starting at a line boundary.
func tail(b []byte, n int) []byte {
	if n <= 0 || len(b) <= n {
		return b
	}
	slog.Debug("kernel log output truncated", slog.Int("size", len(b)), slog.Int("max", n))
	return dropPartialLine(b[len(b)-n-1:])
}

// dropPartialLine discards everything up to and including the first newline.
func dropPartialLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[i+1:]
	}
	return nil
}

// decodeLines validates b as UTF-8 and splits it into lines. Like a
// line-oriented reader, a single trailing newline does not produce an extra
// empty line, and CRLF endings are accepted.
func decodeLines(origin string, b []byte) ([]string, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("output of %s is not valid UTF-8", origin)
	}
	if len(b) == 0 {
		return nil, nil
	}

	text := strings.TrimSuffix(string(b), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
