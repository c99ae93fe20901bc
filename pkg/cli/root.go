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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/capmon/pkg/logging"
)

const (
	name           = "capmon"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the root command with SIGINT/SIGTERM bound to cancellation.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Sample CPU, memory and kernel capability faults into a CSV log",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Description: `Periodically captures CPU and memory utilization, scans the kernel log
for the most recent capability fault, and appends one row per sample to an
append-only CSV file:

  Timestamp,CPU_Usage(%),Memory_Usage(MB),Memory_Anomalies,Error_Logs

The header row is written only when the output file does not exist or is
empty, so restarts keep appending to the same series.

# Examples

Run with defaults (dmesg, 1s window, 1s pause):
  capmon

Read a log file and expose metrics:
  capmon --kernel-log-file /var/log/kern.log --metrics-addr 127.0.0.1:9464

Take ten samples and exit:
  capmon --count 10 --output /tmp/samples.csv`,
		Flags:  runFlags(),
		Before: initLogger,
		Action: runAction,
	}
}

// initLogger configures slog after flags are parsed so overrides like
// --log-level take effect before the command executes.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)
	return ctx, nil
}
