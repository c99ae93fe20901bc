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
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/capmon/pkg/config"
	"github.com/NVIDIA/capmon/pkg/errors"
	"github.com/NVIDIA/capmon/pkg/kernlog"
	"github.com/NVIDIA/capmon/pkg/logging"
	"github.com/NVIDIA/capmon/pkg/monitor"
	"github.com/NVIDIA/capmon/pkg/probe"
	"github.com/NVIDIA/capmon/pkg/server"
	"github.com/NVIDIA/capmon/pkg/sink"
)

func runFlags() []cli.Flag {
	def := config.Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			Sources: cli.EnvVars("CAPMON_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   def.Output,
			Usage:   "CSV output file",
			Sources: cli.EnvVars("CAPMON_OUTPUT"),
		},
		&cli.DurationFlag{
			Name:  "pause",
			Value: def.Pause,
			Usage: "delay after each sample",
		},
		&cli.DurationFlag{
			Name:  "probe-window",
			Value: def.ProbeWindow,
			Usage: "CPU measurement window (0 measures since the previous call)",
		},
		&cli.DurationFlag{
			Name:  "fetch-timeout",
			Value: def.FetchTimeout,
			Usage: "bound on a single kernel log query",
		},
		&cli.StringFlag{
			Name:  "signature",
			Value: def.Signature,
			Usage: "kernel log fault signature (case-sensitive substring)",
		},
		&cli.StringFlag{
			Name:  "kernel-log-cmd",
			Value: strings.Join(def.KernelLog.Command, " "),
			Usage: "command whose stdout is the kernel log",
		},
		&cli.StringFlag{
			Name:    "kernel-log-file",
			Usage:   "read the kernel log from this file instead of running a command",
			Sources: cli.EnvVars("CAPMON_KERNEL_LOG_FILE"),
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "serve /metrics, /health and /ready on this address",
			Sources: cli.EnvVars("CAPMON_METRICS_ADDR"),
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "stop after this many samples (0 runs until interrupted)",
		},
		&cli.BoolFlag{
			Name:  "no-sync",
			Usage: "skip fsync after each row",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "log level (debug, info, warn, error)",
			Sources: cli.EnvVars(logging.EnvLogLevel),
		},
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	return run(ctx, cfg, cmd.Root().Writer)
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("output") {
		cfg.Output = cmd.String("output")
	}
	if cmd.IsSet("pause") {
		cfg.Pause = cmd.Duration("pause")
	}
	if cmd.IsSet("probe-window") {
		cfg.ProbeWindow = cmd.Duration("probe-window")
	}
	if cmd.IsSet("fetch-timeout") {
		cfg.FetchTimeout = cmd.Duration("fetch-timeout")
	}
	if cmd.IsSet("signature") {
		cfg.Signature = cmd.String("signature")
	}
	if cmd.IsSet("kernel-log-cmd") {
		cfg.KernelLog.Command = strings.Fields(cmd.String("kernel-log-cmd"))
		cfg.KernelLog.File = ""
	}
	if cmd.IsSet("kernel-log-file") {
		cfg.KernelLog.File = cmd.String("kernel-log-file")
	}
	if cmd.IsSet("metrics-addr") {
		cfg.MetricsAddress = cmd.String("metrics-addr")
	}
	if cmd.IsSet("count") {
		cfg.Count = int(cmd.Int("count"))
	}
	if cmd.IsSet("no-sync") {
		cfg.NoSync = cmd.Bool("no-sync")
	}
}

// run wires the sampler components from cfg and blocks until the loop
// finishes, is interrupted, or fails.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	runID := uuid.NewString()

	var sinkOpts []sink.Option
	if cfg.NoSync {
		sinkOpts = append(sinkOpts, sink.WithoutSync())
	}
	csvSink, err := sink.NewCSVSink(cfg.Output, sinkOpts...)
	if err != nil {
		return err
	}

	host := probe.NewHostProbe(probe.WithWindow(cfg.ProbeWindow))
	scanner := kernlog.NewScanner(cfg.KernelLogSource(), kernlog.WithSignature(cfg.Signature))

	loop := monitor.New(host, scanner, csvSink,
		monitor.WithPause(cfg.Pause),
		monitor.WithMaxTicks(cfg.Count),
		monitor.WithOutput(out),
		monitor.WithNotifier(monitor.SystemdNotifier{}),
		monitor.WithRunID(runID),
	)

	// Bind before sampling starts so a bad address fails fast.
	var ln net.Listener
	if cfg.MetricsAddress != "" {
		ln, err = net.Listen("tcp", cfg.MetricsAddress)
		if err != nil {
			return errors.Wrap(errors.ErrCodeUnavailable,
				fmt.Sprintf("failed to listen on %s", cfg.MetricsAddress), err)
		}
	}

	slog.Info("sampler configured",
		"run", runID,
		"output", csvSink.Path(),
		"header", csvSink.WritesHeader(),
		"probe", host.String(),
		"signature", scanner.Signature(),
		"pause", cfg.Pause,
		"count", cfg.Count)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Completing the requested count stops the auxiliary goroutines too.
		defer cancel()
		return loop.Run(gctx)
	})

	g.Go(func() error {
		w := sink.NewWatcher(cfg.Output)
		w.OnEvent = func(ev fsnotify.Event) {
			if ev.Has(fsnotify.Create) {
				slog.Info("output file recreated, header will not be rewritten", "path", ev.Name)
			}
		}
		if err := w.Run(gctx); err != nil {
			// Losing the watch does not affect sampling.
			slog.Warn("output watcher stopped", "error", err)
		}
		return nil
	})

	if ln != nil {
		srv := server.New(cfg.MetricsAddress,
			server.WithReadiness(loop.Running),
			server.WithInstanceID(runID))
		g.Go(func() error {
			if err := srv.Serve(gctx, ln); err != nil {
				slog.Error("metrics server failed, stopping sampler", "error", err)
				return fmt.Errorf("%w: %w", monitor.ErrAborted, err)
			}
			return nil
		})
	}

	return g.Wait()
}
