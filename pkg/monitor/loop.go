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

package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/capmon/pkg/defaults"
	cerrors "github.com/NVIDIA/capmon/pkg/errors"
	"github.com/NVIDIA/capmon/pkg/kernlog"
	"github.com/NVIDIA/capmon/pkg/probe"
	"github.com/NVIDIA/capmon/pkg/sample"
)

// ErrAborted marks a cancellation cause that is not an operator interrupt,
// such as a failing companion service. Run stops without the interrupt notice.
var ErrAborted = errors.New("sampling aborted")

const (
	startNotice       = "Starting capability fault monitoring..."
	interruptedNotice = "\nMonitoring interrupted by user."
)

// State is the lifecycle state of a Loop.
type State int32

const (
	// StateStopped is the state before Run and after it returns.
	StateStopped State = iota
	// StateRunning is the state while Run is sampling.
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	default:
		return "STOPPED"
	}
}

// Evaluator derives the kernel log fields of a sample.
type Evaluator interface {
	Evaluate(ctx context.Context) kernlog.Report
}

// Appender persists a sample.
type Appender interface {
	Append(s sample.Sample) error
}

// Loop drives one tick at a time: probe, kernel log, sink, pause.
type Loop struct {
	probe    probe.Probe
	kernel   Evaluator
	sink     Appender
	pause    time.Duration
	maxTicks int
	out      io.Writer
	now      func() time.Time
	notifier Notifier
	runID    string

	state     atomic.Int32
	ticks     atomic.Int64
	fetchWarn rate.Sometimes
}

// Option configures a Loop.
type Option func(*Loop)

// WithPause sets the delay after each tick.
func WithPause(d time.Duration) Option {
	return func(l *Loop) {
		l.pause = d
	}
}

// WithMaxTicks stops the loop after n ticks. Zero runs until canceled.
func WithMaxTicks(n int) Option {
	return func(l *Loop) {
		l.maxTicks = n
	}
}

// WithOutput sets where console notices are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) {
		if w == nil {
			w = io.Discard
		}
		l.out = w
	}
}

// WithClock overrides the wall clock used for sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithNotifier reports lifecycle changes to a service manager.
func WithNotifier(n Notifier) Option {
	return func(l *Loop) {
		l.notifier = n
	}
}

// WithRunID tags the loop's log records.
func WithRunID(id string) Option {
	return func(l *Loop) {
		l.runID = id
	}
}

// New creates a loop over the given components.
func New(p probe.Probe, kernel Evaluator, sink Appender, opts ...Option) *Loop {
	l := &Loop{
		probe:    p,
		kernel:   kernel,
		sink:     sink,
		pause:    defaults.TickPause,
		out:      os.Stdout,
		now:      time.Now,
		notifier: nopNotifier{},
		fetchWarn: rate.Sometimes{
			First:    1,
			Interval: defaults.FetchFailureLogInterval,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Running reports whether the loop is in the RUNNING state.
func (l *Loop) Running() bool {
	return l.State() == StateRunning
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() int64 {
	return l.ticks.Load()
}

// Run samples until ctx is canceled, the tick limit is reached, or a fatal
// error occurs. Cancellation returns nil.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return fmt.Errorf("sampling loop is already running")
	}
	defer l.state.Store(int32(StateStopped))

	logger := slog.Default().With(slog.String("run", l.runID))
	logger.Info("sampling loop started",
		slog.Duration("pause", l.pause),
		slog.Int("maxTicks", l.maxTicks))

	fmt.Fprintln(l.out, startNotice)
	l.notifier.Notify(NotifyReady)
	defer l.notifier.Notify(NotifyStopping)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		if ctx.Err() != nil {
			return l.interrupted(ctx, logger)
		}

		completed, err := l.tick(ctx, logger)
		if err != nil {
			logger.Error("sampling loop stopped on fatal error",
				slog.Int64("ticks", l.Ticks()),
				slog.String("error", err.Error()))
			return err
		}
		if !completed {
			return l.interrupted(ctx, logger)
		}

		if l.maxTicks > 0 && l.Ticks() >= int64(l.maxTicks) {
			logger.Info("sampling loop finished", slog.Int64("ticks", l.Ticks()))
			return nil
		}

		if timer == nil {
			timer = time.NewTimer(l.pause)
		} else {
			timer.Reset(l.pause)
		}
		select {
		case <-ctx.Done():
			return l.interrupted(ctx, logger)
		case <-timer.C:
		}
	}
}

func (l *Loop) interrupted(ctx context.Context, logger *slog.Logger) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrAborted) {
		logger.Warn("sampling loop aborted",
			slog.Int64("ticks", l.Ticks()),
			slog.String("cause", cause.Error()))
		return nil
	}
	fmt.Fprintln(l.out, interruptedNotice)
	logger.Info("sampling loop interrupted", slog.Int64("ticks", l.Ticks()))
	return nil
}

// tick runs one sampling iteration. It returns false without error when ctx
// was canceled before the sample was persisted.
func (l *Loop) tick(ctx context.Context, logger *slog.Logger) (bool, error) {
	start := l.now()
	n := l.Ticks() + 1

	reading, err := l.probe.Sample(ctx)
	if err != nil {
		tickTotal.WithLabelValues(tickStatusError).Inc()
		return false, fmt.Errorf("tick %d: %w", n, err)
	}
	if ctx.Err() != nil {
		return false, nil
	}

	rep := l.kernel.Evaluate(ctx)
	if ctx.Err() != nil {
		return false, nil
	}
	if rep.Err != nil {
		kernelLogFetchFailures.Inc()
		l.fetchWarn.Do(func() {
			logger.Warn("kernel log fetch failed; recording error text",
				slog.String("code", string(cerrors.Classify(rep.Err))),
				slog.String("error", rep.Err.Error()))
		})
	}
	if rep.Matched {
		anomaliesDetected.Inc()
	}

	smp := sample.New(start, reading.CPUPercent, reading.MemoryUsedBytes, rep.Anomaly, rep.LastLine)

	if err := l.sink.Append(smp); err != nil {
		tickTotal.WithLabelValues(tickStatusError).Inc()
		return false, fmt.Errorf("tick %d: %w", n, err)
	}

	l.ticks.Add(1)
	tickTotal.WithLabelValues(tickStatusSuccess).Inc()
	tickDuration.Observe(time.Since(start).Seconds())
	cpuPercent.Set(smp.CPUPercent)
	memoryUsedMB.Set(smp.MemoryUsedMB)
	l.notifier.Notify(NotifyWatchdog)

	ts := smp.Timestamp.Format(sample.TimestampLayout)
	fmt.Fprintf(l.out, "Logged at %s: CPU=%s%%, Memory=%sMB, Anomalies=%s\n",
		ts, sample.FormatFloat(smp.CPUPercent), sample.FormatFloat(smp.MemoryUsedMB), smp.AnomalyLine)

	logger.Debug("tick complete",
		slog.Int64("tick", n),
		slog.Bool("anomaly", rep.Matched),
		slog.Bool("fetchFailed", rep.Err != nil),
		slog.Duration("duration", time.Since(start)))

	return true, nil
}
