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

package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	cerrors "github.com/NVIDIA/capmon/pkg/errors"
)

// Reading is the result of one probe call.
type Reading struct {
	CPUPercent      float64
	MemoryUsedBytes uint64
}

// Probe captures CPU and memory utilization for one sampling instant.
type Probe interface {
	Sample(ctx context.Context) (Reading, error)
}

type (
	cpuPercentFunc    func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	virtualMemoryFunc func(ctx context.Context) (*mem.VirtualMemoryStat, error)
)

// HostProbe implements Probe with gopsutil.
type HostProbe struct {
	window        time.Duration
	cpuPercent    cpuPercentFunc
	virtualMemory virtualMemoryFunc
}

// Option configures a HostProbe.
type Option func(*HostProbe)

// WithWindow sets the CPU measurement window. Zero selects non-blocking mode.
func WithWindow(d time.Duration) Option {
	return func(p *HostProbe) {
		p.window = d
	}
}

// NewHostProbe creates a probe backed by the OS utilization facility.
func NewHostProbe(opts ...Option) *HostProbe {
	p := &HostProbe{
		cpuPercent:    cpu.PercentWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Window returns the configured CPU measurement window.
func (p *HostProbe) Window() time.Duration {
	return p.window
}

// Sample measures CPU utilization over the window and reads current memory usage.
// The call is not interrupted by ctx cancellation once started; the caller
// decides what to do with a reading taken after cancellation.
func (p *HostProbe) Sample(ctx context.Context) (Reading, error) {
	ctx = context.WithoutCancel(ctx)

	percents, err := p.cpuPercent(ctx, p.window, false)
	if err != nil {
		return Reading{}, cerrors.Wrap(cerrors.ErrCodeUnavailable, "failed to read CPU utilization", err)
	}
	if len(percents) == 0 {
		return Reading{}, cerrors.New(cerrors.ErrCodeUnavailable, "CPU utilization facility returned no values")
	}

	vm, err := p.virtualMemory(ctx)
	if err != nil {
		return Reading{}, cerrors.Wrap(cerrors.ErrCodeUnavailable, "failed to read memory utilization", err)
	}
	if vm == nil {
		return Reading{}, cerrors.New(cerrors.ErrCodeUnavailable, "memory utilization facility returned no data")
	}

	r := Reading{
		CPUPercent:      clampPercent(percents[0]),
		MemoryUsedBytes: vm.Used,
	}

	slog.Debug("probe reading",
		slog.Float64("cpu", r.CPUPercent),
		slog.Uint64("memUsed", r.MemoryUsedBytes),
		slog.Duration("window", p.window))

	return r, nil
}

// clampPercent keeps rounding noise from the facility inside 0-100.
func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// String describes the probe for logs.
func (p *HostProbe) String() string {
	return fmt.Sprintf("host(window=%s)", p.window)
}
