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

package defaults

import "time"

// Sampling cadence.
const (
	// ProbeWindow is the CPU utilization measurement window. The probe call
	// blocks for this long and therefore also paces the loop.
	ProbeWindow = 1 * time.Second

	// TickPause is the fixed delay after a tick is persisted.
	TickPause = 1 * time.Second
)

// Kernel log timeouts.
const (
	// KernelLogFetchTimeout bounds a single kernel log query. A fetch that
	// exceeds it is reported like any other fetch failure.
	KernelLogFetchTimeout = 5 * time.Second

	// KernelLogMaxBytes caps the amount of kernel log read per fetch.
	KernelLogMaxBytes = 16 << 20
)

// Server timeouts for the metrics HTTP server.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 10 * time.Second
)

// Log throttling.
const (
	// FetchFailureLogInterval is the minimum spacing between repeated
	// warnings about kernel log fetch failures.
	FetchFailureLogInterval = 1 * time.Minute
)
