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

// Package defaults provides centralized configuration constants for capmon.
//
// This package defines the sampling cadence, the kernel log fetch bound, and
// the metrics server timeouts used across the codebase. Centralizing these
// values keeps the loop, the configuration layer and the CLI consistent.
//
// # Timeout Categories
//
//   - Sampling: probe measurement window and the pause between ticks
//   - Kernel log: upper bound on a single kernel log fetch
//   - Server timeouts: For the optional metrics HTTP server
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.KernelLogFetchTimeout)
//	defer cancel()
//
// # Guidelines
//
// The total spacing between two samples is ProbeWindow + TickPause. A probe
// window of zero switches the CPU probe to its non-blocking mode, in which
// case TickPause alone paces the loop.
package defaults
