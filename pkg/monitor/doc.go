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

// Package monitor implements the sampling loop.
//
// # Lifecycle
//
// A Loop has two states, RUNNING and STOPPED. Run enters RUNNING and returns
// in STOPPED. The loop stops when its context is canceled (operator
// interrupt), when a configured tick count is reached, or when a fatal error
// occurs. Fatal errors are probe failures and sink failures; kernel log fetch
// failures are recorded as text in the sample and never stop the loop.
//
// # Tick
//
// Each tick, in order:
//
//  1. capture the wall-clock timestamp
//  2. sample CPU and memory (blocks for the probe window)
//  3. fetch the kernel log once and derive the anomaly and last-line fields
//  4. append the sample to the sink
//  5. print a progress notice
//  6. pause before the next tick
//
// Cancellation is cooperative. It is observed between steps and during the
// pause; an in-flight probe call runs to completion. A tick interrupted
// before step 4 is discarded, never partially appended.
//
// # Integration
//
// The loop updates Prometheus metrics and, when a Notifier is configured,
// reports READY, WATCHDOG and STOPPING to the service manager.
package monitor
