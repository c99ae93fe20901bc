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

// Package probe reads host CPU and memory utilization.
//
// The CPU figure is measured over a window: Sample blocks for that long and
// the blocking doubles as the primary pacing of the sampling loop. A zero
// window selects the non-blocking mode, where utilization is computed against
// the previous call and all pacing is left to the caller.
//
// Probe failures are not absorbed here. The sampling loop treats them as fatal.
package probe
