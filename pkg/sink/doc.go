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

// Package sink persists samples to an append-only comma-separated file.
//
// # Header Decision
//
// Whether the header row is written is decided once, when the sink is
// constructed: the header is due if the output file is absent or empty.
// The decision is never recomputed. The header is written in the same write
// as the first data row, so the file holds exactly one header row, first,
// across its whole history and across restarts.
//
// # Durability
//
// Every Append opens the file in append mode, writes the complete row with a
// single write call, syncs and closes the file before returning. A crash after
// Append returns cannot lose the row. A crash during Append can at worst leave
// a trailing partial row. The sink never truncates or rewrites the file: the
// fragment is kept and logged, and the next row is written on a new line so
// it does not merge with it.
//
// # Watching
//
// Watcher reports when the output file is removed, renamed or recreated
// underneath a running sampler, for example by log rotation. It only logs:
// the header decision stays fixed for the life of the process.
package sink
