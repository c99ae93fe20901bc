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

// Package sample defines the per-tick record produced by the sampling loop
// and its comma-separated encoding.
//
// A Sample is created once per tick, serialized immediately and discarded.
// The column order of Header and Record is part of the output file format:
//
//	Timestamp,CPU_Usage(%),Memory_Usage(MB),Memory_Anomalies,Error_Logs
package sample
