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

// Package kernlog reads the kernel ring-buffer log and extracts the lines the
// sampler records.
//
// # Sources
//
// A Source returns the whole log as ordered lines, newest last:
//
//   - CommandSource runs a query command (dmesg by default), bounded by a timeout
//   - FileSource reads a log file such as /var/log/kern.log
//
// Non-zero exit, a timeout, or output that is not valid UTF-8 is a fetch
// failure. Fetch failures are values, not control flow: a Result carries
// either the lines or the error, and the Scanner renders both into text.
//
// # Scanner
//
//	s := kernlog.NewScanner(kernlog.NewCommandSource())
//	rep := s.Evaluate(ctx)
//	fmt.Println(rep.Anomaly, rep.LastLine)
//
// Anomaly is the last line containing the signature ("capability fault" by
// default), NoAnomalies when there is none, or "Error detecting anomalies: "
// followed by the failure. LastLine is the final line of the log, NoErrors for
// an empty log, or "Error fetching logs: " followed by the failure.
package kernlog
