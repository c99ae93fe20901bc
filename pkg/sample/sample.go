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

package sample

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout renders the tick start time with second precision.
	TimestampLayout = "2006-01-02 15:04:05"

	// BytesPerMB converts a byte count into megabytes.
	BytesPerMB = 1024 * 1024
)

// Header is the single header row of the output file.
var Header = []string{
	"Timestamp",
	"CPU_Usage(%)",
	"Memory_Usage(MB)",
	"Memory_Anomalies",
	"Error_Logs",
}

// Sample is the value captured by one completed tick.
type Sample struct {
	// Timestamp is the wall clock at tick start.
	Timestamp time.Time

	// CPUPercent is the utilization over the probe window, 0-100.
	CPUPercent float64

	// MemoryUsedMB is memory in use, in megabytes.
	MemoryUsedMB float64

	// AnomalyLine is the most recent kernel log line matching the fault
	// signature, a sentinel, or an error description.
	AnomalyLine string

	// LastLogLine is the last kernel log line, a sentinel, or an error description.
	LastLogLine string
}

// New assembles a Sample from raw probe values. memoryUsedBytes is converted
// to megabytes.
func New(ts time.Time, cpuPercent float64, memoryUsedBytes uint64, anomalyLine, lastLogLine string) Sample {
	return Sample{
		Timestamp:    ts,
		CPUPercent:   cpuPercent,
		MemoryUsedMB: BytesToMB(memoryUsedBytes),
		AnomalyLine:  anomalyLine,
		LastLogLine:  lastLogLine,
	}
}

// BytesToMB converts bytes to megabytes (1 MB = 1,048,576 bytes).
func BytesToMB(b uint64) float64 {
	return float64(b) / BytesPerMB
}

// Record returns the fields of s in Header order.
func (s Sample) Record() []string {
	return []string{
		s.Timestamp.Format(TimestampLayout),
		FormatFloat(s.CPUPercent),
		FormatFloat(s.MemoryUsedMB),
		s.AnomalyLine,
		s.LastLogLine,
	}
}

// FormatFloat renders v as the shortest decimal that round-trips, keeping a
// decimal point on whole numbers so that 2048 is written as "2048.0".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
