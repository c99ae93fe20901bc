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

package kernlog

import (
	"context"
	"strings"
)

const (
	// DefaultSignature is the fault signature matched by substring.
	DefaultSignature = "capability fault"

	// NoAnomalies is recorded when no line contains the signature.
	NoAnomalies = "No anomalies detected"

	// NoErrors is recorded when the kernel log is empty.
	NoErrors = "No errors detected"

	anomalyErrorPrefix = "Error detecting anomalies: "
	fetchErrorPrefix   = "Error fetching logs: "
)

// Result is the outcome of one kernel log fetch: the lines or the failure.
type Result struct {
	Lines []string
	Err   error
}

// Report holds the two text fields derived from one fetch.
type Report struct {
	// Anomaly is the latest signature match, NoAnomalies, or an error description.
	Anomaly string

	// LastLine is the final log line, NoErrors, or an error description.
	LastLine string

	// Matched reports whether Anomaly is an actual log line.
	Matched bool

	// Err is the fetch failure, if any.
	Err error
}

// Scanner extracts anomaly and last-line text from a kernel log Source.
type Scanner struct {
	source    Source
	signature string
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithSignature sets the substring that marks a fault line.
func WithSignature(sig string) ScannerOption {
	return func(s *Scanner) {
		if sig != "" {
			s.signature = sig
		}
	}
}

// NewScanner creates a scanner over src.
func NewScanner(src Source, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		source:    src,
		signature: DefaultSignature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signature returns the configured fault signature.
func (s *Scanner) Signature() string {
	return s.signature
}

// Fetch reads the full kernel log once.
func (s *Scanner) Fetch(ctx context.Context) Result {
	lines, err := s.source.ReadAll(ctx)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Lines: lines}
}

// ScanForAnomaly fetches the log and returns the anomaly text.
func (s *Scanner) ScanForAnomaly(ctx context.Context) string {
	text, _ := s.anomaly(s.Fetch(ctx))
	return text
}

// LastLogLine fetches the log and returns the last-line text.
func (s *Scanner) LastLogLine(ctx context.Context) string {
	return lastLine(s.Fetch(ctx))
}

// Evaluate fetches the log once and derives both text fields from it.
// Each field carries its own error description when the fetch fails.
func (s *Scanner) Evaluate(ctx context.Context) Report {
	res := s.Fetch(ctx)
	anomaly, matched := s.anomaly(res)
	return Report{
		Anomaly:  anomaly,
		LastLine: lastLine(res),
		Matched:  matched,
		Err:      res.Err,
	}
}

func (s *Scanner) anomaly(res Result) (string, bool) {
	if res.Err != nil {
		return anomalyErrorPrefix + res.Err.Error(), false
	}
	if line, ok := FindLast(res.Lines, s.signature); ok {
		return line, true
	}
	return NoAnomalies, false
}

func lastLine(res Result) string {
	if res.Err != nil {
		return fetchErrorPrefix + res.Err.Error()
	}
	if len(res.Lines) == 0 {
		return NoErrors
	}
	return res.Lines[len(res.Lines)-1]
}

// FindLast returns the most recent line containing sig.
func FindLast(lines []string, sig string) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], sig) {
			return lines[i], true
		}
	}
	return "", false
}
