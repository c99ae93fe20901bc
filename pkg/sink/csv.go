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

package sink

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	cerrors "github.com/NVIDIA/capmon/pkg/errors"
	"github.com/NVIDIA/capmon/pkg/sample"
)

// DefaultPath is the output file used when none is configured.
const DefaultPath = "cheri_memory_anomalies.csv"

const filePerm = 0o644

// CSVSink appends samples to a CSV file.
type CSVSink struct {
	path string

	// writeHeader is the startup decision; it never changes.
	writeHeader bool

	mu            sync.Mutex
	headerWritten bool
	skipSync      bool

	// tornTail is set when the file ended mid-row at startup. The next row
	// is preceded by a newline so it does not merge with the fragment.
	tornTail bool
}

// Option configures a CSVSink.
type Option func(*CSVSink)

// WithoutSync skips fsync after each row. Rows are still written with a
// single append-mode write, but may be lost on power failure.
func WithoutSync() Option {
	return func(s *CSVSink) {
		s.skipSync = true
	}
}

// NewCSVSink prepares a sink for path. It records whether the header is due
// and whether a previous crash left a partial row at the end of the file.
// Existing content is never modified. The file itself
// is created on the first Append.
func NewCSVSink(path string, opts ...Option) (*CSVSink, error) {
	if path == "" {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, "output path cannot be empty")
	}

	torn, err := endsMidRow(path)
	if err != nil {
		return nil, cerrors.WrapWithContext(cerrors.Classify(err), "failed to inspect output file", err,
			map[string]any{"path": path})
	}
	if torn {
		slog.Warn("output file ends with a partial row; it is kept and the next row starts on a new line",
			slog.String("path", path))
	}

	writeHeader, err := headerDue(path)
	if err != nil {
		return nil, cerrors.WrapWithContext(cerrors.Classify(err), "failed to inspect output file", err,
			map[string]any{"path": path})
	}

	s := &CSVSink{
		path:        path,
		writeHeader: writeHeader,
		tornTail:    torn,
	}
	for _, opt := range opts {
		opt(s)
	}

	slog.Debug("csv sink ready",
		slog.String("path", path),
		slog.Bool("writeHeader", writeHeader))

	return s, nil
}

// headerDue reports whether path is absent or empty.
func headerDue(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return info.Size() == 0, nil
}

// Path returns the output file path.
func (s *CSVSink) Path() string {
	return s.path
}

// WritesHeader reports the startup header decision.
func (s *CSVSink) WritesHeader() bool {
	return s.writeHeader
}

// Append writes one sample as a row, preceded by the header row when this is
// the first row of a new file. The row is synced and the file closed before
// Append returns. Errors are fatal to the caller.
func (s *CSVSink) Append(smp sample.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	withHeader := s.writeHeader && !s.headerWritten

	row, err := encode(smp, withHeader)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInternal, "failed to encode sample", err)
	}
	if s.tornTail {
		row = append([]byte{'\n'}, row...)
	}

	if err := s.write(row); err != nil {
		return cerrors.WrapWithContext(cerrors.ErrCodeInternal, "failed to append sample", err,
			map[string]any{"path": s.path})
	}

	if withHeader {
		s.headerWritten = true
	}
	s.tornTail = false
	return nil
}

func (s *CSVSink) write(row []byte) (err error) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err = f.Write(row); err != nil {
		return err
	}
	if s.skipSync {
		return nil
	}
	return f.Sync()
}

// encode renders the optional header and the sample into one buffer.
func encode(smp sample.Sample, withHeader bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if withHeader {
		if err := w.Write(sample.Header); err != nil {
			return nil, err
		}
	}
	if err := w.Write(smp.Record()); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
