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
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher logs changes to the output file made by other processes.
type Watcher struct {
	path string

	// OnEvent, if set, is called for each reported event after it is logged.
	OnEvent func(fsnotify.Event)
}

// NewWatcher creates a watcher for the output file at path.
func NewWatcher(path string) *Watcher {
	return &Watcher{path: path}
}

// Run watches the parent directory of the output file until ctx is done.
// The directory is watched instead of the file so that removal and
// recreation are both observed.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	slog.Debug("watching output file", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !w.report(ev) {
				continue
			}
			if w.OnEvent != nil {
				w.OnEvent(ev)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("output file watcher error", slog.String("error", err.Error()))
		}
	}
}

// report logs ev and returns true when it is one the sampler cares about.
// Writes and attribute changes are the sampler's own activity and are ignored.
func (w *Watcher) report(ev fsnotify.Event) bool {
	switch {
	case ev.Has(fsnotify.Remove):
		slog.Warn("output file removed; rows continue in a new file without a header",
			slog.String("path", ev.Name))
	case ev.Has(fsnotify.Rename):
		slog.Warn("output file renamed; rows continue in a new file without a header",
			slog.String("path", ev.Name))
	case ev.Has(fsnotify.Create):
		slog.Info("output file created", slog.String("path", ev.Name))
	default:
		return false
	}
	return true
}
