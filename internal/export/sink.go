/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"layerdraw/internal/domain"
)

// Artifact is one rendered export ready for delivery.
type Artifact struct {
	Format    domain.Format
	Filename  string
	MediaType string
	Data      []byte
}

// Sink delivers an artifact to the user (a download, a file, a buffer).
type Sink interface {
	Deliver(ctx context.Context, a Artifact) error
}

// Recorder is notified after an artifact was delivered.
type Recorder interface {
	RecordExport(ctx context.Context, a Artifact) error
}

// DirSink writes artifacts as files into Dir.
type DirSink struct {
	Dir string
}

// Deliver writes Dir/Filename through a temp file and a rename so readers never see a partial file.
func (d DirSink) Deliver(ctx context.Context, a Artifact) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Filename == "" || filepath.Base(a.Filename) != a.Filename {
		return fmt.Errorf("invalid artifact filename %q", a.Filename)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(d.Dir, "."+a.Filename+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err := f.Write(a.Data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(d.Dir, a.Filename))
}

// Path returns where an artifact with the given filename ends up.
func (d DirSink) Path(filename string) string { return filepath.Join(d.Dir, filename) }

// MemorySink keeps delivered artifacts in memory. Safe for concurrent use.
type MemorySink struct {
	mu        sync.Mutex
	artifacts []Artifact
}

func (m *MemorySink) Deliver(_ context.Context, a Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.Data = append([]byte(nil), a.Data...)
	m.artifacts = append(m.artifacts, a)
	return nil
}

// Artifacts returns the delivered artifacts in delivery order.
func (m *MemorySink) Artifacts() []Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Artifact(nil), m.artifacts...)
}
