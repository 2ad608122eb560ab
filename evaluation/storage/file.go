// Copyright 2026 Google LLC
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

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/evalgate/evalgate/evaluation"
)

// FileHistory stores run history as a JSON array in a single file. Writes
// go through a temp file and rename so a crash mid-write never corrupts
// existing history. Safe for concurrent use within one process; not safe
// across processes.
type FileHistory struct {
	mu   sync.RWMutex
	path string
}

// NewFileHistory creates a file-backed history at path. The parent
// directory is created if needed; the file itself is created on first
// Append.
func NewFileHistory(path string) (*FileHistory, error) {
	if path == "" {
		return nil, ErrInvalidInput
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return &FileHistory{path: path}, nil
}

// Append implements History.
func (f *FileHistory) Append(ctx context.Context, stats evaluation.RunStats) error {
	if stats.RunID == "" {
		return ErrInvalidInput
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	runs, err := f.load()
	if err != nil {
		return err
	}
	runs = append(runs, stats)

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// LoadAll implements History.
func (f *FileHistory) LoadAll(ctx context.Context) ([]evaluation.RunStats, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.load()
}

func (f *FileHistory) load() ([]evaluation.RunStats, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []evaluation.RunStats{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var runs []evaluation.RunStats
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return runs, nil
}
