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
	"sync"

	"github.com/evalgate/evalgate/evaluation"
)

// MemoryHistory keeps run history in memory. Safe for concurrent use.
// History is lost when the process exits; intended for tests and
// throwaway experiments.
type MemoryHistory struct {
	mu   sync.RWMutex
	runs []evaluation.RunStats
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Append implements History.
func (m *MemoryHistory) Append(ctx context.Context, stats evaluation.RunStats) error {
	if stats.RunID == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, stats)
	return nil
}

// LoadAll implements History.
func (m *MemoryHistory) LoadAll(ctx context.Context) ([]evaluation.RunStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]evaluation.RunStats, len(m.runs))
	copy(out, m.runs)
	return out, nil
}
