/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"

	"notebar/internal/richtext"
)

// Edit is a compound edit record: the span that was replaced, what replaced it,
// and the selection on either side. Applying Removed over [At, At+Inserted.Len())
// undoes the edit; applying Inserted over [At, At+Removed.Len()) redoes it.
type Edit struct {
	Key      string
	Label    string
	At       int
	Removed  richtext.Document
	Inserted richtext.Document
	// SelectionBefore is restored by Undo, SelectionAfter by Redo.
	SelectionBefore richtext.Range
	SelectionAfter  richtext.Range
	TS              time.Time
	// Group marks edits that must stay a single undo step (auto-inserted
	// bullets, list toggles, restyling). They are never coalesced.
	Group bool
}

func (e Edit) size() int { return len(e.Removed.Text()) + len(e.Inserted.Text()) }

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap on recorded text; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerKey limits the number of undo steps kept per key (0 means unlimited).
	MaxPerKey int
	// MinInterval coalesces contiguous typing recorded within the interval.
	MinInterval time.Duration
}

// Manager provides per-key undo/redo stacks, one key per editing session.
// It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       map[string][]Edit
	redo       map[string][]Edit
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 * 1024 * 1024
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 500 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Edit), redo: make(map[string][]Edit)}
}

// Push records an edit and clears the redo stack for its key. Plain typing that
// directly continues the previous step within MinInterval is merged into it.
func (m *Manager) Push(e Edit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(e.Key)
	stack := m.undo[e.Key]
	if n := len(stack); n > 0 && m.coalescable(stack[n-1], e) {
		last := stack[n-1]
		m.totalBytes -= last.size()
		last.Inserted = last.Inserted.Concat(e.Inserted)
		last.SelectionAfter = e.SelectionAfter
		last.TS = e.TS
		stack[n-1] = last
		m.totalBytes += last.size()
		m.enforceCapsLocked(e.Key)
		return
	}
	m.undo[e.Key] = append(stack, e)
	m.totalBytes += e.size()
	m.enforceCapsLocked(e.Key)
}

// coalescable reports whether next only appends text right where prev ended.
func (m *Manager) coalescable(prev, next Edit) bool {
	if prev.Group || next.Group || prev.Label != next.Label {
		return false
	}
	if !next.Removed.IsEmpty() || next.TS.Sub(prev.TS) >= m.cfg.MinInterval {
		return false
	}
	return next.At == prev.At+prev.Inserted.Len()
}

// Undo pops the newest edit for key and moves it onto the redo stack.
func (m *Manager) Undo(key string) (Edit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[key]
	if len(stack) == 0 {
		return Edit{}, false
	}
	e := stack[len(stack)-1]
	m.undo[key] = stack[:len(stack)-1]
	m.redo[key] = append(m.redo[key], e)
	return e, true
}

// Redo pops the newest undone edit and moves it back onto the undo stack.
func (m *Manager) Redo(key string) (Edit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[key]
	if len(r) == 0 {
		return Edit{}, false
	}
	e := r[len(r)-1]
	m.redo[key] = r[:len(r)-1]
	m.undo[key] = append(m.undo[key], e)
	m.enforceCapsLocked(key)
	return e, true
}

// CanUndo and CanRedo drive menu item enablement.
func (m *Manager) CanUndo(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[key]) > 0
}

func (m *Manager) CanRedo(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[key]) > 0
}

// Clear drops both stacks for key, e.g. when its session closes.
func (m *Manager) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.undo[key] {
		m.totalBytes -= e.size()
	}
	for _, e := range m.redo[key] {
		m.totalBytes -= e.size()
	}
	delete(m.undo, key)
	delete(m.redo, key)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, keys int, undoSteps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		if len(v) > 0 {
			keys++
		}
		undoSteps += len(v)
	}
	return m.totalBytes, keys, undoSteps
}

func (m *Manager) dropRedoLocked(key string) {
	for _, e := range m.redo[key] {
		m.totalBytes -= e.size()
	}
	delete(m.redo, key)
}

// enforceCapsLocked trims the key's depth, then prunes the oldest steps across
// all keys until the byte cap holds. Redo entries are accounted but never pruned.
func (m *Manager) enforceCapsLocked(key string) {
	if m.cfg.MaxPerKey > 0 {
		stack := m.undo[key]
		if extra := len(stack) - m.cfg.MaxPerKey; extra > 0 {
			for _, e := range stack[:extra] {
				m.totalBytes -= e.size()
			}
			m.undo[key] = append([]Edit(nil), stack[extra:]...)
		}
	}
	for m.totalBytes > m.cfg.MaxBytes {
		oldestKey := ""
		var oldestTS time.Time
		found := false
		for k, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestKey, oldestTS, found = k, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestKey]
		m.totalBytes -= stack[0].size()
		m.undo[oldestKey] = stack[1:]
		if len(m.undo[oldestKey]) == 0 {
			delete(m.undo, oldestKey)
		}
	}
}
