/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"sync"

	"notebar/internal/domain"
)

// Library is the in-memory note collection shared by the UI, the CLI and the
// file watcher. It is safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	notes    []domain.Note
	onChange func([]domain.Note)
}

// NewLibrary wraps notes, keeping their order.
func NewLibrary(notes []domain.Note) *Library {
	return &Library{notes: append([]domain.Note(nil), notes...)}
}

// OnChange registers fn to receive a snapshot after every mutation. It runs
// outside the lock, on the mutating goroutine.
func (l *Library) OnChange(fn func([]domain.Note)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.notes)
}

// List returns a copy of the notes, newest additions first.
func (l *Library) List() []domain.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Note(nil), l.notes...)
}

func (l *Library) Get(id string) (domain.Note, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.notes[i], nil
	}
	return domain.Note{}, ErrNotFound
}

// Add puts n at the front of the collection.
func (l *Library) Add(n domain.Note) {
	l.mutate(func() {
		l.notes = append([]domain.Note{n}, l.notes...)
	})
}

// Update replaces the note with n's id in place, or adds n when it is new.
func (l *Library) Update(n domain.Note) error {
	l.mutate(func() {
		if i := l.indexLocked(n.ID); i >= 0 {
			l.notes[i] = n
			return
		}
		l.notes = append([]domain.Note{n}, l.notes...)
	})
	return nil
}

// Remove deletes the note with id. Unknown ids are ignored, so discarding a
// note that was never saved succeeds.
func (l *Library) Remove(id string) error {
	l.mutate(func() {
		if i := l.indexLocked(id); i >= 0 {
			l.notes = append(l.notes[:i:i], l.notes[i+1:]...)
		}
	})
	return nil
}

// Replace swaps the whole collection, e.g. after an external edit of the file.
func (l *Library) Replace(notes []domain.Note) {
	l.mutate(func() {
		l.notes = append([]domain.Note(nil), notes...)
	})
}

func (l *Library) mutate(fn func()) {
	l.mu.Lock()
	fn()
	snapshot := append([]domain.Note(nil), l.notes...)
	cb := l.onChange
	l.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

func (l *Library) indexLocked(id string) int {
	for i, n := range l.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
