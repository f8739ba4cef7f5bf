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
	"context"
	"log/slog"
	"sync"
	"time"

	"notebar/internal/domain"
	applog "notebar/internal/log"
)

// Saver writes note collections in the background so the UI never waits on
// disk. Only the newest pending collection is kept; older ones are superseded.
// Failures are logged and reported by Flush.
type Saver struct {
	dir string
	log *slog.Logger
	// indexTimeout bounds the search index refresh after each write; zero
	// disables indexing.
	indexTimeout time.Duration

	mu         sync.Mutex
	pending    []domain.Note
	hasPending bool
	busy       bool
	lastErr    error
	writes     int

	wake   chan struct{}
	closed chan struct{}
	done   chan struct{}
	once   sync.Once
}

// SaverOption tweaks a Saver.
type SaverOption func(*Saver)

// WithIndex refreshes the search index after every successful write.
func WithIndex(timeout time.Duration) SaverOption {
	return func(s *Saver) { s.indexTimeout = timeout }
}

// NewSaver starts the background writer for dir.
func NewSaver(dir string, opts ...SaverOption) *Saver {
	s := &Saver{
		dir:    dir,
		log:    applog.WithComponent("storage").With(slog.String("dir", dir)),
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	go s.loop()
	return s
}

// Enqueue schedules notes to be written. It never blocks.
func (s *Saver) Enqueue(notes []domain.Note) {
	s.mu.Lock()
	s.pending = append([]domain.Note(nil), notes...)
	s.hasPending = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush waits until nothing is pending or in flight and returns the error of
// the most recent write.
func (s *Saver) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle := !s.hasPending && !s.busy
		err := s.lastErr
		s.mu.Unlock()
		if idle {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			s.mu.Lock()
			err := s.lastErr
			s.mu.Unlock()
			return err
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Writes returns how many collections were written successfully.
func (s *Saver) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Close writes whatever is still pending and stops the goroutine.
func (s *Saver) Close() {
	s.once.Do(func() { close(s.closed) })
	<-s.done
}

func (s *Saver) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.closed:
			s.drain()
			return
		case <-s.wake:
			s.drain()
		}
	}
}

func (s *Saver) drain() {
	for {
		s.mu.Lock()
		if !s.hasPending {
			s.mu.Unlock()
			return
		}
		notes := s.pending
		s.pending, s.hasPending, s.busy = nil, false, true
		s.mu.Unlock()

		err := SaveNotes(s.dir, notes)
		if err != nil {
			s.log.Error("save notes failed", slog.Any("err", err))
		} else if s.indexTimeout > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), s.indexTimeout)
			if ierr := RebuildIndex(ctx, s.dir, notes); ierr != nil {
				s.log.Warn("index refresh failed", slog.Any("err", ierr))
			}
			cancel()
		}

		s.mu.Lock()
		s.busy = false
		s.lastErr = err
		if err == nil {
			s.writes++
		}
		s.mu.Unlock()
	}
}
