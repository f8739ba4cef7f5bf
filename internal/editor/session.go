/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notebar/internal/domain"
	applog "notebar/internal/log"
)

// ErrSessionClosed is returned by Save and Delete once the session has ended.
var ErrSessionClosed = errors.New("editor: session closed")

// Collection receives the outcome of a session. Update inserts the note when
// it is not present yet.
type Collection interface {
	Update(n domain.Note) error
	Remove(id string) error
}

// Session is the working copy of one note. The note handed to Open is not
// touched until Save.
type Session struct {
	note    domain.Note
	title   string
	adapter *Adapter
	coll    Collection
	opts    AdapterOptions
	closed  bool
	log     *slog.Logger
}

// Open starts a session on note. opts.Key defaults to the note id and the
// formatting state always starts cleared.
func Open(note domain.Note, coll Collection, opts AdapterOptions) *Session {
	if opts.Key == "" {
		opts.Key = note.ID
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("editor").With("note", note.ID)
	}
	opts.State = FormattingState{}
	return &Session{
		note:    note,
		title:   note.Title,
		adapter: NewAdapter(note.RichText, note.PlainText, opts),
		coll:    coll,
		opts:    opts,
		log:     opts.Logger,
	}
}

func (s *Session) Adapter() *Adapter { return s.adapter }
func (s *Session) ID() string        { return s.note.ID }
func (s *Session) Title() string     { return s.title }
func (s *Session) Closed() bool      { return s.closed }

func (s *Session) SetTitle(title string) { s.title = title }

// Dirty reports unsaved changes to the title or the text.
func (s *Session) Dirty() bool { return s.title != s.note.Title || s.adapter.Dirty() }

// Snapshot returns the note as Save would write it at now.
func (s *Session) Snapshot(now time.Time) domain.Note {
	n := s.note
	n.Title = s.title
	n.PlainText = s.adapter.PlainText()
	if err := s.adapter.EncodeErr(); err != nil {
		s.log.Error("rich text not updated", "err", err)
	} else {
		n.RichText = s.adapter.RichText()
	}
	n.ModifiedAt = now
	return n
}

// Save writes the working copy into the note, hands it to the collection and
// closes the session. If the last encode failed the previous rich text is
// kept, but the plain text is still saved.
func (s *Session) Save(now time.Time) (domain.Note, error) {
	if s.closed {
		return domain.Note{}, ErrSessionClosed
	}
	n := s.Snapshot(now)
	if err := s.coll.Update(n); err != nil {
		return domain.Note{}, fmt.Errorf("save note %s: %w", n.ID, err)
	}
	s.note = n
	s.close()
	s.log.Info("note saved", "chars", len([]rune(n.PlainText)))
	return n, nil
}

// Delete removes the note from the collection and discards the working copy.
func (s *Session) Delete() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.coll.Remove(s.note.ID); err != nil {
		return fmt.Errorf("delete note %s: %w", s.note.ID, err)
	}
	s.close()
	s.log.Info("note deleted")
	return nil
}

// Discard ends the session without saving.
func (s *Session) Discard() {
	if !s.closed {
		s.close()
	}
}

func (s *Session) close() {
	s.closed = true
	if s.opts.History != nil {
		s.opts.History.Clear(s.opts.Key)
	}
}
