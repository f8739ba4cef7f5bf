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
	"testing"
	"time"

	"notebar/internal/richtext"
)

func typing(key string, at int, text string, ts time.Time) Edit {
	n := len([]rune(text))
	return Edit{
		Key:             key,
		Label:           "Typing",
		At:              at,
		Inserted:        richtext.Plain(text),
		SelectionBefore: richtext.Caret(at),
		SelectionAfter:  richtext.Caret(at + n),
		TS:              ts,
	}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MinInterval: 10 * time.Millisecond})
	t0 := time.Now()
	m.Push(typing("n1", 0, "a", t0))
	m.Push(typing("n1", 1, "b", t0.Add(time.Second)))
	if _, keys, steps := m.Stats(); keys != 1 || steps != 2 {
		t.Fatalf("expected 1 key and 2 steps, got keys=%d steps=%d", keys, steps)
	}
	e, ok := m.Undo("n1")
	if !ok || e.Inserted.Text() != "b" || e.SelectionBefore != richtext.Caret(1) {
		t.Fatalf("undo expected 'b', got ok=%v edit=%#v", ok, e)
	}
	if !m.CanRedo("n1") {
		t.Fatalf("expected redo to be available")
	}
	e, ok = m.Redo("n1")
	if !ok || e.Inserted.Text() != "b" {
		t.Fatalf("redo expected 'b', got ok=%v", ok)
	}
	if m.CanRedo("n1") {
		t.Fatalf("redo stack should be empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(typing("n", 0, "a", t0))
	m.Undo("n")
	m.Push(typing("n", 0, "z", t0.Add(time.Second)))
	if m.CanRedo("n") {
		t.Fatalf("new edit must invalidate redo")
	}
}

func TestCoalesceContiguousTyping(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(typing("n", 0, "h", t0))
	m.Push(typing("n", 1, "i", t0.Add(10*time.Millisecond)))
	m.Push(typing("n", 5, "x", t0.Add(20*time.Millisecond))) // not contiguous
	_, _, steps := m.Stats()
	if steps != 2 {
		t.Fatalf("expected 2 steps after coalescing, got %d", steps)
	}
	m.Undo("n")
	e, _ := m.Undo("n")
	if e.Inserted.Text() != "hi" || e.SelectionAfter != richtext.Caret(2) || e.SelectionBefore != richtext.Caret(0) {
		t.Fatalf("unexpected coalesced edit: %#v", e)
	}
}

func TestGroupedEditsNeverCoalesce(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Hour})
	t0 := time.Now()
	m.Push(typing("n", 0, "a", t0))
	bullet := typing("n", 1, "\n• ", t0)
	bullet.Group = true
	bullet.Label = "Insert Bullet Point"
	m.Push(bullet)
	m.Push(typing("n", 4, "b", t0))
	if _, _, steps := m.Stats(); steps != 3 {
		t.Fatalf("expected 3 separate steps, got %d", steps)
	}
	m.Undo("n")
	e, _ := m.Undo("n")
	if e.Label != "Insert Bullet Point" || e.Inserted.Text() != "\n• " {
		t.Fatalf("expected the bullet step, got %#v", e)
	}
}
