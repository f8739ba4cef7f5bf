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
	"time"
	"unicode/utf8"

	"notebar/internal/richtext"
	"notebar/internal/undo"
)

// Verdict is a delegate's answer to a pending insertion.
type Verdict int

const (
	Allow Verdict = iota
	Substitute
	Reject
)

// Decision is returned by Delegate.OnShouldInsertText. For Substitute, Text
// replaces the proposed text and Label names the resulting undo step.
type Decision struct {
	Verdict Verdict
	Text    string
	Label   string
}

// Delegate observes a TextView the way a widget delegate does.
type Delegate interface {
	// OnShouldInsertText is asked before user input replaces r with
	// replacement. Deletions ask with an empty replacement.
	OnShouldInsertText(r richtext.Range, replacement string) Decision
	// OnContentChanged fires after every change to the buffer.
	OnContentChanged()
}

// Edit labels recorded in the history.
const (
	LabelTyping     = "Typing"
	LabelDelete     = "Delete"
	LabelBullet     = "Insert Bullet Point"
	LabelToggleList = "Toggle List"
)

// TextView is a headless editable text widget.
type TextView struct {
	doc      richtext.Document
	sel      richtext.Range
	typing   richtext.Style
	delegate Delegate
	history  *undo.Manager
	key      string
	now      func() time.Time
}

// NewTextView returns an empty view recording edits under key in history.
// A nil history disables undo.
func NewTextView(history *undo.Manager, key string) *TextView {
	return &TextView{history: history, key: key, now: time.Now}
}

func (v *TextView) SetDelegate(d Delegate) { v.delegate = d }

func (v *TextView) Document() richtext.Document { return v.doc }
func (v *TextView) Text() string                { return v.doc.Text() }
func (v *TextView) Len() int                    { return v.doc.Len() }
func (v *TextView) Selection() richtext.Range   { return v.sel }
func (v *TextView) TypingStyle() richtext.Style { return v.typing }

func (v *TextView) SetTypingStyle(st richtext.Style) { v.typing = st }

// SetSelection moves the caret or selection, clamped to the buffer.
func (v *TextView) SetSelection(r richtext.Range) { v.sel = r.Clamp(v.doc.Len()) }

// SetDocument replaces the whole buffer without recording history and puts
// the caret at the end. Used when a session loads its note.
func (v *TextView) SetDocument(d richtext.Document) {
	v.doc = d
	v.sel = richtext.Caret(d.Len())
	if v.history != nil {
		v.history.Clear(v.key)
	}
	v.changed()
}

// Type inserts text at the selection as if typed or pasted, after consulting
// the delegate. It reports whether anything was inserted.
func (v *TextView) Type(text string) bool {
	if text == "" {
		return false
	}
	r := v.sel
	label, group := LabelTyping, false
	if v.delegate != nil {
		d := v.delegate.OnShouldInsertText(r, text)
		switch d.Verdict {
		case Reject:
			return false
		case Substitute:
			text, group = d.Text, true
			if d.Label != "" {
				label = d.Label
			}
		}
	}
	if !utf8.ValidString(text) {
		return false
	}
	ins := richtext.Styled(text, v.typing)
	v.replace(r, ins, richtext.Caret(r.Start+ins.Len()), label, group)
	return true
}

// Backspace deletes the selection, or the character before the caret.
func (v *TextView) Backspace() bool {
	r := v.sel
	if r.Empty() {
		if r.Start == 0 {
			return false
		}
		r = richtext.Range{Start: r.Start - 1, End: r.Start}
	}
	return v.deleteRange(r)
}

// DeleteForward deletes the selection, or the character after the caret.
func (v *TextView) DeleteForward() bool {
	r := v.sel
	if r.Empty() {
		if r.Start >= v.doc.Len() {
			return false
		}
		r = richtext.Range{Start: r.Start, End: r.Start + 1}
	}
	return v.deleteRange(r)
}

func (v *TextView) deleteRange(r richtext.Range) bool {
	if v.delegate != nil && v.delegate.OnShouldInsertText(r, "").Verdict == Reject {
		return false
	}
	v.replace(r, richtext.Document{}, richtext.Caret(r.Start), LabelDelete, false)
	return true
}

// ReplaceRange programmatically replaces r with ins as one undo step. The
// delegate is not consulted.
func (v *TextView) ReplaceRange(r richtext.Range, ins richtext.Document, label string) {
	r = r.Clamp(v.doc.Len())
	v.replace(r, ins, richtext.Caret(r.Start+ins.Len()), label, true)
}

// Restyle applies fn to the styles in r as one undo step. The selection is kept.
func (v *TextView) Restyle(r richtext.Range, fn func(richtext.Style) richtext.Style, label string) {
	v.Transform(v.doc.Restyle(r, fn), v.sel, label)
}

// Transform swaps the buffer for next and the selection for sel. The changed
// span is found by diffing, so edits touching several lines still land as a
// single compound undo step.
func (v *TextView) Transform(next richtext.Document, sel richtext.Range, label string) {
	if next.Equal(v.doc) {
		v.sel = sel.Clamp(next.Len())
		return
	}
	start, endOld, endNew := diffSpan(v.doc, next)
	v.record(undo.Edit{
		Label:           label,
		At:              start,
		Removed:         v.doc.Slice(richtext.Range{Start: start, End: endOld}),
		Inserted:        next.Slice(richtext.Range{Start: start, End: endNew}),
		SelectionBefore: v.sel,
		SelectionAfter:  sel.Clamp(next.Len()),
		Group:           true,
	})
	v.doc = next
	v.sel = sel.Clamp(next.Len())
	v.changed()
}

func (v *TextView) replace(r richtext.Range, ins richtext.Document, after richtext.Range, label string, group bool) {
	removed := v.doc.Slice(r)
	if removed.IsEmpty() && ins.IsEmpty() {
		return
	}
	v.record(undo.Edit{
		Label:           label,
		At:              r.Start,
		Removed:         removed,
		Inserted:        ins,
		SelectionBefore: v.sel,
		SelectionAfter:  after,
		Group:           group,
	})
	v.doc = v.doc.Replace(r, ins)
	v.sel = after.Clamp(v.doc.Len())
	v.changed()
}

func (v *TextView) record(e undo.Edit) {
	if v.history == nil {
		return
	}
	e.Key = v.key
	e.TS = v.now()
	v.history.Push(e)
}

// CanUndo and CanRedo report whether history holds a step for this view.
func (v *TextView) CanUndo() bool { return v.history != nil && v.history.CanUndo(v.key) }
func (v *TextView) CanRedo() bool { return v.history != nil && v.history.CanRedo(v.key) }

// Undo reverts the newest step and restores the selection it started from.
func (v *TextView) Undo() bool {
	if v.history == nil {
		return false
	}
	e, ok := v.history.Undo(v.key)
	if !ok {
		return false
	}
	v.doc = v.doc.Replace(richtext.Range{Start: e.At, End: e.At + e.Inserted.Len()}, e.Removed)
	v.sel = e.SelectionBefore.Clamp(v.doc.Len())
	v.changed()
	return true
}

// Redo re-applies the newest undone step.
func (v *TextView) Redo() bool {
	if v.history == nil {
		return false
	}
	e, ok := v.history.Redo(v.key)
	if !ok {
		return false
	}
	v.doc = v.doc.Replace(richtext.Range{Start: e.At, End: e.At + e.Removed.Len()}, e.Inserted)
	v.sel = e.SelectionAfter.Clamp(v.doc.Len())
	v.changed()
	return true
}

func (v *TextView) changed() {
	if v.delegate != nil {
		v.delegate.OnContentChanged()
	}
}

type cell struct {
	r  rune
	st richtext.Style
}

func cells(d richtext.Document) []cell {
	var out []cell
	for _, run := range d.Runs() {
		for _, r := range run.Text {
			out = append(out, cell{r, run.Style})
		}
	}
	return out
}

// diffSpan trims the common prefix and suffix of a and b and returns where
// the differing span starts and ends in each.
func diffSpan(a, b richtext.Document) (start, endA, endB int) {
	ca, cb := cells(a), cells(b)
	for start < len(ca) && start < len(cb) && ca[start] == cb[start] {
		start++
	}
	endA, endB = len(ca), len(cb)
	for endA > start && endB > start && ca[endA-1] == cb[endB-1] {
		endA--
		endB--
	}
	return start, endA, endB
}
