/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"notebar/internal/editor"
	"notebar/internal/richtext"
)

// EntryBridge feeds edits made in a plain multi-line entry into an editor
// adapter, so list and style handling stay in the editor core.
type EntryBridge struct {
	ad *editor.Adapter
}

func NewEntryBridge(ad *editor.Adapter) *EntryBridge { return &EntryBridge{ad: ad} }

// Sync replays the difference between the adapter's text and next as one
// keystroke. It returns the text and caret offset the entry should show,
// which differ from next when the adapter substituted or rejected the edit.
func (b *EntryBridge) Sync(next string) (string, int) {
	v := b.ad.View()
	old, nw := []rune(b.ad.PlainText()), []rune(next)
	start, endOld, endNew := runeSpan(old, nw)
	if start == endOld && start == endNew {
		return next, v.Selection().End
	}
	v.SetSelection(richtext.Range{Start: start, End: endOld})
	if ins := string(nw[start:endNew]); ins != "" {
		v.Type(ins)
	} else {
		v.Backspace()
	}
	return b.ad.PlainText(), v.Selection().End
}

// runeSpan returns the changed span: a[start:endA] became b[start:endB].
func runeSpan(a, b []rune) (start, endA, endB int) {
	for start < len(a) && start < len(b) && a[start] == b[start] {
		start++
	}
	endA, endB = len(a), len(b)
	for endA > start && endB > start && a[endA-1] == b[endB-1] {
		endA--
		endB--
	}
	return start, endA, endB
}

// RowCol converts a rune offset in text into the zero-based row and column
// an entry cursor uses.
func RowCol(text string, off int) (row, col int) {
	i := 0
	for _, r := range text {
		if i == off {
			break
		}
		if r == '\n' {
			row, col = row+1, 0
		} else {
			col++
		}
		i++
	}
	return row, col
}

// Offset is the inverse of RowCol. Positions past a line end clamp to it.
func Offset(text string, row, col int) int {
	i, r, c := 0, 0, 0
	for _, ch := range text {
		if r == row && (c == col || ch == '\n') {
			return i
		}
		if ch == '\n' {
			r, c = r+1, 0
		} else {
			c++
		}
		i++
	}
	return i
}

// SelectionRange recovers the selected span from an entry that only exposes
// its cursor and selected text. The cursor sits at one end of the selection;
// the end before it is tried first.
func SelectionRange(text string, cursor int, selected string) richtext.Range {
	n := len([]rune(selected))
	if n == 0 {
		return richtext.Caret(cursor)
	}
	runes := []rune(text)
	if cursor-n >= 0 && cursor <= len(runes) && string(runes[cursor-n:cursor]) == selected {
		return richtext.Range{Start: cursor - n, End: cursor}
	}
	return richtext.Range{Start: cursor, End: cursor + n}.Clamp(len(runes))
}
