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

import "notebar/internal/richtext"

const (
	BulletMarker = '•'
	// BulletPrefix starts every list line.
	BulletPrefix = "• "
)

var bulletLen = len([]rune(BulletPrefix))

// isBulletAt reports whether a list prefix starts at rune offset i.
func isBulletAt(text []rune, i int) bool {
	return i+1 < len(text) && text[i] == BulletMarker && text[i+1] == ' '
}

func lineStart(text []rune, pos int) int {
	if pos > len(text) {
		pos = len(text)
	}
	for pos > 0 && text[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineStarts returns the offset of every line, including a trailing empty one.
func lineStarts(text []rune) []int {
	out := []int{0}
	for i, r := range text {
		if r == '\n' {
			out = append(out, i+1)
		}
	}
	return out
}

// listOn prefixes the line holding the start of sel with a bullet unless it
// already has one. The selection shifts by the prefix length.
func listOn(doc richtext.Document, sel richtext.Range, st richtext.Style) (richtext.Document, richtext.Range, bool) {
	text := []rune(doc.Text())
	sel = sel.Clamp(len(text))
	ls := lineStart(text, sel.Start)
	if isBulletAt(text, ls) {
		return doc, sel, false
	}
	next := doc.Insert(ls, richtext.Styled(BulletPrefix, st))
	return next, richtext.Range{Start: sel.Start + bulletLen, End: sel.End + bulletLen}, true
}

// listOff strips the bullet prefix from every line that starts with one.
// Offsets after a stripped prefix move back by its length; offsets inside
// one snap to the start of their line.
func listOff(doc richtext.Document, sel richtext.Range) (richtext.Document, richtext.Range, bool) {
	text := []rune(doc.Text())
	sel = sel.Clamp(len(text))
	var prefixes []int
	for _, ls := range lineStarts(text) {
		if isBulletAt(text, ls) {
			prefixes = append(prefixes, ls)
		}
	}
	if len(prefixes) == 0 {
		return doc, sel, false
	}
	shift := func(pos int) int {
		out := pos
		for _, p := range prefixes {
			switch {
			case pos >= p+bulletLen:
				out -= bulletLen
			case pos > p:
				out -= pos - p
			}
		}
		return out
	}
	next := doc
	for i := len(prefixes) - 1; i >= 0; i-- {
		next = next.Delete(richtext.Range{Start: prefixes[i], End: prefixes[i] + bulletLen})
	}
	return next, richtext.Range{Start: shift(sel.Start), End: shift(sel.End)}, true
}
