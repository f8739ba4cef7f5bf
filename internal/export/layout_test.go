/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"testing"

	"notebar/internal/richtext"
)

// runeWidth measures one unit per rune, two for bold.
func runeWidth(s string, st richtext.Style) float64 {
	w := float64(len([]rune(s)))
	if st.Bold {
		w *= 2
	}
	return w
}

func lineText(l line) string {
	var s string
	for _, sp := range l.Spans {
		s += sp.Text
	}
	return s
}

func TestLayoutHangingIndentForBullets(t *testing.T) {
	lines := layoutParagraphs(richtext.Plain("• aaa bbb ccc\nplain dd ee"), 9, runeWidth)
	want := []struct {
		text   string
		indent float64
	}{{"• aaa bbb", 0}, {"ccc", 2}, {"plain dd", 0}, {"ee", 0}}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %+v", len(lines), lines)
	}
	for i, w := range want {
		if got := lineText(lines[i]); got != w.text || lines[i].Indent != w.indent {
			t.Fatalf("line %d = %q indent %v, want %q indent %v", i, got, lines[i].Indent, w.text, w.indent)
		}
	}
	if lines[0].Width != 9 {
		t.Fatalf("trailing space not trimmed from width: %v", lines[0].Width)
	}
}

func TestLayoutKeepsStyledWordsTogether(t *testing.T) {
	d := richtext.FromRuns(
		richtext.Run{Text: "xx "},
		richtext.Run{Text: "ab", Style: richtext.Style{Bold: true}},
		richtext.Run{Text: "cd"},
	)
	lines := layoutParagraphs(d, 8, runeWidth)
	if len(lines) != 2 || lineText(lines[0]) != "xx" || lineText(lines[1]) != "abcd" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if len(lines[1].Spans) != 2 || !lines[1].Spans[0].Style.Bold || lines[1].Width != 6 {
		t.Fatalf("styles not kept: %+v", lines[1])
	}
}

func TestLayoutEmptyParagraphs(t *testing.T) {
	lines := layoutParagraphs(richtext.Plain("a\n\nb"), 0, runeWidth)
	if len(lines) != 3 || lineText(lines[1]) != "" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if got := layoutParagraphs(richtext.Document{}, 10, runeWidth); len(got) != 1 {
		t.Fatalf("empty document should give one empty line, got %d", len(got))
	}
}

func TestLayoutOverlongWordOverflows(t *testing.T) {
	lines := layoutParagraphs(richtext.Plain("a verylongword b"), 5, runeWidth)
	if len(lines) != 3 || lineText(lines[1]) != "verylongword" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}
