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
	"strings"
	"unicode"

	"notebar/internal/editor"
	"notebar/internal/richtext"
)

// span is a piece of a line set in one style.
type span struct {
	Text  string
	Style richtext.Style
}

// line is one laid out line. Indent is measured from the left margin.
type line struct {
	Spans  []span
	Width  float64
	Indent float64
}

// measureFunc returns the advance width of s set in st.
type measureFunc func(s string, st richtext.Style) float64

// word is a run of non-space text that may change style midway, or a single
// stretch of spaces.
type word struct {
	spans []span
	space bool
}

func (w word) width(m measureFunc) float64 {
	var sum float64
	for _, s := range w.spans {
		sum += m(s.Text, s.Style)
	}
	return sum
}

// layoutParagraphs breaks d into lines no wider than maxWidth. Paragraphs end
// at newlines. A paragraph that starts with a bullet gets a hanging indent so
// wrapped lines align with the text after the bullet. Breaks happen at spaces
// only; a word wider than the line is placed alone and overflows.
func layoutParagraphs(d richtext.Document, maxWidth float64, measure measureFunc) []line {
	var out []line
	for _, para := range paragraphs(d) {
		out = append(out, wrapParagraph(para, maxWidth, measure)...)
	}
	return out
}

func paragraphs(d richtext.Document) [][]span {
	paras := [][]span{nil}
	for _, r := range d.Runs() {
		parts := strings.Split(r.Text, "\n")
		for i, p := range parts {
			if i > 0 {
				paras = append(paras, nil)
			}
			if p != "" {
				last := len(paras) - 1
				paras[last] = append(paras[last], span{Text: p, Style: r.Style})
			}
		}
	}
	return paras
}

func wrapParagraph(para []span, maxWidth float64, measure measureFunc) []line {
	var hang float64
	if len(para) > 0 && strings.HasPrefix(para[0].Text, editor.BulletPrefix) {
		hang = measure(editor.BulletPrefix, para[0].Style)
	}
	var out []line
	cur := line{}
	flush := func() {
		trimTrailingSpace(&cur, measure)
		out = append(out, cur)
		cur = line{Indent: hang}
	}
	for _, w := range splitWords(para) {
		if w.space && len(cur.Spans) == 0 && len(out) > 0 {
			continue
		}
		ww := w.width(measure)
		if !w.space && len(cur.Spans) > 0 && maxWidth > 0 && cur.Indent+cur.Width+ww > maxWidth {
			flush()
		}
		for _, s := range w.spans {
			appendSpan(&cur, s)
		}
		cur.Width += ww
	}
	flush()
	return out
}

func appendSpan(l *line, s span) {
	if n := len(l.Spans); n > 0 && l.Spans[n-1].Style == s.Style {
		l.Spans[n-1].Text += s.Text
		return
	}
	l.Spans = append(l.Spans, s)
}

func trimTrailingSpace(l *line, measure measureFunc) {
	for len(l.Spans) > 0 {
		last := &l.Spans[len(l.Spans)-1]
		trimmed := strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if trimmed == last.Text {
			return
		}
		l.Width -= measure(last.Text[len(trimmed):], last.Style)
		if trimmed == "" {
			l.Spans = l.Spans[:len(l.Spans)-1]
			continue
		}
		last.Text = trimmed
		return
	}
}

// splitWords cuts a paragraph into alternating words and space stretches,
// keeping style changes inside a word.
func splitWords(para []span) []word {
	var out []word
	for _, s := range para {
		start := 0
		runes := []rune(s.Text)
		for i := 1; i <= len(runes); i++ {
			if i < len(runes) && unicode.IsSpace(runes[i]) == unicode.IsSpace(runes[start]) {
				continue
			}
			piece := span{Text: string(runes[start:i]), Style: s.Style}
			isSpace := unicode.IsSpace(runes[start])
			if n := len(out); n > 0 && out[n-1].space == isSpace {
				out[n-1].spans = append(out[n-1].spans, piece)
			} else {
				out = append(out, word{spans: []span{piece}, space: isSpace})
			}
			start = i
		}
	}
	return out
}
