/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package richtext

import "strings"

// Trait is a single character-level formatting attribute.
type Trait uint8

const (
	Bold Trait = 1 << iota
	Italic
)

func (t Trait) String() string {
	switch t {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	default:
		return "trait?"
	}
}

// Style is the set of traits applied to a run.
type Style struct {
	Bold   bool `json:"bold,omitempty"`
	Italic bool `json:"italic,omitempty"`
}

// Has reports whether t is set.
func (s Style) Has(t Trait) bool {
	switch t {
	case Bold:
		return s.Bold
	case Italic:
		return s.Italic
	}
	return false
}

// With returns s with t switched on or off. Other traits are left alone.
func (s Style) With(t Trait, on bool) Style {
	switch t {
	case Bold:
		s.Bold = on
	case Italic:
		s.Italic = on
	}
	return s
}

// Run is a contiguous span of characters sharing one style.
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Range is a half-open rune range [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Caret returns the empty range at pos.
func Caret(pos int) Range { return Range{Start: pos, End: pos} }

func (r Range) Len() int { return r.End - r.Start }
func (r Range) Empty() bool { return r.End == r.Start }
func (r Range) Ordered() Range {
	if r.End < r.Start {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Clamp orders r and limits it to [0, n].
func (r Range) Clamp(n int) Range {
	r = r.Ordered()
	r.Start = clamp(r.Start, 0, n)
	r.End = clamp(r.End, 0, n)
	return r
}

// Intersects reports whether r and o share at least one character.
func (r Range) Intersects(o Range) bool { return r.Start < o.End && o.Start < r.End }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Document is a normalized list of styled runs.
type Document struct {
	runs []Run
}

// FromRuns builds a normalized document from runs.
func FromRuns(runs ...Run) Document {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		out = appendRun(out, r)
	}
	return Document{runs: out}
}

// Plain returns a document holding text with no traits.
func Plain(text string) Document { return Styled(text, Style{}) }

// Styled returns a document holding text in a single style.
func Styled(text string, st Style) Document { return FromRuns(Run{Text: text, Style: st}) }

// appendRun adds r to runs, merging it into the last run when styles match.
func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Style == r.Style {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}

// Runs returns a copy of the runs.
func (d Document) Runs() []Run { return append([]Run(nil), d.runs...) }

// Text returns the plain-text projection.
func (d Document) Text() string {
	if len(d.runs) == 1 {
		return d.runs[0].Text
	}
	var b strings.Builder
	for _, r := range d.runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Len returns the length in runes.
func (d Document) Len() int {
	n := 0
	for _, r := range d.runs {
		n += len([]rune(r.Text))
	}
	return n
}

func (d Document) IsEmpty() bool { return len(d.runs) == 0 }

// Equal reports whether both documents hold the same text with the same styles.
func (d Document) Equal(o Document) bool {
	if len(d.runs) != len(o.runs) {
		return false
	}
	for i := range d.runs {
		if d.runs[i] != o.runs[i] {
			return false
		}
	}
	return true
}

// split cuts the document at rune offset pos.
func (d Document) split(pos int) (left, right []Run) {
	if pos <= 0 {
		return nil, d.runs
	}
	off := 0
	for i, r := range d.runs {
		rs := []rune(r.Text)
		if pos < off+len(rs) {
			cut := pos - off
			left = append(append([]Run(nil), d.runs[:i]...), Run{Text: string(rs[:cut]), Style: r.Style})
			right = append([]Run{{Text: string(rs[cut:]), Style: r.Style}}, d.runs[i+1:]...)
			return left, right
		}
		off += len(rs)
		if pos == off {
			return d.runs[:i+1], d.runs[i+1:]
		}
	}
	return d.runs, nil
}

// Slice returns the sub-document covered by r.
func (d Document) Slice(r Range) Document {
	r = r.Clamp(d.Len())
	_, tail := d.split(r.Start)
	mid, _ := Document{runs: tail}.split(r.Len())
	return FromRuns(mid...)
}

// Replace substitutes the characters in r with ins.
func (d Document) Replace(r Range, ins Document) Document {
	r = r.Clamp(d.Len())
	left, _ := d.split(r.Start)
	_, right := d.split(r.End)
	out := make([]Run, 0, len(left)+len(ins.runs)+len(right))
	for _, part := range [][]Run{left, ins.runs, right} {
		for _, run := range part {
			out = appendRun(out, run)
		}
	}
	return Document{runs: out}
}

// Insert places ins at pos.
func (d Document) Insert(pos int, ins Document) Document { return d.Replace(Caret(pos), ins) }

// Delete removes the characters in r.
func (d Document) Delete(r Range) Document { return d.Replace(r, Document{}) }

// Concat appends o to d.
func (d Document) Concat(o Document) Document {
	return d.Replace(Caret(d.Len()), o)
}

// Restyle applies fn to the style of every character in r.
func (d Document) Restyle(r Range, fn func(Style) Style) Document {
	r = r.Clamp(d.Len())
	if r.Empty() {
		return d
	}
	mid := d.Slice(r)
	restyled := make([]Run, 0, len(mid.runs))
	for _, run := range mid.runs {
		restyled = append(restyled, Run{Text: run.Text, Style: fn(run.Style)})
	}
	return d.Replace(r, FromRuns(restyled...))
}

// StyleAt returns the style of the character just before pos, or of the first
// character when pos is 0. An empty document yields the zero style.
func (d Document) StyleAt(pos int) Style {
	if len(d.runs) == 0 {
		return Style{}
	}
	if pos <= 0 {
		return d.runs[0].Style
	}
	off := 0
	for _, r := range d.runs {
		off += len([]rune(r.Text))
		if pos <= off {
			return r.Style
		}
	}
	return d.runs[len(d.runs)-1].Style
}

// CommonStyle reports whether every character in r carries t.
func (d Document) CommonStyle(r Range, t Trait) bool {
	mid := d.Slice(r)
	if mid.IsEmpty() {
		return false
	}
	for _, run := range mid.runs {
		if !run.Style.Has(t) {
			return false
		}
	}
	return true
}
