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
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"notebar/internal/richtext"
	"notebar/internal/typeface"
	"notebar/internal/undo"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newAdapter(t *testing.T, rich []byte, plain string, st FormattingState) *Adapter {
	t.Helper()
	return NewAdapter(rich, plain, AdapterOptions{
		Key:     "n1",
		History: undo.NewManager(undo.Config{}),
		State:   st,
		Logger:  quietLogger(),
	})
}

func mustEncode(t *testing.T, d richtext.Document) []byte {
	t.Helper()
	b, err := richtext.Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return b
}

func TestNewlineInListModeInsertsBullet(t *testing.T) {
	a := newAdapter(t, nil, "a", FormattingState{List: true})
	v := a.View()
	v.Type("\n")
	v.Type("b")
	if got := a.PlainText(); got != "a\n• b" {
		t.Fatalf("plain = %q, want %q", got, "a\n• b")
	}
	if got := v.Selection(); got != richtext.Caret(5) {
		t.Fatalf("selection = %+v, want caret after b", got)
	}
}

func TestEveryNewLineStartsWithBullet(t *testing.T) {
	a := newAdapter(t, nil, "", FormattingState{List: true})
	v := a.View()
	for _, word := range []string{"one", "two", "three"} {
		v.Type(word)
		v.Type("\n")
		text := []rune(a.PlainText())
		if got := v.Selection(); got.Start != len(text) || !strings.HasSuffix(string(text), "\n"+BulletPrefix) {
			t.Fatalf("after %q: text=%q sel=%+v", word, string(text), got)
		}
	}
	lines := strings.Split(a.PlainText(), "\n")
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, BulletPrefix) {
			t.Fatalf("line %q lacks bullet in %q", l, a.PlainText())
		}
	}
}

func TestNewlineOutsideListModeIsPlain(t *testing.T) {
	a := newAdapter(t, nil, "a", FormattingState{})
	a.View().Type("\n")
	if a.PlainText() != "a\n" {
		t.Fatalf("plain = %q", a.PlainText())
	}
}

func TestPastedMultilineTextNotBulleted(t *testing.T) {
	a := newAdapter(t, nil, "", FormattingState{List: true})
	a.View().Type("x\ny")
	if a.PlainText() != "x\ny" {
		t.Fatalf("plain = %q", a.PlainText())
	}
}

func TestListOffStripsPrefixes(t *testing.T) {
	a := newAdapter(t, nil, "• x\n• y", FormattingState{List: true})
	a.SetList(false)
	if a.PlainText() != "x\ny" {
		t.Fatalf("plain = %q, want %q", a.PlainText(), "x\ny")
	}
	if got := a.View().Selection(); got != richtext.Caret(3) {
		t.Fatalf("selection = %+v, want caret 3", got)
	}
	a.SetList(false)
	if a.PlainText() != "x\ny" {
		t.Fatalf("second toggle off changed text: %q", a.PlainText())
	}
}

func TestListOnPrefixesCaretLine(t *testing.T) {
	a := newAdapter(t, nil, "first\nhello", FormattingState{})
	a.View().SetSelection(richtext.Caret(8))
	a.SetList(true)
	if a.PlainText() != "first\n• hello" {
		t.Fatalf("plain = %q", a.PlainText())
	}
	if got := a.View().Selection(); got != richtext.Caret(10) {
		t.Fatalf("selection = %+v, want caret 10", got)
	}
	if !a.State().List {
		t.Fatalf("list state not set")
	}
}

func TestListOnKeepsExistingBullet(t *testing.T) {
	a := newAdapter(t, nil, "• hi", FormattingState{})
	a.SetList(true)
	if a.PlainText() != "• hi" || a.View().Selection() != richtext.Caret(4) {
		t.Fatalf("plain=%q sel=%+v", a.PlainText(), a.View().Selection())
	}
	if a.View().CanUndo() {
		t.Fatalf("no-op toggle should not record history")
	}
}

func TestUndoBulletIsOneStep(t *testing.T) {
	a := newAdapter(t, nil, "a", FormattingState{List: true})
	v := a.View()
	v.Type("\n")
	if !v.Undo() {
		t.Fatalf("Undo returned false")
	}
	if a.PlainText() != "a" || v.Selection() != richtext.Caret(1) {
		t.Fatalf("after undo plain=%q sel=%+v", a.PlainText(), v.Selection())
	}
	if v.CanUndo() {
		t.Fatalf("bullet insertion should be a single step")
	}
	if !v.Redo() || a.PlainText() != "a\n• " || v.Selection() != richtext.Caret(4) {
		t.Fatalf("after redo plain=%q sel=%+v", a.PlainText(), v.Selection())
	}
}

func TestUndoListToggleOff(t *testing.T) {
	a := newAdapter(t, nil, "• x\n• y", FormattingState{List: true})
	a.SetList(false)
	if !a.View().Undo() {
		t.Fatalf("Undo returned false")
	}
	if a.PlainText() != "• x\n• y" || a.View().Selection() != richtext.Caret(7) {
		t.Fatalf("after undo plain=%q sel=%+v", a.PlainText(), a.View().Selection())
	}
}

func TestCaretBoldAffectsOnlyNewText(t *testing.T) {
	a := newAdapter(t, nil, "ab", FormattingState{})
	v := a.View()
	a.SetBold(true)
	if !v.Document().Equal(richtext.Plain("ab")) {
		t.Fatalf("caret toggle restyled existing text: %+v", v.Document().Runs())
	}
	v.Type("c")
	a.SetBold(false)
	v.Type("d")
	want := richtext.FromRuns(
		richtext.Run{Text: "ab"},
		richtext.Run{Text: "c", Style: richtext.Style{Bold: true}},
		richtext.Run{Text: "d"},
	)
	if !v.Document().Equal(want) {
		t.Fatalf("runs = %+v", v.Document().Runs())
	}
}

func TestSelectionBoldKeepsItalic(t *testing.T) {
	doc := richtext.FromRuns(
		richtext.Run{Text: "abc", Style: richtext.Style{Italic: true}},
		richtext.Run{Text: "def"},
	)
	a := newAdapter(t, mustEncode(t, doc), "abcdef", FormattingState{})
	a.View().SetSelection(richtext.Range{Start: 1, End: 5})
	a.SetBold(true)
	want := richtext.FromRuns(
		richtext.Run{Text: "a", Style: richtext.Style{Italic: true}},
		richtext.Run{Text: "bc", Style: richtext.Style{Bold: true, Italic: true}},
		richtext.Run{Text: "de", Style: richtext.Style{Bold: true}},
		richtext.Run{Text: "f"},
	)
	if !a.Document().Equal(want) {
		t.Fatalf("runs = %+v", a.Document().Runs())
	}
	if a.View().Selection() != (richtext.Range{Start: 1, End: 5}) {
		t.Fatalf("selection moved: %+v", a.View().Selection())
	}
	a.View().Undo()
	if !a.Document().Equal(doc) {
		t.Fatalf("undo restyle = %+v", a.Document().Runs())
	}
}

func TestBoldAndItalicCompose(t *testing.T) {
	a := newAdapter(t, nil, "", FormattingState{})
	a.SetBold(true)
	a.SetItalic(true)
	a.View().Type("x")
	want := richtext.Styled("x", richtext.Style{Bold: true, Italic: true})
	if !a.Document().Equal(want) {
		t.Fatalf("runs = %+v", a.Document().Runs())
	}
	if s := a.State(); !s.Bold || !s.Italic || s.List {
		t.Fatalf("state = %+v", s)
	}
}

func TestRichTextRoundTrip(t *testing.T) {
	a := newAdapter(t, nil, "", FormattingState{})
	v := a.View()
	v.Type("plain ")
	a.SetBold(true)
	v.Type("bold ")
	a.SetItalic(true)
	v.Type("both")
	got, err := richtext.Decode(a.RichText())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(a.Document()) || got.Text() != a.PlainText() {
		t.Fatalf("round trip = %+v, want %+v", got.Runs(), a.Document().Runs())
	}
}

func TestUndecodableBlobFallsBackToPlain(t *testing.T) {
	a := newAdapter(t, []byte("definitely not rtf"), "fallback", FormattingState{})
	if !a.Document().Equal(richtext.Plain("fallback")) || a.PlainText() != "fallback" {
		t.Fatalf("fallback doc = %+v", a.Document().Runs())
	}
	if a.Dirty() {
		t.Fatalf("loading should not mark the adapter dirty")
	}
	if _, err := richtext.Decode(a.RichText()); err != nil {
		t.Fatalf("blob not rebuilt from plain text: %v", err)
	}
}

func TestEmptyRTFFallsBackToPlain(t *testing.T) {
	a := newAdapter(t, mustEncode(t, richtext.Document{}), "text", FormattingState{})
	if a.PlainText() != "text" {
		t.Fatalf("plain = %q", a.PlainText())
	}
}

func TestEncodeFailureKeepsPreviousBlob(t *testing.T) {
	a := newAdapter(t, nil, "ok", FormattingState{})
	before := a.RichText()
	a.View().SetDocument(richtext.Plain("bad \xff"))
	if a.EncodeErr() == nil {
		t.Fatalf("expected encode error")
	}
	if string(a.RichText()) != string(before) {
		t.Fatalf("blob changed after failed encode")
	}
	if a.PlainText() != "bad \xff" {
		t.Fatalf("plain mirror not updated: %q", a.PlainText())
	}
}

func TestDirtyCallbackDoesNotRecurse(t *testing.T) {
	calls := 0
	var a *Adapter
	a = NewAdapter(nil, "a", AdapterOptions{
		Key:     "n1",
		History: undo.NewManager(undo.Config{}),
		Logger:  quietLogger(),
		OnDirty: func() {
			calls++
			if calls == 1 {
				a.View().Type("!")
			}
		},
	})
	if calls != 0 {
		t.Fatalf("loading fired OnDirty %d times", calls)
	}
	a.View().Type("b")
	if calls != 1 {
		t.Fatalf("OnDirty calls = %d, want 1", calls)
	}
	if a.PlainText() != "ab!" {
		t.Fatalf("plain = %q, want change made in callback", a.PlainText())
	}
}

func TestEncodeFailureInDirtyCallbackIsRecorded(t *testing.T) {
	var logs bytes.Buffer
	calls := 0
	var a *Adapter
	a = NewAdapter(nil, "a", AdapterOptions{
		Key:     "n1",
		History: undo.NewManager(undo.Config{}),
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
		OnDirty: func() {
			calls++
			if calls == 1 {
				a.View().SetDocument(richtext.Plain("bad \xff"))
			}
		},
	})
	a.View().Type("b")
	good, err := richtext.Decode(a.RichText())
	if err != nil || good.Text() != "ab" {
		t.Fatalf("blob should still hold the last encodable buffer: %q, %v", good.Text(), err)
	}
	if a.EncodeErr() == nil {
		t.Fatalf("encode error from the callback's change was dropped")
	}
	if a.PlainText() != "bad \xff" {
		t.Fatalf("plain mirror not updated: %q", a.PlainText())
	}
	if !strings.Contains(logs.String(), "encode rich text") {
		t.Fatalf("encode failure not logged: %s", logs.String())
	}
}

func TestToggleDrivenChangeRefreshesOnce(t *testing.T) {
	calls := 0
	a := NewAdapter(nil, "• x\n• y", AdapterOptions{
		State:   FormattingState{List: true},
		Logger:  quietLogger(),
		OnDirty: func() { calls++ },
	})
	a.SetList(false)
	if calls != 1 {
		t.Fatalf("OnDirty calls = %d, want 1", calls)
	}
}

func TestFaceFallsBackSilently(t *testing.T) {
	cat, err := typeface.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	a := NewAdapter(nil, "", AdapterOptions{
		Catalog: cat,
		Encode:  richtext.EncodeOptions{FontFamily: "Go Smallcaps"},
		Logger:  quietLogger(),
	})
	a.SetBold(true)
	v := a.Face()
	if v == nil || v.Family != "Go Smallcaps" || v.Bold {
		t.Fatalf("Face() = %+v", v)
	}
	if !a.State().Bold {
		t.Fatalf("bold state lost on fallback")
	}
}
