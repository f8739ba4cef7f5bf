//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// These tests exercise the Fyne pieces of the tray app. They are gated behind
// the "fyne" build tag so headless CI does not need a display:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"notebar/internal/domain"
	"notebar/internal/richtext"
)

func TestSegmentsCarryStyles(t *testing.T) {
	d := richtext.FromRuns(
		richtext.Run{Text: "plain "},
		richtext.Run{Text: "bold", Style: richtext.Style{Bold: true}},
		richtext.Run{Text: " it", Style: richtext.Style{Italic: true}},
	)
	segs := segments(d)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	b := segs[1].(*widget.TextSegment)
	if b.Text != "bold" || !b.Style.TextStyle.Bold || b.Style.TextStyle.Italic || !b.Style.Inline {
		t.Fatalf("unexpected bold segment: %+v", b)
	}
	if !segs[2].(*widget.TextSegment).Style.TextStyle.Italic {
		t.Fatalf("italic lost")
	}
}

func TestNoteEntryRoutesControlShortcuts(t *testing.T) {
	test.NewTempApp(t)
	var got []fyne.KeyName
	e := newNoteEntry(func(sc *desktop.CustomShortcut) bool {
		got = append(got, sc.KeyName)
		return sc.KeyName == fyne.KeyB
	})
	e.TypedShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyB, Modifier: fyne.KeyModifierControl})
	e.TypedShortcut(&fyne.ShortcutUndo{})
	if len(got) != 2 || got[0] != fyne.KeyB || got[1] != fyne.KeyZ {
		t.Fatalf("unexpected shortcut routing: %v", got)
	}
}

func TestThemeColorOpaque(t *testing.T) {
	for _, c := range domain.ThemeColors() {
		if _, _, _, a := themeColor(c).RGBA(); a != 0xffff {
			t.Fatalf("%s not opaque", c)
		}
	}
}
