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
	"testing"

	"notebar/internal/richtext"
)

func TestNextStylingCaretOnlyChangesTyping(t *testing.T) {
	plan := NextStyling(StylingInput{
		State:     FormattingState{Italic: true},
		Selection: richtext.Caret(3),
		Typing:    richtext.Style{Italic: true},
		Trait:     richtext.Bold,
		On:        true,
	})
	if plan.Restyle {
		t.Fatalf("caret toggle should not restyle")
	}
	if plan.Typing != (richtext.Style{Bold: true, Italic: true}) {
		t.Fatalf("typing = %+v", plan.Typing)
	}
	if plan.State != (FormattingState{Bold: true, Italic: true}) {
		t.Fatalf("state = %+v", plan.State)
	}
}

func TestNextStylingSelection(t *testing.T) {
	plan := NextStyling(StylingInput{
		Selection: richtext.Range{Start: 5, End: 2},
		Trait:     richtext.Italic,
		On:        false,
	})
	if !plan.Restyle || plan.Range != (richtext.Range{Start: 2, End: 5}) {
		t.Fatalf("plan = %+v", plan)
	}
	got := plan.Apply(richtext.Style{Bold: true, Italic: true})
	if got != (richtext.Style{Bold: true}) {
		t.Fatalf("Apply = %+v", got)
	}
}

func TestListHelpers(t *testing.T) {
	doc, sel, changed := listOff(richtext.Plain("a • b\n•x"), richtext.Caret(0))
	if changed || doc.Text() != "a • b\n•x" || sel != richtext.Caret(0) {
		t.Fatalf("marker outside line start treated as bullet: %q", doc.Text())
	}
	doc, _, changed = listOn(richtext.Plain("a • b"), richtext.Caret(5), richtext.Style{})
	if !changed || doc.Text() != "• a • b" {
		t.Fatalf("listOn = %q", doc.Text())
	}
	// caret inside a prefix snaps to the line start
	doc, sel, _ = listOff(richtext.Plain("x\n• y"), richtext.Caret(3))
	if doc.Text() != "x\ny" || sel != richtext.Caret(2) {
		t.Fatalf("listOff = %q sel=%+v", doc.Text(), sel)
	}
	again, sel2, changed := listOff(doc, sel)
	if changed || !again.Equal(doc) || sel2 != sel {
		t.Fatalf("listOff not idempotent")
	}
}
