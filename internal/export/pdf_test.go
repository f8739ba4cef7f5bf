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
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"notebar/internal/domain"
	"notebar/internal/richtext"
	"notebar/internal/typeface"
)

func styledNote(t *testing.T) domain.Note {
	t.Helper()
	doc := richtext.FromRuns(
		richtext.Run{Text: "• plain\n"},
		richtext.Run{Text: "• bold\n", Style: richtext.Style{Bold: true}},
		richtext.Run{Text: "• both", Style: richtext.Style{Bold: true, Italic: true}},
	)
	rich, err := richtext.Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return domain.Note{ID: "n1", Title: "List", PlainText: doc.Text(), RichText: rich, ModifiedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestNotePDFCreatesFile(t *testing.T) {
	cat, err := typeface.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	out := filepath.Join(t.TempDir(), "exports", "note.pdf")
	if err := NotePDF(styledNote(t), cat, out, PDFOptions{}); err != nil {
		t.Fatalf("NotePDF: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", b[:8])
	}
}

func TestWriteNotePDFWithoutCatalog(t *testing.T) {
	var buf bytes.Buffer
	n := styledNote(t)
	n.RichText = []byte("garbage")
	if err := WriteNotePDF(&buf, n, nil, PDFOptions{PageSize: "Letter"}); err != nil {
		t.Fatalf("WriteNotePDF: %v", err)
	}
	if buf.Len() == 0 || !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("empty or invalid output")
	}
}

func TestNoteDocumentFallsBackToPlain(t *testing.T) {
	n := domain.Note{PlainText: "hello", RichText: []byte("{\\rtf1 }")}
	if d := noteDocument(n); d.Text() != "hello" {
		t.Fatalf("noteDocument = %q", d.Text())
	}
	n = styledNote(t)
	if d := noteDocument(n); !d.CommonStyle(richtext.Range{Start: 8, End: 12}, richtext.Bold) {
		t.Fatalf("bold run lost: %+v", d.Runs())
	}
}
