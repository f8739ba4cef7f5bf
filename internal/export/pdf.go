/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders notes to shareable formats.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"notebar/internal/domain"
	"notebar/internal/richtext"
	"notebar/internal/typeface"
)

// PDFOptions controls NotePDF. Units are points.
type PDFOptions struct {
	FontFamily string  // resolved through the catalog; default typeface.DefaultFamily
	FontSize   float64 // default 12
	PageSize   string  // "A4" (default), "Letter", ...
	Margin     float64 // default 56
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.FontFamily == "" {
		o.FontFamily = typeface.DefaultFamily
	}
	if o.FontSize <= 0 {
		o.FontSize = 12
	}
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.Margin <= 0 {
		o.Margin = 56
	}
	return o
}

// NotePDF writes n to outPath as a single PDF, creating parent directories.
func NotePDF(n domain.Note, cat *typeface.Catalog, outPath string, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WriteNotePDF(f, n, cat, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

// WriteNotePDF renders the title and the styled text of n. Bold and italic
// runs use the nearest variant the catalog has; without a catalog the core
// Helvetica fonts are used.
func WriteNotePDF(w io.Writer, n domain.Note, cat *typeface.Catalog, opt PDFOptions) error {
	opt = opt.withDefaults()
	doc := noteDocument(n)

	pdf := gofpdf.New("P", "pt", opt.PageSize, "")
	pdf.SetMargins(opt.Margin, opt.Margin, opt.Margin)
	pdf.SetAutoPageBreak(true, opt.Margin)
	pdf.SetTitle(n.DisplayTitle(), true)
	pdf.SetAuthor("NoteBar", true)
	pdf.SetCreator("NoteBar", true)
	if !n.ModifiedAt.IsZero() {
		pdf.SetCreationDate(n.ModifiedAt)
	}
	fonts := &fontSet{pdf: pdf, cat: cat, family: opt.FontFamily, registered: map[*typeface.Variant]string{}}
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	width := pageW - 2*opt.Margin
	titleSize := opt.FontSize * 1.4
	title := richtext.Styled(n.DisplayTitle(), richtext.Style{Bold: true})
	fonts.draw(layoutParagraphs(title, width, fonts.measure(titleSize)), opt.Margin, titleSize)
	pdf.Ln(fonts.lineHeight(richtext.Style{}, opt.FontSize) * 0.5)
	fonts.draw(layoutParagraphs(doc, width, fonts.measure(opt.FontSize)), opt.Margin, opt.FontSize)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// noteDocument decodes the note's rich text, falling back to its plain text.
func noteDocument(n domain.Note) richtext.Document {
	if len(n.RichText) > 0 {
		if d, err := richtext.Decode(n.RichText); err == nil && (!d.IsEmpty() || n.PlainText == "") {
			return d
		}
	}
	return richtext.Plain(n.PlainText)
}

type fontSet struct {
	pdf        *gofpdf.Fpdf
	cat        *typeface.Catalog
	family     string
	registered map[*typeface.Variant]string
	translate  func(string) string
}

// use selects the font for st, embedding the resolved variant on first use.
func (f *fontSet) use(st richtext.Style, size float64) {
	v, _ := f.cat.Resolve(typeface.Spec{Family: f.family, Bold: st.Bold, Italic: st.Italic})
	if v == nil {
		f.pdf.SetFont("Helvetica", coreStyle(st), size)
		return
	}
	name, ok := f.registered[v]
	if !ok {
		name = fmt.Sprintf("nb%d", len(f.registered))
		f.pdf.AddUTF8FontFromBytes(name, "", v.TTF)
		f.registered[v] = name
	}
	f.pdf.SetFont(name, "", size)
}

// text converts s for core fonts, which only cover cp1252.
func (f *fontSet) text(s string) string {
	if v, _ := f.cat.Resolve(typeface.Spec{Family: f.family}); v != nil {
		return s
	}
	if f.translate == nil {
		f.translate = f.pdf.UnicodeTranslatorFromDescriptor("")
	}
	return f.translate(s)
}

func (f *fontSet) lineHeight(st richtext.Style, size float64) float64 {
	return f.cat.LineHeight(typeface.Spec{Family: f.family, Bold: st.Bold, Italic: st.Italic}, size)
}

func (f *fontSet) measure(size float64) measureFunc {
	return func(s string, st richtext.Style) float64 {
		f.use(st, size)
		return f.pdf.GetStringWidth(f.text(s))
	}
}

// draw sets lines left to right from the margin, one cell per span.
func (f *fontSet) draw(lines []line, margin, size float64) {
	for _, ln := range lines {
		lh := f.lineHeight(richtext.Style{}, size)
		for _, sp := range ln.Spans {
			if h := f.lineHeight(sp.Style, size); h > lh {
				lh = h
			}
		}
		f.pdf.SetX(margin + ln.Indent)
		for _, sp := range ln.Spans {
			f.use(sp.Style, size)
			txt := f.text(sp.Text)
			f.pdf.CellFormat(f.pdf.GetStringWidth(txt), lh, txt, "", 0, "L", false, 0, "")
		}
		f.pdf.Ln(lh)
	}
}

func coreStyle(st richtext.Style) string {
	s := ""
	if st.Bold {
		s += "B"
	}
	if st.Italic {
		s += "I"
	}
	return s
}
