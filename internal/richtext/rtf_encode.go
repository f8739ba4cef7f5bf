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

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotRTF is returned when the input does not open with {\rtf.
	ErrNotRTF = errors.New("richtext: not an RTF document")
	// ErrUnbalanced is returned for mismatched group braces.
	ErrUnbalanced = errors.New("richtext: unbalanced RTF groups")
	// ErrInvalidText is returned when a run holds invalid UTF-8.
	ErrInvalidText = errors.New("richtext: invalid UTF-8 in run")
)

// EncodeOptions controls the document header. Zero values pick defaults.
type EncodeOptions struct {
	FontFamily string  // default "Helvetica"
	FontSize   float64 // points, default 14
}

// Encode serializes d as RTF with default options.
func Encode(d Document) ([]byte, error) { return EncodeWith(d, EncodeOptions{}) }

// EncodeWith serializes d as RTF. Only bold and italic are written; characters
// outside printable ASCII are emitted as \uN? escapes, so bullets and other
// symbols survive as plain characters.
func EncodeWith(d Document, opts EncodeOptions) ([]byte, error) {
	family := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '{', '}', ';':
			return -1
		}
		return r
	}, strings.TrimSpace(opts.FontFamily))
	if family == "" {
		family = "Helvetica"
	}
	size := opts.FontSize
	if size <= 0 {
		size = 14
	}

	var b bytes.Buffer
	b.WriteString(`{\rtf1\ansi\ansicpg1252\deff0\uc1`)
	fmt.Fprintf(&b, "{\\fonttbl\\f0\\fnil\\fcharset0 %s;}\n", family)
	fmt.Fprintf(&b, `\f0\fs%d `, int(size*2+0.5))

	var cur Style
	for i, run := range d.runs {
		if !utf8.ValidString(run.Text) {
			return nil, fmt.Errorf("run %d: %w", i, ErrInvalidText)
		}
		if run.Style.Bold != cur.Bold {
			b.WriteString(toggleWord("b", run.Style.Bold))
		}
		if run.Style.Italic != cur.Italic {
			b.WriteString(toggleWord("i", run.Style.Italic))
		}
		cur = run.Style
		writeEscaped(&b, run.Text)
	}
	b.WriteString("}")
	return b.Bytes(), nil
}

func toggleWord(word string, on bool) string {
	if on {
		return `\` + word + " "
	}
	return `\` + word + "0 "
}

func writeEscaped(b *bytes.Buffer, s string) {
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString("\\par\n")
		case r == '\t':
			b.WriteString(`\tab `)
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := surrogates(r)
			writeUnicode(b, hi)
			writeUnicode(b, lo)
		default:
			writeUnicode(b, r)
		}
	}
}

// writeUnicode emits \uN? where N is the signed 16-bit code unit.
func writeUnicode(b *bytes.Buffer, r rune) {
	b.WriteString(`\u`)
	b.WriteString(strconv.Itoa(int(int16(uint16(r)))))
	b.WriteByte('?')
}

func surrogates(r rune) (hi, lo rune) {
	r -= 0x10000
	return 0xD800 + (r>>10)&0x3FF, 0xDC00 + r&0x3FF
}
