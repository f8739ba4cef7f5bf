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
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// skippedDestinations are groups whose content is never document text.
var skippedDestinations = map[string]bool{
	"fonttbl":           true,
	"colortbl":          true,
	"expandedcolortbl":  true,
	"stylesheet":        true,
	"info":              true,
	"listtable":         true,
	"listoverridetable": true,
	"pict":              true,
	"header":            true,
	"footer":            true,
	"generator":         true,
}

// symbolWords map control words to the character they stand for.
var symbolWords = map[string]rune{
	"par":       '\n',
	"line":      '\n',
	"tab":       '\t',
	"bullet":    '•',
	"emdash":    '—',
	"endash":    '–',
	"lquote":    '‘',
	"rquote":    '’',
	"ldblquote": '“',
	"rdblquote": '”',
}

type groupState struct {
	style Style
	skip  bool
	uc    int
}

type decoder struct {
	data    []byte
	pos     int
	stack   []groupState
	st      groupState
	runs    []Run
	text    strings.Builder
	textSt  Style
	pending int  // fallback characters still to swallow after \uN
	high    rune // buffered high surrogate
}

// Decode parses RTF into a Document. Only bold and italic are kept; fonts,
// colours, and paragraph formatting are dropped. Unknown control words are
// ignored. \'hh escapes and raw 8-bit bytes are read as Windows-1252.
func Decode(data []byte) (Document, error) {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	if !bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return Document{}, ErrNotRTF
	}
	d := &decoder{data: data, st: groupState{uc: 1}}
	if err := d.run(); err != nil {
		return Document{}, err
	}
	return FromRuns(d.runs...), nil
}

func (d *decoder) run() error {
	for d.pos < len(d.data) {
		c := d.data[d.pos]
		switch c {
		case '{':
			d.stack = append(d.stack, d.st)
			d.pos++
		case '}':
			if len(d.stack) == 0 {
				return fmt.Errorf("unexpected '}' at offset %d: %w", d.pos, ErrUnbalanced)
			}
			d.st = d.stack[len(d.stack)-1]
			d.stack = d.stack[:len(d.stack)-1]
			d.pos++
			if len(d.stack) == 0 {
				d.flush()
				return nil
			}
		case '\\':
			if err := d.control(); err != nil {
				return err
			}
		case '\r', '\n':
			d.pos++
		default:
			d.pos++
			d.literal(decodeByte(c))
		}
	}
	return fmt.Errorf("document ends inside a group: %w", ErrUnbalanced)
}

func decodeByte(c byte) rune {
	if c < 0x80 {
		return rune(c)
	}
	return charmap.Windows1252.DecodeByte(c)
}

// literal emits a text character unless it is a \uN fallback or inside a
// skipped destination.
func (d *decoder) literal(r rune) {
	if d.pending > 0 {
		d.pending--
		return
	}
	d.emit(r)
}

func (d *decoder) emit(r rune) {
	if d.st.skip {
		return
	}
	if d.high != 0 {
		hi := d.high
		d.high = 0
		if r >= 0xDC00 && r <= 0xDFFF {
			r = 0x10000 + (hi-0xD800)<<10 + (r - 0xDC00)
		} else {
			d.emit(hi)
		}
	}
	if r >= 0xD800 && r <= 0xDBFF {
		d.high = r
		return
	}
	if d.st.style != d.textSt {
		d.flush()
		d.textSt = d.st.style
	}
	d.text.WriteRune(r)
}

func (d *decoder) flush() {
	if d.text.Len() == 0 {
		return
	}
	d.runs = append(d.runs, Run{Text: d.text.String(), Style: d.textSt})
	d.text.Reset()
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

func (d *decoder) control() error {
	d.pos++ // backslash
	if d.pos >= len(d.data) {
		return fmt.Errorf("dangling backslash: %w", ErrUnbalanced)
	}
	c := d.data[d.pos]
	if !isLetter(c) {
		d.pos++
		d.symbol(c)
		return nil
	}
	start := d.pos
	for d.pos < len(d.data) && isLetter(d.data[d.pos]) {
		d.pos++
	}
	word := string(d.data[start:d.pos])
	param, hasParam := 0, false
	neg := false
	if d.pos < len(d.data) && d.data[d.pos] == '-' {
		neg = true
		d.pos++
	}
	for d.pos < len(d.data) && isDigit(d.data[d.pos]) {
		param = param*10 + int(d.data[d.pos]-'0')
		hasParam = true
		d.pos++
	}
	if neg {
		param = -param
	}
	if d.pos < len(d.data) && d.data[d.pos] == ' ' {
		d.pos++
	}
	d.word(word, param, hasParam)
	return nil
}

func (d *decoder) symbol(c byte) {
	switch c {
	case '\\', '{', '}':
		d.literal(rune(c))
	case '\'':
		if d.pos+2 <= len(d.data) {
			if v, err := strconv.ParseUint(string(d.data[d.pos:d.pos+2]), 16, 8); err == nil {
				d.pos += 2
				d.literal(decodeByte(byte(v)))
			}
		}
	case '*':
		d.st.skip = true
	case '~':
		d.literal('\u00a0')
	case '_':
		d.literal('\u2011')
	case '\n', '\r':
		d.literal('\n')
	}
}

func (d *decoder) word(word string, param int, hasParam bool) {
	on := !hasParam || param != 0
	if word != "u" {
		d.pending = 0
	}
	switch word {
	case "b":
		d.st.style.Bold = on
	case "i":
		d.st.style.Italic = on
	case "plain":
		d.st.style = Style{}
	case "uc":
		if hasParam && param >= 0 {
			d.st.uc = param
		}
	case "u":
		r := rune(param)
		if r < 0 {
			r += 0x10000
		}
		d.pending = 0
		d.emit(r)
		d.pending = d.st.uc
	default:
		if skippedDestinations[word] {
			d.st.skip = true
			return
		}
		if r, ok := symbolWords[word]; ok {
			d.emit(r)
		}
	}
}
