/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a single jotting. The JSON keys match the notes file written by
// earlier releases. Those files store "date" as seconds since 2001-01-01 UTC;
// both that form and RFC 3339 strings are read, and RFC 3339 is written.
//
// PlainText is always the plain projection of RichText's characters; only an
// editing session writes either field.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	PlainText  string    `json:"note"`
	RichText   []byte    `json:"richText,omitempty"`
	ModifiedAt time.Time `json:"date"`
}

// referenceDate is the epoch of numeric dates in earlier notes files.
var referenceDate = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

func (n *Note) UnmarshalJSON(b []byte) error {
	type fields Note
	aux := struct {
		*fields
		Date json.RawMessage `json:"date"`
	}{fields: (*fields)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t, err := parseDate(aux.Date)
	if err != nil {
		return err
	}
	n.ModifiedAt = t
	return nil
}

func parseDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return time.Time{}, fmt.Errorf("date: %w", err)
		}
		return t, nil
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("date: %w", err)
	}
	whole, frac := math.Modf(secs)
	return referenceDate.Add(time.Duration(whole)*time.Second + time.Duration(math.Round(frac*1e9))), nil
}

// NewNote returns an empty note with a fresh identity.
func NewNote(now time.Time) Note {
	return Note{ID: uuid.NewString(), ModifiedAt: now}
}

// DisplayTitle falls back to the first non-empty line of the text for untitled notes.
func (n Note) DisplayTitle() string {
	if t := strings.TrimSpace(n.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(n.PlainText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "New Note"
}

// Preview returns the first line of text, truncated to limit runes.
func (n Note) Preview(limit int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(n.PlainText), "\n")
	rs := []rune(line)
	if limit > 0 && len(rs) > limit {
		return string(rs[:limit]) + "…"
	}
	return line
}
