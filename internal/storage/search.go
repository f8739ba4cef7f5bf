/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// SearchResult is one matching note.
type SearchResult struct {
	NoteID     string
	Title      string
	Snippet    string
	ModifiedAt time.Time
}

// Search runs a full-text query over the index in dir. Every word of query
// must match as a prefix; an empty query lists all notes, newest first.
func Search(ctx context.Context, dir, query string, limit int) ([]SearchResult, error) {
	db, err := OpenIndex(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, query, limit)
}

func searchDB(ctx context.Context, db *sql.DB, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	if match := ftsQuery(query); match != "" {
		rows, err = db.QueryContext(ctx, `SELECT n.note_id, n.title, snippet(fts_notes, 1, '[', ']', '…', 10), n.modified_at
			FROM fts_notes JOIN notes n ON fts_notes.rowid = n.doc_id
			WHERE fts_notes MATCH ?
			ORDER BY rank
			LIMIT ?`, match, limit)
	} else {
		rows, err = db.QueryContext(ctx, `SELECT note_id, title, '', modified_at FROM notes
			ORDER BY modified_at DESC, note_id
			LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var snippet sql.NullString
		var ts string
		if err := rows.Scan(&r.NoteID, &r.Title, &snippet, &ts); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Snippet = snippet.String
		// RFC3339Nano also accepts rows written before the fixed-width layout.
		if r.ModifiedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse modified_at of %s: %w", r.NoteID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression of quoted prefix terms,
// so user input never trips the query syntax.
func ftsQuery(q string) string {
	words := strings.FieldsFunc(q, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}
