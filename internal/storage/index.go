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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notebar/internal/domain"
	applog "notebar/internal/log"
	"notebar/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds disposable per-data-dir state.
	IndexDirName  = ".notebar"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the index schema; bump it together with a migration.
	schemaVersion = 1

	// modifiedLayout is fixed width and always UTC so modified_at sorts
	// chronologically as text.
	modifiedLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// IndexPath returns the location of the search index for dir.
func IndexPath(dir string) string {
	return filepath.Join(dir, IndexDirName, IndexFileName)
}

// OpenIndex creates or opens the index database, enables WAL and ensures the
// schema. Callers close the returned handle.
func OpenIndex(dir string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, IndexDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(IndexPath(dir)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	return db, nil
}

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
		id         INTEGER PRIMARY KEY CHECK(id=1),
		schema     INTEGER NOT NULL,
		app        TEXT,
		updated_at TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET app=excluded.app, updated_at=excluded.updated_at`,
		schemaVersion, version.String(), now); err != nil {
		return fmt.Errorf("upsert version: %w", err)
	}
	return nil
}

// ensureIndexSchema creates the notes table and its FTS5 shadow. The FTS
// table uses notes as external content and is kept in sync by triggers.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			doc_id      INTEGER PRIMARY KEY,
			note_id     TEXT    NOT NULL UNIQUE,
			title       TEXT    NOT NULL,
			body        TEXT    NOT NULL,
			modified_at TEXT    NOT NULL
		);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_notes USING fts5(
			title,
			body,
			content='notes',
			content_rowid='doc_id',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS notes_ai AFTER INSERT ON notes BEGIN
			INSERT INTO fts_notes(rowid, title, body) VALUES (new.doc_id, new.title, new.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS notes_ad AFTER DELETE ON notes BEGIN
			INSERT INTO fts_notes(fts_notes, rowid, title, body) VALUES ('delete', old.doc_id, old.title, old.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS notes_au AFTER UPDATE ON notes BEGIN
			INSERT INTO fts_notes(fts_notes, rowid, title, body) VALUES ('delete', old.doc_id, old.title, old.body);
			INSERT INTO fts_notes(rowid, title, body) VALUES (new.doc_id, new.title, new.body);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// RebuildIndex replaces the indexed notes with notes.
func RebuildIndex(ctx context.Context, dir string, notes []domain.Note) error {
	db, err := OpenIndex(dir)
	if err != nil {
		return err
	}
	defer db.Close()
	return replaceNotes(ctx, db, notes)
}

func replaceNotes(ctx context.Context, db *sql.DB, notes []domain.Note) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM notes;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear notes: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO notes(note_id, title, body, modified_at) VALUES(?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, n := range notes {
		if _, err := ins.ExecContext(ctx, n.ID, n.DisplayTitle(), n.PlainText, n.ModifiedAt.UTC().Format(modifiedLayout)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert note %s: %w", n.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DetectAndRebuildIndex rebuilds the index from notes when it cannot be
// opened or fails its integrity check. The damaged file is backed up first.
// It reports whether a rebuild happened.
func DetectAndRebuildIndex(ctx context.Context, dir string, notes []domain.Note) (bool, error) {
	path := IndexPath(dir)
	db, err := OpenIndex(dir)
	if err == nil {
		var chk string
		qerr := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk)
		_ = db.Close()
		if qerr == nil && strings.EqualFold(strings.TrimSpace(chk), "ok") {
			return false, nil
		}
	}
	backupIndexFile(path)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
	if err := RebuildIndex(ctx, dir, notes); err != nil {
		return false, fmt.Errorf("rebuild index: %w", err)
	}
	applog.WithComponent("storage").Warn("search index rebuilt", slog.String("path", path))
	return true, nil
}

func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp)), data, 0o644)
	}
}
