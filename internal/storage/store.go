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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"notebar/internal/domain"
	applog "notebar/internal/log"
)

const (
	NotesFileName    = "notes.json"
	SettingsFileName = "settings.json"
	BackupsDirName   = "backups"

	// LegacyNotesFileName is the notes file of earlier releases. It is read
	// only when notes.json does not exist yet.
	LegacyNotesFileName = "myNotes.data"

	// MaxBackups is how many backups of each file are kept.
	MaxBackups = 20
)

// ErrNotFound is returned when a note id is not in the collection.
var ErrNotFound = errors.New("storage: note not found")

func NotesPath(dir string) string    { return filepath.Join(dir, NotesFileName) }
func SettingsPath(dir string) string { return filepath.Join(dir, SettingsFileName) }

// LoadNotes reads the note collection from dir. A missing file yields an empty
// collection, unless an earlier release's myNotes.data is there to import.
// An unreadable or invalid file falls back to its latest backup.
func LoadNotes(dir string) ([]domain.Note, error) {
	var notes []domain.Note
	found, err := loadJSON(dir, NotesFileName, notesSchema, &notes)
	if err != nil {
		return nil, err
	}
	if !found {
		legacy := filepath.Join(dir, LegacyNotesFileName)
		if err := decodeFile(legacy, notesSchema, &notes); err == nil {
			applog.WithComponent("storage").Info("imported legacy notes", slog.String("file", legacy), slog.Int("notes", len(notes)))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", LegacyNotesFileName, err)
		}
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

// SaveNotes writes the collection transactionally, backing up the previous
// file first. An empty collection is written too, so deleting the last note sticks.
func SaveNotes(dir string, notes []domain.Note) error {
	if notes == nil {
		notes = []domain.Note{}
	}
	return writeJSON(dir, NotesFileName, notes)
}

// LoadSettings reads settings.json, returning defaults when it does not exist.
// Unknown theme colors read back as the default.
func LoadSettings(dir string) (domain.Settings, error) {
	var s domain.Settings
	found, err := loadJSON(dir, SettingsFileName, settingsSchema, &s)
	if err != nil {
		return domain.Settings{}, err
	}
	if !found {
		return domain.DefaultSettings(), nil
	}
	if s.ID == "" {
		s.ID = domain.DefaultSettings().ID
	}
	s.ThemeColor = s.ThemeColor.OrDefault()
	return s, nil
}

func SaveSettings(dir string, s domain.Settings) error {
	s.ThemeColor = s.ThemeColor.OrDefault()
	return writeJSON(dir, SettingsFileName, s)
}

// AutosaveCrashSnapshot writes notes into the backups folder under a
// crash-specific name and returns its path. It never replaces notes.json.
func AutosaveCrashSnapshot(dir string, notes []domain.Note) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("data dir is required")
	}
	bdir := filepath.Join(dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", NotesFileName, time.Now().Format("20060102-150405")))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// loadJSON decodes dir/name into v after schema validation. It reports
// found=false only when neither the file nor any backup exists.
func loadJSON(dir, name string, schema []byte, v any) (found bool, err error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "load").With(slog.String("file", name))
	path := filepath.Join(dir, name)
	primaryErr := decodeFile(path, schema, v)
	if primaryErr == nil {
		return true, nil
	}
	backup, berr := latestBackup(dir, name)
	if berr != nil {
		if errors.Is(primaryErr, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w; backup attempt: %v", name, primaryErr, berr)
	}
	if err := decodeFile(backup, schema, v); err != nil {
		return false, fmt.Errorf("load %s: %w; backup %s: %v", name, primaryErr, filepath.Base(backup), err)
	}
	l.Warn("loaded from backup", slog.String("backup", filepath.Base(backup)), slog.Any("err", primaryErr))
	return true, nil
}

func decodeFile(path string, schema []byte, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validate(schema, b); err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

// writeJSON backs up the current dir/name, then replaces it through a temp
// file in the same directory.
func writeJSON(dir, name string, v any) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("data dir is required")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	target := filepath.Join(dir, name)
	if _, statErr := os.Stat(target); statErr == nil {
		stamp := time.Now().Format("20060102-150405.000")
		if cerr := copyFile(target, filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", name, stamp))); cerr != nil {
			return fmt.Errorf("backup current %s: %w", name, cerr)
		}
		pruneBackups(bdir, name, MaxBackups)
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", name, werr)
	}
	if rerr := os.Rename(temp, target); rerr != nil {
		// Windows refuses to rename over an existing file.
		_ = os.Remove(target)
		if rerr = os.Rename(temp, target); rerr != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace %s: %w", name, rerr)
		}
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// backupsFor lists name's regular backups, oldest first. Crash snapshots are
// excluded.
func backupsFor(bdir, name string) []string {
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		n := e.Name()
		if strings.HasPrefix(n, name+".") && strings.HasSuffix(n, ".bak") {
			out = append(out, filepath.Join(bdir, n))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func latestBackup(dir, name string) (string, error) {
	all := backupsFor(filepath.Join(dir, BackupsDirName), name)
	if len(all) == 0 {
		return "", errors.New("no backups found")
	}
	return all[len(all)-1], nil
}

func pruneBackups(bdir, name string, keep int) {
	all := backupsFor(bdir, name)
	for len(all) > keep {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}
