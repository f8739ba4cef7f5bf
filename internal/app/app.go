/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package app wires configuration, storage, fonts and edit history into the
// objects the CLI and the desktop UI share.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notebar/internal/config"
	"notebar/internal/domain"
	"notebar/internal/editor"
	applog "notebar/internal/log"
	"notebar/internal/richtext"
	"notebar/internal/storage"
	"notebar/internal/typeface"
	"notebar/internal/undo"
)

// FontsDirName is the data-dir subdirectory used when no fonts dir is configured.
const FontsDirName = "fonts"

// ErrAmbiguous is returned by Find when an id prefix matches several notes.
var ErrAmbiguous = errors.New("app: ambiguous note id")

// App holds the long-lived state of one process.
type App struct {
	Config   config.AppConfig
	DataDir  string
	Library  *storage.Library
	Settings domain.Settings
	Catalog  *typeface.Catalog
	History  *undo.Manager

	saver    *storage.Saver
	watchers []func([]domain.Note)
	log      *slog.Logger
}

// LoggingOptions maps the logging section of cfg onto logger options.
func LoggingOptions(cfg config.AppConfig) applog.Options {
	return applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	}
}

// Open loads notes and settings from the configured data dir and prepares
// the font catalog. Fonts that fail to load are logged and skipped.
func Open(cfg config.AppConfig) (*App, error) {
	l := applog.WithComponent("app")
	dir := cfg.Storage.DataDir
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data dir is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	notes, err := storage.LoadNotes(dir)
	if err != nil {
		return nil, err
	}
	settings, err := storage.LoadSettings(dir)
	if err != nil {
		l.Warn("settings unreadable, using defaults", slog.Any("err", err))
		settings = domain.DefaultSettings()
	}
	cat, err := typeface.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load builtin fonts: %w", err)
	}
	if fd := fontsDir(cfg); dirExists(fd) {
		n, errs := cat.LoadDir(fd)
		for _, e := range errs {
			l.Warn("font skipped", slog.Any("err", e))
		}
		l.Debug("fonts loaded", slog.Int("count", n), slog.String("dir", fd))
	}
	a := &App{
		Config:   cfg,
		DataDir:  dir,
		Library:  storage.NewLibrary(notes),
		Settings: settings,
		Catalog:  cat,
		History:  undo.NewManager(undo.Config{MaxPerKey: cfg.Editor.UndoDepth}),
		log:      l,
	}
	l.Info("data loaded", slog.String("dir", dir), slog.Int("notes", len(notes)))
	return a, nil
}

// FontsDir is where extra fonts are loaded from and font packs install to.
func (a *App) FontsDir() string { return fontsDir(a.Config) }

func fontsDir(cfg config.AppConfig) string {
	if fd := strings.TrimSpace(cfg.Editor.FontsDir); fd != "" {
		return fd
	}
	return filepath.Join(cfg.Storage.DataDir, FontsDirName)
}

func dirExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

// EditorOptions returns adapter options for editing note id.
func (a *App) EditorOptions(id string) editor.AdapterOptions {
	return editor.AdapterOptions{
		Key:     id,
		History: a.History,
		Catalog: a.Catalog,
		Encode:  richtext.EncodeOptions{FontFamily: a.Config.Editor.FontFamily, FontSize: a.Config.Editor.FontSize},
	}
}

// OpenSession starts editing n against the library.
func (a *App) OpenSession(n domain.Note) *editor.Session {
	return editor.Open(n, a.Library, a.EditorOptions(n.ID))
}

// Find returns the note whose id equals or uniquely starts with idPrefix.
func (a *App) Find(idPrefix string) (domain.Note, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return domain.Note{}, storage.ErrNotFound
	}
	if n, err := a.Library.Get(idPrefix); err == nil {
		return n, nil
	}
	var match []domain.Note
	for _, n := range a.Library.List() {
		if strings.HasPrefix(n.ID, idPrefix) {
			match = append(match, n)
		}
	}
	switch len(match) {
	case 0:
		return domain.Note{}, fmt.Errorf("%s: %w", idPrefix, storage.ErrNotFound)
	case 1:
		return match[0], nil
	default:
		return domain.Note{}, fmt.Errorf("%s matches %d notes: %w", idPrefix, len(match), ErrAmbiguous)
	}
}

// SaveNow writes the library synchronously.
func (a *App) SaveNow() error { return storage.SaveNotes(a.DataDir, a.Library.List()) }

// SaveSettings persists s and keeps it as the current settings.
func (a *App) SaveSettings(s domain.Settings) error {
	if err := storage.SaveSettings(a.DataDir, s); err != nil {
		return err
	}
	a.Settings = s
	return nil
}

// StartAutosave hands every library change to a background saver that also
// refreshes the search index.
func (a *App) StartAutosave() {
	if a.saver != nil {
		return
	}
	a.saver = storage.NewSaver(a.DataDir, storage.WithIndex(5*time.Second))
	a.Library.OnChange(a.changed)
}

// OnChange registers fn to run after every library change, once autosave has
// queued it.
func (a *App) OnChange(fn func([]domain.Note)) { a.watchers = append(a.watchers, fn) }

func (a *App) changed(notes []domain.Note) {
	if a.saver != nil {
		a.saver.Enqueue(notes)
	}
	for _, fn := range a.watchers {
		fn(notes)
	}
}

// Reload replaces the library with the notes file on disk, e.g. after an
// external change. Pending autosave writes land first, so the file read back
// is never older than the library; if they cannot be flushed the library is
// left alone.
func (a *App) Reload(ctx context.Context) error {
	if a.saver != nil {
		if err := a.saver.Flush(ctx); err != nil {
			return fmt.Errorf("reload: flush pending save: %w", err)
		}
	}
	notes, err := storage.LoadNotes(a.DataDir)
	if err != nil {
		return err
	}
	// the reload must not echo back into a save
	a.Library.OnChange(nil)
	a.Library.Replace(notes)
	if a.saver != nil {
		a.Library.OnChange(a.changed)
	}
	return nil
}

// Close flushes pending writes.
func (a *App) Close(ctx context.Context) error {
	if a.saver == nil {
		return nil
	}
	err := a.saver.Flush(ctx)
	a.saver.Close()
	a.saver = nil
	a.Library.OnChange(nil)
	return err
}
