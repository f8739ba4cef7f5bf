/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func withConfigFile(t *testing.T, body string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if body != "" {
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	t.Setenv(EnvConfigFile, p)
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	withConfigFile(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.FontFamily != "Go" || cfg.Editor.UndoDepth != 100 || cfg.Storage.DataDir == "" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	withConfigFile(t, "editor:\n  font_family: Go Mono\n  font_size: 16\nlogging:\n  level: DEBUG\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.FontFamily != "Go Mono" || cfg.Editor.FontSize != 16 {
		t.Fatalf("editor not merged: %#v", cfg.Editor)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level not normalised: %q", cfg.Logging.Level)
	}
	if cfg.Editor.UndoDepth != 100 {
		t.Fatalf("unset field should keep default, got %d", cfg.Editor.UndoDepth)
	}
}

func TestLoadIgnoresMalformedFile(t *testing.T) {
	withConfigFile(t, "editor: [oops")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.FontFamily != "Go" {
		t.Fatalf("expected defaults for malformed file, got %#v", cfg.Editor)
	}
}

func TestEnvOverridesDataDirAndUndoDepth(t *testing.T) {
	withConfigFile(t, "storage:\n  data_dir: /from/file\n")
	t.Setenv(EnvDataDir, "/from/env")
	t.Setenv(EnvUndoDepth, "7")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.DataDir != "/from/env" || cfg.Editor.UndoDepth != 7 {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if env, ok := EnvOverrideFor("storage.data_dir"); !ok || env != EnvDataDir {
		t.Fatalf("EnvOverrideFor(storage.data_dir) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("editor.font_family"); ok {
		t.Fatalf("font family is not overridden")
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	withConfigFile(t, "")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/notebar.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/notebar.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	withConfigFile(t, "")
	cfg := Defaults()
	cfg.Editor.FontFamily = "Go Smallcaps"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Editor.FontFamily != "Go Smallcaps" {
		t.Fatalf("saved font family not loaded back: %q", got.Editor.FontFamily)
	}
}
