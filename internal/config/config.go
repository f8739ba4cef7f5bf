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
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	Editor        EditorConfig  `yaml:"editor"`
	Logging       LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	// DataDir holds notes.json, settings.json, backups and the search index.
	DataDir string `yaml:"data_dir"`
}

type EditorConfig struct {
	FontFamily string  `yaml:"font_family"`
	FontSize   float64 `yaml:"font_size"`
	// FontsDir is scanned for extra TTF files named <Family>-<Variant>.ttf.
	FontsDir  string `yaml:"fonts_dir"`
	UndoDepth int    `yaml:"undo_depth"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Env var names used as overrides.
const (
	EnvConfigFile = "NOTEBAR_CONFIG"
	EnvDataDir    = "NOTEBAR_DATA_DIR"
	EnvFontFamily = "NOTEBAR_FONT_FAMILY"
	EnvUndoDepth  = "NOTEBAR_UNDO_DEPTH"
	EnvLogLevel   = "NOTEBAR_LOG_LEVEL"
	EnvLogFormat  = "NOTEBAR_LOG_FORMAT"
	EnvLogSource  = "NOTEBAR_LOG_SOURCE"
	EnvLogFile    = "NOTEBAR_LOG_FILE"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Storage:       StorageConfig{DataDir: defaultDataDir()},
		Editor:        EditorConfig{FontFamily: "Go", FontSize: 14, UndoDepth: 100},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

func appDir() string {
	home := os.Getenv("HOME")
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "NoteBar")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "NoteBar")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "notebar")
		}
		return filepath.Join(home, ".config", "notebar")
	}
}

func defaultDataDir() string { return filepath.Join(appDir(), "data") }

// ConfigPath returns the per-user config file path. NOTEBAR_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	dir := appDir()
	if !filepath.IsAbs(dir) {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is ignored in favour of defaults.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Storage.DataDir); v != "" {
		dst.Storage.DataDir = expandHome(v)
	}
	if v := strings.TrimSpace(src.Editor.FontFamily); v != "" {
		dst.Editor.FontFamily = v
	}
	if src.Editor.FontSize > 0 {
		dst.Editor.FontSize = src.Editor.FontSize
	}
	if v := strings.TrimSpace(src.Editor.FontsDir); v != "" {
		dst.Editor.FontsDir = expandHome(v)
	}
	if src.Editor.UndoDepth > 0 {
		dst.Editor.UndoDepth = src.Editor.UndoDepth
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = expandHome(v)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = expandHome(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontFamily)); v != "" {
		cfg.Editor.FontFamily = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUndoDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.UndoDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = expandHome(v)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"storage.data_dir":   EnvDataDir,
		"editor.font_family": EnvFontFamily,
		"editor.undo_depth":  EnvUndoDepth,
		"logging.level":      EnvLogLevel,
		"logging.format":     EnvLogFormat,
		"logging.source":     EnvLogSource,
		"logging.file":       EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
