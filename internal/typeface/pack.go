/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package typeface

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/font/opentype"

	applog "notebar/internal/log"
)

// PackManifest is the name of the text file at the root of a font pack.
const PackManifest = "fontpack.manifest.txt"

// maxPackFont bounds a single font read from a pack.
const maxPackFont = 32 << 20

// ExportPack zips every font file in fontsDir into destZip, flat, with a
// manifest. A missing fontsDir yields a pack holding only the manifest.
func ExportPack(fontsDir, destZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("typeface"), "export-pack").With(slog.String("dir", fontsDir))
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("destination zip is required")
	}
	var names []string
	if entries, err := os.ReadDir(fontsDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && isFontFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("read fonts dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZip)
	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("NoteBar Font Pack\nCreated: %s\nFonts: %d\n\nFiles are named <Family>-<Regular|Bold|Italic|BoldItalic>.ttf\n",
		time.Now().Format(time.RFC3339), len(names))
	w, err := zw.Create(PackManifest)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}
	for _, name := range names {
		if err := addZipFile(zw, name, filepath.Join(fontsDir, name)); err != nil {
			l.Error("zip build failed", slog.String("file", name), slog.Any("err", err))
			return 0, fmt.Errorf("build zip: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("font pack exported", slog.Int("fonts", len(names)), slog.String("zip", destZip))
	return len(names), nil
}

func addZipFile(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}

// InstallPack extracts the fonts of packZip into fontsDir. Only entries named
// like "<Family>-<Variant>.ttf" that parse as fonts are installed; directory
// prefixes inside the archive are ignored. Existing files are kept and not
// counted. It returns the number of fonts written and the per-entry problems.
func InstallPack(fontsDir, packZip string) (int, []error) {
	l := applog.WithOperation(applog.WithComponent("typeface"), "install-pack").With(slog.String("dir", fontsDir))
	if strings.TrimSpace(fontsDir) == "" {
		return 0, []error{errors.New("fonts dir is required")}
	}
	if err := os.MkdirAll(fontsDir, 0o755); err != nil {
		return 0, []error{fmt.Errorf("ensure fonts dir: %w", err)}
	}
	r, err := zip.OpenReader(packZip)
	if err != nil {
		return 0, []error{fmt.Errorf("open pack: %w", err)}
	}
	defer func() { _ = r.Close() }()

	installed := 0
	var errs []error
	for _, f := range r.File {
		name := path.Base(f.Name)
		if f.FileInfo().IsDir() || name == PackManifest || !isFontFile(name) {
			continue
		}
		if _, _, _, err := parseFontName(name); err != nil {
			errs = append(errs, err)
			continue
		}
		target := filepath.Join(fontsDir, name)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing font", slog.String("path", target))
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if _, err := opentype.Parse(data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			errs = append(errs, err)
			continue
		}
		installed++
	}
	l.Info("font pack installed", slog.Int("fonts", installed), slog.Int("skipped", len(errs)))
	return installed, errs
}

func readZipEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxPackFont {
		return nil, fmt.Errorf("font larger than %d bytes", maxPackFont)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(io.LimitReader(rc, maxPackFont+1))
}
