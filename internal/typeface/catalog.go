/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package typeface keeps the fonts available to the editor and exporters and
// resolves a requested family/trait combination to the nearest loaded variant.
package typeface

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is used when a requested family is not loaded.
const DefaultFamily = "Go"

// Spec names a family and the traits wanted from it.
type Spec struct {
	Family string
	Bold   bool
	Italic bool
}

// Variant is one loaded font file.
type Variant struct {
	Family string
	Bold   bool
	Italic bool
	TTF    []byte
	font   *opentype.Font
}

// Name returns a display name such as "Go Bold Italic".
func (v *Variant) Name() string {
	parts := []string{v.Family}
	if v.Bold {
		parts = append(parts, "Bold")
	}
	if v.Italic {
		parts = append(parts, "Italic")
	}
	return strings.Join(parts, " ")
}

type variantKey struct {
	family string
	bold   bool
	italic bool
}

// Catalog maps families to their loaded variants. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	variants map[variantKey]*Variant
}

func NewCatalog() *Catalog { return &Catalog{variants: make(map[variantKey]*Variant)} }

// Builtin returns a catalog with the Go font families. "Go Smallcaps" ships
// without bold cuts, so bold requests against it fall back.
func Builtin() (*Catalog, error) {
	c := NewCatalog()
	builtin := []struct {
		family       string
		bold, italic bool
		ttf          []byte
	}{
		{"Go", false, false, goregular.TTF},
		{"Go", true, false, gobold.TTF},
		{"Go", false, true, goitalic.TTF},
		{"Go", true, true, gobolditalic.TTF},
		{"Go Mono", false, false, gomono.TTF},
		{"Go Mono", true, false, gomonobold.TTF},
		{"Go Mono", false, true, gomonoitalic.TTF},
		{"Go Mono", true, true, gomonobolditalic.TTF},
		{"Go Smallcaps", false, false, gosmallcaps.TTF},
		{"Go Smallcaps", false, true, gosmallcapsitalic.TTF},
	}
	for _, b := range builtin {
		if err := c.LoadTTF(b.family, b.bold, b.italic, b.ttf); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadTTF validates data as an OpenType/TrueType font and registers it.
func (c *Catalog) LoadTTF(family string, bold, italic bool, data []byte) error {
	family = strings.TrimSpace(family)
	if family == "" {
		return fmt.Errorf("font family is required")
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variants[variantKey{family, bold, italic}] = &Variant{Family: family, Bold: bold, Italic: italic, TTF: data, font: f}
	return nil
}

// LoadDir registers every "<Family>-<Regular|Bold|Italic|BoldItalic>.ttf" in
// dir. Files that do not follow the pattern or fail to parse are skipped and
// reported in the returned error list.
func (c *Catalog) LoadDir(dir string) (loaded int, errs []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, []error{err}
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isFontFile(name) {
			continue
		}
		family, bold, italic, err := parseFontName(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.LoadTTF(family, bold, italic, data); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	return loaded, errs
}

func isFontFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".ttf" || ext == ".otf"
}

// parseFontName splits "<Family>-<Regular|Bold|Italic|BoldItalic>.ttf".
func parseFontName(name string) (family string, bold, italic bool, err error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	idx := strings.LastIndex(base, "-")
	if idx <= 0 {
		return "", false, false, fmt.Errorf("%s: expected <Family>-<Variant>%s", name, ext)
	}
	switch strings.ToLower(base[idx+1:]) {
	case "regular":
	case "bold":
		bold = true
	case "italic":
		italic = true
	case "bolditalic":
		bold, italic = true, true
	default:
		return "", false, false, fmt.Errorf("%s: unknown variant %q", name, base[idx+1:])
	}
	return base[:idx], bold, italic, nil
}

// Families lists loaded family names in sorted order.
func (c *Catalog) Families() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range c.variants {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve returns the variant closest to s and whether it matches exactly.
// An unknown family resolves within DefaultFamily. Within a family, losing
// bold is preferred over losing italic. A nil result means the catalog is empty.
func (c *Catalog) Resolve(s Spec) (*Variant, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.variants[variantKey{s.Family, s.Bold, s.Italic}]; ok {
		return v, true
	}
	family := s.Family
	if !c.hasFamilyLocked(family) {
		family = DefaultFamily
		if !c.hasFamilyLocked(family) {
			family = ""
		}
	}
	var best *Variant
	bestScore := 0
	for k, v := range c.variants {
		if family != "" && k.family != family {
			continue
		}
		score := 0
		if k.italic != s.Italic {
			score += 2
		}
		if k.bold != s.Bold {
			score++
		}
		if best == nil || score < bestScore || (score == bestScore && v.Name() < best.Name()) {
			best, bestScore = v, score
		}
	}
	return best, false
}

func (c *Catalog) hasFamilyLocked(family string) bool {
	for k := range c.variants {
		if k.family == family {
			return true
		}
	}
	return false
}

// LineHeight returns the line height in points for s at sizePt, falling back
// to 1.2 × size when no font is available.
func (c *Catalog) LineHeight(s Spec, sizePt float64) float64 {
	if sizePt <= 0 {
		sizePt = 12
	}
	v, _ := c.Resolve(s)
	if v == nil || v.font == nil {
		return sizePt * 1.2
	}
	face, err := opentype.NewFace(v.font, &opentype.FaceOptions{Size: sizePt, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return sizePt * 1.2
	}
	defer face.Close()
	return float64(face.Metrics().Height) / 64
}
