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

import "github.com/google/uuid"

// ThemeColor is one of the fixed header palette entries.
type ThemeColor string

const (
	ThemeYellow ThemeColor = "yellow"
	ThemeWhite  ThemeColor = "white"
	ThemeGray   ThemeColor = "gray"
)

// ThemeColors lists the palette in picker order.
func ThemeColors() []ThemeColor { return []ThemeColor{ThemeYellow, ThemeWhite, ThemeGray} }

// Valid reports whether c is part of the palette.
func (c ThemeColor) Valid() bool {
	switch c {
	case ThemeYellow, ThemeWhite, ThemeGray:
		return true
	}
	return false
}

// OrDefault maps unknown values to yellow.
func (c ThemeColor) OrDefault() ThemeColor {
	if c.Valid() {
		return c
	}
	return ThemeYellow
}

// RGBA returns the header colour for the theme.
func (c ThemeColor) RGBA() (r, g, b, a uint8) {
	switch c.OrDefault() {
	case ThemeWhite:
		return 0xff, 0xff, 0xff, 0xff
	case ThemeGray:
		return 0x8e, 0x8e, 0x93, 0xff
	default:
		return 0xff, 0xcc, 0x00, 0xff
	}
}

// HeaderTextIsDark reports whether header text must be dark for contrast.
func (c ThemeColor) HeaderTextIsDark() bool { return c.OrDefault() == ThemeWhite }

// Settings are user preferences persisted apart from the notes.
type Settings struct {
	ID         string     `json:"id"`
	ThemeColor ThemeColor `json:"themeColor"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{ID: uuid.NewString(), ThemeColor: ThemeYellow}
}
