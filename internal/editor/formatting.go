/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import "notebar/internal/richtext"

// FormattingState holds the three live toggles of an editing session.
type FormattingState struct {
	Bold   bool
	Italic bool
	List   bool
}

// Style returns the character style the toggles describe.
func (f FormattingState) Style() richtext.Style {
	return richtext.Style{Bold: f.Bold, Italic: f.Italic}
}

func (f FormattingState) Has(t richtext.Trait) bool { return f.Style().Has(t) }

// With returns f with trait t switched on or off.
func (f FormattingState) With(t richtext.Trait, on bool) FormattingState {
	st := f.Style().With(t, on)
	f.Bold, f.Italic = st.Bold, st.Italic
	return f
}
