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

// StylingInput is everything NextStyling looks at.
type StylingInput struct {
	State     FormattingState
	Selection richtext.Range
	Typing    richtext.Style
	Trait     richtext.Trait
	On        bool
}

// StylingPlan describes the mutations a trait toggle implies.
type StylingPlan struct {
	State FormattingState
	// Restyle is set when Range is a non-empty selection that must gain or
	// lose Trait.
	Restyle bool
	Range   richtext.Range
	Trait   richtext.Trait
	On      bool
	Typing  richtext.Style
}

// Apply switches the planned trait on a single style, leaving others alone.
func (p StylingPlan) Apply(st richtext.Style) richtext.Style { return st.With(p.Trait, p.On) }

// NextStyling computes the effect of setting trait to on. A non-empty
// selection is restyled; the typing style always follows the toggle so that
// text typed afterwards matches the button state.
func NextStyling(in StylingInput) StylingPlan {
	plan := StylingPlan{
		State:  in.State.With(in.Trait, in.On),
		Trait:  in.Trait,
		On:     in.On,
		Typing: in.Typing.With(in.Trait, in.On),
	}
	if sel := in.Selection.Ordered(); !sel.Empty() {
		plan.Restyle = true
		plan.Range = sel
	}
	return plan
}
