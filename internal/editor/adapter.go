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

import (
	"log/slog"

	applog "notebar/internal/log"
	"notebar/internal/richtext"
	"notebar/internal/typeface"
	"notebar/internal/undo"
)

// AdapterOptions configures a new Adapter.
type AdapterOptions struct {
	// Key identifies the session in History; usually the note id.
	Key     string
	History *undo.Manager
	// Catalog resolves font variants for the typing style. Optional.
	Catalog *typeface.Catalog
	Encode  richtext.EncodeOptions
	// State seeds the toggles. Seeding List does not touch the buffer.
	State FormattingState
	// OnDirty is called after every user-visible content change.
	OnDirty func()
	Logger  *slog.Logger
}

// Adapter keeps a TextView, its plain-text mirror and its RTF blob in step
// and applies the formatting toggles to the view.
type Adapter struct {
	view      *TextView
	state     FormattingState
	plain     string
	rich      []byte
	encodeErr error
	dirty     bool

	catalog *typeface.Catalog
	encode  richtext.EncodeOptions
	onDirty func()
	log     *slog.Logger

	// updating counts nested sections in which the adapter itself drives the
	// view; content notifications raised inside are folded into one refresh.
	updating int
	pending  bool
}

// NewAdapter loads rich into a new view. An empty or undecodable blob falls
// back to an unstyled copy of plain; this never fails.
func NewAdapter(rich []byte, plain string, opts AdapterOptions) *Adapter {
	a := &Adapter{
		view:    NewTextView(opts.History, opts.Key),
		state:   opts.State,
		rich:    append([]byte(nil), rich...),
		plain:   plain,
		catalog: opts.Catalog,
		encode:  opts.Encode,
		log:     opts.Logger,
	}
	if a.log == nil {
		a.log = applog.WithComponent("editor")
	}
	a.view.SetDelegate(a)
	a.view.SetTypingStyle(a.state.Style())

	doc := richtext.Plain(plain)
	if len(rich) > 0 {
		decoded, err := richtext.Decode(rich)
		switch {
		case err != nil:
			a.log.Warn("rich text unreadable, using plain text", "note", opts.Key, "err", err)
		case decoded.IsEmpty() && plain != "":
			a.log.Warn("rich text empty, using plain text", "note", opts.Key)
		default:
			doc = decoded
		}
	}
	a.update(func() { a.view.SetDocument(doc) })
	a.dirty = false
	a.onDirty = opts.OnDirty
	return a
}

func (a *Adapter) View() *TextView             { return a.view }
func (a *Adapter) State() FormattingState      { return a.state }
func (a *Adapter) PlainText() string           { return a.plain }
func (a *Adapter) Document() richtext.Document { return a.view.Document() }

// RichText returns the last successfully encoded blob.
func (a *Adapter) RichText() []byte { return append([]byte(nil), a.rich...) }

// EncodeErr returns the error of the most recent encode, if it failed.
func (a *Adapter) EncodeErr() error { return a.encodeErr }

// Dirty reports whether the content changed since the adapter was created.
func (a *Adapter) Dirty() bool { return a.dirty }

// OnShouldInsertText turns a bare newline into a bulleted line while list
// mode is on.
func (a *Adapter) OnShouldInsertText(_ richtext.Range, replacement string) Decision {
	if a.state.List && replacement == "\n" {
		return Decision{Verdict: Substitute, Text: "\n" + BulletPrefix, Label: LabelBullet}
	}
	return Decision{Verdict: Allow}
}

// OnContentChanged refreshes the mirror and blob, unless the adapter is in
// the middle of its own update, in which case the refresh is deferred.
func (a *Adapter) OnContentChanged() {
	if a.updating > 0 {
		a.pending = true
		return
	}
	a.refresh()
}

func (a *Adapter) update(fn func()) {
	a.updating++
	fn()
	a.updating--
	if a.updating == 0 && a.pending {
		a.pending = false
		a.refresh()
	}
}

func (a *Adapter) refresh() {
	a.sync()
	a.dirty = true
	if a.onDirty == nil {
		return
	}
	// Changes the callback makes are picked up here without notifying again.
	a.updating++
	a.onDirty()
	a.updating--
	if a.pending {
		a.pending = false
		a.sync()
	}
}

// sync copies the buffer into the plain mirror and the blob. On an encode
// failure the previous blob stays and encodeErr records why.
func (a *Adapter) sync() {
	a.plain = a.view.Text()
	data, err := richtext.EncodeWith(a.view.Document(), a.encode)
	if err != nil {
		a.encodeErr = err
		a.log.Error("encode rich text", "err", err)
		return
	}
	a.rich, a.encodeErr = data, nil
}

// SetTrait switches bold or italic. A non-empty selection is restyled as one
// undo step; the typing style follows the toggle either way.
func (a *Adapter) SetTrait(t richtext.Trait, on bool) {
	plan := NextStyling(StylingInput{
		State:     a.state,
		Selection: a.view.Selection(),
		Typing:    a.view.TypingStyle(),
		Trait:     t,
		On:        on,
	})
	a.state = plan.State
	a.update(func() {
		if plan.Restyle {
			a.view.Restyle(plan.Range, plan.Apply, styleLabel(t, on))
		}
		a.view.SetTypingStyle(plan.Typing)
	})
	a.resolveFont(plan.Typing)
}

// ToggleTrait flips t; keyboard shortcuts and buttons both end up here.
func (a *Adapter) ToggleTrait(t richtext.Trait) { a.SetTrait(t, !a.state.Has(t)) }

func (a *Adapter) SetBold(on bool)   { a.SetTrait(richtext.Bold, on) }
func (a *Adapter) SetItalic(on bool) { a.SetTrait(richtext.Italic, on) }

// SetList switches list mode. Turning it on bullets the caret line; turning
// it off strips every bullet prefix. Setting the current value is a no-op.
func (a *Adapter) SetList(on bool) {
	if a.state.List == on {
		return
	}
	a.state.List = on
	doc, sel := a.view.Document(), a.view.Selection()
	var changed bool
	if on {
		doc, sel, changed = listOn(doc, sel, a.view.TypingStyle())
	} else {
		doc, sel, changed = listOff(doc, sel)
	}
	if !changed {
		return
	}
	a.update(func() { a.view.Transform(doc, sel, LabelToggleList) })
}

func (a *Adapter) ToggleList() { a.SetList(!a.state.List) }

// SetState applies every toggle that differs from the current state.
func (a *Adapter) SetState(s FormattingState) {
	if s.Bold != a.state.Bold {
		a.SetBold(s.Bold)
	}
	if s.Italic != a.state.Italic {
		a.SetItalic(s.Italic)
	}
	if s.List != a.state.List {
		a.SetList(s.List)
	}
}

// resolveFont looks up the face the typing style will render with. A missing
// variant is substituted silently.
func (a *Adapter) resolveFont(st richtext.Style) *typeface.Variant {
	if a.catalog == nil {
		return nil
	}
	spec := typeface.Spec{Family: a.encode.FontFamily, Bold: st.Bold, Italic: st.Italic}
	v, exact := a.catalog.Resolve(spec)
	if !exact && v != nil {
		a.log.Debug("font variant substituted", "family", spec.Family, "bold", spec.Bold, "italic", spec.Italic, "using", v.Name())
	}
	return v
}

// Face returns the font variant used for the current typing style.
func (a *Adapter) Face() *typeface.Variant { return a.resolveFont(a.view.TypingStyle()) }

func styleLabel(t richtext.Trait, on bool) string {
	name := "Bold"
	if t == richtext.Italic {
		name = "Italic"
	}
	if !on {
		return "Remove " + name
	}
	return name
}
