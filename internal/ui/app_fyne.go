//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	nbapp "notebar/internal/app"
	"notebar/internal/config"
	"notebar/internal/crash"
	"notebar/internal/domain"
	"notebar/internal/editor"
	"notebar/internal/export"
	applog "notebar/internal/log"
	"notebar/internal/richtext"
	"notebar/internal/storage"
)

// Run starts the tray app and blocks until Quit.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	a, err := nbapp.Open(cfg)
	if err != nil {
		return err
	}
	defer crash.Recover(&crash.Target{DataDir: a.DataDir, Library: a.Library})
	a.StartAutosave()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			l.Error("final save failed", slog.Any("err", err))
		}
	}()

	fyneApp := app.NewWithID("io.notebar")
	s := &shell{app: a, fyne: fyneApp, log: l, editors: map[string]*noteWindow{}}
	s.buildListWindow()

	if desk, ok := fyneApp.(desktop.App); ok {
		desk.SetSystemTrayMenu(fyne.NewMenu("NoteBar",
			fyne.NewMenuItem("Show Notes", s.showList),
			fyne.NewMenuItem("New Note", s.newNote),
			fyne.NewMenuItem("Settings", s.showSettings),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Quit", fyneApp.Quit),
		))
	} else {
		s.showList()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := storage.Watch(ctx, storage.NotesPath(a.DataDir), storage.DefaultDebounce, func() { fyne.Do(s.reload) }); err != nil {
		l.Warn("notes file not watched", slog.Any("err", err))
	}

	fyneApp.Run()
	l.Info("UI exited")
	return nil
}

type shell struct {
	app     *nbapp.App
	fyne    fyne.App
	log     *slog.Logger
	list    fyne.Window
	notes   []domain.Note
	listW   *widget.List
	header  *canvas.Rectangle
	editors map[string]*noteWindow
}

func (s *shell) buildListWindow() {
	w := s.fyne.NewWindow("NoteBar")
	prefs := s.fyne.Preferences()
	w.Resize(fyne.NewSize(float32(prefs.IntWithFallback("list.width", 360)), float32(prefs.IntWithFallback("list.height", 480))))
	s.notes = s.app.Library.List()
	s.listW = widget.NewList(
		func() int { return len(s.notes) },
		func() fyne.CanvasObject {
			return container.NewVBox(widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), widget.NewLabel(""))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(s.notes) {
				return
			}
			n := s.notes[id]
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(n.DisplayTitle())
			box.Objects[1].(*widget.Label).SetText(n.ModifiedAt.Local().Format("Jan 2 15:04") + "  " + n.Preview(60))
		},
	)
	s.listW.OnSelected = func(id widget.ListItemID) {
		if id < len(s.notes) {
			s.openNote(s.notes[id])
		}
		s.listW.UnselectAll()
	}
	s.header = canvas.NewRectangle(themeColor(s.app.Settings.ThemeColor))
	s.header.SetMinSize(fyne.NewSize(0, 6))
	top := container.NewVBox(s.header, container.NewHBox(
		widget.NewButton("New Note", s.newNote),
		widget.NewButton("Search", s.showSearch),
		widget.NewButton("Settings", s.showSettings),
	))
	w.SetContent(container.NewBorder(top, nil, nil, nil, s.listW))
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("list.width", int(sz.Width))
		prefs.SetInt("list.height", int(sz.Height))
		w.Hide()
	})
	s.app.OnChange(func([]domain.Note) { fyne.Do(s.refreshList) })
	s.list = w
}

func (s *shell) refreshList() {
	s.notes = s.app.Library.List()
	s.listW.Refresh()
}

func (s *shell) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.app.Reload(ctx); err != nil {
		s.log.Warn("reload failed", slog.Any("err", err))
		return
	}
	s.refreshList()
}

func (s *shell) showList() {
	s.list.Show()
	s.list.RequestFocus()
}

func (s *shell) newNote() {
	s.openNote(domain.NewNote(time.Now()))
}

func (s *shell) openNote(n domain.Note) {
	if nw, ok := s.editors[n.ID]; ok {
		nw.win.Show()
		nw.win.RequestFocus()
		return
	}
	nw := newNoteWindow(s, s.app.OpenSession(n))
	s.editors[n.ID] = nw
	nw.win.Show()
}

func (s *shell) showSettings() {
	names := make([]string, 0, 3)
	for _, c := range domain.ThemeColors() {
		names = append(names, string(c))
	}
	picker := widget.NewRadioGroup(names, nil)
	picker.SetSelected(string(s.app.Settings.ThemeColor.OrDefault()))
	d := dialog.NewForm("Settings", "Save", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Theme color", picker),
	}, func(ok bool) {
		if !ok {
			return
		}
		st := s.app.Settings
		st.ThemeColor = domain.ThemeColor(picker.Selected).OrDefault()
		if err := s.app.SaveSettings(st); err != nil {
			dialog.ShowError(err, s.list)
			return
		}
		s.header.FillColor = themeColor(st.ThemeColor)
		s.header.Refresh()
		for _, nw := range s.editors {
			nw.header.FillColor = s.header.FillColor
			nw.header.Refresh()
		}
	}, s.list)
	s.showList()
	d.Show()
}

func (s *shell) showSearch() {
	q := widget.NewEntry()
	q.SetPlaceHolder("words or prefixes")
	dialog.ShowForm("Search", "Search", "Cancel", []*widget.FormItem{widget.NewFormItem("Query", q)}, func(ok bool) {
		if !ok {
			return
		}
		query := q.Text
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := storage.RebuildIndex(ctx, s.app.DataDir, s.app.Library.List()); err != nil {
				fyne.Do(func() { dialog.ShowError(err, s.list) })
				return
			}
			res, err := storage.Search(ctx, s.app.DataDir, query, 50)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, s.list)
					return
				}
				s.showResults(res)
			})
		}()
	}, s.list)
}

func (s *shell) showResults(res []storage.SearchResult) {
	if len(res) == 0 {
		dialog.ShowInformation("Search", "No matches.", s.list)
		return
	}
	var d dialog.Dialog
	list := widget.NewList(
		func() int { return len(res) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(res[id].Title + ": " + res[id].Snippet)
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		if n, err := s.app.Library.Get(res[id].NoteID); err == nil {
			s.openNote(n)
		}
		d.Hide()
	}
	d = dialog.NewCustom("Search Results", "Close", container.NewGridWrap(fyne.NewSize(420, 300), list), s.list)
	d.Show()
}

// noteWindow is the editor for one session.
type noteWindow struct {
	shell   *shell
	sess    *editor.Session
	ad      *editor.Adapter
	bridge  *EntryBridge
	win     fyne.Window
	title   *widget.Entry
	body    *noteEntry
	preview *widget.RichText
	header  *canvas.Rectangle
	bold    *widget.Button
	italic  *widget.Button
	list    *widget.Button
	status  *widget.Label
	syncing bool
}

func newNoteWindow(s *shell, sess *editor.Session) *noteWindow {
	nw := &noteWindow{shell: s, sess: sess, ad: sess.Adapter()}
	nw.bridge = NewEntryBridge(nw.ad)
	nw.win = s.fyne.NewWindow(windowTitle(sess.Title()))
	nw.win.Resize(fyne.NewSize(520, 420))

	nw.title = widget.NewEntry()
	nw.title.SetPlaceHolder("Title")
	nw.title.SetText(sess.Title())
	nw.title.OnChanged = func(t string) {
		sess.SetTitle(t)
		nw.win.SetTitle(windowTitle(t))
	}

	nw.body = newNoteEntry(nw.shortcut)
	nw.show(nw.ad.PlainText(), nw.ad.View().Selection().End)
	nw.body.OnChanged = func(text string) {
		if nw.syncing {
			return
		}
		got, caret := nw.bridge.Sync(text)
		if got != text {
			nw.show(got, caret)
		}
		nw.refreshChrome()
	}

	nw.bold = widget.NewButton("B", func() { nw.toggle(richtext.Bold) })
	nw.italic = widget.NewButton("I", func() { nw.toggle(richtext.Italic) })
	nw.list = widget.NewButton("• List", nw.toggleList)
	nw.preview = widget.NewRichText()
	nw.preview.Wrapping = fyne.TextWrapWord
	nw.status = widget.NewLabel("")
	nw.header = canvas.NewRectangle(s.header.FillColor)
	nw.header.SetMinSize(fyne.NewSize(0, 6))

	toolbar := container.NewHBox(nw.bold, nw.italic, nw.list,
		widget.NewButton("Undo", nw.undo),
		widget.NewButton("Redo", nw.redo),
	)
	actions := container.NewHBox(
		widget.NewButton("Save", nw.save),
		widget.NewButton("Delete", nw.confirmDelete),
		widget.NewButton("Copy", func() { nw.win.Clipboard().SetContent(nw.ad.PlainText()) }),
		widget.NewButton("Export PDF", nw.exportPDF),
		nw.status,
	)
	split := container.NewVSplit(nw.body, container.NewVScroll(nw.preview))
	split.Offset = 0.65
	nw.win.SetContent(container.NewBorder(
		container.NewVBox(nw.header, nw.title, toolbar), actions, nil, nil, split))
	nw.win.SetCloseIntercept(nw.close)
	nw.refreshChrome()
	nw.win.Canvas().Focus(nw.body)
	return nw
}

func windowTitle(t string) string {
	if t == "" {
		return "New Note"
	}
	return t
}

// shortcut handles editor key bindings before the entry sees them.
func (nw *noteWindow) shortcut(sc *desktop.CustomShortcut) bool {
	if sc.Modifier != fyne.KeyModifierControl && sc.Modifier != fyne.KeyModifierSuper {
		return false
	}
	switch sc.KeyName {
	case fyne.KeyB:
		nw.toggle(richtext.Bold)
	case fyne.KeyI:
		nw.toggle(richtext.Italic)
	case fyne.KeyL:
		nw.toggleList()
	case fyne.KeyZ:
		nw.undo()
	case fyne.KeyY:
		nw.redo()
	case fyne.KeyS:
		nw.save()
	default:
		return false
	}
	return true
}

// syncSelection copies the entry's selection into the editor view.
func (nw *noteWindow) syncSelection() {
	text := nw.ad.PlainText()
	cursor := Offset(text, nw.body.CursorRow, nw.body.CursorColumn)
	nw.ad.View().SetSelection(SelectionRange(text, cursor, nw.body.SelectedText()))
}

func (nw *noteWindow) toggle(t richtext.Trait) {
	nw.syncSelection()
	nw.ad.ToggleTrait(t)
	nw.refreshChrome()
}

func (nw *noteWindow) toggleList() {
	nw.syncSelection()
	nw.ad.ToggleList()
	nw.show(nw.ad.PlainText(), nw.ad.View().Selection().End)
	nw.refreshChrome()
}

func (nw *noteWindow) undo() {
	if nw.ad.View().Undo() {
		nw.show(nw.ad.PlainText(), nw.ad.View().Selection().End)
	}
	nw.refreshChrome()
}

func (nw *noteWindow) redo() {
	if nw.ad.View().Redo() {
		nw.show(nw.ad.PlainText(), nw.ad.View().Selection().End)
	}
	nw.refreshChrome()
}

// show puts text into the entry without feeding it back to the adapter.
func (nw *noteWindow) show(text string, caret int) {
	nw.syncing = true
	defer func() { nw.syncing = false }()
	if nw.body.Text != text {
		nw.body.SetText(text)
	}
	nw.body.CursorRow, nw.body.CursorColumn = RowCol(text, caret)
	nw.body.Refresh()
}

func (nw *noteWindow) refreshChrome() {
	st := nw.ad.State()
	mark := func(b *widget.Button, on bool) {
		if on {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}
	mark(nw.bold, st.Bold)
	mark(nw.italic, st.Italic)
	mark(nw.list, st.List)
	nw.preview.Segments = segments(nw.ad.Document())
	nw.preview.Refresh()
	face := "system font"
	if v := nw.ad.Face(); v != nil {
		face = v.Name()
	}
	dirty := ""
	if nw.sess.Dirty() {
		dirty = "Edited · "
	}
	nw.status.SetText(dirty + face)
}

func (nw *noteWindow) save() {
	if _, err := nw.sess.Save(time.Now()); err != nil {
		dialog.ShowError(err, nw.win)
		return
	}
	nw.dispose()
}

func (nw *noteWindow) confirmDelete() {
	dialog.ShowConfirm("Delete Note", fmt.Sprintf("Delete %q?", windowTitle(nw.sess.Title())), func(ok bool) {
		if !ok {
			return
		}
		if err := nw.sess.Delete(); err != nil {
			dialog.ShowError(err, nw.win)
			return
		}
		nw.dispose()
	}, nw.win)
}

func (nw *noteWindow) close() {
	if !nw.sess.Dirty() {
		nw.sess.Discard()
		nw.dispose()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Save changes to this note?", func(ok bool) {
		if ok {
			nw.save()
			return
		}
		nw.sess.Discard()
		nw.dispose()
	}, nw.win)
}

func (nw *noteWindow) dispose() {
	delete(nw.shell.editors, nw.sess.ID())
	nw.win.Close()
}

func (nw *noteWindow) exportPDF() {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, nw.win)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()
		cfg := nw.shell.app.Config.Editor
		n := nw.sess.Snapshot(time.Now())
		if err := export.WriteNotePDF(uc, n, nw.shell.app.Catalog, export.PDFOptions{FontFamily: cfg.FontFamily, FontSize: cfg.FontSize}); err != nil {
			dialog.ShowError(err, nw.win)
			return
		}
		dialog.ShowInformation("Export PDF", "Exported to "+uc.URI().Path(), nw.win)
	}, nw.win)
	save.SetFileName(windowTitle(nw.sess.Title()) + ".pdf")
	save.Show()
}

// segments maps styled runs onto inline rich-text segments.
func segments(d richtext.Document) []widget.RichTextSegment {
	runs := d.Runs()
	out := make([]widget.RichTextSegment, 0, len(runs))
	for _, r := range runs {
		out = append(out, &widget.TextSegment{
			Text: r.Text,
			Style: widget.RichTextStyle{
				Inline:    true,
				TextStyle: fyne.TextStyle{Bold: r.Style.Bold, Italic: r.Style.Italic},
			},
		})
	}
	return out
}

func themeColor(c domain.ThemeColor) color.Color {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// noteEntry is a multi-line entry whose control shortcuts go to the editor
// first.
type noteEntry struct {
	widget.Entry
	onShortcut func(*desktop.CustomShortcut) bool
}

func newNoteEntry(fn func(*desktop.CustomShortcut) bool) *noteEntry {
	e := &noteEntry{onShortcut: fn}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.ExtendBaseWidget(e)
	return e
}

func (e *noteEntry) TypedShortcut(sc fyne.Shortcut) {
	if cs, ok := sc.(*desktop.CustomShortcut); ok && e.onShortcut(cs) {
		return
	}
	switch sc.(type) {
	case *fyne.ShortcutUndo, *fyne.ShortcutRedo:
		// entry-local history would bypass the editor
		key := fyne.KeyZ
		if _, redo := sc.(*fyne.ShortcutRedo); redo {
			key = fyne.KeyY
		}
		e.onShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierControl})
		return
	}
	e.Entry.TypedShortcut(sc)
}
