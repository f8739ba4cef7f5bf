/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"notebar/internal/app"
	"notebar/internal/config"
	"notebar/internal/crash"
	"notebar/internal/domain"
	"notebar/internal/export"
	applog "notebar/internal/log"
	"notebar/internal/storage"
	"notebar/internal/typeface"
	"notebar/internal/ui"
	"notebar/internal/version"
)

// writeClipboard is swapped out in tests; the real clipboard needs a desktop session.
var writeClipboard = clipboard.WriteAll

func usage(w io.Writer) {
	fmt.Fprintln(w, "NoteBar: tray notes")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  notebar version|-v|--version         Show version")
	fmt.Fprintln(w, "  notebar list                         List notes, newest first")
	fmt.Fprintln(w, "  notebar new <title> [text]           Create a note (text starting with \"• \" is a list)")
	fmt.Fprintln(w, "  notebar show [--rtf] <id>            Print a note's text (or its RTF)")
	fmt.Fprintln(w, "  notebar rm <id>                      Delete a note")
	fmt.Fprintln(w, "  notebar search <query>               Full-text search")
	fmt.Fprintln(w, "  notebar export <id> <out.pdf>        Export a note to PDF")
	fmt.Fprintln(w, "  notebar copy <id>                    Copy a note's text to the clipboard")
	fmt.Fprintln(w, "  notebar fonts                        List font families")
	fmt.Fprintln(w, "  notebar fonts install <pack.zip>     Install fonts from a font pack")
	fmt.Fprintln(w, "  notebar fonts export <out.zip>       Zip the installed fonts into a pack")
	fmt.Fprintln(w, "  notebar ui                           Launch the tray app (build with -tags fyne)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be shortened to any unique prefix.")
}

func main() {
	target := &crash.Target{}
	defer crash.Recover(target)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, target))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, target *crash.Target) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	applog.Init(app.LoggingOptions(cfg))
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "NoteBar")
		fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "ui":
		if err := ui.Run(cfg); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		return 0
	}

	a, err := app.Open(cfg)
	if err != nil {
		l.Error("open data dir failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	target.DataDir, target.Library = a.DataDir, a.Library

	fail := func(err error) int {
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	need := func(n int, what string) bool {
		if len(args) < n+1 {
			fmt.Fprintf(stderr, "%s requires %s\n", args[0], what)
			usage(stderr)
			return false
		}
		return true
	}

	switch args[0] {
	case "list":
		for _, n := range a.Library.List() {
			fmt.Fprintf(stdout, "%s  %s  %s\n", shortID(n.ID), n.ModifiedAt.Local().Format("2006-01-02 15:04"), n.DisplayTitle())
		}
		return 0
	case "new":
		if !need(1, "<title>") {
			return 2
		}
		n, err := createNote(a, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return fail(err)
		}
		if err := a.SaveNow(); err != nil {
			return fail(err)
		}
		fmt.Fprintln(stdout, n.ID)
		return 0
	case "show":
		rtf := len(args) > 1 && args[1] == "--rtf"
		if rtf {
			args = append(args[:1:1], args[2:]...)
		}
		if !need(1, "<id>") {
			return 2
		}
		n, err := a.Find(args[1])
		if err != nil {
			return fail(err)
		}
		if rtf {
			_, _ = stdout.Write(n.RichText)
			fmt.Fprintln(stdout)
			return 0
		}
		fmt.Fprintf(stdout, "# %s\n\n%s\n", n.DisplayTitle(), n.PlainText)
		return 0
	case "rm":
		if !need(1, "<id>") {
			return 2
		}
		n, err := a.Find(args[1])
		if err != nil {
			return fail(err)
		}
		if err := a.OpenSession(n).Delete(); err != nil {
			return fail(err)
		}
		if err := a.SaveNow(); err != nil {
			return fail(err)
		}
		fmt.Fprintln(stdout, "Deleted", n.DisplayTitle())
		return 0
	case "search":
		if !need(1, "<query>") {
			return 2
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := storage.RebuildIndex(ctx, a.DataDir, a.Library.List()); err != nil {
			return fail(err)
		}
		res, err := storage.Search(ctx, a.DataDir, strings.Join(args[1:], " "), 20)
		if err != nil {
			return fail(err)
		}
		for _, r := range res {
			fmt.Fprintf(stdout, "%s  %s  %s\n", shortID(r.NoteID), r.Title, r.Snippet)
		}
		if len(res) == 0 {
			fmt.Fprintln(stdout, "No matches.")
		}
		return 0
	case "export":
		if !need(2, "<id> and <out.pdf>") {
			return 2
		}
		n, err := a.Find(args[1])
		if err != nil {
			return fail(err)
		}
		out, err := filepath.Abs(args[2])
		if err != nil {
			return fail(err)
		}
		opts := export.PDFOptions{FontFamily: cfg.Editor.FontFamily, FontSize: cfg.Editor.FontSize}
		if err := export.NotePDF(n, a.Catalog, out, opts); err != nil {
			return fail(err)
		}
		fmt.Fprintln(stdout, "Exported", out)
		return 0
	case "copy":
		if !need(1, "<id>") {
			return 2
		}
		n, err := a.Find(args[1])
		if err != nil {
			return fail(err)
		}
		if err := writeClipboard(n.PlainText); err != nil {
			return fail(fmt.Errorf("clipboard: %w", err))
		}
		fmt.Fprintln(stdout, "Copied", n.DisplayTitle())
		return 0
	case "fonts":
		return runFonts(a, args[1:], stdout, stderr, fail)
	}
	fmt.Fprintf(stderr, "unknown command %q\n", args[0])
	usage(stderr)
	return 2
}

func runFonts(a *app.App, args []string, stdout, stderr io.Writer, fail func(error) int) int {
	if len(args) == 0 {
		for _, fam := range a.Catalog.Families() {
			fmt.Fprintln(stdout, fam)
		}
		return 0
	}
	if len(args) < 2 {
		fmt.Fprintf(stderr, "fonts %s requires a zip path\n", args[0])
		return 2
	}
	switch args[0] {
	case "install":
		n, errs := typeface.InstallPack(a.FontsDir(), args[1])
		for _, err := range errs {
			fmt.Fprintln(stderr, "skipped:", err)
		}
		if n == 0 && len(errs) > 0 {
			return fail(errs[0])
		}
		fmt.Fprintf(stdout, "Installed %d fonts into %s\n", n, a.FontsDir())
		return 0
	case "export":
		n, err := typeface.ExportPack(a.FontsDir(), args[1])
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Exported %d fonts to %s\n", n, args[1])
		return 0
	}
	fmt.Fprintf(stderr, "unknown fonts command %q\n", args[0])
	return 2
}

// createNote types text into a fresh session the way the editor would.
// Text that starts with a bullet is typed in list mode, so every newline
// gets its own bullet.
func createNote(a *app.App, title, text string) (domain.Note, error) {
	s := a.OpenSession(domain.NewNote(time.Now()))
	s.SetTitle(title)
	ad := s.Adapter()
	text = strings.ReplaceAll(text, `\n`, "\n")
	list := strings.HasPrefix(text, "• ")
	if list {
		ad.SetList(true)
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			ad.View().Type("\n")
		}
		if list {
			line = strings.TrimPrefix(line, "• ")
		}
		if line != "" {
			ad.View().Type(line)
		}
	}
	return s.Save(time.Now())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
