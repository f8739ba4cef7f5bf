/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"notebar/internal/domain"
)

func TestSearchFindsNotes(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, dir, sampleNotes()); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	res, err := Search(ctx, dir, "mil", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].NoteID != "a" || res[0].Title != "Groceries" {
		t.Fatalf("Search(mil) = %+v", res)
	}
	all, err := Search(ctx, dir, "", 10)
	if err != nil || len(all) != 2 || all[0].NoteID != "b" {
		t.Fatalf("Search(\"\") = %+v, %v", all, err)
	}
	// untitled notes are indexed under their first line
	res, err = Search(ctx, dir, `call "`, 10)
	if err != nil || len(res) != 1 || res[0].Title != "call mom" {
		t.Fatalf("Search(call) = %+v, %v", res, err)
	}
}

func TestEmptySearchOrdersByTimeAcrossZonesAndFractions(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	berlin := time.FixedZone("CEST", 2*60*60)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	notes := []domain.Note{
		// 12:00:00.5 CEST is 10:00:00.5 UTC
		{ID: "half", PlainText: "half", ModifiedAt: base.Add(500 * time.Millisecond).In(berlin)},
		{ID: "whole", PlainText: "whole", ModifiedAt: base},
		{ID: "later", PlainText: "later", ModifiedAt: base.Add(time.Second + 120*time.Millisecond)},
		{ID: "earlier", PlainText: "earlier", ModifiedAt: base.Add(-time.Minute).In(berlin)},
	}
	if err := RebuildIndex(ctx, dir, notes); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	res, err := Search(ctx, dir, "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"later", "half", "whole", "earlier"}
	if len(res) != len(want) {
		t.Fatalf("got %d results, want %d", len(res), len(want))
	}
	for i, id := range want {
		if res[i].NoteID != id {
			t.Fatalf("result %d = %s, want %s (all: %+v)", i, res[i].NoteID, id, res)
		}
	}
	if !res[1].ModifiedAt.Equal(notes[0].ModifiedAt) {
		t.Fatalf("modified time = %v, want %v", res[1].ModifiedAt, notes[0].ModifiedAt)
	}
}

func TestRebuildReplacesContent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if err := RebuildIndex(ctx, dir, sampleNotes()); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	if err := RebuildIndex(ctx, dir, sampleNotes()[1:]); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	res, err := Search(ctx, dir, "milk", 10)
	if err != nil || len(res) != 0 {
		t.Fatalf("stale note still indexed: %+v, %v", res, err)
	}
}

func TestDetectAndRebuildIndexOnCorruption(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, dir, sampleNotes()); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	rebuilt, err := DetectAndRebuildIndex(ctx, dir, sampleNotes())
	if err != nil || rebuilt {
		t.Fatalf("healthy index rebuilt=%v err=%v", rebuilt, err)
	}
	if err := os.WriteFile(IndexPath(dir), []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	_ = os.Remove(IndexPath(dir) + "-wal")
	rebuilt, err = DetectAndRebuildIndex(ctx, dir, sampleNotes())
	if err != nil || !rebuilt {
		t.Fatalf("corrupt index rebuilt=%v err=%v", rebuilt, err)
	}
	if res, err := Search(ctx, dir, "eggs", 10); err != nil || len(res) != 1 {
		t.Fatalf("search after rebuild = %+v, %v", res, err)
	}
}

func TestFTSQueryQuotesTerms(t *testing.T) {
	if got := ftsQuery(`milk AND "eggs`); got != `"milk"* "AND"* "eggs"*` {
		t.Fatalf("ftsQuery = %q", got)
	}
	if ftsQuery("  ...  ") != "" {
		t.Fatalf("punctuation-only query should be empty")
	}
}

func TestWatchReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan struct{}, 4)
	if err := Watch(ctx, NotesPath(dir), 50*time.Millisecond, func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := os.WriteFile(SettingsPath(dir), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := SaveNotes(dir, sampleNotes()); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatalf("watch callback not called")
	}
}
