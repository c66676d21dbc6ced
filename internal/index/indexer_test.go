// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package index_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapfind-dev/snapfind/internal/catalog"
	"github.com/snapfind-dev/snapfind/internal/catalog/sqlite"
	"github.com/snapfind-dev/snapfind/internal/index"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVision is a deterministic vision.Client. Paths listed in fail get a
// captioning error.
type fakeVision struct {
	fail map[string]bool
}

func (f *fakeVision) CaptionImage(_ context.Context, path string) (string, error) {
	if f.fail[path] {
		return "", snaperr.New(snaperr.CodeVisionCaptionFailure, "simulated upstream failure", snaperr.FieldPath(path))
	}
	return "caption of " + filepath.Base(path), nil
}

func (f *fakeVision) EmbedText(_ context.Context, text string) ([]float32, error) {
	// Deterministic 3-dim vector derived from the text length.
	n := float32(len(text))
	return []float32{n, n / 2, 1}, nil
}

func testStore(t *testing.T) catalog.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))
		paths = append(paths, path)
	}
	return paths
}

func TestIndexer_Run_IndexesAll(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	dir := t.TempDir()
	writeImages(t, dir, "a.png", "b.jpg", "c.jpeg", "d.PNG")

	var events []index.Event
	ix := index.New(store, &fakeVision{})
	summary, err := ix.Run(ctx, []string{dir}, index.Options{
		Workers: 3,
		Events:  func(ev index.Event) { events = append(events, ev) },
	})
	require.NoError(t, err)

	assert.Equal(t, index.Summary{Indexed: 4, Total: 4}, summary)
	require.Len(t, events, 4)

	runID := events[0].RunID
	assert.NotEmpty(t, runID)
	for _, ev := range events {
		assert.Equal(t, index.OutcomeIndexed, ev.Outcome)
		assert.Equal(t, runID, ev.RunID)
		assert.NotEmpty(t, ev.Caption)
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestIndexer_Run_SecondRunSkipsEverything(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	dir := t.TempDir()
	writeImages(t, dir, "a.png", "b.jpg", "c.jpeg")

	ix := index.New(store, &fakeVision{})

	first, err := ix.Run(ctx, []string{dir}, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, index.Summary{Indexed: 3, Total: 3}, first)

	second, err := ix.Run(ctx, []string{dir}, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, index.Summary{Skipped: 3, Total: 3}, second)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndexer_Run_PartialFailure(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	dir := t.TempDir()

	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("img-%02d.png", i)
	}
	paths := writeImages(t, dir, names...)
	failing := paths[4]

	var failedEvents []index.Event
	ix := index.New(store, &fakeVision{fail: map[string]bool{failing: true}})
	summary, err := ix.Run(ctx, []string{dir}, index.Options{
		Workers: 4,
		Events: func(ev index.Event) {
			if ev.Outcome == index.OutcomeErrored {
				failedEvents = append(failedEvents, ev)
			}
		},
	})
	require.NoError(t, err, "per-item failures must not fail the run")

	assert.Equal(t, index.Summary{Indexed: 9, Errored: 1, Total: 10}, summary)
	require.Len(t, failedEvents, 1)
	assert.Equal(t, failing, failedEvents[0].Path)
	assert.True(t, snaperr.IsServiceFailure(failedEvents[0].Err))

	// All other files landed in the catalog.
	for _, path := range paths {
		ok, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path != failing, ok, "path %s", path)
	}
}

func TestIndexer_Run_MissingRootFailsThatRootOnly(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	good := t.TempDir()
	writeImages(t, good, "a.png")
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	ix := index.New(store, &fakeVision{})
	summary, err := ix.Run(ctx, []string{missing, good}, index.Options{})

	require.Error(t, err)
	assert.True(t, snaperr.IsNotFound(err))
	assert.Equal(t, index.Summary{Indexed: 1, Total: 1}, summary, "good root must still be processed")
}

func TestIndexer_Run_NoImagesIsNoop(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	ix := index.New(store, &fakeVision{})
	summary, err := ix.Run(ctx, []string{dir}, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, index.Summary{}, summary)
}

func TestIndexer_Run_OverlappingRootsDedup(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	dir := t.TempDir()
	writeImages(t, dir, "a.png", "b.jpg")

	ix := index.New(store, &fakeVision{})
	summary, err := ix.Run(ctx, []string{dir, dir}, index.Options{Workers: 4})
	require.NoError(t, err)

	// The same path may race past the exists check in both units; the
	// store's idempotent insert is the dedup authority either way.
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, summary.Total, summary.Indexed+summary.Skipped)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIndexer_Run_CanceledContextKeepsCountsAccurate(t *testing.T) {
	store := testStore(t)
	dir := t.TempDir()
	writeImages(t, dir, "a.png", "b.jpg", "c.jpeg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completed := 0
	ix := index.New(store, &fakeVision{})
	summary, err := ix.Run(ctx, []string{dir}, index.Options{
		Events: func(index.Event) { completed++ },
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, completed, summary.Indexed+summary.Skipped+summary.Errored)
	assert.LessOrEqual(t, summary.Indexed+summary.Skipped+summary.Errored, summary.Total)
}

func TestIndexer_Run_CreatedAtFromModTime(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	dir := t.TempDir()
	paths := writeImages(t, dir, "old.png")

	mtime := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(paths[0], mtime, mtime))

	ix := index.New(store, &fakeVision{})
	_, err := ix.Run(ctx, []string{dir}, index.Options{})
	require.NoError(t, err)

	entries, err := store.Query(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, mtime.Equal(entries[0].CreatedAt))
}
