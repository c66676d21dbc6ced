// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

// Package index discovers image files under root directories and catalogs
// them with captions and embeddings, fanning the per-file work out over a
// bounded worker pool.
package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/snapfind-dev/snapfind/internal/catalog"
	"github.com/snapfind-dev/snapfind/internal/vision"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

// DefaultWorkers bounds concurrency when Options.Workers is unset.
const DefaultWorkers = 4

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Outcome is the per-file result of an indexing attempt.
type Outcome string

const (
	OutcomeIndexed Outcome = "indexed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeErrored Outcome = "errored"
)

// Event reports one completed unit of work. Events are delivered as units
// finish, in completion order.
type Event struct {
	RunID   string
	Outcome Outcome
	Path    string
	Caption string
	Err     error
}

// EventFunc receives one Event per completed unit. It is called from the
// collection loop, never concurrently.
type EventFunc func(Event)

// Summary aggregates the outcomes of one run. Indexed+Skipped+Errored equals
// Total unless the run was canceled before every unit completed.
type Summary struct {
	Indexed int
	Skipped int
	Errored int
	Total   int
}

// Options tunes a single run.
type Options struct {
	Workers int // worker pool size; values < 1 fall back to DefaultWorkers
	Events  EventFunc
}

// Indexer drives caption/embedding generation for discovered images. The
// catalog store is the only shared mutable state; its idempotent insert is
// what keeps concurrent workers from producing duplicate entries.
type Indexer struct {
	store  catalog.Store
	vision vision.Client
	logger *slog.Logger
}

// New creates an Indexer over the given store and vision client.
func New(store catalog.Store, client vision.Client) *Indexer {
	return &Indexer{store: store, vision: client, logger: slog.Default()}
}

// Run indexes every image found under roots. Each root is processed
// independently: a missing or unreadable root fails that root alone and is
// reflected in the returned error, while remaining roots still run. A
// canceled context stops submission of new units; in-flight units finish and
// the partial Summary stays accurate.
func (ix *Indexer) Run(ctx context.Context, roots []string, opts Options) (Summary, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}

	runID := uuid.New().String()

	var (
		paths    []string
		rootErrs []error
	)
	for _, root := range roots {
		found, err := discover(root)
		if err != nil {
			ix.logger.Warn("skipping root",
				slog.String("run_id", runID),
				slog.String("root", root),
				slog.String("error", err.Error()),
			)
			rootErrs = append(rootErrs, err)
			continue
		}
		paths = append(paths, found...)
	}

	summary := Summary{Total: len(paths)}
	if len(paths) == 0 {
		ix.logger.Info("no images to index",
			slog.String("run_id", runID),
			slog.Int("roots", len(roots)),
		)
		return summary, errors.Join(rootErrs...)
	}

	ix.logger.Info("indexing run started",
		slog.String("run_id", runID),
		slog.Int("images", len(paths)),
		slog.Int("workers", workers),
	)

	pathCh := make(chan string)
	eventCh := make(chan Event)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				eventCh <- ix.processOne(ctx, runID, path)
			}
		}()
	}

	go func() {
		defer close(pathCh)
		for _, path := range paths {
			select {
			case pathCh <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(eventCh)
	}()

	for ev := range eventCh {
		switch ev.Outcome {
		case OutcomeIndexed:
			summary.Indexed++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeErrored:
			summary.Errored++
		}
		if opts.Events != nil {
			opts.Events(ev)
		}
	}

	ix.logger.Info("indexing run finished",
		slog.String("run_id", runID),
		slog.Int("indexed", summary.Indexed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("errored", summary.Errored),
		slog.Int("total", summary.Total),
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, errors.Join(rootErrs...)
}

// processOne runs the full pipeline for a single path. Failures are captured
// in the returned Event so one bad image never disturbs another unit.
func (ix *Indexer) processOne(ctx context.Context, runID, path string) Event {
	ev := Event{RunID: runID, Path: path}

	exists, err := ix.store.Exists(ctx, path)
	if err != nil {
		ev.Outcome = OutcomeErrored
		ev.Err = err
		return ev
	}
	if exists {
		ev.Outcome = OutcomeSkipped
		return ev
	}

	info, err := os.Stat(path)
	if err != nil {
		ev.Outcome = OutcomeErrored
		ev.Err = snaperr.Wrap(err, snaperr.CodeVisionImageUnreadable, "stating image", snaperr.FieldPath(path))
		return ev
	}
	createdAt := info.ModTime()

	caption, err := ix.vision.CaptionImage(ctx, path)
	if err != nil {
		ev.Outcome = OutcomeErrored
		ev.Err = err
		return ev
	}

	embedding, err := ix.vision.EmbedText(ctx, caption)
	if err != nil {
		ev.Outcome = OutcomeErrored
		ev.Err = err
		return ev
	}

	if err := ix.store.Insert(ctx, catalog.Entry{
		Path:      path,
		Caption:   caption,
		CreatedAt: createdAt,
		Embedding: embedding,
	}); err != nil {
		ev.Outcome = OutcomeErrored
		ev.Err = err
		return ev
	}

	ev.Outcome = OutcomeIndexed
	ev.Caption = caption
	return ev
}

// discover walks one root and returns the candidate image paths under it.
func discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, snaperr.Wrap(err, snaperr.CodeIndexRootMissing, "root directory not found", snaperr.FieldRoot(root))
	}
	if !info.IsDir() {
		return nil, snaperr.New(snaperr.CodeIndexRootMissing, "root is not a directory", snaperr.FieldRoot(root))
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, snaperr.Wrap(err, snaperr.CodeIndexRootScan, "scanning root", snaperr.FieldRoot(root))
	}
	return paths, nil
}
