// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package catalog

import (
	"context"
	"time"
)

// Entry is one indexed image. Path is the dedup key; Caption and CreatedAt
// are written once at indexing time and never updated.
type Entry struct {
	Path      string
	Caption   string
	CreatedAt time.Time
	Embedding []float32
}

// Store is the durable path → {caption, timestamp, embedding} mapping.
// It is the single authority on path uniqueness: Insert must be an atomic
// no-op when the path is already present, so concurrent indexers racing on
// the same path cannot produce duplicate rows.
type Store interface {
	// Exists reports whether an entry for path is already cataloged.
	Exists(ctx context.Context, path string) (bool, error)

	// Insert adds an entry. Inserting a path that already exists is a
	// no-op, not an error.
	Insert(ctx context.Context, entry Entry) error

	// Query returns entries whose CreatedAt falls within [from, to]
	// inclusive. A zero time leaves that side unbounded; two zero times
	// mean a full scan.
	Query(ctx context.Context, from, to time.Time) ([]Entry, error)

	// Count returns the number of cataloged entries.
	Count(ctx context.Context) (int, error)

	Close() error
}
