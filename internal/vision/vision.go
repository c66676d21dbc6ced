// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

// Package vision defines the captioning and embedding capability consumed by
// the indexer and searcher. Implementations are constructor-injected; there
// is no process-wide client.
package vision

import "context"

// Client produces captions for images and embedding vectors for text.
type Client interface {
	// CaptionImage returns a short natural-language description of the
	// image at path, suitable for search.
	CaptionImage(ctx context.Context, path string) (string, error)

	// EmbedText returns a fixed-dimension embedding vector for text. All
	// vectors produced by one client share the same dimensionality.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
