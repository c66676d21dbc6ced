// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/snapfind-dev/snapfind/internal/catalog"
	"github.com/snapfind-dev/snapfind/internal/vision"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

// DefaultTopK is the result limit when Request.TopK is unset.
const DefaultTopK = 5

// Request is one search invocation. When From or To is set the bounds are
// used verbatim and the query text is left untouched; otherwise a window may
// be extracted from the query.
type Request struct {
	Query string
	TopK  int
	From  time.Time
	To    time.Time
}

// Response carries the ranked matches plus the query text and window that
// were actually used, for presentation.
type Response struct {
	Matches []Match
	Query   string
	Window  Window
}

// Searcher resolves the effective query and window, embeds the query text
// exactly once, and ranks the store's time-filtered candidates.
type Searcher struct {
	store  catalog.Store
	vision vision.Client
	logger *slog.Logger
}

// NewSearcher creates a Searcher over the given store and vision client.
func NewSearcher(store catalog.Store, client vision.Client) *Searcher {
	return &Searcher{store: store, vision: client, logger: slog.Default()}
}

// Search runs one query. An empty candidate set yields an empty Response and
// a nil error, distinct from failure.
func (s *Searcher) Search(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, snaperr.New(snaperr.CodeSearchQueryEmpty, "query text is empty")
	}

	window := Window{From: req.From, To: req.To}
	if window.IsZero() {
		query, window = ExtractWindow(query, time.Now())
		if query == "" {
			return Response{}, snaperr.New(snaperr.CodeSearchQueryEmpty, "query is empty after removing the time phrase")
		}
	}

	queryVec, err := s.vision.EmbedText(ctx, query)
	if err != nil {
		return Response{}, err
	}

	candidates, err := s.store.Query(ctx, window.From, window.To)
	if err != nil {
		return Response{}, err
	}

	resp := Response{Query: query, Window: window}
	if len(candidates) == 0 {
		s.logger.Debug("no candidates in window",
			slog.String("query", query),
			slog.Bool("windowed", !window.IsZero()),
		)
		return resp, nil
	}

	topK := req.TopK
	if topK < 1 {
		topK = DefaultTopK
	}

	matches, err := Rank(queryVec, candidates, topK)
	if err != nil {
		return Response{}, err
	}

	resp.Matches = matches
	return resp, nil
}
