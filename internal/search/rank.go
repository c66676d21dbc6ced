// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package search

import (
	"math"
	"sort"

	"github.com/snapfind-dev/snapfind/internal/catalog"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

// Match pairs a catalog entry with its similarity score for one query. It is
// never persisted.
type Match struct {
	Entry catalog.Entry
	Score float64
}

// Rank scores every candidate against query by cosine similarity and returns
// at most topK matches in descending score order. The sort is stable: ties
// keep the candidates' original order. A candidate whose embedding length
// differs from the query's is a fatal error, never truncated or padded.
func Rank(query []float32, candidates []catalog.Entry, topK int) ([]Match, error) {
	if len(candidates) == 0 || topK <= 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(candidates))
	for _, entry := range candidates {
		if len(entry.Embedding) != len(query) {
			return nil, snaperr.New(snaperr.CodeSearchDimensionMismatch,
				"embedding dimensionality mismatch",
				snaperr.FieldPath(entry.Path),
				snaperr.Field("query_dims", len(query)),
				snaperr.Field("entry_dims", len(entry.Embedding)),
			)
		}
		matches = append(matches, Match{Entry: entry, Score: cosine(query, entry.Embedding)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// cosine returns the cosine similarity of two equal-length vectors. A
// zero-norm vector on either side scores 0.0: no signal, not an error.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0.0
	}
	return dot / denom
}
