// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

// Package search turns free-text queries into ranked catalog matches,
// optionally narrowed to a time window parsed out of the query itself.
package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// windowRe matches the first relative-time phrase in a query, e.g.
// "from 6 months ago". Only the first occurrence is consumed.
var windowRe = regexp.MustCompile(`(?i)\bfrom\s+(\d+)\s+(day|days|week|weeks|month|months|year|years)\s+ago\b`)

// Window is an inclusive [From, To] date range. Zero values leave that side
// unbounded; the zero Window applies no temporal filtering.
type Window struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether no bound is set.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// ExtractWindow parses a relative-time phrase out of query and returns the
// query with the phrase removed plus the derived window. Units convert to
// days approximately (week=7, month=30, year=365), deliberately not
// calendar-exact. The window is centered on now minus the distance with a
// half-width of max(3, floor(distance×0.3)) days. Without a phrase the
// trimmed query and a zero Window are returned.
func ExtractWindow(query string, now time.Time) (string, Window) {
	m := windowRe.FindStringSubmatchIndex(query)
	if m == nil {
		return strings.TrimSpace(query), Window{}
	}

	amount, err := strconv.Atoi(query[m[2]:m[3]])
	if err != nil {
		return strings.TrimSpace(query), Window{}
	}
	unit := strings.ToLower(query[m[4]:m[5]])

	unitDays := 1
	switch {
	case strings.HasPrefix(unit, "week"):
		unitDays = 7
	case strings.HasPrefix(unit, "month"):
		unitDays = 30
	case strings.HasPrefix(unit, "year"):
		unitDays = 365
	}

	distance := amount * unitDays
	halfWidth := distance * 3 / 10
	if halfWidth < 3 {
		halfWidth = 3
	}

	center := now.Add(-days(distance))
	window := Window{
		From: center.Add(-days(halfWidth)),
		To:   center.Add(days(halfWidth)),
	}

	cleaned := strings.TrimSpace(query[:m[0]] + query[m[1]:])
	return cleaned, window
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
