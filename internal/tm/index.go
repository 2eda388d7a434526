// Package tm implements translation-memory retrieval and TMX import.
package tm

import (
	"sort"
	"strings"

	"sbs-go/internal/model"
)

// DefaultMinConfidence is the threshold used when a query leaves it unset.
const DefaultMinConfidence = 0.7

// Query selects reusable translations for a piece of source text.
type Query struct {
	UserID         string
	SourceLanguage string
	TargetLanguage string // optional; empty matches any target language
	Text           string

	// MinConfidence is the lowest confidence returned. Nil means
	// DefaultMinConfidence; an explicit 0 returns everything.
	MinConfidence *float64
}

// Threshold returns the effective minimum confidence.
func (q Query) Threshold() float64 {
	if q.MinConfidence == nil {
		return DefaultMinConfidence
	}
	return *q.MinConfidence
}

// Match filters entries by owner, language, confidence and bidirectional
// case-insensitive containment, and orders the result by descending
// confidence. Entries with equal confidence keep their input order.
//
// This is a linear scan. A faster index must keep the same filter and order.
func Match(entries []*model.TMEntry, q Query) []*model.TMEntry {
	threshold := q.Threshold()
	text := strings.ToLower(q.Text)

	var out []*model.TMEntry
	for _, e := range entries {
		if e.UserID != q.UserID || e.SourceLanguage != q.SourceLanguage {
			continue
		}
		if q.TargetLanguage != "" && e.TargetLanguage != q.TargetLanguage {
			continue
		}
		if e.Confidence < threshold {
			continue
		}
		if !contains(strings.ToLower(e.SourceText), text) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// contains reports whether either string contains the other.
func contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
