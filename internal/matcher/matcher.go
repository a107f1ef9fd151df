// Package matcher finds catalog terms in OCR lines and aggregates the line
// indices at which each term occurs.
//
// Matching is plain substring containment against lower-cased line text.
// There is no tokenization, stemming or word-boundary handling: a term such
// as " indian " only approximates a whole-word match through its own padding
// and will miss an occurrence at the very start or end of a line. Terms never
// match across lines.
package matcher

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/ocrdoc"
)

// HitMap maps a term to the ascending, de-duplicated indices of the lines
// containing it. Terms without hits are absent.
type HitMap map[string][]int

func (h HitMap) Empty() bool {
	return len(h) == 0
}

// Terms returns the hit terms in sorted order.
func (h HitMap) Terms() []string {
	terms := make([]string, 0, len(h))
	for t := range h {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Match scans every line for every term of cat. The cost is
// O(lines * terms * line length), which is fine for one document per call.
func Match(lines []ocrdoc.Line, cat *catalog.Catalog) HitMap {
	hits := make(HitMap)
	terms := cat.Texts()
	for _, line := range lines {
		text := strings.ToLower(line.Text)
		for _, term := range terms {
			if !strings.Contains(text, term) {
				continue
			}
			idx := hits[term]
			// Lines arrive in index order, so only the tail can repeat.
			if n := len(idx); n > 0 && idx[n-1] == line.Index {
				continue
			}
			hits[term] = append(idx, line.Index)
		}
	}
	return hits
}

// Summary splits the hit terms by catalog category.
type Summary struct {
	Substantive []string
	Exception   []string
}

// Summarize classifies the terms of hits using cat. Terms unknown to cat are
// counted as substantive.
func Summarize(hits HitMap, cat *catalog.Catalog) Summary {
	var s Summary
	for _, term := range hits.Terms() {
		if c, _ := cat.CategoryOf(term); c == catalog.Exception {
			s.Exception = append(s.Exception, term)
			continue
		}
		s.Substantive = append(s.Substantive, term)
	}
	return s
}

// ExceptionOnly reports whether every hit term is an exception term.
func (s Summary) ExceptionOnly() bool {
	return len(s.Substantive) == 0 && len(s.Exception) > 0
}
