// Package search answers "does this name match a sanctioned entity?" over an
// in-memory snapshot of entity records.
package search

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"sdnscreen/internal/model"
	"sdnscreen/internal/normalize"
)

type Options struct {
	// Threshold is the largest edit distance accepted between normalized
	// names. Negative values are treated as 0.
	Threshold int
	// Limit keeps only the best Limit entities by rank, then id. Zero keeps
	// every match.
	Limit int
}

// Signal names the test that made an alias a candidate.
type Signal string

const (
	SignalExact           Signal = "exact"
	SignalExactNormalized Signal = "exact_normalized"
	SignalFuzzy           Signal = "fuzzy"
)

type Match struct {
	Entity model.Entity
	// Rank is 0 for whole-word matches, otherwise the edit distance of the
	// closest alias.
	Rank   int
	Alias  model.Alias
	Signal Signal
}

// Engine is immutable once built and safe for concurrent use.
type Engine struct {
	entities []model.Entity
	runes    [][]int
}

func New(entities []model.Entity) *Engine {
	e := &Engine{
		entities: slices.Clone(entities),
		runes:    make([][]int, len(entities)),
	}
	for i, entity := range e.entities {
		counts := make([]int, len(entity.Names))
		for j, alias := range entity.Names {
			counts[j] = utf8.RuneCountInString(alias.NormalizedName)
		}
		e.runes[i] = counts
	}
	return e
}

func (e *Engine) Len() int {
	return len(e.entities)
}

// Search returns the matching entities ordered by entity id.
func (e *Engine) Search(query string, threshold int) []model.Entity {
	matches := e.SearchWithOptions(query, Options{Threshold: threshold})
	out := make([]model.Entity, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Entity)
	}
	return out
}

type query struct {
	raw        *regexp.Regexp
	normalized *regexp.Regexp
	norm       string
	normRunes  int
	threshold  int
}

// SearchWithOptions returns one match per entity id, ordered by entity id.
// An empty query matches nothing; a query that normalizes to "" is checked
// only against raw names.
func (e *Engine) SearchWithOptions(q string, opts Options) []Match {
	upper := strings.ToUpper(strings.TrimSpace(q))
	if upper == "" {
		return nil
	}

	qq := query{
		raw:       wholeWord(upper),
		threshold: max(opts.Threshold, 0),
	}
	if norm, _ := normalize.Name(upper); norm != "" {
		qq.norm = norm
		qq.normRunes = utf8.RuneCountInString(norm)
		qq.normalized = wholeWord(norm)
	}

	best := make(map[int64]int)
	var matches []Match
	for i, entity := range e.entities {
		for j, alias := range entity.Names {
			rank, signal, ok := qq.score(alias, e.runes[i][j])
			if !ok {
				continue
			}
			if k, seen := best[entity.EntityID]; seen {
				if rank < matches[k].Rank {
					matches[k].Rank = rank
					matches[k].Alias = alias
					matches[k].Signal = signal
				}
				continue
			}
			best[entity.EntityID] = len(matches)
			matches = append(matches, Match{Entity: entity, Rank: rank, Alias: alias, Signal: signal})
		}
	}

	if opts.Limit > 0 && len(matches) > opts.Limit {
		slices.SortFunc(matches, func(a, b Match) int {
			if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
				return c
			}
			return cmp.Compare(a.Entity.EntityID, b.Entity.EntityID)
		})
		matches = matches[:opts.Limit]
	}

	slices.SortFunc(matches, func(a, b Match) int {
		return cmp.Compare(a.Entity.EntityID, b.Entity.EntityID)
	})
	return matches
}

func (q query) score(alias model.Alias, aliasRunes int) (int, Signal, bool) {
	if q.raw.MatchString(alias.FullName) {
		return 0, SignalExact, true
	}
	if q.normalized == nil {
		return 0, "", false
	}
	if alias.NormalizedName != "" && q.normalized.MatchString(alias.NormalizedName) {
		return 0, SignalExactNormalized, true
	}
	// Edit distance is at least the difference in length.
	if abs(aliasRunes-q.normRunes) > q.threshold {
		return 0, "", false
	}
	if d := levenshtein.ComputeDistance(alias.NormalizedName, q.norm); d <= q.threshold {
		return d, SignalFuzzy, true
	}
	return 0, "", false
}

// wholeWord matches s case-insensitively when it is not flanked by a letter,
// digit or underscore.
func wholeWord(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(s) + `(?:[^\p{L}\p{N}_]|$)`)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
