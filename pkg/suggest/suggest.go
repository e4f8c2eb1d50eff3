// Package suggest ranks known identifiers by edit distance to a mistyped one.
package suggest

import (
	"cmp"
	"slices"
	"unicode/utf8"
)

// minBudget is the smallest edit distance still offered as a suggestion.
const minBudget = 2

// Distance returns the Levenshtein distance between a and b counted in runes.
// It keeps a single column of the edit matrix, sized by the shorter string.
func Distance(a, b string) int {
	long, short := []rune(a), []rune(b)
	if len(long) < len(short) {
		long, short = short, long
	}

	if len(short) == 0 {
		return len(long)
	}

	column := make([]int, len(short)+1)
	for i := range column {
		column[i] = i
	}

	for _, lr := range long {
		diag := column[0]
		column[0]++

		for j, sr := range short {
			above := column[j+1]

			cost := 1
			if lr == sr {
				cost = 0
			}

			column[j+1] = min(above+1, column[j]+1, diag+cost)
			diag = above
		}
	}

	return column[len(short)]
}

// Closest returns up to limit candidates within a third of target's length
// (at least two edits), nearest first. Ties keep alphabetical order.
func Closest(target string, candidates []string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	budget := max(utf8.RuneCountInString(target)/3, minBudget)

	type scored struct {
		name string
		dist int
	}

	var hits []scored

	for _, c := range candidates {
		if c == target {
			continue
		}

		d := Distance(target, c)
		if d <= budget {
			hits = append(hits, scored{name: c, dist: d})
		}
	}

	slices.SortFunc(hits, func(x, y scored) int {
		return cmp.Or(cmp.Compare(x.dist, y.dist), cmp.Compare(x.name, y.name))
	})

	out := make([]string, 0, min(limit, len(hits)))
	for _, h := range hits[:min(limit, len(hits))] {
		out = append(out, h.name)
	}

	return out
}
