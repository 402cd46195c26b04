package stats

import (
	"cmp"
	"slices"

	"github.com/verte-zerg/retype/internal/model"
)

// MinWeakAttempts is the number of keystrokes a character needs before it can
// be treated as weak.
const MinWeakAttempts = 3

func attempts(agg model.CharAggregate) int {
	return agg.Correct + agg.Incorrect
}

func accuracy(agg model.CharAggregate) float64 {
	total := attempts(agg)
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// byAccuracy orders aggregates lowest accuracy first, ties by character.
func byAccuracy(a, b model.CharAggregate) int {
	if c := cmp.Compare(accuracy(a), accuracy(b)); c != 0 {
		return c
	}
	return cmp.Compare(a.Char, b.Char)
}

// SortWeakestFirst returns a copy of aggs ordered lowest accuracy first.
func SortWeakestFirst(aggs []model.CharAggregate) []model.CharAggregate {
	sorted := slices.Clone(aggs)
	slices.SortFunc(sorted, byAccuracy)
	return sorted
}

// SelectWeakChars returns up to top characters with the lowest accuracy.
// Characters seen fewer than MinWeakAttempts times, and characters never
// mistyped, are not weak. top <= 0 means no limit.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if attempts(agg) >= MinWeakAttempts && agg.Incorrect > 0 && agg.Char != "" {
			candidates = append(candidates, agg)
		}
	}
	slices.SortFunc(candidates, byAccuracy)
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	weak := make(map[rune]struct{}, len(candidates))
	for _, agg := range candidates {
		weak[[]rune(agg.Char)[0]] = struct{}{}
	}
	return weak
}

// TopCharsByFrequency returns the n most typed characters, ties by character.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := slices.Clone(aggs)
	slices.SortFunc(sorted, func(a, b model.CharAggregate) int {
		if c := cmp.Compare(attempts(b), attempts(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.Char, b.Char)
	})
	out := make([]string, 0, min(n, len(sorted)))
	for _, agg := range sorted[:min(n, len(sorted))] {
		out = append(out, agg.Char)
	}
	return out
}

// FilterChars keeps only aggregates whose character is listed in keep.
func FilterChars(aggs []model.CharAggregate, keep []string) []model.CharAggregate {
	return slices.DeleteFunc(slices.Clone(aggs), func(agg model.CharAggregate) bool {
		return !slices.Contains(keep, agg.Char)
	})
}
