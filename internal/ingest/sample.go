package ingest

import (
	"math/rand/v2"
	"sort"
)

// Select draws min(k, n) distinct symbols uniformly at random, where n is the
// number of distinct symbols. The result keeps the input order so a sweep over
// a sample stays reproducible for a given random source. A nil rng uses the
// global source.
func Select(symbols []string, k int, rng *rand.Rand) []string {
	unique := dedupe(symbols)
	if k <= 0 {
		return nil
	}
	if k >= len(unique) {
		return unique
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(unique))
	} else {
		perm = rand.Perm(len(unique))
	}
	picked := perm[:k]
	sort.Ints(picked)

	out := make([]string, k)
	for i, idx := range picked {
		out[i] = unique[idx]
	}
	return out
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
