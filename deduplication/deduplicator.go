package deduplication

import "insightbeam/types"

// FilterNew returns the candidates whose title is not already stored for the
// source. Title comparison is exact string equality; candidates duplicating
// each other's titles within the batch are also collapsed to the first seen.
func FilterNew(candidates []types.Article, existingTitles []string) []types.Article {
	seen := make(map[string]struct{}, len(existingTitles)+len(candidates))
	for _, title := range existingTitles {
		seen[title] = struct{}{}
	}

	fresh := make([]types.Article, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate.Title]; ok {
			continue
		}
		seen[candidate.Title] = struct{}{}
		fresh = append(fresh, candidate)
	}
	return fresh
}
