package service

import (
	"sort"
	"strings"
)

// relatedLimit is how many related items a detail view carries.
const relatedLimit = 6

// ScoreInput is the minimal view of a content item the scorer needs.
type ScoreInput struct {
	Title  string
	Tags   []string
	Rating float64
}

// Score computes the relatedness of a candidate to a reference item.
//
// Title similarity contributes 100 when either lowercased title contains the
// other, 70 when the titles share at least one word, 0 otherwise. Tag overlap
// contributes sharedTags/candidateTags*50, normalized by the candidate's tag
// count. Rating contributes rating*3. The score has no upper bound.
func Score(candidate, reference ScoreInput) float64 {
	return titleScore(candidate.Title, reference.Title) +
		tagScore(candidate.Tags, reference.Tags) +
		candidate.Rating*3
}

func titleScore(candidate, reference string) float64 {
	c := strings.ToLower(candidate)
	r := strings.ToLower(reference)

	if strings.Contains(c, r) || strings.Contains(r, c) {
		return 100
	}

	refWords := make(map[string]struct{})
	for _, w := range strings.Fields(r) {
		refWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(c) {
		if _, ok := refWords[w]; ok {
			return 70
		}
	}
	return 0
}

func tagScore(candidate, reference []string) float64 {
	if len(candidate) == 0 {
		return 0
	}

	refTags := make(map[string]struct{}, len(reference))
	for _, t := range reference {
		refTags[strings.ToLower(t)] = struct{}{}
	}

	shared := 0
	seen := make(map[string]struct{}, len(candidate))
	for _, t := range candidate {
		lt := strings.ToLower(t)
		if _, dup := seen[lt]; dup {
			continue
		}
		seen[lt] = struct{}{}
		if _, ok := refTags[lt]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(candidate)) * 50
}

// rankRelated orders candidates by descending score against the reference
// and returns at most relatedLimit of them. The sort is stable, so
// equal-score candidates keep their input (document store) order and the
// ranking is deterministic for a fixed candidate set.
func rankRelated[T any](candidates []T, reference ScoreInput, input func(T) ScoreInput) []T {
	type scored struct {
		item  T
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{item: c, score: Score(input(c), reference)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := len(ranked)
	if n > relatedLimit {
		n = relatedLimit
	}
	top := make([]T, 0, n)
	for _, s := range ranked[:n] {
		top = append(top, s.item)
	}
	return top
}
