// Package ranking orders eligible candidates and bounds the result set.
//
// Until a real compatibility model exists, candidates without an
// authoritative score get a placeholder score in [70, 100) that is redrawn
// on every call, so ordering across requests is intentionally unstable.
package ranking

import (
	"math/rand"
	"sort"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

const (
	DefaultLimit              = 10
	DefaultAuthoritativeScore = 75

	minPlaceholderScore = 70
	maxPlaceholderScore = 100
)

type Entry struct {
	Profile model.CandidateProfile
	// Authoritative marks Score as coming from a persisted source. A nil
	// Score on an authoritative entry falls back to DefaultAuthoritativeScore.
	Authoritative bool
	Score         *int
}

type Ranked struct {
	Profile model.CandidateProfile
	Score   int
}

type Ranker struct {
	intn func(n int) int
}

func NewRanker() *Ranker {
	return &Ranker{intn: rand.Intn}
}

// NewRankerWithSource is used by tests to make placeholder scores predictable.
func NewRankerWithSource(intn func(n int) int) *Ranker {
	if intn == nil {
		intn = rand.Intn
	}
	return &Ranker{intn: intn}
}

func (r *Ranker) Rank(entries []Entry, limit int) []Ranked {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) == 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, 0, len(entries))
	for _, entry := range entries {
		ranked = append(ranked, Ranked{
			Profile: entry.Profile,
			Score:   r.score(entry),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// AuthoritativeScore resolves a persisted compatibility value.
func AuthoritativeScore(score *int) int {
	if score == nil {
		return DefaultAuthoritativeScore
	}
	return clampScore(*score)
}

func (r *Ranker) score(entry Entry) int {
	if entry.Authoritative {
		return AuthoritativeScore(entry.Score)
	}
	return minPlaceholderScore + r.intn(maxPlaceholderScore-minPlaceholderScore)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
