package search

import (
	"sort"
	"time"
)

// DefaultAlpha is the default lexical weight. Vector similarity dominates;
// exact lexical hits boost but never override semantic matches.
const DefaultAlpha = 0.25

// Candidate is one fusion input: a record with its raw lexical relevance,
// its vector similarity, and its creation time for tie-breaking.
type Candidate struct {
	id        string
	lexical   float64
	vector    float64
	createdAt time.Time
}

// NewCandidate creates a Candidate.
func NewCandidate(id string, lexical, vector float64, createdAt time.Time) Candidate {
	return Candidate{
		id:        id,
		lexical:   lexical,
		vector:    vector,
		createdAt: createdAt,
	}
}

// ID returns the record identifier.
func (c Candidate) ID() string { return c.id }

// Lexical returns the raw lexical score.
func (c Candidate) Lexical() float64 { return c.lexical }

// Vector returns the vector similarity score.
func (c Candidate) Vector() float64 { return c.vector }

// CreatedAt returns the record creation time.
func (c Candidate) CreatedAt() time.Time { return c.createdAt }

// Ranked is one fusion output: a record identifier with its constituent and
// fused scores.
type Ranked struct {
	id     string
	scores Scores
}

// ID returns the record identifier.
func (r Ranked) ID() string { return r.id }

// Scores returns the constituent and fused scores.
func (r Ranked) Scores() Scores { return r.scores }

// Fusion reconciles lexical relevance and vector similarity into one ordering:
//
//	combined = alpha*normalize(lexical) + (1-alpha)*vector
//
// where normalize maps lexical scores into [0,1] relative to the maximum
// lexical score in the candidate set. Both inputs are clamped to [0,1], so
// combined is always in [0,1] for any alpha in [0,1].
type Fusion struct {
	alpha float64
}

// NewFusion creates a Fusion with the default lexical weight.
func NewFusion() Fusion {
	return Fusion{alpha: DefaultAlpha}
}

// NewFusionWithAlpha creates a Fusion with a custom lexical weight.
// Weights outside [0,1] fall back to the default.
func NewFusionWithAlpha(alpha float64) Fusion {
	if alpha < 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return Fusion{alpha: alpha}
}

// Alpha returns the lexical weight.
func (f Fusion) Alpha() float64 { return f.alpha }

// Fuse scores and orders the candidate set. The result is sorted by combined
// score descending; ties go to the more recently created record, favoring
// newer learned examples. Deterministic for a fixed candidate set and alpha.
func (f Fusion) Fuse(candidates []Candidate) []Ranked {
	if len(candidates) == 0 {
		return []Ranked{}
	}

	var maxLexical float64
	for _, c := range candidates {
		if c.lexical > maxLexical {
			maxLexical = c.lexical
		}
	}

	results := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		normalized := 0.0
		if maxLexical > 0 && c.lexical > 0 {
			normalized = c.lexical / maxLexical
		}
		vector := clamp01(c.vector)
		combined := f.alpha*normalized + (1-f.alpha)*vector
		results = append(results, Ranked{
			id:     c.id,
			scores: NewScores(c.lexical, vector, combined),
		})
	}

	byCreated := make(map[string]time.Time, len(candidates))
	for _, c := range candidates {
		byCreated[c.id] = c.createdAt
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].scores.Combined() != results[j].scores.Combined() {
			return results[i].scores.Combined() > results[j].scores.Combined()
		}
		return byCreated[results[i].id].After(byCreated[results[j].id])
	})

	return results
}

// FuseTopK scores and orders the candidate set, returning at most topK results.
func (f Fusion) FuseTopK(topK int, candidates []Candidate) []Ranked {
	results := f.Fuse(candidates)
	if topK <= 0 || topK >= len(results) {
		return results
	}
	return results[:topK]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
