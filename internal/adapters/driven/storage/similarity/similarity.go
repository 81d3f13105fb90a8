// Package similarity provides the scoring shared by the vector store backends.
package similarity

import (
	"math"
	"sort"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or with zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ranker accumulates scored chunks and keeps the best k.
// Ties keep insertion order.
type Ranker struct {
	k      int
	query  []float32
	scored []domain.ScoredChunk
}

// NewRanker creates a ranker for the given query embedding.
func NewRanker(query []float32, k int) *Ranker {
	return &Ranker{k: k, query: query}
}

// Offer scores a candidate against the query.
func (r *Ranker) Offer(chunk domain.Chunk, embedding []float32) {
	if r.k <= 0 {
		return
	}
	r.scored = append(r.scored, domain.ScoredChunk{
		Chunk: chunk,
		Score: Cosine(r.query, embedding),
	})
}

// Result returns up to k chunks sorted by decreasing score.
// The result is never nil.
func (r *Ranker) Result() []domain.ScoredChunk {
	sort.SliceStable(r.scored, func(i, j int) bool {
		return r.scored[i].Score > r.scored[j].Score
	})
	if len(r.scored) > r.k {
		r.scored = r.scored[:r.k]
	}
	if r.scored == nil {
		return []domain.ScoredChunk{}
	}
	return r.scored
}
