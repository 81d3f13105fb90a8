package domain

// RetrievedPassage is one result of a retrieval call.
type RetrievedPassage struct {
	// ChunkText is the passage content.
	ChunkText string `json:"text"`

	// SourceIdentifier names the document the passage came from.
	SourceIdentifier string `json:"source"`

	// Score is the similarity reported by the vector store.
	Score float64 `json:"score"`
}

// AnswerResult is what the pipeline returns for one question.
type AnswerResult struct {
	// Answer is the generated text. Empty when the provider returned no content.
	Answer string `json:"answer"`

	// Sources lists passage sources in first-seen order without duplicates.
	Sources []string `json:"sources"`

	// Passages are the retrieved passages the answer was grounded on.
	Passages []RetrievedPassage `json:"passages,omitempty"`
}

// UniqueSources returns the source identifiers of passages in first-seen order.
func UniqueSources(passages []RetrievedPassage) []string {
	seen := make(map[string]struct{}, len(passages))
	sources := make([]string, 0, len(passages))
	for _, p := range passages {
		if _, ok := seen[p.SourceIdentifier]; ok {
			continue
		}
		seen[p.SourceIdentifier] = struct{}{}
		sources = append(sources, p.SourceIdentifier)
	}
	return sources
}
