package domain

// ScoredChunk pairs a chunk with its squared L2 distance to the query
// embedding. Lower distance means a closer match.
type ScoredChunk struct {
	Chunk    *Chunk  `json:"chunk"`
	Distance float32 `json:"distance"`
}

// Retrieval is the assembled context for one query: chunk texts joined
// in ascending-distance order plus the originating page citations.
// Transient - recomputed per query, never persisted.
type Retrieval struct {
	Context   string        `json:"context"`
	Citations []int         `json:"citations"`
	Results   []ScoredChunk `json:"results"`
}

// Empty reports whether retrieval produced no context at all.
func (r *Retrieval) Empty() bool {
	return len(r.Results) == 0
}

// Answer is the result of one ask operation.
type Answer struct {
	Answer     string             `json:"answer"`
	Citations  []int              `json:"citations"`
	History    []ConversationTurn `json:"chat_history"`
	Evaluation *Evaluation        `json:"evaluation,omitempty"`
}
