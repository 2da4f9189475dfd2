package domain

import "time"

// ConversationTurn is one question/answer exchange within a document
// session. Turns are append-only and never mutated or reordered.
type ConversationTurn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistory is the ordered turn history of one document session.
// It is owned by the session and never shared across documents.
type ChatHistory struct {
	turns []ConversationTurn
}

// NewChatHistory creates a history pre-populated with persisted turns.
func NewChatHistory(turns []ConversationTurn) *ChatHistory {
	h := &ChatHistory{}
	h.turns = append(h.turns, turns...)
	return h
}

// Append records a completed exchange. Append-only: existing turns are
// never touched.
func (h *ChatHistory) Append(question, answer string) {
	h.turns = append(h.turns, ConversationTurn{
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now(),
	})
}

// Recent returns the most recent limit turns in chronological order.
// A non-positive limit returns all turns.
func (h *ChatHistory) Recent(limit int) []ConversationTurn {
	start := 0
	if limit > 0 && len(h.turns) > limit {
		start = len(h.turns) - limit
	}
	out := make([]ConversationTurn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// Len returns the number of recorded turns.
func (h *ChatHistory) Len() int {
	return len(h.turns)
}
