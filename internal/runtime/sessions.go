package runtime

import (
	"sync"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// DocSession is the live, in-memory state of one ingested document:
// its immutable vector index plus the mutable conversation history.
// History mutation is guarded by the session mutex; the index needs
// no locking.
type DocSession struct {
	mu sync.Mutex

	Document *domain.Document
	Index    driven.VectorIndex
	History  *domain.ChatHistory
}

// NewDocSession creates a session for a freshly ingested document.
func NewDocSession(doc *domain.Document, index driven.VectorIndex, history *domain.ChatHistory) *DocSession {
	if history == nil {
		history = domain.NewChatHistory(nil)
	}
	return &DocSession{
		Document: doc,
		Index:    index,
		History:  history,
	}
}

// WithHistory runs fn while holding the session's history lock.
// Ask flows use this to read recent turns and append the new turn
// without interleaving with concurrent questions.
func (s *DocSession) WithHistory(fn func(h *domain.ChatHistory)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.History)
}

// SessionRegistry maps document IDs to live sessions. Sessions are
// lost on restart; callers rebuild from persistent storage on a miss.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*DocSession
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*DocSession),
	}
}

// Get returns the live session for a document, or nil when the
// document has not been warmed since startup.
func (r *SessionRegistry) Get(documentID string) *DocSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[documentID]
}

// Put registers a session, replacing any previous one.
func (r *SessionRegistry) Put(documentID string, session *DocSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[documentID] = session
}

// Delete removes a session. Safe when no session exists.
func (r *SessionRegistry) Delete(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, documentID)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the document IDs of all live sessions.
func (r *SessionRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
