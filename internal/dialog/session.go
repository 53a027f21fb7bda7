package dialog

import (
	"sync"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/observability"
)

// Session is the per-chat record: the opaque catalog credential obtained at
// login plus the optional active Conversation. At most one Conversation is
// active per chat.
type Session struct {
	ChatID     string
	Credential catalog.Credential
	Conv       *Conversation
}

// Registry holds one session per chat identity. It is the only state shared
// across message-handling iterations; access is key-based and guarded, while
// the record it hands out is owned by the single handler processing that
// chat.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for chatID, if one exists.
func (r *Registry) Get(chatID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[chatID]
	return s, ok
}

// Put registers (or replaces) the session for chatID.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, existed := r.sessions[s.ChatID]; !existed {
		observability.SessionOpened()
	}
	r.sessions[s.ChatID] = s
}

// Delete removes the session for chatID.
func (r *Registry) Delete(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, existed := r.sessions[chatID]; existed {
		observability.SessionClosed()
		delete(r.sessions, chatID)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
