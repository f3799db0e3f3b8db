package session

import (
	"sync"

	"github.com/ziadkadry99/blogsmith/internal/knowledge"
)

// Store holds all active sessions keyed by user identity. Sessions are
// created on first contact and live for the lifetime of the process.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	newRegistry func() *knowledge.Registry
}

// NewStore creates a session store. newRegistry builds the per-session
// knowledge source registry; each session owns its own registry so sources
// never leak between users.
func NewStore(newRegistry func() *knowledge.Registry) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		newRegistry: newRegistry,
	}
}

// Get returns the session for the given user, creating it on first contact.
func (st *Store) Get(userID, chatID, platform string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[userID]; ok {
		// The chat may move (e.g. reconnecting dev client); keep it current.
		s.ChatID = chatID
		s.Platform = platform
		return s
	}

	s := &Session{
		UserID:    userID,
		ChatID:    chatID,
		Platform:  platform,
		State:     StateChat,
		Mode:      ModeFill,
		Fields:    make(map[string]string),
		Knowledge: st.newRegistry(),
	}
	st.sessions[userID] = s
	return s
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
