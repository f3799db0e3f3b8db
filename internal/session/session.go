// Package session holds per-user conversation state. A session is the unit of
// isolation for the dialogue controller: one record per user, guarded by a
// per-session lock so events for the same user are processed one at a time.
package session

import (
	"sync"

	"github.com/ziadkadry99/blogsmith/internal/knowledge"
)

// State is the current wizard state of a session.
type State int

const (
	StateChat State = iota
	StateTopicOrTask
	StateTopic
	StateTask
	StateWebsite
	StateDocument
	StateLength
	StateLanguageLevel
	StateInformation
	StateLanguage
	StateTone
	StateAdditional
	StateConfirm
)

var stateNames = map[State]string{
	StateChat:          "chat",
	StateTopicOrTask:   "topic_or_task",
	StateTopic:         "topic",
	StateTask:          "task",
	StateWebsite:       "website",
	StateDocument:      "document",
	StateLength:        "length",
	StateLanguageLevel: "language_level",
	StateInformation:   "information",
	StateLanguage:      "language",
	StateTone:          "tone",
	StateAdditional:    "additional",
	StateConfirm:       "confirm",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Mode selects between the two traversal variants of the configuration
// wizard: the first fill pass and the edit-retry pass entered after a
// rejected confirmation. Once a session switches to ModeEdit it stays there.
type Mode int

const (
	ModeFill Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "fill"
}

// Field names of the article brief.
const (
	FieldTopicOrTask = "topic_or_task"
	FieldLength      = "length"
	FieldLangLevel   = "language_level"
	FieldInfoLevel   = "information_level"
	FieldLanguage    = "language"
	FieldTone        = "tone"
	FieldAdditional  = "additional_information"
)

// Session is one user's conversation state.
type Session struct {
	mu sync.Mutex

	UserID   string
	ChatID   string
	Platform string

	State     State
	Mode      Mode
	Fields    map[string]string
	Knowledge *knowledge.Registry
	History   []string
}

// Lock acquires the session's single-writer lock for the duration of a turn.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's single-writer lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Reset clears all collected fields, knowledge sources and chat history and
// returns the session to the free-chat state in fill mode.
func (s *Session) Reset() {
	s.State = StateChat
	s.Mode = ModeFill
	s.Fields = make(map[string]string)
	s.History = nil
	s.Knowledge.Clear()
}

// AppendHistory appends an exchanged message to the chat history.
func (s *Session) AppendHistory(line string) {
	s.History = append(s.History, line)
}
