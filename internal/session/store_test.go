package session

import (
	"testing"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/knowledge"
)

func newTestStore() *Store {
	return NewStore(func() *knowledge.Registry {
		return knowledge.NewRegistry(nil, zap.NewNop())
	})
}

func TestStoreCreatesSessionOnFirstContact(t *testing.T) {
	st := newTestStore()

	s := st.Get("user-1", "chat-1", "telegram")
	if s.State != StateChat || s.Mode != ModeFill {
		t.Errorf("new session in state %v mode %v, want chat/fill", s.State, s.Mode)
	}
	if s.Knowledge == nil {
		t.Fatal("new session has no knowledge registry")
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}
}

func TestStoreReturnsSameSessionForSameUser(t *testing.T) {
	st := newTestStore()

	a := st.Get("user-1", "chat-1", "telegram")
	a.State = StateLength
	a.Fields["length"] = "Short"

	b := st.Get("user-1", "chat-1", "telegram")
	if a != b {
		t.Fatal("same user got a different session")
	}
	if b.State != StateLength || b.Fields["length"] != "Short" {
		t.Error("session state lost between lookups")
	}
}

func TestStoreUpdatesChatOnReconnect(t *testing.T) {
	st := newTestStore()

	st.Get("user-1", "chat-1", "websocket")
	s := st.Get("user-1", "chat-2", "websocket")
	if s.ChatID != "chat-2" {
		t.Errorf("ChatID = %q, want the reconnected chat", s.ChatID)
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	st := newTestStore()

	a := st.Get("user-1", "chat-1", "telegram")
	b := st.Get("user-2", "chat-2", "telegram")
	if a == b {
		t.Fatal("different users share a session")
	}
	if a.Knowledge == b.Knowledge {
		t.Error("different users share a knowledge registry")
	}

	a.Fields["tone"] = "Casual"
	if _, ok := b.Fields["tone"]; ok {
		t.Error("field written for user-1 visible to user-2")
	}
}

func TestSessionReset(t *testing.T) {
	st := newTestStore()

	s := st.Get("user-1", "chat-1", "telegram")
	s.State = StateConfirm
	s.Mode = ModeEdit
	s.Fields["length"] = "Long"
	s.AppendHistory("User: hello")

	s.Reset()

	if s.State != StateChat || s.Mode != ModeFill {
		t.Errorf("after reset: state %v mode %v, want chat/fill", s.State, s.Mode)
	}
	if len(s.Fields) != 0 {
		t.Errorf("fields survived reset: %#v", s.Fields)
	}
	if len(s.History) != 0 {
		t.Errorf("history survived reset: %#v", s.History)
	}
}

func TestStateAndModeStrings(t *testing.T) {
	if StateChat.String() != "chat" {
		t.Errorf("StateChat.String() = %q", StateChat.String())
	}
	if StateTopicOrTask.String() != "topic_or_task" {
		t.Errorf("StateTopicOrTask.String() = %q", StateTopicOrTask.String())
	}
	if ModeFill.String() != "fill" || ModeEdit.String() != "edit" {
		t.Error("mode strings wrong")
	}
}
