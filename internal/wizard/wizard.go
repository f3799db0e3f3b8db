// Package wizard implements the guided configuration dialogue that collects
// an article brief from a user, one question per turn. The dialogue is a
// state machine driven by a (state, mode) transition table: fill mode walks
// the questions for the first time, edit mode replays them after a declined
// confirmation with 'no' meaning "keep the stored answer".
package wizard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/bots"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/llm"
	"github.com/ziadkadry99/blogsmith/internal/pipeline"
	"github.com/ziadkadry99/blogsmith/internal/session"
)

// Wizard routes incoming messages through the dialogue state machine. It
// implements bots.MessageHandler.
type Wizard struct {
	sessions  *session.Store
	intake    *knowledge.Intake
	runner    *pipeline.Runner
	chat      llm.Provider
	chatModel string
	archive   *session.Archive
	log       *zap.Logger
}

// New creates the dialogue controller. archive may be nil to disable
// transcript recording.
func New(sessions *session.Store, intake *knowledge.Intake, runner *pipeline.Runner, chat llm.Provider, chatModel string, archive *session.Archive, log *zap.Logger) *Wizard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wizard{
		sessions:  sessions,
		intake:    intake,
		runner:    runner,
		chat:      chat,
		chatModel: chatModel,
		archive:   archive,
		log:       log,
	}
}

// HandleMessage processes one user turn and returns the reply. The session
// is locked for the whole turn, so per-user turns are strictly sequential.
func (w *Wizard) HandleMessage(ctx context.Context, msg bots.IncomingMessage) (*bots.OutgoingMessage, error) {
	s := w.sessions.Get(msg.UserID, msg.ChatID, string(msg.Platform))
	s.Lock()
	defer s.Unlock()

	w.record(ctx, s.UserID, "user", msg.Text)

	var reply string
	if cmdReply, handled := w.dispatchCommand(s, msg); handled {
		reply = cmdReply
	} else {
		reply = w.step(ctx, s, input{Text: msg.Text, Attachment: msg.Attachment})
	}

	w.record(ctx, s.UserID, "bot", reply)
	return &bots.OutgoingMessage{Platform: msg.Platform, ChatID: msg.ChatID, Text: reply}, nil
}

// step runs the transition for the session's current state and mode. A
// handler error is recovered in place: the user gets the error plus a
// state-specific resubmission hint and the session keeps its state.
func (w *Wizard) step(ctx context.Context, s *session.Session, in input) string {
	h, ok := transitions[transitionKey{State: s.State, Mode: s.Mode}]
	if !ok {
		// Unreachable as long as init registers every state for both modes.
		w.log.Error("no transition registered",
			zap.String("state", s.State.String()),
			zap.String("mode", s.Mode.String()))
		s.State = session.StateChat
		return "Something went wrong with the conversation flow, I've returned you to chat mode. Use /start_configuration to begin again."
	}

	res, err := h(ctx, w, s, in)
	if err != nil {
		w.log.Warn("turn failed",
			zap.String("user", s.UserID),
			zap.String("state", s.State.String()),
			zap.String("mode", s.Mode.String()),
			zap.Error(err))
		return fmt.Sprintf("An error occurred: %v. %s", err, retryHints[s.State])
	}

	s.State = res.Next
	return res.Reply
}

// dispatchCommand handles the /command fallbacks that are available from any
// state. The second return is false when the message is not a command.
func (w *Wizard) dispatchCommand(s *session.Session, msg bots.IncomingMessage) (string, bool) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.ToLower(strings.Fields(text)[0])
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at] // strip bot mention suffix, e.g. /help@blogsmith_bot
	}

	switch cmd {
	case "/start":
		s.State = session.StateChat
		s.Mode = session.ModeFill
		s.History = nil
		name := msg.UserName
		if name == "" {
			name = "there"
		}
		return fmt.Sprintf(greeting, name), true
	case "/start_configuration":
		s.State = session.StateTopicOrTask
		s.Mode = session.ModeFill
		return promptTopicOrTask, true
	case "/chat":
		s.State = session.StateChat
		return chatModeReply, true
	case "/clear":
		s.Reset()
		return clearReply, true
	case "/cancel":
		s.State = session.StateChat
		s.Mode = session.ModeFill
		return cancelReply, true
	case "/help":
		return helpText, true
	default:
		return "Unknown command. " + helpText, true
	}
}

func (w *Wizard) record(ctx context.Context, userID, role, content string) {
	if w.archive == nil || content == "" {
		return
	}
	if err := w.archive.Record(ctx, userID, role, content); err != nil {
		w.log.Warn("transcript record failed", zap.String("user", userID), zap.Error(err))
	}
}

func (w *Wizard) recordBrief(ctx context.Context, userID string, brief pipeline.Brief) {
	if w.archive == nil {
		return
	}
	if err := w.archive.RecordBrief(ctx, brief.ID, userID, brief.Summary()); err != nil {
		w.log.Warn("brief record failed", zap.String("user", userID), zap.Error(err))
	}
}
