package wizard

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/bots"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/llm"
	"github.com/ziadkadry99/blogsmith/internal/pipeline"
	"github.com/ziadkadry99/blogsmith/internal/session"
)

// input is one user turn as seen by a handler.
type input struct {
	Text       string
	Attachment *bots.Attachment
}

// result is a handler's reply plus the state the session moves to.
type result struct {
	Reply string
	Next  session.State
}

type handlerFunc func(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error)

type transitionKey struct {
	State session.State
	Mode  session.Mode
}

// transitions routes each (state, mode) pair to its handler. Every dialogue
// state is registered for both modes so routing can never miss.
var transitions = map[transitionKey]handlerFunc{}

func register(st session.State, mode session.Mode, h handlerFunc) {
	transitions[transitionKey{State: st, Mode: mode}] = h
}

func registerBoth(st session.State, h handlerFunc) {
	register(st, session.ModeFill, h)
	register(st, session.ModeEdit, h)
}

func init() {
	registerBoth(session.StateChat, handleChat)
	register(session.StateTopicOrTask, session.ModeFill, handleTopicOrTaskFill)
	register(session.StateTopicOrTask, session.ModeEdit, handleTopicOrTaskEdit)
	registerBoth(session.StateTopic, handleTopic)
	registerBoth(session.StateTask, handleTask)
	registerBoth(session.StateWebsite, handleWebsite)
	registerBoth(session.StateDocument, handleDocument)

	register(session.StateLength, session.ModeFill,
		fillField(session.FieldLength, promptLangLevel, session.StateLanguageLevel))
	register(session.StateLength, session.ModeEdit,
		editField(session.FieldLength, promptLangLevelEdit, session.StateLanguageLevel))
	register(session.StateLanguageLevel, session.ModeFill,
		fillField(session.FieldLangLevel, promptInfoLevel, session.StateInformation))
	register(session.StateLanguageLevel, session.ModeEdit,
		editField(session.FieldLangLevel, promptInfoLevelEdit, session.StateInformation))
	register(session.StateInformation, session.ModeFill,
		fillField(session.FieldInfoLevel, promptLanguage, session.StateLanguage))
	register(session.StateInformation, session.ModeEdit,
		editField(session.FieldInfoLevel, promptLanguageEdit, session.StateLanguage))
	register(session.StateLanguage, session.ModeFill,
		fillField(session.FieldLanguage, promptTone, session.StateTone))
	register(session.StateLanguage, session.ModeEdit,
		editField(session.FieldLanguage, promptToneEdit, session.StateTone))
	register(session.StateTone, session.ModeFill,
		fillField(session.FieldTone, promptAdditional, session.StateAdditional))
	register(session.StateTone, session.ModeEdit,
		editField(session.FieldTone, promptAdditionalEdit, session.StateAdditional))

	registerBoth(session.StateAdditional, handleAdditional)
	registerBoth(session.StateConfirm, handleConfirm)
}

// isNo reports whether the text is the dialogue terminator.
func isNo(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "no")
}

func handleChat(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	s.AppendHistory("User: " + in.Text)
	reply, err := w.converse(ctx, s.History)
	if err != nil {
		// Drop the turn so a retry does not duplicate it.
		s.History = s.History[:len(s.History)-1]
		return result{}, err
	}
	s.AppendHistory("Bot: " + reply)
	return result{Reply: reply, Next: session.StateChat}, nil
}

func handleTopicOrTaskFill(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	switch strings.ToLower(strings.TrimSpace(in.Text)) {
	case "topic":
		return result{Reply: promptTopic, Next: session.StateTopic}, nil
	case "task":
		return result{Reply: promptTask, Next: session.StateTask}, nil
	default:
		return result{Reply: invalidTopicOrTask, Next: session.StateTopicOrTask}, nil
	}
}

func handleTopicOrTaskEdit(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	if isNo(in.Text) {
		return result{Reply: promptWebsiteEdit, Next: session.StateWebsite}, nil
	}
	return handleTopicOrTaskFill(ctx, w, s, in)
}

func handleTopic(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	s.Fields[session.FieldTopicOrTask] = strings.TrimSpace(in.Text)
	if s.Mode == session.ModeEdit {
		return result{Reply: promptWebsiteEdit, Next: session.StateWebsite}, nil
	}
	return result{Reply: promptWebsite, Next: session.StateWebsite}, nil
}

func handleTask(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	s.Fields[session.FieldTopicOrTask] = "fulfilling task " + strings.TrimSpace(in.Text)
	if s.Mode == session.ModeEdit {
		return result{Reply: promptWebsiteEdit, Next: session.StateWebsite}, nil
	}
	return result{Reply: promptWebsite, Next: session.StateWebsite}, nil
}

func handleWebsite(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	if isNo(in.Text) {
		if s.Mode == session.ModeEdit {
			return result{Reply: promptDocumentEdit, Next: session.StateDocument}, nil
		}
		return result{Reply: promptDocument, Next: session.StateDocument}, nil
	}
	src := knowledge.WebsiteSource(strings.TrimSpace(in.Text))
	if err := s.Knowledge.Register(ctx, src); err != nil {
		w.log.Warn("website source failed", zap.String("url", src.URL), zap.Error(err))
		return result{
			Reply: "I couldn't read that website (" + err.Error() + "). You can try another link, or send 'no' to continue.",
			Next:  session.StateWebsite,
		}, nil
	}
	if s.Mode == session.ModeEdit {
		return result{Reply: promptWebsiteEditMore, Next: session.StateWebsite}, nil
	}
	return result{Reply: promptWebsiteAnother, Next: session.StateWebsite}, nil
}

func handleDocument(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	if in.Attachment != nil {
		src, err := w.intake.Accept(ctx, in.Attachment.FileName, in.Attachment.MIMEType, in.Attachment.Fetch)
		if errors.Is(err, knowledge.ErrUnsupportedType) {
			return result{
				Reply: "Sorry, I can only read PDF, DOCX and plain-text documents. " + promptDocumentAnother,
				Next:  session.StateDocument,
			}, nil
		}
		if err != nil {
			w.log.Warn("document intake failed", zap.String("file", in.Attachment.FileName), zap.Error(err))
			return result{
				Reply: "I couldn't receive that document (" + err.Error() + "). Please try again, or send 'no' to continue.",
				Next:  session.StateDocument,
			}, nil
		}
		if err := s.Knowledge.Register(ctx, src); err != nil {
			w.log.Warn("document source failed", zap.String("file", in.Attachment.FileName), zap.Error(err))
			return result{
				Reply: "I couldn't read that document (" + err.Error() + "). You can try another one, or send 'no' to continue.",
				Next:  session.StateDocument,
			}, nil
		}
		return result{Reply: promptDocumentAnother, Next: session.StateDocument}, nil
	}
	if isNo(in.Text) {
		if s.Mode == session.ModeEdit {
			return result{Reply: promptLengthEdit, Next: session.StateLength}, nil
		}
		return result{Reply: promptLength, Next: session.StateLength}, nil
	}
	return result{Reply: invalidDocument, Next: session.StateDocument}, nil
}

// fillField stores the answer verbatim and moves on.
func fillField(field, nextPrompt string, next session.State) handlerFunc {
	return func(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
		s.Fields[field] = strings.TrimSpace(in.Text)
		return result{Reply: nextPrompt, Next: next}, nil
	}
}

// editField keeps the stored answer on 'no' or an empty reply and replaces
// it otherwise.
func editField(field, nextPrompt string, next session.State) handlerFunc {
	return func(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
		if text := strings.TrimSpace(in.Text); text != "" && !isNo(text) {
			s.Fields[field] = text
		}
		return result{Reply: nextPrompt, Next: next}, nil
	}
}

func handleAdditional(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	text := strings.TrimSpace(in.Text)
	if s.Mode == session.ModeEdit {
		if text != "" && !isNo(text) {
			s.Fields[session.FieldAdditional] = text
		}
	} else if isNo(text) || text == "" {
		s.Fields[session.FieldAdditional] = ""
	} else {
		s.Fields[session.FieldAdditional] = text
	}
	return result{Reply: confirmPrompt(s), Next: session.StateConfirm}, nil
}

func handleConfirm(ctx context.Context, w *Wizard, s *session.Session, in input) (result, error) {
	if !strings.EqualFold(strings.TrimSpace(in.Text), "yes") {
		s.Mode = session.ModeEdit
		return result{Reply: promptReconfigure, Next: session.StateTopicOrTask}, nil
	}

	brief := pipeline.NewBrief(s.Fields, s.History)
	job := pipeline.Job{
		Brief:   brief,
		Tools:   s.Knowledge.Snapshot(),
		Session: s,
	}
	if err := w.runner.Enqueue(job); err != nil {
		w.log.Warn("enqueue failed", zap.String("user", s.UserID), zap.Error(err))
		return result{
			Reply: "I'm at capacity right now (" + err.Error() + "). Please send 'yes' again in a moment to retry.",
			Next:  session.StateConfirm,
		}, nil
	}
	s.AppendHistory("User requested an article: " + brief.Summary())
	w.recordBrief(ctx, s.UserID, brief)
	return result{Reply: processingReply, Next: session.StateChat}, nil
}

// converse runs the free-chat turn against the conversational model.
func (w *Wizard) converse(ctx context.Context, history []string) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleSystem,
		Content: "You are a helpful assistant inside a blog-article generator bot. Answer the user's messages conversationally.",
	})
	for _, h := range history {
		role := llm.RoleUser
		if strings.HasPrefix(h, "Bot: ") {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: strings.TrimPrefix(strings.TrimPrefix(h, "Bot: "), "User: ")})
	}
	resp, err := w.chat.Complete(ctx, llm.CompletionRequest{
		Model:       w.chatModel,
		Messages:    msgs,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
