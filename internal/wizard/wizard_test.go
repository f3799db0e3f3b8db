package wizard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/bots"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/llm"
	"github.com/ziadkadry99/blogsmith/internal/pipeline"
	"github.com/ziadkadry99/blogsmith/internal/session"
)

// fakeEmbedder produces deterministic non-zero vectors so chromem indexing
// works without a model.
type fakeEmbedder struct{}

func (fakeEmbedder) Name() string { return "fake" }

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 8)
		for j, b := range []byte(text) {
			v[j%8] += float32(b)
		}
		v[0]++
		out[i] = v
	}
	return out, nil
}

// fakeChat is the conversational LLM.
type fakeChat struct {
	mu    sync.Mutex
	calls []llm.CompletionRequest
	reply string
	err   error
}

func (f *fakeChat) Name() string { return "fake-chat" }

func (f *fakeChat) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply}, nil
}

// fakeGenerator captures the briefs handed to the pipeline.
type fakeGenerator struct {
	mu     sync.Mutex
	briefs []pipeline.Brief
	tools  [][]*knowledge.Tool
}

func (g *fakeGenerator) Generate(ctx context.Context, brief pipeline.Brief, tools []*knowledge.Tool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.briefs = append(g.briefs, brief)
	g.tools = append(g.tools, tools)
	return "generated article", nil
}

func (g *fakeGenerator) lastBrief(t *testing.T) pipeline.Brief {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.briefs) == 0 {
		t.Fatal("no brief reached the pipeline")
	}
	return g.briefs[len(g.briefs)-1]
}

type fakeSender struct {
	sent chan bots.OutgoingMessage
}

func (s *fakeSender) Send(ctx context.Context, msg bots.OutgoingMessage) error {
	s.sent <- msg
	return nil
}

type harness struct {
	wizard   *Wizard
	sessions *session.Store
	runner   *pipeline.Runner
	gen      *fakeGenerator
	sender   *fakeSender
	chat     *fakeChat
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	builder := knowledge.NewToolBuilder(fakeEmbedder{})
	sessions := session.NewStore(func() *knowledge.Registry {
		return knowledge.NewRegistry(builder, zap.NewNop())
	})
	intake, err := knowledge.NewIntake(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	gen := &fakeGenerator{}
	sender := &fakeSender{sent: make(chan bots.OutgoingMessage, 8)}
	runner := pipeline.NewRunner(gen, sender, nil, 1, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	runner.Start(ctx)

	chat := &fakeChat{reply: "chat reply"}
	w := New(sessions, intake, runner, chat, "test-model", nil, zap.NewNop())

	return &harness{
		wizard:   w,
		sessions: sessions,
		runner:   runner,
		gen:      gen,
		sender:   sender,
		chat:     chat,
	}
}

func (h *harness) send(t *testing.T, text string) string {
	t.Helper()
	return h.sendMessage(t, bots.IncomingMessage{
		Platform: bots.PlatformTelegram,
		ChatID:   "chat-1",
		UserID:   "user-1",
		UserName: "alice",
		Text:     text,
	})
}

func (h *harness) sendMessage(t *testing.T, msg bots.IncomingMessage) string {
	t.Helper()
	reply, err := h.wizard.HandleMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("HandleMessage(%q) failed: %v", msg.Text, err)
	}
	return reply.Text
}

func (h *harness) session() *session.Session {
	return h.sessions.Get("user-1", "chat-1", string(bots.PlatformTelegram))
}

func (h *harness) state() session.State {
	s := h.session()
	s.Lock()
	defer s.Unlock()
	return s.State
}

func (h *harness) field(name string) string {
	s := h.session()
	s.Lock()
	defer s.Unlock()
	return s.Fields[name]
}

// fillToConfirm walks a complete first-pass configuration using topic "Go".
func (h *harness) fillToConfirm(t *testing.T) string {
	t.Helper()
	h.send(t, "/start_configuration")
	h.send(t, "topic")
	h.send(t, "Go")
	h.send(t, "no") // website
	h.send(t, "no") // document
	h.send(t, "Short")
	h.send(t, "Beginner")
	h.send(t, "High")
	h.send(t, "English")
	h.send(t, "Casual")
	return h.send(t, "no") // additional -> confirm prompt
}

func (h *harness) waitForArticle(t *testing.T) bots.OutgoingMessage {
	t.Helper()
	select {
	case msg := <-h.sender.sent:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("article never delivered")
		return bots.OutgoingMessage{}
	}
}

func TestConfigurationFillFlow(t *testing.T) {
	h := newHarness(t)

	confirm := h.fillToConfirm(t)
	if !strings.Contains(confirm, "Topic or Task: Go") {
		t.Errorf("confirmation does not show the topic: %q", confirm)
	}
	if !strings.Contains(confirm, "Tone: Casual") {
		t.Errorf("confirmation does not show the tone: %q", confirm)
	}
	if h.state() != session.StateConfirm {
		t.Fatalf("state = %v, want confirm", h.state())
	}

	reply := h.send(t, "yes")
	if !strings.Contains(reply, "Processing") {
		t.Errorf("confirm reply = %q, want a processing notice", reply)
	}
	if h.state() != session.StateChat {
		t.Errorf("state after confirm = %v, want chat", h.state())
	}

	msg := h.waitForArticle(t)
	if msg.Text != "generated article" {
		t.Errorf("delivered %q", msg.Text)
	}

	brief := h.gen.lastBrief(t)
	if brief.TopicOrTask != "Go" || brief.Length != "Short" || brief.LanguageLevel != "Beginner" {
		t.Errorf("brief = %+v", brief)
	}
	if brief.InformationLevel != "High" || brief.Language != "English" || brief.Tone != "Casual" {
		t.Errorf("brief = %+v", brief)
	}
	if brief.AdditionalInformation != "" {
		t.Errorf("additional = %q, want empty for 'no'", brief.AdditionalInformation)
	}
}

func TestTaskAnswerStoresTaskPrefix(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/start_configuration")
	h.send(t, "task")
	h.send(t, "announce our product launch")

	if got := h.field(session.FieldTopicOrTask); got != "fulfilling task announce our product launch" {
		t.Errorf("stored %q", got)
	}
	if h.state() != session.StateWebsite {
		t.Errorf("state = %v, want website", h.state())
	}
}

func TestInvalidTopicOrTaskChoiceRepeats(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/start_configuration")
	reply := h.send(t, "an essay please")

	if !strings.Contains(reply, "'topic' or 'task'") {
		t.Errorf("reply = %q", reply)
	}
	if h.state() != session.StateTopicOrTask {
		t.Errorf("state = %v, want to stay at topic_or_task", h.state())
	}
}

func TestWebsiteLoopRegistersEachLink(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some page content worth indexing.</body></html>"))
	}))
	defer ts.Close()

	h := newHarness(t)
	h.send(t, "/start_configuration")
	h.send(t, "topic")
	h.send(t, "Go")

	reply := h.send(t, ts.URL)
	if !strings.Contains(reply, "another") {
		t.Errorf("reply after first link = %q", reply)
	}
	if h.state() != session.StateWebsite {
		t.Errorf("state = %v, want to stay at website", h.state())
	}

	h.send(t, ts.URL+"/second")
	h.send(t, "no")

	s := h.session()
	s.Lock()
	defer s.Unlock()
	if s.Knowledge.Len() != 2 {
		t.Errorf("registered %d sources, want 2", s.Knowledge.Len())
	}
	if s.State != session.StateDocument {
		t.Errorf("state = %v, want document", s.State)
	}
}

func TestWebsiteFailureReportsAndStays(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	h := newHarness(t)
	h.send(t, "/start_configuration")
	h.send(t, "topic")
	h.send(t, "Go")

	reply := h.send(t, ts.URL)
	if !strings.Contains(reply, "couldn't read that website") {
		t.Errorf("reply = %q", reply)
	}
	if h.state() != session.StateWebsite {
		t.Errorf("state = %v, want to stay at website", h.state())
	}

	s := h.session()
	s.Lock()
	defer s.Unlock()
	if len(s.Knowledge.Snapshot()) != 0 {
		t.Error("failed source became searchable")
	}
}

func TestDocumentUploadAndUnsupportedType(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/start_configuration")
	h.send(t, "topic")
	h.send(t, "Go")
	h.send(t, "no") // website

	// Unsupported type is rejected before download, state unchanged.
	reply := h.sendMessage(t, bots.IncomingMessage{
		Platform: bots.PlatformTelegram,
		ChatID:   "chat-1",
		UserID:   "user-1",
		Attachment: &bots.Attachment{
			FileName: "photo.png",
			MIMEType: "image/png",
			Fetch: func(context.Context) ([]byte, error) {
				t.Error("fetch ran for an unsupported type")
				return nil, nil
			},
		},
	})
	if !strings.Contains(reply, "PDF, DOCX and plain-text") {
		t.Errorf("rejection reply = %q", reply)
	}
	if h.state() != session.StateDocument {
		t.Fatalf("state = %v, want to stay at document", h.state())
	}

	// A supported document is accepted and the loop continues.
	reply = h.sendMessage(t, bots.IncomingMessage{
		Platform: bots.PlatformTelegram,
		ChatID:   "chat-1",
		UserID:   "user-1",
		Attachment: &bots.Attachment{
			FileName: "notes.txt",
			MIMEType: "text/plain",
			Fetch: func(context.Context) ([]byte, error) {
				return []byte("Notes about the Go programming language."), nil
			},
		},
	})
	if !strings.Contains(reply, "another document") {
		t.Errorf("reply after upload = %q", reply)
	}

	s := h.session()
	s.Lock()
	if s.Knowledge.Len() != 1 {
		t.Errorf("registered %d sources, want 1", s.Knowledge.Len())
	}
	s.Unlock()

	// Free text other than 'no' is invalid here.
	reply = h.send(t, "here you go")
	if !strings.Contains(reply, "either a document or 'no'") {
		t.Errorf("invalid-input reply = %q", reply)
	}
	if h.state() != session.StateDocument {
		t.Errorf("state = %v, want to stay at document", h.state())
	}

	h.send(t, "no")
	if h.state() != session.StateLength {
		t.Errorf("state = %v, want length", h.state())
	}
}

func TestEditPassAllNoKeepsEveryAnswer(t *testing.T) {
	h := newHarness(t)
	h.fillToConfirm(t)

	reply := h.send(t, "no") // decline confirmation
	if !strings.Contains(reply, "reconfigure") {
		t.Errorf("reconfigure reply = %q", reply)
	}
	if h.state() != session.StateTopicOrTask {
		t.Fatalf("state = %v, want topic_or_task", h.state())
	}

	// Answer 'no' to every edit question.
	h.send(t, "no") // keep topic -> website
	h.send(t, "no") // website -> document
	h.send(t, "no") // document -> length
	h.send(t, "no") // length
	h.send(t, "no") // language level
	h.send(t, "no") // information level
	h.send(t, "no") // language
	h.send(t, "no") // tone
	confirm := h.send(t, "no") // additional -> confirm

	if h.state() != session.StateConfirm {
		t.Fatalf("state = %v, want confirm", h.state())
	}
	if !strings.Contains(confirm, "Topic or Task: Go") || !strings.Contains(confirm, "Length: Short") {
		t.Errorf("values changed during all-'no' edit pass: %q", confirm)
	}

	h.send(t, "yes")
	h.waitForArticle(t)
	brief := h.gen.lastBrief(t)
	if brief.TopicOrTask != "Go" || brief.Length != "Short" || brief.Tone != "Casual" {
		t.Errorf("brief after edit round trip = %+v", brief)
	}
}

func TestEditPassReplacesChangedAnswer(t *testing.T) {
	h := newHarness(t)
	h.fillToConfirm(t)
	h.send(t, "no") // decline confirmation -> edit mode

	h.send(t, "no")   // keep topic
	h.send(t, "no")   // website
	h.send(t, "no")   // document
	h.send(t, "Long") // change length
	h.send(t, "no")
	h.send(t, "no")
	h.send(t, "no")
	h.send(t, "no")
	confirm := h.send(t, "no")

	if !strings.Contains(confirm, "Length: Long") {
		t.Errorf("changed length not reflected: %q", confirm)
	}
	if !strings.Contains(confirm, "Tone: Casual") {
		t.Errorf("kept answer lost: %q", confirm)
	}
}

func TestEditPassEmptyReplyKeepsAnswer(t *testing.T) {
	h := newHarness(t)
	h.fillToConfirm(t)
	h.send(t, "no") // decline confirmation -> edit mode

	h.send(t, "no") // keep topic
	h.send(t, "no") // website
	h.send(t, "no") // document
	h.send(t, "   ") // whitespace at length
	h.send(t, "") // empty at language level
	h.send(t, "no")
	h.send(t, "no")
	h.send(t, "no")
	confirm := h.send(t, "   ") // whitespace at additional

	if got := h.field(session.FieldLength); got != "Short" {
		t.Errorf("whitespace reply overwrote length: got %q, want Short", got)
	}
	if got := h.field(session.FieldLangLevel); got != "Beginner" {
		t.Errorf("empty reply overwrote language level: got %q, want Beginner", got)
	}
	if !strings.Contains(confirm, "Length: Short") {
		t.Errorf("confirmation lost kept answer: %q", confirm)
	}
}

func TestEditPassCanChangeTopicToTask(t *testing.T) {
	h := newHarness(t)
	h.fillToConfirm(t)
	h.send(t, "no") // edit mode

	h.send(t, "task")
	h.send(t, "summarize the quarter")

	if got := h.field(session.FieldTopicOrTask); got != "fulfilling task summarize the quarter" {
		t.Errorf("stored %q", got)
	}
	if h.state() != session.StateWebsite {
		t.Errorf("state = %v, want website", h.state())
	}
}

func TestChatTurnCarriesHistory(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, "hello there")
	if reply != "chat reply" {
		t.Errorf("reply = %q", reply)
	}
	h.send(t, "second message")

	h.chat.mu.Lock()
	defer h.chat.mu.Unlock()
	if len(h.chat.calls) != 2 {
		t.Fatalf("chat model called %d times, want 2", len(h.chat.calls))
	}
	last := h.chat.calls[1].Messages
	// system + 3 history turns (user, assistant, user).
	if len(last) != 4 {
		t.Fatalf("second call carried %d messages, want 4", len(last))
	}
	if last[1].Content != "hello there" || last[1].Role != llm.RoleUser {
		t.Errorf("history turn 1 = %+v", last[1])
	}
	if last[2].Content != "chat reply" || last[2].Role != llm.RoleAssistant {
		t.Errorf("history turn 2 = %+v", last[2])
	}
}

func TestChatErrorKeepsStateAndHistoryClean(t *testing.T) {
	h := newHarness(t)
	h.chat.err = errors.New("model offline")

	reply := h.send(t, "hello")
	if !strings.Contains(reply, "model offline") || !strings.Contains(reply, "resend") {
		t.Errorf("error reply = %q", reply)
	}
	if h.state() != session.StateChat {
		t.Errorf("state = %v, want chat", h.state())
	}

	s := h.session()
	s.Lock()
	defer s.Unlock()
	if len(s.History) != 0 {
		t.Errorf("failed turn polluted history: %#v", s.History)
	}
}

func TestCommands(t *testing.T) {
	h := newHarness(t)

	if reply := h.send(t, "/start"); !strings.Contains(reply, "Hi alice!") {
		t.Errorf("/start reply = %q", reply)
	}

	h.send(t, "/start_configuration")
	if h.state() != session.StateTopicOrTask {
		t.Errorf("state after /start_configuration = %v", h.state())
	}

	// /help answers without leaving the dialogue.
	if reply := h.send(t, "/help"); !strings.Contains(reply, "/start_configuration") {
		t.Errorf("/help reply = %q", reply)
	}
	if h.state() != session.StateTopicOrTask {
		t.Errorf("/help moved the state to %v", h.state())
	}

	if reply := h.send(t, "/cancel"); !strings.Contains(reply, "canceled") {
		t.Errorf("/cancel reply = %q", reply)
	}
	if h.state() != session.StateChat {
		t.Errorf("state after /cancel = %v", h.state())
	}

	h.send(t, "/start_configuration")
	h.send(t, "topic")
	h.send(t, "Go")
	h.send(t, "/clear")
	if h.state() != session.StateChat {
		t.Errorf("state after /clear = %v", h.state())
	}
	if got := h.field(session.FieldTopicOrTask); got != "" {
		t.Errorf("fields survived /clear: %q", got)
	}

	if reply := h.send(t, "/bogus"); !strings.Contains(reply, "Unknown command") {
		t.Errorf("unknown command reply = %q", reply)
	}
}

func TestConfirmRejectsWhenQueueFull(t *testing.T) {
	// The runner is deliberately never started so queued jobs stay queued.
	builder := knowledge.NewToolBuilder(fakeEmbedder{})
	sessions := session.NewStore(func() *knowledge.Registry {
		return knowledge.NewRegistry(builder, zap.NewNop())
	})
	intake, err := knowledge.NewIntake(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(&fakeGenerator{}, &fakeSender{sent: make(chan bots.OutgoingMessage, 1)}, nil, 1, time.Minute, zap.NewNop())
	h := &harness{
		wizard:   New(sessions, intake, runner, &fakeChat{reply: "ok"}, "test-model", nil, zap.NewNop()),
		sessions: sessions,
		runner:   runner,
	}

	// Saturate the queue with filler jobs.
	s := h.session()
	for i := 0; i < 32; i++ {
		if err := runner.Enqueue(pipeline.Job{Brief: pipeline.NewBrief(nil, nil), Session: s}); err != nil {
			break
		}
	}

	h.fillToConfirm(t)
	reply := h.send(t, "yes")
	if !strings.Contains(reply, "capacity") {
		t.Errorf("reply = %q, want a capacity notice", reply)
	}
	if h.state() != session.StateConfirm {
		t.Errorf("state = %v, want to stay at confirm for a retry", h.state())
	}

	// Declining still works after a failed enqueue.
	if reply := h.send(t, "no"); !strings.Contains(reply, "reconfigure") {
		t.Errorf("decline after full queue = %q", reply)
	}
}
