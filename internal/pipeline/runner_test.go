package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/bots"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/session"
)

// captureGenerator returns a canned article and records the briefs it saw.
type captureGenerator struct {
	mu      sync.Mutex
	briefs  []Brief
	article string
	err     error
}

func (g *captureGenerator) Generate(ctx context.Context, brief Brief, tools []*knowledge.Tool) (string, error) {
	g.mu.Lock()
	g.briefs = append(g.briefs, brief)
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.article, nil
}

// captureSender pushes delivered messages onto a channel.
type captureSender struct {
	sent chan bots.OutgoingMessage
}

func newCaptureSender() *captureSender {
	return &captureSender{sent: make(chan bots.OutgoingMessage, 8)}
}

func (s *captureSender) Send(ctx context.Context, msg bots.OutgoingMessage) error {
	s.sent <- msg
	return nil
}

func testSession() *session.Session {
	st := session.NewStore(func() *knowledge.Registry {
		return knowledge.NewRegistry(nil, zap.NewNop())
	})
	return st.Get("user-1", "chat-1", "telegram")
}

func waitFor(t *testing.T, ch chan bots.OutgoingMessage) bots.OutgoingMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return bots.OutgoingMessage{}
	}
}

func TestRunnerDeliversArticleToOriginChat(t *testing.T) {
	gen := &captureGenerator{article: "# The Article\n\nBody text."}
	sender := newCaptureSender()
	r := NewRunner(gen, sender, nil, 1, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	s := testSession()
	brief := NewBrief(map[string]string{session.FieldTopicOrTask: "go"}, nil)
	if err := r.Enqueue(Job{Brief: brief, Session: s}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	msg := waitFor(t, sender.sent)
	if msg.Platform != bots.PlatformTelegram || msg.ChatID != "chat-1" {
		t.Errorf("delivered to %s/%s, want telegram/chat-1", msg.Platform, msg.ChatID)
	}
	if msg.Text != "# The Article\n\nBody text." {
		t.Errorf("delivered %q", msg.Text)
	}

	s.Lock()
	defer s.Unlock()
	if len(s.History) != 1 || !strings.HasPrefix(s.History[0], "Bot: # The Article") {
		t.Errorf("article not appended to history: %#v", s.History)
	}
}

func TestRunnerReportsGenerationFailure(t *testing.T) {
	gen := &captureGenerator{err: errors.New("model unavailable")}
	sender := newCaptureSender()
	r := NewRunner(gen, sender, nil, 1, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	s := testSession()
	if err := r.Enqueue(Job{Brief: NewBrief(nil, nil), Session: s}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	msg := waitFor(t, sender.sent)
	if !strings.Contains(msg.Text, "model unavailable") {
		t.Errorf("failure reply does not name the error: %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "/start_configuration") {
		t.Errorf("failure reply does not tell the user how to retry: %q", msg.Text)
	}

	s.Lock()
	defer s.Unlock()
	if len(s.History) != 0 {
		t.Errorf("failed generation polluted history: %#v", s.History)
	}
}

func TestRunnerEnqueueFailsFastWhenFull(t *testing.T) {
	// Never started: jobs stay queued.
	r := NewRunner(&captureGenerator{}, newCaptureSender(), nil, 1, time.Minute, zap.NewNop())

	s := testSession()
	var err error
	for i := 0; i < 20; i++ {
		if err = r.Enqueue(Job{Brief: NewBrief(nil, nil), Session: s}); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("enqueue never failed on a full queue")
	}
}

func TestRunnerArchivesDeliveredArticle(t *testing.T) {
	archive, err := session.OpenMemoryArchive()
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	gen := &captureGenerator{article: "archived article"}
	sender := newCaptureSender()
	r := NewRunner(gen, sender, archive, 1, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	s := testSession()
	if err := r.Enqueue(Job{Brief: NewBrief(nil, nil), Session: s}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, sender.sent)

	entries, err := archive.Transcript(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Role != "bot" || entries[0].Content != "archived article" {
		t.Errorf("transcript = %#v", entries)
	}
}
