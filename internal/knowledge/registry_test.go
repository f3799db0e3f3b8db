package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeEmbedder produces deterministic non-zero vectors from text bytes.
type fakeEmbedder struct{}

func (fakeEmbedder) Name() string { return "fake" }

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 8)
		for j, b := range []byte(text) {
			v[j%8] += float32(b)
		}
		v[0]++ // never the zero vector
		out[i] = v
	}
	return out, nil
}

func writeTxt(t *testing.T, content string) Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return DocumentSource(path, DocTXT)
}

func newTestRegistry() *Registry {
	return NewRegistry(NewToolBuilder(fakeEmbedder{}), zap.NewNop())
}

func TestRegistryRegisterAndSearch(t *testing.T) {
	r := newTestRegistry()
	src := writeTxt(t, "The Eiffel Tower is 330 metres tall and stands in Paris.")

	if err := r.Register(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	tools := r.Snapshot()
	if len(tools) != 1 {
		t.Fatalf("Snapshot() returned %d tools, want 1", len(tools))
	}

	passages, err := tools[0].Search(context.Background(), "Eiffel Tower height", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(passages) != 1 || passages[0] != "The Eiffel Tower is 330 metres tall and stands in Paris." {
		t.Errorf("passages = %#v", passages)
	}
}

func TestRegistryKeepsFailedEntriesOutOfSnapshot(t *testing.T) {
	r := newTestRegistry()

	missing := DocumentSource(filepath.Join(t.TempDir(), "gone.txt"), DocTXT)
	if err := r.Register(context.Background(), missing); err == nil {
		t.Fatal("expected error for a missing file")
	}

	good := writeTxt(t, "Some indexable content here.")
	if err := r.Register(context.Background(), good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both registrations are recorded, only the working one is searchable.
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if tools := r.Snapshot(); len(tools) != 1 {
		t.Errorf("Snapshot() returned %d tools, want 1", len(tools))
	}
	if sources := r.Sources(); len(sources) != 2 {
		t.Errorf("Sources() returned %d, want 2", len(sources))
	}
}

func TestRegistryPreservesRegistrationOrderWithDuplicates(t *testing.T) {
	r := newTestRegistry()
	src := writeTxt(t, "duplicate content")

	for i := 0; i < 3; i++ {
		if err := r.Register(context.Background(), src); err != nil {
			t.Fatalf("registration %d failed: %v", i, err)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (no deduplication)", r.Len())
	}
}

func TestRegistryClear(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(context.Background(), writeTxt(t, "content")); err != nil {
		t.Fatal(err)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", r.Len())
	}
	if tools := r.Snapshot(); len(tools) != 0 {
		t.Errorf("Snapshot() returned %d tools after Clear", len(tools))
	}
}

func TestToolBuilderConcurrentBuilds(t *testing.T) {
	builder := NewToolBuilder(fakeEmbedder{})

	const n = 8
	srcs := make([]Source, n)
	for i := range srcs {
		srcs[i] = writeTxt(t, "document number "+string(rune('a'+i)))
	}

	tools := make([]*Tool, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tools[i], errs[i] = builder.Build(context.Background(), srcs[i])
		}(i)
	}
	wg.Wait()

	// Every build gets its own collection holding only its own source.
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("build %d failed: %v", i, errs[i])
		}
		passages, err := tools[i].Search(context.Background(), "document", 10)
		if err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
		if len(passages) != 1 || passages[0] != "document number "+string(rune('a'+i)) {
			t.Errorf("tool %d passages = %#v", i, passages)
		}
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	builder := NewToolBuilder(fakeEmbedder{})
	a := NewRegistry(builder, zap.NewNop())
	b := NewRegistry(builder, zap.NewNop())

	if err := a.Register(context.Background(), writeTxt(t, "only in a")); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 0 {
		t.Errorf("registry b sees %d sources from registry a", b.Len())
	}
}
