package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/blogsmith/internal/embeddings"
)

// Tool is a searchable view over one registered source: its extracted text,
// chunked and embedded into a dedicated chromem collection.
type Tool struct {
	source     Source
	collection *chromem.Collection
}

// Source returns the source this tool was built from.
func (t *Tool) Source() Source { return t.source }

// Search returns up to limit passages from the source relevant to the query.
func (t *Tool) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}
	// chromem-go requires nResults <= collection size.
	if count := t.collection.Count(); count == 0 {
		return nil, nil
	} else if limit > count {
		limit = count
	}

	results, err := t.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.source.Describe(), err)
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Content
	}
	return passages, nil
}

// ToolBuilder indexes sources into an in-memory chromem database. One builder
// is shared by every session, so collection naming is synchronized.
type ToolBuilder struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc

	mu  sync.Mutex
	seq int
}

// NewToolBuilder creates a builder using the given embedder for indexing and
// queries.
func NewToolBuilder(embedder embeddings.Embedder) *ToolBuilder {
	return &ToolBuilder{
		db:        chromem.NewDB(),
		embedFunc: embeddings.ToChromemFunc(embedder),
	}
}

// Build extracts, chunks and indexes a source, returning its search tool.
func (b *ToolBuilder) Build(ctx context.Context, src Source) (*Tool, error) {
	text, err := ExtractText(ctx, src)
	if err != nil {
		return nil, err
	}

	chunks := chunkText(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s contains no extractable text", src.Describe())
	}

	b.mu.Lock()
	b.seq++
	name := fmt.Sprintf("source-%d", b.seq)
	col, err := b.db.CreateCollection(name, nil, b.embedFunc)
	b.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("creating collection for %s: %w", src.Describe(), err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      name + "-" + strconv.Itoa(i),
			Content: c,
		}
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", src.Describe(), err)
	}

	return &Tool{source: src, collection: col}, nil
}
