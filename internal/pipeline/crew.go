package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/factcheck"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/llm"
)

// Generator produces an article from a brief and the session's knowledge
// tools.
type Generator interface {
	Generate(ctx context.Context, brief Brief, tools []*knowledge.Tool) (string, error)
}

// Crew is the sequential multi-agent generator: researcher, writer, editor and
// proofreader run one after another, each a single completion with its own
// role. The proofreader runs the fact verification engine over the draft.
type Crew struct {
	provider llm.Provider
	model    string
	verifier *factcheck.Verifier
	log      *zap.Logger
}

// NewCrew creates a crew. verifier may be nil, in which case the proofreading
// stage is skipped.
func NewCrew(provider llm.Provider, model string, verifier *factcheck.Verifier, log *zap.Logger) *Crew {
	return &Crew{
		provider: provider,
		model:    model,
		verifier: verifier,
		log:      log,
	}
}

// Generate runs the agent sequence for one brief.
func (c *Crew) Generate(ctx context.Context, brief Brief, tools []*knowledge.Tool) (string, error) {
	c.log.Info("pipeline started", zap.String("brief", brief.ID), zap.Int("tools", len(tools)))

	passages, err := c.research(ctx, brief, tools)
	if err != nil {
		return "", fmt.Errorf("research stage: %w", err)
	}

	notes, err := c.complete(ctx, researcherSystem, researchPrompt(brief, passages))
	if err != nil {
		return "", fmt.Errorf("research stage: %w", err)
	}

	draft, err := c.complete(ctx, writerSystem, writePrompt(brief, notes))
	if err != nil {
		return "", fmt.Errorf("writing stage: %w", err)
	}

	article, err := c.complete(ctx, editorSystem, editPrompt(brief, draft))
	if err != nil {
		return "", fmt.Errorf("editing stage: %w", err)
	}

	if c.verifier != nil {
		verified, err := c.verifier.Annotate(ctx, article)
		if err != nil {
			// Fact checking is best-effort: a search outage should not void
			// minutes of generation work. The unverified article is returned.
			c.log.Warn("proofreading stage failed, returning unverified article",
				zap.String("brief", brief.ID), zap.Error(err))
		} else {
			article = verified
		}
	}

	c.log.Info("pipeline finished", zap.String("brief", brief.ID), zap.Int("chars", len(article)))
	return article, nil
}

// research collects relevant passages from every knowledge tool.
func (c *Crew) research(ctx context.Context, brief Brief, tools []*knowledge.Tool) ([]string, error) {
	var passages []string
	for _, tool := range tools {
		found, err := tool.Search(ctx, brief.TopicOrTask, 3)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", tool.Source().Describe(), err)
		}
		passages = append(passages, found...)
	}
	return passages, nil
}

func (c *Crew) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
