// Package factcheck verifies numeric claims in generated text against web
// search results and appends inline citations. The pattern is search-then-
// judge: each candidate sentence is used as a search query, and a judge model
// is asked, per retrieved document, whether the claim holds. The first
// corroborating source wins; claims no source corroborates are removed from
// the output rather than published unsupported.
package factcheck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/llm"
)

// SearchResult is one (document, source link) pair returned by a web search.
type SearchResult struct {
	Content string
	Link    string
}

// Searcher is the web search capability used to find corroborating documents.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Status is the verification outcome of a fact candidate.
type Status int

const (
	StatusUnverified Status = iota
	StatusVerified
	StatusRejected
)

// Candidate is a sentence flagged for verification because it contains a
// numeral, together with its outcome.
type Candidate struct {
	Sentence string
	Status   Status
	Source   string // citation link when verified
}

// Verifier runs the fact verification & citation engine.
type Verifier struct {
	searcher    Searcher
	judge       llm.Provider
	judgeModel  string
	maxSources  int
	callTimeout time.Duration
	log         *zap.Logger
}

// NewVerifier creates a Verifier. maxSources bounds how many search results
// are judged per candidate; callTimeout bounds each external call.
func NewVerifier(searcher Searcher, judge llm.Provider, judgeModel string, maxSources int, callTimeout time.Duration, log *zap.Logger) *Verifier {
	if maxSources <= 0 {
		maxSources = 10
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Verifier{
		searcher:    searcher,
		judge:       judge,
		judgeModel:  judgeModel,
		maxSources:  maxSources,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Annotate verifies every fact candidate in text. Verified sentences gain an
// inline citation suffix, rejected ones are dropped, and everything else
// passes through unchanged. A deduplicated source list is appended when any
// citation was made.
func (v *Verifier) Annotate(ctx context.Context, text string) (string, error) {
	paragraphs := strings.Split(text, "\n\n")
	revised := make([]string, 0, len(paragraphs))
	var sources []string

	for _, paragraph := range paragraphs {
		var kept []string
		for _, sentence := range SplitSentences(paragraph) {
			if !ContainsNumeral(sentence) {
				kept = append(kept, sentence)
				continue
			}

			cand, err := v.Verify(ctx, sentence)
			if err != nil {
				return "", fmt.Errorf("verifying %q: %w", sentence, err)
			}
			switch cand.Status {
			case StatusVerified:
				kept = append(kept, fmt.Sprintf("%s (Source: %s)", sentence, cand.Source))
				sources = append(sources, cand.Source)
			case StatusRejected:
				v.log.Debug("dropping unverifiable claim", zap.String("sentence", sentence))
			}
		}
		revised = append(revised, strings.Join(kept, " "))
	}

	out := strings.Join(revised, "\n\n")
	if deduped := dedupe(sources); len(deduped) > 0 {
		out += "\n\nSources:\n" + strings.Join(deduped, "\n")
	}
	return out, nil
}

// Verify runs search-then-judge for a single candidate sentence. Search
// results are judged in order and the first "yes" verdict short-circuits;
// the remaining sources are never queried.
func (v *Verifier) Verify(ctx context.Context, sentence string) (Candidate, error) {
	cand := Candidate{Sentence: sentence}

	searchCtx, cancel := context.WithTimeout(ctx, v.callTimeout)
	results, err := v.searcher.Search(searchCtx, sentence)
	cancel()
	if err != nil {
		return cand, fmt.Errorf("web search: %w", err)
	}

	if len(results) > v.maxSources {
		results = results[:v.maxSources]
	}

	for _, r := range results {
		verdict, err := v.judgeOne(ctx, r.Content, sentence)
		if err != nil {
			// A single failed judge call does not reject the claim; the next
			// source may still corroborate it.
			v.log.Warn("judge call failed", zap.String("link", r.Link), zap.Error(err))
			continue
		}
		if verdict {
			cand.Status = StatusVerified
			cand.Source = r.Link
			return cand, nil
		}
	}

	cand.Status = StatusRejected
	return cand, nil
}

// judgeOne asks the judge model whether the statement holds given a document.
func (v *Verifier) judgeOne(ctx context.Context, document, statement string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.callTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Using this data: %s. Check if this is true or false: %s. If it is true, reply with 'yes', if it is false, reply with 'no'.",
		document, statement)

	resp, err := v.judge.Complete(ctx, llm.CompletionRequest{
		Model:       v.judgeModel,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(resp.Content), "yes"), nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
