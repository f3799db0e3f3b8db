package knowledge

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// entry records one registration attempt. Tool is nil when the source failed
// to initialize; such entries are kept (registration order is part of the
// session's record) but filtered out of Snapshot.
type entry struct {
	source Source
	tool   *Tool
	err    error
}

// Registry accumulates the knowledge sources attached to one session, in
// registration order, never deduplicating. Each session owns exactly one
// Registry.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	builder *ToolBuilder
	log     *zap.Logger
}

// NewRegistry creates an empty registry backed by the given tool builder.
func NewRegistry(builder *ToolBuilder, log *zap.Logger) *Registry {
	return &Registry{builder: builder, log: log}
}

// Register appends a source, building its search tool. The entry is recorded
// even when tool construction fails, so Snapshot can filter it later; the
// build error is returned for reporting to the user.
func (r *Registry) Register(ctx context.Context, src Source) error {
	tool, err := r.builder.Build(ctx, src)

	r.mu.Lock()
	r.entries = append(r.entries, entry{source: src, tool: tool, err: err})
	r.mu.Unlock()

	if err != nil {
		r.log.Warn("knowledge source failed to initialize",
			zap.String("source", src.Describe()), zap.Error(err))
		return err
	}
	r.log.Info("knowledge source registered", zap.String("source", src.Describe()))
	return nil
}

// Snapshot returns the usable tools in registration order, dropping entries
// whose initialization failed. The returned slice is safe to hand to the
// generation pipeline.
func (r *Registry) Snapshot() []*Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tools := make([]*Tool, 0, len(r.entries))
	for _, e := range r.entries {
		if e.tool != nil {
			tools = append(tools, e.tool)
		}
	}
	return tools
}

// Sources returns every registered source, including failed ones.
func (r *Registry) Sources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := make([]Source, len(r.entries))
	for i, e := range r.entries {
		sources[i] = e.source
	}
	return sources
}

// Len returns the number of registration attempts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
