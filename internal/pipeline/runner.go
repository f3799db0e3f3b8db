package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/bots"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/session"
)

// Job is one queued generation request.
type Job struct {
	Brief   Brief
	Tools   []*knowledge.Tool
	Session *session.Session
}

// Runner executes generation jobs on a small worker pool, off the
// message-handling path. Completion (or failure) is reported back to the
// originating chat via the outbound sender, and the result is appended to the
// session history under the session's lock.
type Runner struct {
	gen     Generator
	sender  bots.Sender
	archive *session.Archive
	timeout time.Duration
	queue   chan Job
	workers int
	wg      sync.WaitGroup
	log     *zap.Logger
}

// NewRunner creates a runner with the given worker count and per-job timeout.
// archive may be nil.
func NewRunner(gen Generator, sender bots.Sender, archive *session.Archive, workers int, timeout time.Duration, log *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Runner{
		gen:     gen,
		sender:  sender,
		archive: archive,
		timeout: timeout,
		queue:   make(chan Job, 16),
		workers: workers,
		log:     log,
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-r.queue:
					r.run(ctx, job)
				}
			}
		}()
	}
}

// Wait blocks until all workers have exited.
func (r *Runner) Wait() { r.wg.Wait() }

// Enqueue submits a job. It fails fast when the queue is full so the user can
// be told to retry instead of blocking the message handler.
func (r *Runner) Enqueue(job Job) error {
	select {
	case r.queue <- job:
		return nil
	default:
		return fmt.Errorf("generation queue is full")
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	jobCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	article, err := r.gen.Generate(jobCtx, job.Brief, job.Tools)
	if err != nil {
		r.log.Error("generation failed",
			zap.String("brief", job.Brief.ID),
			zap.String("user", job.Session.UserID),
			zap.Error(err))
		r.deliver(ctx, job, fmt.Sprintf(
			"An error occurred while generating your article: %v. \nYour answers are kept; send /start_configuration to review them and confirm again.", err))
		return
	}

	job.Session.Lock()
	job.Session.AppendHistory("Bot: " + article)
	job.Session.Unlock()

	if r.archive != nil {
		if err := r.archive.Record(ctx, job.Session.UserID, "bot", article); err != nil {
			r.log.Warn("archiving article failed", zap.Error(err))
		}
	}

	r.deliver(ctx, job, article)
}

func (r *Runner) deliver(ctx context.Context, job Job, text string) {
	err := r.sender.Send(ctx, bots.OutgoingMessage{
		Platform: bots.Platform(job.Session.Platform),
		ChatID:   job.Session.ChatID,
		Text:     text,
	})
	if err != nil {
		r.log.Error("delivering pipeline result failed",
			zap.String("user", job.Session.UserID), zap.Error(err))
	}
}
