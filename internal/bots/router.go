package bots

import (
	"context"
	"fmt"
)

// SenderRouter dispatches outgoing messages to the sender for their platform.
// It lets platform-agnostic code (e.g. the pipeline runner) deliver
// asynchronous results without knowing which adapter owns the chat.
type SenderRouter struct {
	senders map[Platform]Sender
}

// NewSenderRouter creates a router over the given platform senders.
func NewSenderRouter(senders map[Platform]Sender) *SenderRouter {
	return &SenderRouter{senders: senders}
}

// Send routes the message to its platform's sender.
func (r *SenderRouter) Send(ctx context.Context, msg OutgoingMessage) error {
	s, ok := r.senders[msg.Platform]
	if !ok {
		return fmt.Errorf("no sender registered for platform %q", msg.Platform)
	}
	return s.Send(ctx, msg)
}
