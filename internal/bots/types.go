package bots

import "context"

// Platform identifies the messaging platform.
type Platform string

const (
	PlatformTelegram  Platform = "telegram"
	PlatformWebSocket Platform = "websocket"
)

// Attachment describes a file sent by the user. The raw bytes are fetched
// lazily so type validation can happen before any download.
type Attachment struct {
	FileName string
	MIMEType string
	Fetch    func(ctx context.Context) ([]byte, error)
}

// IncomingMessage represents a message received from any platform.
type IncomingMessage struct {
	Platform   Platform
	ChatID     string
	UserID     string
	UserName   string
	Text       string
	Attachment *Attachment
}

// OutgoingMessage represents a response to send back.
type OutgoingMessage struct {
	Platform Platform
	ChatID   string
	Text     string
}

// Sender delivers outgoing messages to a platform. Implementations must apply
// the chunking rule for texts exceeding the platform's message size limit.
type Sender interface {
	Send(ctx context.Context, msg OutgoingMessage) error
}
