package bots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramBot adapts the Telegram Bot API to the gateway. It long-polls for
// updates and delivers replies with the paragraph chunking rule applied.
type TelegramBot struct {
	api          *tgbotapi.BotAPI
	gateway      *Gateway
	messageLimit int
	httpClient   *http.Client
	log          *zap.Logger
}

// NewTelegramBot creates a Telegram adapter for the given bot token.
func NewTelegramBot(token string, gateway *Gateway, messageLimit int, log *zap.Logger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &TelegramBot{
		api:          api,
		gateway:      gateway,
		messageLimit: messageLimit,
		httpClient:   &http.Client{},
		log:          log,
	}, nil
}

// Run long-polls Telegram for updates until ctx is cancelled. Each update is
// processed on its own goroutine; per-session ordering is enforced further
// down by the session store's per-session lock.
func (b *TelegramBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *TelegramBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	m := update.Message
	msg := IncomingMessage{
		Platform: PlatformTelegram,
		ChatID:   strconv.FormatInt(m.Chat.ID, 10),
		Text:     m.Text,
	}
	if m.From != nil {
		msg.UserID = strconv.FormatInt(m.From.ID, 10)
		msg.UserName = m.From.UserName
	}
	if m.Document != nil {
		msg.Attachment = b.attachment(m.Document)
	}

	reply, err := b.gateway.Process(ctx, msg)
	if err != nil {
		b.log.Error("processing telegram update", zap.Error(err), zap.String("user", msg.UserID))
		reply = &OutgoingMessage{ChatID: msg.ChatID, Text: fmt.Sprintf("An error occurred: %v. Please try again.", err)}
	}
	if reply == nil || reply.Text == "" {
		return
	}
	reply.ChatID = msg.ChatID
	if err := b.Send(ctx, *reply); err != nil {
		b.log.Error("sending telegram reply", zap.Error(err), zap.String("chat", msg.ChatID))
	}
}

// attachment wraps a Telegram document in a lazily-fetched Attachment.
func (b *TelegramBot) attachment(doc *tgbotapi.Document) *Attachment {
	fileID := doc.FileID
	return &Attachment{
		FileName: doc.FileName,
		MIMEType: doc.MimeType,
		Fetch: func(ctx context.Context) ([]byte, error) {
			url, err := b.api.GetFileDirectURL(fileID)
			if err != nil {
				return nil, fmt.Errorf("resolving telegram file %s: %w", fileID, err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			resp, err := b.httpClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("downloading telegram file: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("telegram file download returned status %d", resp.StatusCode)
			}
			return io.ReadAll(resp.Body)
		},
	}
}

// Send delivers an outgoing message, splitting on paragraph boundaries when
// the text exceeds the Telegram message size limit.
func (b *TelegramBot) Send(_ context.Context, msg OutgoingMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", msg.ChatID, err)
	}
	for _, chunk := range SplitMessage(msg.Text, b.messageLimit) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("sending telegram message: %w", err)
		}
	}
	return nil
}
