package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"interview-bot/internal/analytics"
	"interview-bot/internal/conversation"
	"interview-bot/internal/storage"
)

const reportCmd = "report"

const failureText = "Sorry, something went wrong. Please try again."

// Handler consumes inbound conversation events.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

type Options struct {
	Recorder    storage.Recorder
	AdminUserID int64
	Logger      *zap.Logger
}

type Bot struct {
	api         *tgbotapi.BotAPI
	token       string
	handler     Handler
	gateway     conversation.Gateway
	recorder    storage.Recorder
	adminUserID int64
	log         *zap.Logger
	now         func() time.Time
}

func New(api *tgbotapi.BotAPI, handler Handler, gateway conversation.Gateway, opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:         api,
		token:       api.Token,
		handler:     handler,
		gateway:     gateway,
		recorder:    opts.Recorder,
		adminUserID: opts.AdminUserID,
		log:         log,
		now:         time.Now,
	}
}

// Start long-polls for updates until ctx is cancelled.
// Updates are handled one at a time.
func (b *Bot) Start(ctx context.Context) error {
	// polling is refused while a webhook is registered
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	b.log.Info("polling for updates", zap.String("bot", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	// stickers, photos, locations and the like carry no text to answer with
	if !msg.IsCommand() && msg.Text == "" {
		b.log.Debug("skipping message without text", zap.Int64("chat_id", msg.Chat.ID))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Any("panic", r))
		}
	}()

	ev := toEvent(msg)
	b.log.Info("incoming message",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("command", ev.Command),
		zap.Int("text_len", len(ev.Text)))

	if ev.Command == reportCmd && b.isAdmin(msg) {
		if err := b.sendReport(ctx, msg.Chat.ID, b.now()); err != nil {
			b.log.Error("failed to send report", zap.Error(err))
			b.notifyFailure(ctx, msg.Chat.ID)
		}
		return
	}

	if err := b.handler.Handle(ctx, ev); err != nil {
		b.log.Error("failed to handle message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		b.notifyFailure(ctx, msg.Chat.ID)
	}
}

// toEvent strips the slash and any @botname suffix from commands.
func toEvent(msg *tgbotapi.Message) conversation.Event {
	ev := conversation.Event{Identity: msg.Chat.ID}
	if msg.IsCommand() {
		ev.Command = msg.Command()
		return ev
	}
	ev.Text = msg.Text
	return ev
}

func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	return b.adminUserID != 0 && msg.From != nil && msg.From.ID == b.adminUserID
}

func (b *Bot) notifyFailure(ctx context.Context, chatID int64) {
	if err := b.gateway.Send(ctx, conversation.Message{ChatID: chatID, Text: failureText}); err != nil {
		b.log.Error("failed to send failure notice", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// SendDailyReport sends today's (UTC) activity summary to the admin.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	if b.adminUserID == 0 {
		b.log.Warn("ADMIN_USER not set, skipping daily report")
		return nil
	}
	return b.sendReport(ctx, b.adminUserID, b.now().UTC())
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, day time.Time) error {
	if b.recorder == nil {
		return errors.New("interaction log disabled")
	}
	events, err := b.recorder.LoadInteractions()
	if err != nil {
		return fmt.Errorf("load interactions: %w", err)
	}
	stats := analytics.AnalyzeDailyLogs(events, day)
	return b.gateway.Send(ctx, conversation.Message{ChatID: chatID, Text: stats.GenerateReportSummary()})
}
