package telegram

import (
	"context"
	"fmt"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"interview-bot/internal/conversation"
)

// sender is the slice of *tgbotapi.BotAPI the gateway needs; tests swap it out.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Gateway renders conversation messages as Telegram messages and sends them.
type Gateway struct {
	s sender
}

func NewGateway(api *tgbotapi.BotAPI) *Gateway {
	return &Gateway{s: api}
}

func (g *Gateway) Send(ctx context.Context, msg conversation.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := g.s.Send(render(msg)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func render(msg conversation.Message) tgbotapi.MessageConfig {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	out.DisableWebPagePreview = msg.DisablePreview

	switch msg.Format {
	case conversation.FormatMarkdown:
		out.ParseMode = tgbotapi.ModeMarkdown
	case conversation.FormatBold:
		out.Entities = wholeText("bold", msg.Text)
	case conversation.FormatItalic:
		out.Entities = wholeText("italic", msg.Text)
	}

	if len(msg.Keyboard) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(msg.Keyboard))
		for _, label := range msg.Keyboard {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
		}
		out.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	}
	return out
}

// wholeText styles the full text. Entity offsets are in UTF-16 code units.
func wholeText(kind, text string) []tgbotapi.MessageEntity {
	n := len(utf16.Encode([]rune(text)))
	if n == 0 {
		return nil
	}
	return []tgbotapi.MessageEntity{{Type: kind, Offset: 0, Length: n}}
}
