package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LowStock describes a physical product whose quantity dropped to or below
// its alert threshold.
type LowStock struct {
	Name      string
	SKU       string
	Quantity  int
	Threshold int
}

type Notifier interface {
	LowStock(ctx context.Context, items []LowStock) error
}

type Noop struct{}

func (Noop) LowStock(context.Context, []LowStock) error { return nil }

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    sender
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	log.Info("telegram notifier authorized", "account", api.Self.UserName)
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) LowStock(ctx context.Context, items []LowStock) error {
	if len(items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatLowStock(items))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.log.Debug("low stock alert sent", "items", len(items))
	return nil
}

func FormatLowStock(items []LowStock) string {
	var sb strings.Builder
	sb.WriteString("Low stock alert:\n")
	for _, it := range items {
		name := it.Name
		if it.SKU != "" {
			name += " (" + it.SKU + ")"
		}
		fmt.Fprintf(&sb, "• %s: %d left, alert at %d\n", name, it.Quantity, it.Threshold)
	}
	return strings.TrimRight(sb.String(), "\n")
}
