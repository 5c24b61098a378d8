package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/shopdesk/internal/infra/logger"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramLowStock(t *testing.T) {
	fs := &fakeSender{}
	n := &Telegram{api: fs, chatID: 42, log: logger.Discard()}

	err := n.LowStock(context.Background(), []LowStock{
		{Name: "Shampoo", SKU: "SH-1", Quantity: 2, Threshold: 5},
		{Name: "Comb", Quantity: 0, Threshold: 1},
	})
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fs.sent))
	}
	msg, ok := fs.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", fs.sent[0])
	}
	if msg.ChatID != 42 {
		t.Errorf("chat id = %d", msg.ChatID)
	}
	for _, want := range []string{"Shampoo (SH-1): 2 left, alert at 5", "Comb: 0 left, alert at 1"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message %q does not contain %q", msg.Text, want)
		}
	}
}

func TestTelegramSkipsEmptyAndWrapsErrors(t *testing.T) {
	fs := &fakeSender{err: errors.New("boom")}
	n := &Telegram{api: fs, chatID: 1, log: logger.Discard()}

	if err := n.LowStock(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(fs.sent) != 0 {
		t.Fatalf("empty batch sent a message")
	}

	err := n.LowStock(context.Background(), []LowStock{{Name: "x"}})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want wrapped send error", err)
	}
}
