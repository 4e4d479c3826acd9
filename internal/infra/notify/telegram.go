package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/costbook/internal/domain/shortages"
)

// Sender часть *tgbotapi.BotAPI, которая нужна для рассылки.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram шлёт в админ-чат список материалов, ушедших в минус.
type Telegram struct {
	api    Sender
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot api: %w", err)
	}
	return NewTelegramWithSender(api, chatID, log), nil
}

func NewTelegramWithSender(api Sender, chatID int64, log *slog.Logger) *Telegram {
	return &Telegram{api: api, chatID: chatID, log: log}
}

func (t *Telegram) NotifyShortages(ctx context.Context, items []shortages.Item) error {
	if len(items) == 0 || t.chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, ShortageText(items))); err != nil {
		t.log.Error("send failed", "err", err)
		return fmt.Errorf("send shortage notice: %w", err)
	}
	return nil
}

// ShortageText "⚠️ Материалы закончились:" + строка на материал с количеством к докупке.
func ShortageText(items []shortages.Item) string {
	var b strings.Builder
	b.WriteString("⚠️ Материалы закончились:")
	for _, it := range items {
		b.WriteString("\n— ")
		b.WriteString(it.Name)
		b.WriteString(": докупить ")
		b.WriteString(strconv.FormatFloat(it.AmountNeeded, 'f', -1, 64))
	}
	return b.String()
}
