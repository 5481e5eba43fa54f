package notifier

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Brownie44l1/solariq/internal/classifier"
)

type Telegram struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewTelegram(token string, chatIDs []string) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, tgbotapi.APIEndpoint, chatIDs, &http.Client{Timeout: 10 * time.Second})
}

// NewTelegramWithEndpoint talks to a custom Bot API endpoint, such as a
// self-hosted server.
func NewTelegramWithEndpoint(token, endpoint string, chatIDs []string, client *http.Client) (*Telegram, error) {
	ids := make([]int64, 0, len(chatIDs))
	for _, s := range chatIDs {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", s, err)
		}
		ids = append(ids, id)
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	return &Telegram{api: api, chatIDs: ids}, nil
}

func (t *Telegram) Notify(ctx context.Context, r classifier.Result) error {
	text := formatMessage(r)

	for _, chatID := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := t.api.Send(msg); err != nil {
			return fmt.Errorf("send to %d: %w", chatID, err)
		}
	}

	return nil
}

func formatMessage(r classifier.Result) string {
	icon := "⚠️"
	title := "Panel alert"
	if r.IsCritical {
		icon = "🚨"
		title = "Critical panel alert"
	}

	return fmt.Sprintf(`%s <b>%s</b>

<b>Image:</b> %s
<b>Condition:</b> %s
<b>Confidence:</b> %s

<b>Description:</b> %s
<b>Action:</b> %s

<i>%s</i>`,
		icon,
		title,
		html.EscapeString(r.ImagePath),
		html.EscapeString(r.Condition),
		r.ConfidencePct,
		html.EscapeString(r.Description),
		html.EscapeString(r.Action),
		r.Timestamp.Format(time.RFC3339),
	)
}
