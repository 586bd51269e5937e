package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/belovebe/taskmatch/internal/config"
)

// Notifier delivers short texts to a user's Telegram chat. Callers
// treat delivery as best-effort: failures are logged and swallowed at
// the call site, never propagated to the triggering request.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier calls the Bot API sendMessage method directly.
type TelegramNotifier struct {
	token  string
	client *http.Client
}

func NewTelegramNotifier(cfg *config.Config) *TelegramNotifier {
	return &TelegramNotifier{
		token:  cfg.Auth.BotToken,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage request: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// NopNotifier discards everything. Used in tests and when no bot token
// is configured.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, int64, string) error { return nil }
