package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// pollTimeout is the server-side long-poll window in seconds.
const pollTimeout = 30

// CommandHandler answers one chat command. An empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

// command returns the trimmed message text, or "" for updates without text.
func (u telegramUpdate) command() string {
	if u.Message == nil {
		return ""
	}
	return strings.TrimSpace(u.Message.Text)
}

// StartPolling reads chat commands with getUpdates and replies through handler.
// Rejected or failed polls back off for RetryDelay. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := &http.Client{Timeout: (pollTimeout + 5) * time.Second, Transport: t.Client.Transport}
	offset := 0

	for ctx.Err() == nil {
		updates, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] polling getUpdates: %v", err)
			sleep(ctx, t.retryDelay())
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			cmd := u.command()
			if cmd == "" {
				continue
			}
			log.Printf("[INFO] received command: %s", cmd)
			if reply := handler(ctx, cmd); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					log.Printf("[ERROR] reply to %s: %v", cmd, err)
				}
			}
		}
	}
	log.Println("[INFO] Telegram polling stopped")
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	u := fmt.Sprintf("%s?offset=%d&timeout=%d", t.endpoint("getUpdates"), offset, pollTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	result, err := t.call(client, req)
	if err != nil {
		return nil, err
	}
	var updates []telegramUpdate
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (t *TelegramNotifier) retryDelay() time.Duration {
	if t.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return t.RetryDelay
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
