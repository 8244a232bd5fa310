package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTelegramAPI is the Telegram Bot API endpoint.
const DefaultTelegramAPI = "https://api.telegram.org"

// DefaultRetryDelay is how long polling backs off after a failed getUpdates call.
const DefaultRetryDelay = 5 * time.Second

// TelegramNotifier delivers reports to one chat and reads commands from it.
type TelegramNotifier struct {
	APIBase    string
	BotToken   string
	ChatID     string
	Client     *http.Client
	RetryDelay time.Duration
}

// apiReply is the envelope every Bot API method answers with.
type apiReply struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type outgoingMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewTelegramNotifier creates a notifier for chatID. proxyURL may be empty.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if u, err := url.Parse(proxyURL); err == nil && proxyURL != "" {
		transport.Proxy = http.ProxyURL(u)
	}
	return &TelegramNotifier{
		APIBase:    DefaultTelegramAPI,
		BotToken:   botToken,
		ChatID:     chatID,
		Client:     &http.Client{Timeout: 30 * time.Second, Transport: transport},
		RetryDelay: DefaultRetryDelay,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// call performs one Bot API request and unwraps the reply envelope.
// A non-200 status or ok=false is an error carrying Telegram's description.
func (t *TelegramNotifier) call(client *http.Client, req *http.Request) (json.RawMessage, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	var reply apiReply
	decodeErr := json.Unmarshal(raw, &reply)
	if resp.StatusCode != http.StatusOK || decodeErr != nil || !reply.OK {
		detail := reply.Description
		if detail == "" {
			detail = string(raw)
		}
		return nil, fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, detail)
	}
	return reply.Result, nil
}

// Send posts text to the chat as HTML. Failed sends are not retried.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(outgoingMessage{ChatID: t.ChatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if _, err := t.call(t.Client, req); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
