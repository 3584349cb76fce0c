// Package notify delivers order notifications over Telegram and
// composes WhatsApp hand-off links for checkout.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// TelegramClient is a minimal Bot API client covering the two calls the
// service needs: sendMessage and getUpdates.
type TelegramClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewTelegramClient(token string) *TelegramClient {
	return &TelegramClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultTelegramBaseURL,
		token:      token,
	}
}

// NewTelegramClientWithBaseURL points the client at an alternate API
// host. Used by tests.
func NewTelegramClientWithBaseURL(token, baseURL string) *TelegramClient {
	c := NewTelegramClient(token)
	c.baseURL = baseURL
	return c
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *TelegramClient) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: %s", method, envelope.Description)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// SendMessage posts a Markdown-formatted message to a chat.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// TelegramChat identifies a chat the bot has seen.
type TelegramChat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type TelegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat TelegramChat `json:"chat"`
		Text string       `json:"text"`
	} `json:"message"`
}

// GetUpdates fetches pending bot updates. The admin UI uses this to
// discover chats that have messaged the bot so they can be registered
// as notification channels.
func (c *TelegramClient) GetUpdates(ctx context.Context) ([]TelegramUpdate, error) {
	var updates []TelegramUpdate
	if err := c.call(ctx, "getUpdates", map[string]interface{}{}, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
