package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	sendTimeout    = 10 * time.Second
)

// ErrNotConfigured means the bot token or chat id is missing; sends are
// skipped rather than failed hard.
var ErrNotConfigured = errors.New("telegram: bot token or chat id not configured")

// Sender delivers plain-text messages to one Telegram chat.
type Sender struct {
	apiBase string
	token   string
	chatID  string
	http    *http.Client
}

func NewSender(token, chatID string) *Sender {
	return &Sender{
		apiBase: defaultAPIBase,
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: sendTimeout},
	}
}

type sendMessageBody struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send posts the text to the configured chat. ok reports confirmed delivery;
// only an ok result should be persisted by callers.
func (s *Sender) Send(ctx context.Context, text string) (bool, error) {
	if s.token == "" || s.chatID == "" {
		return false, ErrNotConfigured
	}

	// Strip invalid UTF-8 before it reaches the API.
	clean := strings.ToValidUTF8(text, "�")

	body, err := json.Marshal(sendMessageBody{ChatID: s.chatID, Text: clean})
	if err != nil {
		return false, fmt.Errorf("telegram: marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("telegram: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("telegram: send: unexpected status %d", resp.StatusCode)
	}
	return true, nil
}
