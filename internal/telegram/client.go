// Package telegram implements the chat notifier and webhook registration.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second

	// maxChunkRunes keeps each message safely under the platform's 4096
	// character limit.
	maxChunkRunes = 3800
	chunkPause    = 500 * time.Millisecond
)

// ClientConfig configures the notifier.
type ClientConfig struct {
	Token   string
	ChatID  string
	BaseURL string
	Timeout time.Duration
}

// Client sends messages to one configured chat. When the token or chat id is
// missing the client is disabled: sends log the message and report failure
// instead of erroring, so a half-configured deployment still runs reports.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient constructs a notifier client.
func NewClient(cfg ClientConfig, httpClient *http.Client) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Enabled reports whether the client has a token and chat id to send with.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.cfg.Token) != "" && strings.TrimSpace(c.cfg.ChatID) != ""
}

// Send delivers one message to the configured chat.
func (c *Client) Send(ctx context.Context, text string) bool {
	if !c.Enabled() {
		log.Info().Str("text", text).Msg("telegram disabled, message not sent")
		return false
	}
	payload := map[string]any{
		"chat_id":                  c.cfg.ChatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if err := c.post(ctx, "sendMessage", payload); err != nil {
		log.Error().Err(err).Msg("telegram send failed")
		return false
	}
	return true
}

// SendLong splits an over-limit message into chunks, pausing between them to
// stay under the rate limit.
func (c *Client) SendLong(ctx context.Context, text string) bool {
	runes := []rune(text)
	if len(runes) <= maxChunkRunes {
		return c.Send(ctx, text)
	}
	ok := true
	for start := 0; start < len(runes); start += maxChunkRunes {
		end := start + maxChunkRunes
		if end > len(runes) {
			end = len(runes)
		}
		if !c.Send(ctx, string(runes[start:end])) {
			ok = false
		}
		if end < len(runes) {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(chunkPause):
			}
		}
	}
	return ok
}

// SetWebhook registers the inbound update URL with the chat platform.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	if strings.TrimSpace(c.cfg.Token) == "" {
		return fmt.Errorf("telegram token is required to set a webhook")
	}
	if err := c.post(ctx, "setWebhook", map[string]any{"url": url}); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, payload map[string]any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.cfg.BaseURL, c.cfg.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
