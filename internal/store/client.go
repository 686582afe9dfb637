package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	defaultTimeout = 20 * time.Second
	apiVersion     = "2022-06-28"
	queryPageSize  = 100
)

// ClientConfig configures the record-store client.
type ClientConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the record store's REST API.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient constructs a record-store client.
func NewClient(cfg ClientConfig, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("store token is required")
	}
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
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

// Query runs a database query and returns the matching records. The filter
// may be nil.
func (c *Client) Query(ctx context.Context, dbID string, filter map[string]any) ([]Record, error) {
	if strings.TrimSpace(dbID) == "" {
		return nil, nil
	}
	payload := map[string]any{"page_size": queryPageSize}
	if filter != nil {
		payload["filter"] = filter
	}

	var out struct {
		Results []Record `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/databases/"+dbID+"/query", payload, &out); err != nil {
		return nil, fmt.Errorf("query database: %w", err)
	}
	return out.Results, nil
}

// CreatePage creates a page in the given database.
func (c *Client) CreatePage(ctx context.Context, dbID string, properties map[string]any) (Record, error) {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": dbID},
		"properties": properties,
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &rec); err != nil {
		return Record{}, fmt.Errorf("create page: %w", err)
	}
	return rec, nil
}

// UpdatePage patches page properties.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]any) error {
	payload := map[string]any{"properties": properties}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload, nil); err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// GetPage fetches a single page.
func (c *Client) GetPage(ctx context.Context, pageID string) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &rec); err != nil {
		return Record{}, fmt.Errorf("get page: %w", err)
	}
	return rec, nil
}

// Schema returns the raw property schema of a database.
func (c *Client) Schema(ctx context.Context, dbID string) (json.RawMessage, error) {
	var out struct {
		Properties json.RawMessage `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "/databases/"+dbID, nil, &out); err != nil {
		return nil, fmt.Errorf("get database schema: %w", err)
	}
	return out.Properties, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
