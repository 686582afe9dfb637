package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(ClientConfig{Token: "tok", ChatID: "42", BaseURL: srv.URL}, srv.Client())
	return c, srv
}

func TestSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok": true}`))
	})

	ok := c.Send(context.Background(), "hello")
	assert.True(t, ok)
	assert.Equal(t, "/bottok/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
	assert.Equal(t, "HTML", gotBody["parse_mode"])
}

func TestSendDisabledClient(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)
	assert.False(t, c.Enabled())
	assert.False(t, c.Send(context.Background(), "nobody home"))
}

func TestSendServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	assert.False(t, c.Send(context.Background(), "x"))
}

func TestSendLongChunks(t *testing.T) {
	var texts []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		texts = append(texts, body["text"].(string))
		_, _ = w.Write([]byte(`{"ok": true}`))
	})

	long := strings.Repeat("é", maxChunkRunes+10)
	ok := c.SendLong(context.Background(), long)
	require.True(t, ok)
	require.Len(t, texts, 2)
	assert.Len(t, []rune(texts[0]), maxChunkRunes)
	assert.Len(t, []rune(texts[1]), 10)
}

func TestSetWebhook(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok": true}`))
	})

	require.NoError(t, c.SetWebhook(context.Background(), "https://bot.example/webhook"))
	assert.Equal(t, "https://bot.example/webhook", gotBody["url"])
}

func TestUpdateChatID(t *testing.T) {
	var u Update
	require.NoError(t, json.Unmarshal([]byte(`{"message": {"chat": {"id": 123456}, "text": "/check"}}`), &u))
	assert.Equal(t, "123456", u.ChatID())
	assert.Equal(t, "/check", u.Message.Text)
}
