package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimseungO/news-sum/internal/config"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "tok", ChatID: "42", BaseURL: srv.URL + "/"})
	require.NoError(t, n.PublishDigest(context.Background(), "news_sum run\n- [5] snake_case title"))

	assert.Equal(t, "/bottok/sendMessage", gotPath)
	assert.Equal(t, "42", gotForm["chat_id"])
	assert.Equal(t, "news_sum run\n- [5] snake_case title", gotForm["text"])
	assert.NotContains(t, gotForm, "parse_mode")
}

func TestPublishDigestAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "tok", ChatID: "42", BaseURL: srv.URL})
	err := n.PublishDigest(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	err := NewNotifier(config.TelegramConfig{ChatID: "42"}).PublishDigest(context.Background(), "x")
	assert.Error(t, err)
}

func TestPublishDigestHidesTokenOnTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "secret-token", ChatID: "42", BaseURL: srv.URL})
	err := n.PublishDigest(context.Background(), "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("가", 5000)
	got := truncate(long, maxMessageLen)
	assert.Equal(t, maxMessageLen, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, truncatedMark))
}
