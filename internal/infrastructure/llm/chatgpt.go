package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kimseungO/news-sum/internal/config"
	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/ports"
)

const defaultChatEndpoint = "https://api.openai.com/v1/chat/completions"

// ChatGPTClient implements ports.SummaryGenerator backed by
// OpenAI-compatible chat completion APIs.
type ChatGPTClient struct {
	endpoint   string
	model      string
	apiKey     string
	prompt     string
	httpClient *http.Client
}

var _ ports.SummaryGenerator = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. A zero timeout
// leaves the request bounded only by ctx.
func NewChatGPTClient(cfg config.LLMConfig) *ChatGPTClient {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultChatEndpoint
	}
	return &ChatGPTClient{
		endpoint:   endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		prompt:     cfg.Prompt,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate posts the composed text and returns the JSON message content.
func (c *ChatGPTClient) Generate(ctx context.Context, text string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: "You summarize clusters of news articles and answer only with JSON."},
			{Role: "user", Content: BuildPrompt(c.prompt, text)},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chatgpt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s after %s: %s",
			resp.Status, time.Since(started).Round(time.Millisecond), strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", domain.ErrEmptyResponse
	}

	out := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if out == "" {
		return "", domain.ErrEmptyResponse
	}
	return out, nil
}
