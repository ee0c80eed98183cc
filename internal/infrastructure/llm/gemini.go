package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kimseungO/news-sum/internal/config"
	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/ports"
)

// GeminiClient implements ports.SummaryGenerator with structured JSON output.
type GeminiClient struct {
	client  *genai.Client
	model   string
	prompt  string
	timeout time.Duration
}

var _ ports.SummaryGenerator = (*GeminiClient)(nil)

// NewGeminiClient builds a Gemini API client from configuration.
// httpClient may be nil.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (*GeminiClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("gemini client misconfigured")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		prompt:  cfg.Prompt,
		timeout: cfg.Timeout,
	}, nil
}

// Generate asks the model for a {title, sum_contents, keyword} object.
func (c *GeminiClient) Generate(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(BuildPrompt(c.prompt, text)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   summarySchema(),
		})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", domain.ErrEmptyResponse
	}
	return out, nil
}

func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":        {Type: genai.TypeString},
			"sum_contents": {Type: genai.TypeString},
			"keyword": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"title", "sum_contents", "keyword"},
	}
}
