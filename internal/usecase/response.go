package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kimseungO/news-sum/internal/domain"
)

// summaryPayload mirrors the model contract. Pointers tell a missing key
// apart from an empty value.
type summaryPayload struct {
	Title       *string   `json:"title"`
	SumContents *string   `json:"sum_contents"`
	Keyword     *[]string `json:"keyword"`
}

// parseDraft validates raw model text into a Draft. Every failure wraps
// domain.ErrEmptyResponse or domain.ErrMalformedSummary.
func parseDraft(raw string) (domain.Draft, error) {
	cleaned := cleanJSONResponse(raw)
	if cleaned == "" {
		return domain.Draft{}, domain.ErrEmptyResponse
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Draft{}, fmt.Errorf("%w: %v", domain.ErrMalformedSummary, err)
	}

	var missing []string
	if payload.Title == nil {
		missing = append(missing, "title")
	}
	if payload.SumContents == nil {
		missing = append(missing, "sum_contents")
	}
	if payload.Keyword == nil {
		missing = append(missing, "keyword")
	}
	if len(missing) > 0 {
		return domain.Draft{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedSummary, strings.Join(missing, ", "))
	}

	keywords := make([]string, 0, len(*payload.Keyword))
	for _, k := range *payload.Keyword {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	return domain.Draft{
		Title:    strings.TrimSpace(*payload.Title),
		Content:  strings.TrimSpace(*payload.SumContents),
		Keywords: keywords,
	}, nil
}

// cleanJSONResponse strips markdown code fences models sometimes wrap JSON in.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, "```") {
		return response
	}

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```JSON")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	return strings.TrimSpace(response)
}
