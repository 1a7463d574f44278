package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	defaultSearchAPIBase     = "https://api.duckduckgo.com"
	defaultSearchResultCount = 5
)

// WebSearch searches the web via the DuckDuckGo instant-answer API and
// returns titles, URLs, and descriptions of the top matches.
type WebSearch struct {
	baseURL    string
	httpClient Doer
}

func NewWebSearch(httpClient Doer) *WebSearch {
	return &WebSearch{baseURL: defaultSearchAPIBase, httpClient: httpClient}
}

// NewWebSearchWithBase overrides the API base URL, for tests.
func NewWebSearchWithBase(httpClient Doer, baseURL string) *WebSearch {
	return &WebSearch{baseURL: baseURL, httpClient: httpClient}
}

func (t *WebSearch) Name() string  { return "performWebSearch" }
func (t *WebSearch) Title() string { return "Perform Web Search" }
func (t *WebSearch) Description() string {
	return "Searches the web for a query and returns titles, URLs, and descriptions of the top matching pages."
}

func (t *WebSearch) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "The search query to perform for up-to-date information.",
			},
			"num_results": {
				Type:        "integer",
				Description: "The number of search results to retrieve. Default: 5.",
			},
		},
		Required: []string{"query"},
	}
}

func (t *WebSearch) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query argument is required")
	}
	limit := resultLimit(args["num_results"])

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")
	endpoint := fmt.Sprintf("%s/?%s", t.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var out struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			FirstURL string `json:"FirstURL"`
			Text     string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]map[string]any, 0, limit)
	if out.AbstractURL != "" {
		results = append(results, map[string]any{
			"title":       out.Heading,
			"url":         out.AbstractURL,
			"description": out.AbstractText,
		})
	}
	for _, topic := range out.RelatedTopics {
		if len(results) >= limit {
			break
		}
		if topic.FirstURL == "" {
			continue
		}
		results = append(results, map[string]any{
			"title":       topic.Text,
			"url":         topic.FirstURL,
			"description": topic.Text,
		})
	}

	return map[string]any{"query": query, "results": results}, nil
}

// resultLimit reads num_results, which arrives as float64 from JSON or int
// after document normalization.
func resultLimit(v any) int {
	switch n := v.(type) {
	case int:
		if n > 0 {
			return n
		}
	case float64:
		if n > 0 {
			return int(n)
		}
	}
	return defaultSearchResultCount
}
