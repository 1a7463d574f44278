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

const defaultWikipediaAPIBase = "https://en.wikipedia.org"

// WikipediaSearch searches Wikipedia and returns the top matching articles.
type WikipediaSearch struct {
	baseURL    string
	httpClient Doer
}

func NewWikipediaSearch(httpClient Doer) *WikipediaSearch {
	return &WikipediaSearch{baseURL: defaultWikipediaAPIBase, httpClient: httpClient}
}

// NewWikipediaSearchWithBase overrides the API base URL, for tests.
func NewWikipediaSearchWithBase(httpClient Doer, baseURL string) *WikipediaSearch {
	return &WikipediaSearch{baseURL: baseURL, httpClient: httpClient}
}

func (t *WikipediaSearch) Name() string  { return "wikipediaSearch" }
func (t *WikipediaSearch) Title() string { return "Wikipedia Search" }
func (t *WikipediaSearch) Description() string {
	return "Searches Wikipedia for a topic and returns titles and snippets of the top matching articles."
}

func (t *WikipediaSearch) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "The topic to search Wikipedia for.",
			},
		},
		Required: []string{"query"},
	}
}

func (t *WikipediaSearch) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query argument is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "5")
	params.Set("format", "json")
	endpoint := fmt.Sprintf("%s/w/api.php?%s", t.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia API returned status %d", resp.StatusCode)
	}

	var out struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode wikipedia response: %w", err)
	}

	results := make([]map[string]any, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		results = append(results, map[string]any{
			"title":   s.Title,
			"snippet": s.Snippet,
		})
	}
	return map[string]any{"query": query, "results": results}, nil
}
