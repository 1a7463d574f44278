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

const defaultGitHubAPIBase = "https://api.github.com"

// GitHubUser fetches public profile information for a GitHub user.
type GitHubUser struct {
	baseURL    string
	httpClient Doer
}

func NewGitHubUser(httpClient Doer) *GitHubUser {
	return &GitHubUser{baseURL: defaultGitHubAPIBase, httpClient: httpClient}
}

// NewGitHubUserWithBase overrides the API base URL, for tests.
func NewGitHubUserWithBase(httpClient Doer, baseURL string) *GitHubUser {
	return &GitHubUser{baseURL: baseURL, httpClient: httpClient}
}

func (t *GitHubUser) Name() string  { return "getGithubUser" }
func (t *GitHubUser) Title() string { return "Get GitHub User" }
func (t *GitHubUser) Description() string {
	return "Fetches publicly available information about a GitHub user by username from the GitHub users API."
}

func (t *GitHubUser) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"username": {
				Type:        "string",
				Description: "The GitHub username to fetch information for (single word).",
			},
		},
		Required: []string{"username"},
	}
}

func (t *GitHubUser) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	username, _ := args["username"].(string)
	if username == "" {
		// Some models put the value under "query" instead.
		username, _ = args["query"].(string)
	}
	if username == "" {
		return nil, fmt.Errorf("username argument is required")
	}

	endpoint := fmt.Sprintf("%s/users/%s", t.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user %q not found, status %d", username, resp.StatusCode)
	}

	var user map[string]any
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode github response: %w", err)
	}
	return user, nil
}
