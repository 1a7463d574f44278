package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"shellsense"
	"shellsense/tools"
)

// Client is the protocol adapter for the Workers AI function-calling
// endpoint. It performs exactly one network round trip per Invoke; no
// retries, no caching.
type Client struct {
	endpoint   string
	apiToken   string
	httpClient shellsense.HTTPClient
}

type ClientOpts struct {
	BaseURL    string // e.g. https://api.cloudflare.com/client/v4/accounts
	AccountID  string
	APIToken   string
	Model      string // e.g. @hf/nousresearch/hermes-2-pro-mistral-7b
	HTTPClient shellsense.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.AccountID == "" || opts.APIToken == "" || opts.Model == "" {
		return nil, fmt.Errorf("account ID, API token, and model are all required")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	return &Client{
		endpoint:   fmt.Sprintf("%s/%s/ai/run/%s", strings.TrimSuffix(opts.BaseURL, "/"), opts.AccountID, opts.Model),
		apiToken:   opts.APIToken,
		httpClient: opts.HTTPClient,
	}, nil
}

type wireToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type wireResult struct {
	Response  string         `json:"response"`
	ToolCalls []wireToolCall `json:"tool_calls"`
}

type wireResponse struct {
	Result wireResult `json:"result"`
}

// Invoke sends the payload and extracts the model's proposed tool calls.
// Call order is preserved from the response. A missing arguments object
// becomes an empty map so downstream validation has a uniform shape.
func (c *Client) Invoke(ctx context.Context, payload Payload) (Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(payload.Messages), "tools_len", len(payload.Tools))

	body, err := c.post(ctx, payload)
	if err != nil {
		return Response{}, err
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return Response{}, &MalformedResponseError{Body: string(body), Err: err}
	}

	calls := make([]tools.Call, 0, len(wr.Result.ToolCalls))
	for _, tc := range wr.Result.ToolCalls {
		args := tc.Arguments
		if args == nil {
			args = map[string]any{}
		}
		calls = append(calls, tools.Call{Name: tc.Name, Arguments: args})
	}

	return Response{Content: wr.Result.Response, ToolCalls: calls}, nil
}

// Chat sends a plain conversation with no tools and returns the model's text
// response. Used by the refiner.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := c.post(ctx, Payload{Messages: messages})
	if err != nil {
		return "", err
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", &MalformedResponseError{Body: string(body), Err: err}
	}
	return wr.Result.Response, nil
}

func (c *Client) post(ctx context.Context, payload Payload) ([]byte, error) {
	reqBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LLM_CLIENT: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("LLM_CLIENT: failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
