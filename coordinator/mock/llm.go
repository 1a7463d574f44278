// Package mock provides a scripted gateway for offline runs and tests: it
// satisfies the Cloudflare coordinator's client surface without performing
// any network activity.
package mock

import (
	"context"
	"log/slog"

	"shellsense/coordinator/cloudflare"
)

// LLM replays a fixed sequence of responses, one per Invoke call. When the
// script is exhausted it keeps returning the last response; with an empty
// script it returns an empty response (no tool calls, no content).
type LLM struct {
	Responses []cloudflare.Response
	Err       error

	calls int
}

// NewLLM creates a scripted LLM from canned responses.
func NewLLM(responses ...cloudflare.Response) *LLM {
	return &LLM{Responses: responses}
}

// NewLLMWithError creates a scripted LLM whose every Invoke fails.
func NewLLMWithError(err error) *LLM {
	return &LLM{Err: err}
}

// Invoke returns the next scripted response.
func (m *LLM) Invoke(ctx context.Context, payload cloudflare.Payload) (cloudflare.Response, error) {
	slog.Info("MOCK_LLM: Invoked", "call", m.calls+1, "messages_len", len(payload.Messages))

	if m.Err != nil {
		return cloudflare.Response{}, m.Err
	}
	if len(m.Responses) == 0 {
		return cloudflare.Response{}, nil
	}

	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	return m.Responses[idx], nil
}

// InvokeCount reports how many times Invoke was called.
func (m *LLM) InvokeCount() int { return m.calls }

// Chat returns the scripted content of the next response, for refiner use.
func (m *LLM) Chat(ctx context.Context, messages []cloudflare.Message) (string, error) {
	res, err := m.Invoke(ctx, cloudflare.Payload{Messages: messages})
	if err != nil {
		return "", err
	}
	return res.Content, nil
}
