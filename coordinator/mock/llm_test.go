package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellsense/coordinator/cloudflare"
	"shellsense/tools"
)

func TestLLM_ReplaysScript(t *testing.T) {
	llm := NewLLM(
		cloudflare.Response{ToolCalls: []tools.Call{{Name: "getGithubUser", Arguments: map[string]any{"username": "octocat"}}}},
		cloudflare.Response{Content: "done"},
	)

	first, err := llm.Invoke(context.Background(), cloudflare.Payload{})
	require.NoError(t, err)
	require.Len(t, first.ToolCalls, 1)
	assert.Equal(t, "getGithubUser", first.ToolCalls[0].Name)

	second, err := llm.Invoke(context.Background(), cloudflare.Payload{})
	require.NoError(t, err)
	assert.Equal(t, "done", second.Content)

	// Exhausted script keeps returning the last response.
	third, err := llm.Invoke(context.Background(), cloudflare.Payload{})
	require.NoError(t, err)
	assert.Equal(t, "done", third.Content)

	assert.Equal(t, 3, llm.InvokeCount())
}

func TestLLM_EmptyScript(t *testing.T) {
	llm := NewLLM()

	res, err := llm.Invoke(context.Background(), cloudflare.Payload{})
	require.NoError(t, err)
	assert.Empty(t, res.Content)
	assert.Empty(t, res.ToolCalls)
}

func TestLLM_Error(t *testing.T) {
	llm := NewLLMWithError(assert.AnError)

	_, err := llm.Invoke(context.Background(), cloudflare.Payload{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLLM_Chat(t *testing.T) {
	llm := NewLLM(cloudflare.Response{Content: "friendly answer"})

	answer, err := llm.Chat(context.Background(), []cloudflare.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "friendly answer", answer)
}
