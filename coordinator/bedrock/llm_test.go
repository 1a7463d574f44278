package bedrock

import (
	"context"
	"testing"

	"shellsense/tools"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response  *bedrockruntime.ConverseOutput
	err       error
	lastInput *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.lastInput = input
	return m.response, m.err
}

func TestNewLLMClient(t *testing.T) {
	tests := []struct {
		name     string
		input    LLMOptions
		expected LLMOptions
	}{
		{
			name:  "empty options uses defaults",
			input: LLMOptions{},
			expected: LLMOptions{
				ModelID:     defaultModelID,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
		{
			name: "custom options preserved",
			input: LLMOptions{
				ModelID:     "custom-model",
				MaxTokens:   2048,
				Temperature: 0.5,
				TopP:        0.8,
			},
			expected: LLMOptions{
				ModelID:     "custom-model",
				MaxTokens:   2048,
				Temperature: 0.5,
				TopP:        0.8,
			},
		},
		{
			name: "partial options with defaults",
			input: LLMOptions{
				ModelID:   "custom-model",
				MaxTokens: 2048,
			},
			expected: LLMOptions{
				ModelID:     "custom-model",
				MaxTokens:   2048,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{}
			client := NewLLMClient(mockClient, tt.input)

			assert.Equal(t, tt.expected, client.opts)
			assert.Equal(t, mockClient, client.brc)
		})
	}
}

func TestLLMClient_Invoke(t *testing.T) {
	tests := []struct {
		name          string
		prompt        Prompt
		mockResponse  *bedrockruntime.ConverseOutput
		mockError     error
		expectedResp  Response
		expectedError string
	}{
		{
			name:   "direct text answer",
			prompt: Prompt{Query: "What is the capital of France?"},
			mockResponse: &bedrockruntime.ConverseOutput{
				StopReason: "end_turn",
				Output: &types.ConverseOutputMemberMessage{
					Value: types.Message{
						Content: []types.ContentBlock{
							&types.ContentBlockMemberText{Value: "Paris."},
						},
					},
				},
				Usage: &types.TokenUsage{
					InputTokens:  aws.Int32(10),
					OutputTokens: aws.Int32(20),
				},
			},
			expectedResp: Response{Content: "Paris."},
		},
		{
			name:   "tool use response",
			prompt: Prompt{Query: "Tell me about octocat"},
			mockResponse: &bedrockruntime.ConverseOutput{
				StopReason: "tool_use",
				Output: &types.ConverseOutputMemberMessage{
					Value: types.Message{
						Content: []types.ContentBlock{
							&types.ContentBlockMemberToolUse{
								Value: types.ToolUseBlock{
									ToolUseId: aws.String("test-id"),
									Name:      aws.String("getGithubUser"),
									Input:     document.NewLazyDocument(map[string]any{"username": "octocat"}),
								},
							},
						},
					},
				},
				Usage: &types.TokenUsage{
					InputTokens:  aws.Int32(10),
					OutputTokens: aws.Int32(20),
				},
			},
			expectedResp: Response{
				ToolCalls: []tools.Call{
					{Name: "getGithubUser", Arguments: map[string]any{"username": "octocat"}, ToolUseID: "test-id"},
				},
			},
		},
		{
			name:   "max tokens error",
			prompt: Prompt{Query: "Hello"},
			mockResponse: &bedrockruntime.ConverseOutput{
				StopReason: "max_tokens",
				Usage: &types.TokenUsage{
					InputTokens:  aws.Int32(10),
					OutputTokens: aws.Int32(20),
				},
			},
			expectedError: "model hit MaxTokens limit",
		},
		{
			name:   "safety filter error",
			prompt: Prompt{Query: "Hello"},
			mockResponse: &bedrockruntime.ConverseOutput{
				StopReason: "content_filtered",
				Usage: &types.TokenUsage{
					InputTokens:  aws.Int32(10),
					OutputTokens: aws.Int32(20),
				},
			},
			expectedError: "model response blocked by Bedrock safety filters",
		},
		{
			name:          "bedrock API error",
			prompt:        Prompt{Query: "Hello"},
			mockError:     assert.AnError,
			expectedError: "assert.AnError general error for testing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{
				response: tt.mockResponse,
				err:      tt.mockError,
			}

			llmClient := NewLLMClient(mockClient, LLMOptions{})
			resp, err := llmClient.Invoke(context.Background(), tt.prompt)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedResp, resp)
		})
	}
}

func TestLLMClient_Invoke_AdvertisesTools(t *testing.T) {
	mockClient := &mockBedrockClient{
		response: &bedrockruntime.ConverseOutput{
			StopReason: "end_turn",
			Output: &types.ConverseOutputMemberMessage{
				Value: types.Message{Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: "ok"}}},
			},
			Usage: &types.TokenUsage{InputTokens: aws.Int32(1), OutputTokens: aws.Int32(1)},
		},
	}

	llmClient := NewLLMClient(mockClient, LLMOptions{})
	_, err := llmClient.Invoke(context.Background(), Prompt{
		Query: "q",
		Tools: []ToolSchema{
			{Name: "getGithubUser", Description: "Fetch a GitHub user", Parameters: map[string]any{"type": "object"}},
			{Name: "wikipediaSearch", Description: "Search Wikipedia", Parameters: map[string]any{"type": "object"}},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, mockClient.lastInput)
	require.NotNil(t, mockClient.lastInput.ToolConfig)
	require.Len(t, mockClient.lastInput.ToolConfig.Tools, 2)

	spec, ok := mockClient.lastInput.ToolConfig.Tools[0].(*types.ToolMemberToolSpec)
	require.True(t, ok)
	assert.Equal(t, "getGithubUser", aws.ToString(spec.Value.Name))
}

func TestTextFromOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   *bedrockruntime.ConverseOutput
		expected string
	}{
		{
			name:     "nil output",
			output:   nil,
			expected: "",
		},
		{
			name: "single text block",
			output: &bedrockruntime.ConverseOutput{
				Output: &types.ConverseOutputMemberMessage{
					Value: types.Message{
						Content: []types.ContentBlock{
							&types.ContentBlockMemberText{Value: "Hello world"},
						},
					},
				},
			},
			expected: "Hello world",
		},
		{
			name: "multiple text blocks",
			output: &bedrockruntime.ConverseOutput{
				Output: &types.ConverseOutputMemberMessage{
					Value: types.Message{
						Content: []types.ContentBlock{
							&types.ContentBlockMemberText{Value: "Hello"},
							&types.ContentBlockMemberText{Value: "world"},
						},
					},
				},
			},
			expected: "Hello\nworld",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textFromOutput(tt.output))
		})
	}
}

func TestNormalizeArguments(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{
			name:     "whole number float to int",
			input:    2.0,
			expected: 2,
		},
		{
			name:     "decimal float unchanged",
			input:    2.5,
			expected: 2.5,
		},
		{
			name:     "string unchanged",
			input:    "hello",
			expected: "hello",
		},
		{
			name:     "numeric string unchanged",
			input:    "123",
			expected: "123",
		},
		{
			name:     "stringified object decoded",
			input:    `{"commands": ["ls"]}`,
			expected: map[string]any{"commands": []any{"ls"}},
		},
		{
			name:     "nested container walked",
			input:    map[string]any{"count": 3.0, "items": []any{1.0, "x"}},
			expected: map[string]any{"count": 3, "items": []any{1, "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeArguments(tt.input))
		})
	}
}

func TestToolCallsFromOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   *bedrockruntime.ConverseOutput
		expected []tools.Call
	}{
		{
			name: "multiple tool calls in order",
			output: &bedrockruntime.ConverseOutput{
				Output: &types.ConverseOutputMemberMessage{
					Value: types.Message{
						Content: []types.ContentBlock{
							&types.ContentBlockMemberToolUse{
								Value: types.ToolUseBlock{
									ToolUseId: aws.String("id1"),
									Name:      aws.String("getStockQuote"),
									Input:     document.NewLazyDocument(map[string]any{"symbol": "AAPL", "action": "getCurrentPrice"}),
								},
							},
							&types.ContentBlockMemberToolUse{
								Value: types.ToolUseBlock{
									ToolUseId: aws.String("id2"),
									Name:      aws.String("wikipediaSearch"),
									Input:     document.NewLazyDocument(map[string]any{"query": "golang"}),
								},
							},
						},
					},
				},
			},
			expected: []tools.Call{
				{Name: "getStockQuote", Arguments: map[string]any{"symbol": "AAPL", "action": "getCurrentPrice"}, ToolUseID: "id1"},
				{Name: "wikipediaSearch", Arguments: map[string]any{"query": "golang"}, ToolUseID: "id2"},
			},
		},
		{
			name: "no tool calls",
			output: &bedrockruntime.ConverseOutput{
				Output: &types.ConverseOutputMemberMessage{
					Value: types.Message{
						Content: []types.ContentBlock{
							&types.ContentBlockMemberText{Value: "Just text"},
						},
					},
				},
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, toolCallsFromOutput(tt.output))
		})
	}
}
