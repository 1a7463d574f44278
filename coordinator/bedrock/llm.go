package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"shellsense/tools"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	// defaultModelID is an inference profile ID, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Low temperature and top_p keep outputs deterministic, which is better
	// for tool use and structured arguments.
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
	defaultTopP        = 0.9
)

const systemPrompt = `You are an intelligent assistant with access to the tools defined in the tool
configuration. Call only the available tools as needed; never invent tool names. When a tool requires
specific parameters, provide only the required input. You may combine multiple tools if necessary to
fulfill the user's request. If no tool applies, answer the query directly and concisely.`

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) *LLMClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &LLMClient{
		brc:  brc,
		opts: opts,
	}
}

// Invoke performs one Converse round trip and extracts the model's proposed
// tool calls, or its direct text answer when it chose not to call tools.
func (c *LLMClient) Invoke(ctx context.Context, prompt Prompt) (Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "query_len", len(prompt.Query), "tools_len", len(prompt.Tools))

	var toolList []types.Tool
	for _, t := range prompt.Tools {
		toolList = append(toolList, &types.ToolMemberToolSpec{Value: types.ToolSpecification{
			Name:        aws.String(t.Name),
			Description: aws.String(t.Description),
			InputSchema: &types.ToolInputSchemaMemberJson{
				Value: document.NewLazyDocument(t.Parameters),
			},
		}})
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: &c.opts.ModelID,
		System:  []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: systemPrompt}},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt.Query}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
		ToolConfig: &types.ToolConfiguration{Tools: toolList, ToolChoice: &types.ToolChoiceMemberAuto{}},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		return Response{}, fmt.Errorf("bedrock converse failed: %w", err)
	}

	slog.Info("LLM_CLIENT: Converse succeeded",
		"stop_reason", out.StopReason,
		"input_tokens", aws.ToInt32(out.Usage.InputTokens),
		"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
	)

	switch out.StopReason {
	case "tool_use":
		return Response{ToolCalls: toolCallsFromOutput(out)}, nil

	case "max_tokens":
		return Response{}, fmt.Errorf("model hit MaxTokens limit; consider raising MaxTokens")

	case "safety", "content_filtered":
		return Response{}, fmt.Errorf("model response blocked by Bedrock safety filters")

	default:
		// end_turn, stop_sequence, or unspecified: treat as a direct answer,
		// keeping any stray tool_use blocks the model emitted.
		return Response{
			Content:   textFromOutput(out),
			ToolCalls: toolCallsFromOutput(out),
		}, nil
	}
}

// textFromOutput joins the assistant's text blocks.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	return strings.Join(texts, "\n")
}

// toolCallsFromOutput extracts tool uses emitted by the assistant, in order.
func toolCallsFromOutput(out *bedrockruntime.ConverseOutput) []tools.Call {
	var calls []tools.Call

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg.Value.Content == nil {
		return calls
	}

	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok {
			continue
		}

		var args map[string]any
		if err := tu.Value.Input.UnmarshalSmithyDocument(&args); err != nil || args == nil {
			args = map[string]any{}
		}

		calls = append(calls, tools.Call{
			Name:      aws.ToString(tu.Value.Name),
			Arguments: normalizeArguments(args).(map[string]any),
			ToolUseID: aws.ToString(tu.Value.ToolUseId),
		})
	}

	return calls
}

// normalizeArguments recursively coerces document-decoded values for safe
// downstream use: whole-number floats become ints, stringified JSON is
// decoded, containers are walked.
func normalizeArguments(val any) any {
	switch v := val.(type) {
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
		return v

	case string:
		var decoded any
		if json.Unmarshal([]byte(v), &decoded) == nil {
			switch decoded.(type) {
			case map[string]any, []any:
				return normalizeArguments(decoded)
			}
		}
		return v

	case []any:
		for i := range v {
			v[i] = normalizeArguments(v[i])
		}
		return v

	case map[string]any:
		for key, val := range v {
			v[key] = normalizeArguments(val)
		}
		return v

	default:
		return v
	}
}
