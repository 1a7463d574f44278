package cloudflare

import (
	"shellsense/tools"
)

// Message is a single conversational turn in the function-calling request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolSchema is a tool definition in the wire format the endpoint expects:
// name, description, and a JSON-Schema object for the parameters.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Payload is the outbound request body: the conversation plus the full tool
// schema list, translated verbatim from the registry.
type Payload struct {
	Messages []Message    `json:"messages"`
	Tools    []ToolSchema `json:"tools,omitempty"`
}

// Response is the parsed result of one gateway round trip. ToolCalls holds
// the model's proposed invocations in response order; Content holds the
// model's direct text answer when it chose not to call tools.
type Response struct {
	Content   string       `json:"content,omitempty"`
	ToolCalls []tools.Call `json:"tool_calls,omitempty"`
}
