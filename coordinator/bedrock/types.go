package bedrock

import "shellsense/tools"

// Prompt is the provider-neutral input to one Converse round trip: the user
// query plus the tool definitions advertised to the model.
type Prompt struct {
	Query string
	Tools []ToolSchema
}

// ToolSchema is a tool definition carried into the Converse tool config.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Response is the parsed result of one Converse call: proposed tool calls in
// response order, or the model's direct text answer.
type Response struct {
	Content   string       `json:"content,omitempty"`
	ToolCalls []tools.Call `json:"tool_calls,omitempty"`
}
