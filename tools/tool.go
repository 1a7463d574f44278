package tools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Doer is the minimal HTTP client surface tools that call external services
// depend on. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tool is a named local capability the model may invoke by name and argument
// map. InputSchema describes the argument shape sent to the model; required
// properties are enforced before Run is invoked.
type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	Run(ctx context.Context, args map[string]any) (output map[string]any, err error)
}

// Call is a single tool invocation proposed by the model. Arguments may be
// empty when the model omitted them. ToolUseID ties the call back to the
// proposing assistant turn on providers that track it (Bedrock).
type Call struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}
