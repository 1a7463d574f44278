package cloudflare

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"shellsense"
)

// NewPayload builds the function-calling request for one query: a system
// turn, the user's query, and every registered tool schema in registration
// order. Pure function, no I/O. A blank query is rejected here so a wasted
// remote call never happens.
func NewPayload(query string, tp shellsense.ToolProvider) (Payload, error) {
	if strings.TrimSpace(query) == "" {
		return Payload{}, ErrEmptyQuery
	}

	registered := tp.GetTools()

	names := make([]string, 0, len(registered))
	schemas := make([]ToolSchema, 0, len(registered))
	for _, tool := range registered {
		names = append(names, tool.Name())

		parameters := map[string]any{
			"type":       "object",
			"properties": map[string]*jsonschema.Schema{},
		}
		if schema := tool.InputSchema(); schema != nil {
			if schema.Properties != nil {
				parameters["properties"] = schema.Properties
			}
			if len(schema.Required) > 0 {
				parameters["required"] = schema.Required
			}
		}

		schemas = append(schemas, ToolSchema{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  parameters,
		})
	}

	return Payload{
		Messages: []Message{
			{Role: "system", Content: toolCallerPrompt(names)},
			{Role: "user", Content: query},
		},
		Tools: schemas,
	}, nil
}

func toolCallerPrompt(toolNames []string) string {
	return fmt.Sprintf(systemPrompt, strings.Join(toolNames, ", "))
}

const systemPrompt = `You are an intelligent assistant capable of using the following tools: %s.
Call only the available tools as needed, ensuring accurate and efficient use of their functionality.
Avoid creating or referencing non-existent tools or methods. When a tool requires specific parameters,
provide only the required input (e.g., a single-word parameter for tools like username).
To use executeShellCommands, convert the user's query into valid shell commands first.
Don't use the 'cd' command; execute commands with explicit paths instead.
You may combine multiple tools if necessary to fulfill the user's request effectively.
Focus on precision, avoid redundancy, and optimize responses for the best user experience.`
