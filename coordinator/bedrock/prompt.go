package bedrock

import (
	"encoding/json"
	"fmt"
	"strings"

	"shellsense"
	"shellsense/coordinator/cloudflare"
)

// NewPrompt builds a Converse prompt for one query: the query text plus the
// registry's tool schemas in registration order. A blank query is rejected
// before any network activity.
func NewPrompt(query string, tp shellsense.ToolProvider) (Prompt, error) {
	if strings.TrimSpace(query) == "" {
		return Prompt{}, cloudflare.ErrEmptyQuery
	}

	registered := tp.GetTools()
	schemas := make([]ToolSchema, 0, len(registered))
	for _, tool := range registered {
		// Round-trip the schema through JSON so the document system gets a
		// plain map rather than the jsonschema struct.
		raw, err := json.Marshal(tool.InputSchema())
		if err != nil {
			return Prompt{}, fmt.Errorf("failed to marshal schema for tool %q: %w", tool.Name(), err)
		}
		var params map[string]any
		if err := json.Unmarshal(raw, &params); err != nil {
			return Prompt{}, fmt.Errorf("failed to unmarshal schema for tool %q: %w", tool.Name(), err)
		}

		schemas = append(schemas, ToolSchema{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  params,
		})
	}

	return Prompt{Query: query, Tools: schemas}, nil
}
