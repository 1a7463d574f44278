package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry lookups. Use errors.Is to check.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrDuplicateToolName = errors.New("duplicate tool name")
)

// Registry maps tool names to implementations. It is built once at startup
// and read-only afterward; it keeps registration order so the schema payload
// sent to the model is byte-identical across repeated requests.
type Registry struct {
	byName map[string]Tool
	order  []string
}

// NewRegistry creates a tool registry with the standard tool set. The HTTP
// client is shared by all tools that call external services.
func NewRegistry(httpClient Doer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool)}

	std := []Tool{
		NewGitHubUser(httpClient),
		NewStockQuote(httpClient),
		NewWebSearch(httpClient),
		NewWikipediaSearch(httpClient),
		NewShellCommand(),
	}
	for _, t := range std {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewEmptyRegistry creates a registry with no tools, for callers that want to
// register their own set.
func NewEmptyRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool to the registry. Registering a name twice is an error;
// the registry is meant to be assembled once and never mutated after that.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q: %w", name, ErrDuplicateToolName)
	}
	r.byName[name] = t
	r.order = append(r.order, name)
	return nil
}

// GetTools returns all tools in registration order.
func (r *Registry) GetTools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// GetTool retrieves a tool by name from the registry.
func (r *Registry) GetTool(name string) (Tool, error) {
	tool, exists := r.byName[name]
	if !exists {
		return nil, fmt.Errorf("tool %q: %w", name, ErrToolNotFound)
	}
	return tool, nil
}
