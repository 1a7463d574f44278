package tools

import (
	"context"
	"net/http"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDoer struct{}

func (stubDoer) Do(req *http.Request) (*http.Response, error) { return nil, http.ErrSkipAltProtocol }

type namedTool struct {
	name string
}

func (t *namedTool) Name() string        { return t.name }
func (t *namedTool) Title() string       { return t.name }
func (t *namedTool) Description() string { return "test tool" }
func (t *namedTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}
func (t *namedTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry(stubDoer{})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, tool := range registry.GetTools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"getGithubUser", "getStockQuote", "performWebSearch", "wikipediaSearch", "executeShellCommands"}, names)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	registry := NewEmptyRegistry()
	require.NoError(t, registry.Register(&namedTool{name: "alpha"}))

	err := registry.Register(&namedTool{name: "alpha"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateToolName)
}

func TestRegistry_GetTool_NotFound(t *testing.T) {
	registry := NewEmptyRegistry()

	_, err := registry.GetTool("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegistry_GetTools_OrderStable(t *testing.T) {
	registry := NewEmptyRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(&namedTool{name: name}))
	}

	want := []string{"zeta", "alpha", "mid"}
	// Repeated calls with no intervening Register must yield the same order.
	for i := 0; i < 5; i++ {
		got := make([]string, 0, 3)
		for _, tool := range registry.GetTools() {
			got = append(got, tool.Name())
		}
		assert.Equal(t, want, got)
	}
}
