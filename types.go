package shellsense

import (
	"context"
	"net/http"

	"shellsense/dispatch"
	"shellsense/tools"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}

// Orchestrator runs one query end to end: build the model payload, collect
// proposed tool calls from the remote endpoint, dispatch them, report outcomes.
type Orchestrator interface {
	Run(ctx context.Context, query string) (Output, error)
}

// Output is the result of one orchestrated query. Results holds one entry per
// tool call the model proposed, in proposal order. Answer is the model's
// direct text when it chose not to call tools, or the refined summary of tool
// outputs when a refiner is configured.
type Output struct {
	Answer  string            `json:"answer,omitempty"`
	Results []dispatch.Result `json:"results,omitempty"`
}

// Failed reports whether any dispatched call in the output failed. The run
// itself still completed; per-call failures are reported, not fatal.
func (o Output) Failed() bool {
	for _, r := range o.Results {
		if !r.Outcome.OK() {
			return true
		}
	}
	return false
}
