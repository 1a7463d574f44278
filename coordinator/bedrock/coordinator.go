package bedrock

import (
	"context"
	"log/slog"
	"time"

	"shellsense"
	"shellsense/dispatch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Coordinator runs one query against the Bedrock gateway and dispatches the
// proposed tool calls. Same contract as the Cloudflare coordinator.
type Coordinator struct {
	llm            llmClient
	toolProvider   shellsense.ToolProvider
	dispatcher     *dispatch.Dispatcher
	logger         shellsense.DispatchLogger
	tracerProvider *trace.TracerProvider
}

type llmClient interface {
	Invoke(ctx context.Context, prompt Prompt) (Response, error)
}

// NewCoordinator initializes a new coordinator.
func NewCoordinator(llm llmClient, tp shellsense.ToolProvider, d *dispatch.Dispatcher, log shellsense.DispatchLogger, tracerProvider *trace.TracerProvider) *Coordinator {
	return &Coordinator{
		llm:            llm,
		toolProvider:   tp,
		dispatcher:     d,
		logger:         log,
		tracerProvider: tracerProvider,
	}
}

// Run executes one query start to finish. Gateway-level failures abort the
// run; per-tool failures are reported in Output.Results and never abort the
// batch.
func (c *Coordinator) Run(ctx context.Context, query string) (shellsense.Output, error) {
	ctx, span := otel.Tracer(shellsense.TracerNameBedrock).Start(ctx, "Coordinator.Run")
	defer span.End()

	slog.Info("COORDINATOR: Starting run", "query", query)

	queryLog := shellsense.QueryLog{Query: query, Timestamp: time.Now()}

	prompt, err := NewPrompt(query, c.toolProvider)
	if err != nil {
		return shellsense.Output{}, err
	}

	res, err := c.llm.Invoke(ctx, prompt)
	if err != nil {
		queryLog.GatewayError = err.Error()
		c.logQuery(queryLog)
		return shellsense.Output{}, err
	}

	slog.Info("COORDINATOR: Model response received",
		"content_length", len(res.Content),
		"tool_calls", len(res.ToolCalls),
	)

	if len(res.ToolCalls) == 0 {
		queryLog.Answer = res.Content
		c.logQuery(queryLog)
		return shellsense.Output{Answer: res.Content}, nil
	}

	results := c.dispatcher.Dispatch(ctx, res.ToolCalls)

	for _, r := range results {
		callLog := shellsense.ToolCallLog{Name: r.Call.Name, Arguments: r.Call.Arguments}
		if r.Outcome.OK() {
			callLog.Output = r.Outcome.Value
		} else {
			callLog.Error = r.Outcome.Failure.Error()
		}
		queryLog.ToolCalls = append(queryLog.ToolCalls, callLog)
	}

	c.logQuery(queryLog)
	return shellsense.Output{Results: results}, nil
}

// logQuery logs a query using the configured logger, handling errors gracefully.
func (c *Coordinator) logQuery(query shellsense.QueryLog) {
	if c.logger != nil {
		if err := c.logger.LogQuery(query); err != nil {
			slog.Error("Failed to log dispatch query", "error", err, "query", query.Query)
		}
	}
}
