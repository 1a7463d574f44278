package cloudflare

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shellsense"
	"shellsense/dispatch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Coordinator wires the request builder, gateway client, and dispatcher
// together for one query: build payload, invoke the model, dispatch every
// proposed call, report per-call outcomes.
type Coordinator struct {
	llm            llmClient
	toolProvider   shellsense.ToolProvider
	dispatcher     *dispatch.Dispatcher
	refiner        AnswerRefiner
	logger         shellsense.DispatchLogger
	tracerProvider *trace.TracerProvider
}

// llmClient is the gateway surface the coordinator depends on.
type llmClient interface {
	Invoke(ctx context.Context, payload Payload) (Response, error)
}

// AnswerRefiner is optional; when nil, raw outcomes are the final output.
type AnswerRefiner interface {
	Refine(ctx context.Context, query string, results []dispatch.Result) (string, error)
}

// NewCoordinator initializes a new coordinator. refiner may be nil.
func NewCoordinator(llm llmClient, tp shellsense.ToolProvider, d *dispatch.Dispatcher, refiner AnswerRefiner, log shellsense.DispatchLogger, tracerProvider *trace.TracerProvider) *Coordinator {
	return &Coordinator{
		llm:            llm,
		toolProvider:   tp,
		dispatcher:     d,
		refiner:        refiner,
		logger:         log,
		tracerProvider: tracerProvider,
	}
}

// Run executes one query start to finish. Gateway-level failures (empty
// query, non-success status, unparseable response) abort the run and
// propagate unchanged; per-tool failures are reported in Output.Results and
// never abort the batch.
func (c *Coordinator) Run(ctx context.Context, query string) (shellsense.Output, error) {
	ctx, span := otel.Tracer(shellsense.TracerNameCloudflare).Start(ctx, "Coordinator.Run")
	defer span.End()

	slog.Info("COORDINATOR: Starting run", "query", query)

	queryLog := shellsense.QueryLog{Query: query, Timestamp: time.Now()}

	payload, err := NewPayload(query, c.toolProvider)
	if err != nil {
		return shellsense.Output{}, err
	}

	res, err := c.llm.Invoke(ctx, payload)
	if err != nil {
		queryLog.GatewayError = err.Error()
		c.logQuery(queryLog)
		return shellsense.Output{}, err
	}

	slog.Info("COORDINATOR: Model response received",
		"content_length", len(res.Content),
		"tool_calls", len(res.ToolCalls),
	)

	// Direct-answer path: the model chose not to call any tool.
	if len(res.ToolCalls) == 0 {
		queryLog.Answer = res.Content
		c.logQuery(queryLog)
		return shellsense.Output{Answer: res.Content}, nil
	}

	results := c.dispatcher.Dispatch(ctx, res.ToolCalls)
	out := shellsense.Output{Results: results}

	for _, r := range results {
		callLog := shellsense.ToolCallLog{Name: r.Call.Name, Arguments: r.Call.Arguments}
		if r.Outcome.OK() {
			callLog.Output = r.Outcome.Value
		} else {
			callLog.Error = r.Outcome.Failure.Error()
		}
		queryLog.ToolCalls = append(queryLog.ToolCalls, callLog)
	}

	if c.refiner != nil {
		answer, err := c.refiner.Refine(ctx, query, results)
		if err != nil {
			// The outcomes stand on their own; a refinement failure is not fatal.
			slog.Warn("COORDINATOR: Answer refinement failed, returning raw outcomes", "error", err)
		} else {
			out.Answer = answer
		}
	}

	queryLog.Answer = out.Answer
	c.logQuery(queryLog)
	return out, nil
}

// IsGatewayFailure reports whether the error from Run is a transport-level
// failure (as opposed to a caller error like an empty query).
func IsGatewayFailure(err error) bool {
	var ge *GatewayError
	var mr *MalformedResponseError
	return errors.As(err, &ge) || errors.As(err, &mr)
}

// logQuery logs a query using the configured logger, handling errors gracefully.
func (c *Coordinator) logQuery(query shellsense.QueryLog) {
	if c.logger != nil {
		if err := c.logger.LogQuery(query); err != nil {
			slog.Error("Failed to log dispatch query", "error", err, "query", query.Query)
		}
	}
}
