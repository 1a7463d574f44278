package cloudflare

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"shellsense"
	"shellsense/dispatch"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedCoordinator is an instrumented version of the Coordinator with
// observability metrics for runs, gateway round trips, and tool calls.
type InstrumentedCoordinator struct {
	llm          llmClient
	toolProvider shellsense.ToolProvider
	dispatcher   *dispatch.Dispatcher
	refiner      AnswerRefiner
	logger       shellsense.DispatchLogger
	tracer       trace.Tracer
	meter        metric.Meter
}

// NewInstrumentedCoordinator initializes a new instrumented coordinator. refiner may be nil.
func NewInstrumentedCoordinator(llm llmClient, tp shellsense.ToolProvider, d *dispatch.Dispatcher, refiner AnswerRefiner, log shellsense.DispatchLogger, tracer trace.Tracer, meter metric.Meter) *InstrumentedCoordinator {
	return &InstrumentedCoordinator{
		llm:          llm,
		toolProvider: tp,
		dispatcher:   d,
		refiner:      refiner,
		logger:       log,
		tracer:       tracer,
		meter:        meter,
	}
}

// Run executes one query start to finish with full instrumentation. Same
// contract as Coordinator.Run.
func (c *InstrumentedCoordinator) Run(ctx context.Context, query string) (shellsense.Output, error) {
	ctx, span := c.tracer.Start(ctx, "InstrumentedCoordinator.Run")
	defer span.End()

	runsCounter, _ := c.meter.Int64Counter("dispatcher_runs_total",
		metric.WithDescription("Total number of query runs started"))
	runsFailedCounter, _ := c.meter.Int64Counter("dispatcher_runs_failed_total",
		metric.WithDescription("Total number of query runs that failed at the gateway level"))
	toolCallsCounter, _ := c.meter.Int64Counter("tool_calls_total",
		metric.WithDescription("Total number of tool calls dispatched"))
	toolCallsFailedCounter, _ := c.meter.Int64Counter("tool_calls_failed_total",
		metric.WithDescription("Total number of tool calls that produced a failure outcome"))
	directAnswersCounter, _ := c.meter.Int64Counter("direct_answers_total",
		metric.WithDescription("Total number of runs answered directly with no tool calls"))

	payloadSizeGauge, _ := c.meter.Int64Gauge("payload_size_bytes",
		metric.WithDescription("Size of the function-calling payload in bytes"))
	toolsAvailableGauge, _ := c.meter.Int64Gauge("tools_available_count",
		metric.WithDescription("Number of tools advertised to the model"))

	runDurationHist, _ := c.meter.Float64Histogram("run_duration_seconds",
		metric.WithDescription("Total duration of a query run in seconds"))
	llmResponseTimeHist, _ := c.meter.Float64Histogram("llm_response_time_seconds",
		metric.WithDescription("Gateway round trip time in seconds"))
	dispatchDurationHist, _ := c.meter.Float64Histogram("dispatch_duration_seconds",
		metric.WithDescription("Duration of dispatching one batch of tool calls in seconds"))

	runsCounter.Add(ctx, 1)
	toolsAvailableGauge.Record(ctx, int64(len(c.toolProvider.GetTools())))

	queryLog := shellsense.QueryLog{Query: query, Timestamp: time.Now()}
	runStart := time.Now()

	payload, err := NewPayload(query, c.toolProvider)
	if err != nil {
		runsFailedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "Failed to build payload")
		span.RecordError(err)
		return shellsense.Output{}, err
	}

	if b, merr := json.Marshal(payload); merr == nil {
		payloadSizeGauge.Record(ctx, int64(len(b)))
	}

	llmStart := time.Now()
	res, err := c.llm.Invoke(ctx, payload)
	llmResponseTimeHist.Record(ctx, time.Since(llmStart).Seconds())
	if err != nil {
		runsFailedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "Gateway invocation failed")
		span.RecordError(err)
		queryLog.GatewayError = err.Error()
		c.logQuery(queryLog)
		return shellsense.Output{}, err
	}

	span.SetAttributes(
		attribute.Int("llm.tool_calls", len(res.ToolCalls)),
		attribute.Int("llm.content_length", len(res.Content)),
	)

	if len(res.ToolCalls) == 0 {
		directAnswersCounter.Add(ctx, 1)
		runDurationHist.Record(ctx, time.Since(runStart).Seconds())
		queryLog.Answer = res.Content
		c.logQuery(queryLog)
		return shellsense.Output{Answer: res.Content}, nil
	}

	dispatchStart := time.Now()
	results := c.dispatcher.Dispatch(ctx, res.ToolCalls)
	dispatchDurationHist.Record(ctx, time.Since(dispatchStart).Seconds())

	for _, r := range results {
		toolCallsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("tool.name", r.Call.Name)))
		callLog := shellsense.ToolCallLog{Name: r.Call.Name, Arguments: r.Call.Arguments}
		if r.Outcome.OK() {
			callLog.Output = r.Outcome.Value
		} else {
			toolCallsFailedCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool.name", r.Call.Name),
				attribute.String("failure.kind", string(r.Outcome.Failure.Kind)),
			))
			callLog.Error = r.Outcome.Failure.Error()
		}
		queryLog.ToolCalls = append(queryLog.ToolCalls, callLog)
	}

	out := shellsense.Output{Results: results}

	if c.refiner != nil {
		answer, err := c.refiner.Refine(ctx, query, results)
		if err != nil {
			slog.Warn("COORDINATOR: Answer refinement failed, returning raw outcomes", "error", err)
		} else {
			out.Answer = answer
		}
	}

	runDurationHist.Record(ctx, time.Since(runStart).Seconds())
	queryLog.Answer = out.Answer
	c.logQuery(queryLog)
	return out, nil
}

func (c *InstrumentedCoordinator) logQuery(query shellsense.QueryLog) {
	if c.logger != nil {
		if err := c.logger.LogQuery(query); err != nil {
			slog.Error("Failed to log dispatch query", "error", err, "query", query.Query)
		}
	}
}
