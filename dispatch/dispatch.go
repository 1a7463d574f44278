// Package dispatch turns model-proposed tool calls into validated local
// invocations. A batch of calls always produces one outcome per call, in
// input order; a single bad call never aborts the batch.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shellsense/tools"
)

// FailureKind classifies a per-call dispatch failure.
type FailureKind string

const (
	FailureToolNotFound     FailureKind = "tool_not_found"
	FailureInvalidArguments FailureKind = "invalid_arguments"
	FailureExecutionError   FailureKind = "execution_error"
)

// Failure is a classified per-call error. It is paired with the originating
// call via Result and never surfaced as a batch-level error.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Outcome is the result of one dispatched call: a value on success, a
// classified failure otherwise. Exactly one of the two is set.
type Outcome struct {
	Value   map[string]any `json:"value,omitempty"`
	Failure *Failure       `json:"failure,omitempty"`
}

func (o Outcome) OK() bool { return o.Failure == nil }

func success(value map[string]any) Outcome {
	return Outcome{Value: value}
}

func failure(kind FailureKind, format string, args ...any) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Result pairs a proposed call with its outcome for attribution.
type Result struct {
	Call    tools.Call `json:"call"`
	Outcome Outcome    `json:"outcome"`
}

// ToolProvider resolves tool names. *tools.Registry satisfies it.
type ToolProvider interface {
	GetTool(name string) (tools.Tool, error)
}

// Dispatcher executes batches of proposed tool calls against a read-only
// tool provider. The zero value is not usable; construct with NewDispatcher.
type Dispatcher struct {
	provider ToolProvider
	timeout  time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithToolTimeout bounds each tool invocation. A call that exceeds the
// timeout is reported as an execution error; later calls still run.
func WithToolTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.timeout = d }
}

func NewDispatcher(provider ToolProvider, opts ...Option) *Dispatcher {
	d := &Dispatcher{provider: provider}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs every call in order and returns one Result per call. Failures
// are isolated: an unknown tool, bad arguments, or a failing handler only
// affect that call's outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []tools.Call) []Result {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		outcome := d.dispatchOne(ctx, call)
		if outcome.OK() {
			slog.Info("DISPATCH: Tool call succeeded", "name", call.Name)
		} else {
			slog.Warn("DISPATCH: Tool call failed",
				"name", call.Name,
				"kind", outcome.Failure.Kind,
				"message", outcome.Failure.Message,
			)
		}
		results = append(results, Result{Call: call, Outcome: outcome})
	}
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, call tools.Call) Outcome {
	tool, err := d.provider.GetTool(call.Name)
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			return failure(FailureToolNotFound, "tool '%s' not found", call.Name)
		}
		return failure(FailureToolNotFound, "%v", err)
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	// Model output is untrusted: required parameters are checked before the
	// handler runs. Unknown extra keys pass through unchanged.
	if schema := tool.InputSchema(); schema != nil {
		for _, name := range schema.Required {
			if _, present := args[name]; !present {
				return failure(FailureInvalidArguments, "missing required argument '%s' for tool '%s'", name, call.Name)
			}
		}
	}

	return d.invoke(ctx, tool, args)
}

// invoke runs the handler with panic recovery and the optional per-call
// timeout. A panicking or failing handler becomes an execution error.
func (d *Dispatcher) invoke(ctx context.Context, tool tools.Tool, args map[string]any) (outcome Outcome) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			outcome = failure(FailureExecutionError, "tool '%s' panicked: %v", tool.Name(), p)
		}
	}()

	value, err := tool.Run(ctx, args)
	if err != nil {
		return failure(FailureExecutionError, "%v", err)
	}
	return success(value)
}
