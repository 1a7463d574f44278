package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shellsense"
	"shellsense/coordinator/cloudflare"
	"shellsense/dispatch"
	"shellsense/slack"
	"shellsense/storage"
	"shellsense/tools"
)

// main delegates to run so deferred cleanup (dispatch log flush, otel
// shutdown, root span end) completes before the process exits.
func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	var modelConfig shellsense.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var agentConfig shellsense.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	httpClient := &http.Client{Timeout: agentConfig.HTTPTimeout}

	registry, err := tools.NewRegistry(httpClient)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return 1
	}

	query := argOrStdin()
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "usage: dispatcher \"<query>\" (or pipe the query on stdin)")
		return 2
	}

	logger := shellsense.NewArchiveDispatchLogger(
		storage.NewFileArchiveStore(agentConfig.DispatchLogDir),
		shellsense.NewDispatchLogFilePath(modelConfig.ModelName),
	)
	defer func() {
		if err := logger.Flush(ctx); err != nil {
			slog.Error("SETUP: Failed to flush dispatch log", "error", err)
		}
	}()

	llm, err := cloudflare.NewClient(cloudflare.ClientOpts{
		BaseURL:    modelConfig.CloudflareBase,
		AccountID:  modelConfig.AccountID,
		APIToken:   modelConfig.APIToken,
		Model:      modelConfig.ModelName,
		HTTPClient: httpClient,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create LLM client", "error", err)
		return 1
	}

	var refiner cloudflare.AnswerRefiner
	if agentConfig.RefineAnswers {
		friendly, err := cloudflare.NewClient(cloudflare.ClientOpts{
			BaseURL:    modelConfig.CloudflareBase,
			AccountID:  modelConfig.AccountID,
			APIToken:   modelConfig.APIToken,
			Model:      modelConfig.FriendlyModel,
			HTTPClient: httpClient,
		})
		if err != nil {
			slog.Error("SETUP: Failed to create friendly-model client", "error", err)
			return 1
		}
		refiner = cloudflare.NewRefiner(friendly)
	}

	tracerProvider, meterProvider, otelShutdown, err := shellsense.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return 1
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(shellsense.TracerNameCloudflare)
	meter := meterProvider.Meter(shellsense.TracerNameCloudflare)

	ctx, span := tracer.Start(ctx, shellsense.TracerNameCloudflare, trace.WithAttributes(
		attribute.String("model.name", modelConfig.ModelName),
		attribute.String("model.friendly", modelConfig.FriendlyModel),
	))
	defer span.End()

	dispatcher := dispatch.NewDispatcher(registry, dispatch.WithToolTimeout(agentConfig.ToolTimeout))

	out, err := cloudflare.NewInstrumentedCoordinator(llm, registry, dispatcher, refiner, logger, tracer, meter).Run(ctx, query)
	if err != nil {
		if errors.Is(err, cloudflare.ErrEmptyQuery) {
			fmt.Fprintln(os.Stderr, "error: query must not be empty")
			return 2
		}
		slog.Error("FAILURE: Gateway error handling query", "error", err)
		return 1
	}

	render(out)

	if agentConfig.SlackWebhook != "" {
		slackClient := slack.NewClient(agentConfig.SlackWebhook, httpClient)
		if err := slackClient.PostMessage(ctx, agentConfig.SlackChannel, summarize(query, out)); err != nil {
			slog.Error("Failed to post result to Slack", "error", err)
		}
	}

	// Individual tool failures are reported above, not fatal.
	return 0
}

func argOrStdin() string {
	if len(os.Args) > 1 {
		return strings.Join(os.Args[1:], " ")
	}

	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteString(" ")
	}
	return b.String()
}

func render(out shellsense.Output) {
	for _, r := range out.Results {
		if r.Outcome.OK() {
			payload, err := json.MarshalIndent(r.Outcome.Value, "", "  ")
			if err != nil {
				payload = []byte(fmt.Sprintf("%v", r.Outcome.Value))
			}
			fmt.Printf("[%s] ok\n%s\n\n", r.Call.Name, payload)
			continue
		}
		fmt.Printf("[%s] failed (%s): %s\n\n", r.Call.Name, r.Outcome.Failure.Kind, r.Outcome.Failure.Message)
	}

	if out.Answer != "" {
		fmt.Println(out.Answer)
	}
}

func summarize(query string, out shellsense.Output) string {
	if out.Answer != "" {
		return fmt.Sprintf("Query: %s\n%s", query, out.Answer)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	for _, r := range out.Results {
		if r.Outcome.OK() {
			fmt.Fprintf(&b, "%s: ok\n", r.Call.Name)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", r.Call.Name, r.Outcome.Failure.Message)
		}
	}
	return b.String()
}
