package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"shellsense"
	"shellsense/coordinator/bedrock"
	"shellsense/dispatch"
	"shellsense/storage"
	"shellsense/tools"
)

type Params struct {
	Query string `json:"query"`
}

type Results struct {
	Answer  string            `json:"answer,omitempty"`
	Results []dispatch.Result `json:"results,omitempty"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var bedrockConfig shellsense.BedrockConfig
		if err := envdecode.Decode(&bedrockConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var agentConfig shellsense.AgentConfig
		if err := envdecode.Decode(&agentConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		registry, err := tools.NewRegistry(&http.Client{Timeout: agentConfig.HTTPTimeout})
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}

		logger := shellsense.NewStdoutDispatchLogger()

		// Optional durable session archive alongside the CloudWatch lines.
		var archive *shellsense.ArchiveDispatchLogger
		var dispatchLogger shellsense.DispatchLogger = logger
		if bucket := os.Getenv("DISPATCH_LOG_S3_BUCKET"); bucket != "" {
			awsCfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
			}
			store := storage.NewS3ArchiveStore(s3.NewFromConfig(awsCfg), bucket, os.Getenv("DISPATCH_LOG_S3_PREFIX"))
			archive = shellsense.NewArchiveDispatchLogger(store, shellsense.NewDispatchLogFilePath(bedrockConfig.ModelID))
			dispatchLogger = archive
		}

		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to create Bedrock client", "error", err)
			return Results{}, err
		}

		llm := bedrock.NewLLMClient(brc, bedrock.LLMOptions{
			ModelID:     bedrockConfig.ModelID,
			MaxTokens:   bedrockConfig.MaxTokens,
			Temperature: bedrockConfig.Temperature,
			TopP:        bedrockConfig.TopP,
		})

		tracerProvider, _, otelShutdown, err := shellsense.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		dispatcher := dispatch.NewDispatcher(registry, dispatch.WithToolTimeout(agentConfig.ToolTimeout))

		out, err := bedrock.NewCoordinator(llm, registry, dispatcher, dispatchLogger, tracerProvider).Run(ctx, params.Query)
		if err != nil {
			slog.Error("RESULT: Error handling query", "error", err)
			return Results{}, err
		}

		if archive != nil {
			if err := archive.Flush(ctx); err != nil {
				slog.Error("RESULT: Failed to archive dispatch log", "error", err)
			}
		}

		return Results{Answer: out.Answer, Results: out.Results}, nil
	}

	lambda.Start(fn)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
