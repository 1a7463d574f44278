package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shellsense/dispatch"
)

// chatClient is the surface the refiner needs from a model client.
type chatClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Refiner turns raw tool outcomes into a conversational answer by sending
// the query and the aggregated tool outputs through a second model call.
// Typically backed by a cheaper chat model than the tool-calling one.
type Refiner struct {
	llm chatClient
}

func NewRefiner(llm chatClient) *Refiner {
	return &Refiner{llm: llm}
}

// Refine produces a user-friendly answer from the dispatched results.
func (r *Refiner) Refine(ctx context.Context, query string, results []dispatch.Result) (string, error) {
	messages := []Message{
		{Role: "system", Content: friendlyPrompt},
		{Role: "user", Content: "User Query: " + query},
		{Role: "assistant", Content: "Tool Responses: " + formatResults(results)},
	}

	answer, err := r.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to refine answer: %w", err)
	}
	return answer, nil
}

func formatResults(results []dispatch.Result) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		if res.Outcome.OK() {
			payload, err := json.Marshal(res.Outcome.Value)
			if err != nil {
				payload = []byte(fmt.Sprintf("%v", res.Outcome.Value))
			}
			parts = append(parts, fmt.Sprintf("Tool: %s\nOutput: %s", res.Call.Name, payload))
			continue
		}
		parts = append(parts, fmt.Sprintf("Tool: %s\nError: %s", res.Call.Name, res.Outcome.Failure.Message))
	}
	return strings.Join(parts, "\n\n")
}

const friendlyPrompt = `You are a friendly and knowledgeable AI. Respond to user queries naturally and
confidently using the data provided. Avoid listing raw details unless explicitly requested. Instead,
summarize and format the response as clear, concise, and conversational insights tailored to the user's
question. Present information as if you already knew it, without mentioning how or where it was obtained.
Always prioritize usefulness and readability.`
