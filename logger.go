package shellsense

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"shellsense/storage"
)

// DispatchLogger is the interface for per-query dispatch logging.
type DispatchLogger interface {
	LogQuery(query QueryLog) error
}

// NewDispatchLogFilePath returns a file path based on a cleaned up model name to make it
// easier to identify logs produced with various models.
func NewDispatchLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(model), ":", "_"), "/", "_"),
	)
}

// QueryLog represents one query's trip through the dispatcher.
type QueryLog struct {
	Query        string        `json:"query"`
	Timestamp    time.Time     `json:"timestamp"`
	Answer       string        `json:"answer,omitempty"`
	ToolCalls    []ToolCallLog `json:"tool_calls,omitempty"`
	GatewayError string        `json:"gateway_error,omitempty"`
}

// ToolCallLog represents a single tool invocation and its outcome.
type ToolCallLog struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Output    map[string]any `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FileDispatchLogger logs to a writer, accumulating queries and flushing at the end.
type FileDispatchLogger struct {
	queries []QueryLog
	writer  io.Writer
}

// NewFileDispatchLogger creates a new file-based dispatch logger.
func NewFileDispatchLogger(writer io.Writer) *FileDispatchLogger {
	return &FileDispatchLogger{
		queries: make([]QueryLog, 0),
		writer:  writer,
	}
}

// LogQuery buffers a query log entry (does not flush immediately).
func (fdl *FileDispatchLogger) LogQuery(query QueryLog) error {
	fdl.queries = append(fdl.queries, query)
	return nil
}

// Flush writes all accumulated query logs to the writer.
func (fdl *FileDispatchLogger) Flush() error {
	if fdl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"dispatch_session": map[string]any{
			"timestamp": time.Now(),
			"queries":   fdl.queries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch log: %w", err)
	}

	if _, err := fdl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write dispatch log: %w", err)
	}

	fdl.queries = fdl.queries[:0]
	return nil
}

// NoOpDispatchLogger discards all log entries.
type NoOpDispatchLogger struct{}

func NewNoOpDispatchLogger() *NoOpDispatchLogger { return &NoOpDispatchLogger{} }

func (nop *NoOpDispatchLogger) LogQuery(query QueryLog) error { return nil }

// StdoutDispatchLogger logs each query as a JSON line to stdout (for Lambda/CloudWatch).
type StdoutDispatchLogger struct{}

func NewStdoutDispatchLogger() *StdoutDispatchLogger { return &StdoutDispatchLogger{} }

func (l *StdoutDispatchLogger) LogQuery(query QueryLog) error {
	data, err := json.Marshal(query)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// ArchiveDispatchLogger buffers query logs and persists them through an
// ArchiveStore on Flush. Used to keep dispatch sessions in durable storage
// (local directory or S3).
type ArchiveDispatchLogger struct {
	queries []QueryLog
	store   storage.ArchiveStore
	key     string
}

// NewArchiveDispatchLogger creates a dispatch logger backed by the given store.
// The key names the archived session object (e.g. a timestamped file name).
func NewArchiveDispatchLogger(store storage.ArchiveStore, key string) *ArchiveDispatchLogger {
	return &ArchiveDispatchLogger{
		queries: make([]QueryLog, 0),
		store:   store,
		key:     key,
	}
}

func (adl *ArchiveDispatchLogger) LogQuery(query QueryLog) error {
	adl.queries = append(adl.queries, query)
	return nil
}

// Flush persists all accumulated query logs to the archive store.
func (adl *ArchiveDispatchLogger) Flush(ctx context.Context) error {
	if adl.store == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"dispatch_session": map[string]any{
			"timestamp": time.Now(),
			"queries":   adl.queries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch log: %w", err)
	}

	if err := adl.store.Save(ctx, adl.key, data); err != nil {
		return fmt.Errorf("failed to archive dispatch log: %w", err)
	}

	adl.queries = adl.queries[:0]
	return nil
}
