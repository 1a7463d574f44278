package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	defaultShellTimeout = 30 * time.Second
	maxShellOutput      = 30000
)

// ShellCommand executes a shell command produced by the model and captures
// its output. Execution is bounded by a timeout; output is truncated so a
// noisy command cannot flood the response.
type ShellCommand struct {
	timeout time.Duration
}

func NewShellCommand() *ShellCommand {
	return &ShellCommand{timeout: defaultShellTimeout}
}

func (t *ShellCommand) Name() string  { return "executeShellCommands" }
func (t *ShellCommand) Title() string { return "Execute Shell Commands" }
func (t *ShellCommand) Description() string {
	return "Executes a shell command and returns its stdout, stderr, and exit code. Commands run with a bounded timeout."
}

func (t *ShellCommand) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"commands": {
				Type:        "string",
				Description: "The shell command or script to execute. Use absolute paths instead of 'cd'.",
			},
		},
		Required: []string{"commands"},
	}
}

func (t *ShellCommand) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	commands, _ := args["commands"].(string)
	if strings.TrimSpace(commands) == "" {
		return nil, fmt.Errorf("commands argument is required")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", commands)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	exitCode := 0
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %s", t.timeout)
		}
		return nil, fmt.Errorf("failed to execute command: %w", runErr)
	}

	return map[string]any{
		"stdout":    truncate(stdout.String(), maxShellOutput),
		"stderr":    truncate(stderr.String(), maxShellOutput),
		"exit_code": exitCode,
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n... (output truncated)"
}
