package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellCommand_Run(t *testing.T) {
	tool := NewShellCommand()

	out, err := tool.Run(context.Background(), map[string]any{"commands": "echo hello"})
	require.NoError(t, err)

	assert.Equal(t, "hello\n", out["stdout"])
	assert.Equal(t, "", out["stderr"])
	assert.Equal(t, 0, out["exit_code"])
}

func TestShellCommand_Run_NonZeroExit(t *testing.T) {
	tool := NewShellCommand()

	out, err := tool.Run(context.Background(), map[string]any{"commands": "echo oops >&2; exit 3"})
	require.NoError(t, err, "a failing command is a result, not an error")

	assert.Equal(t, 3, out["exit_code"])
	assert.Equal(t, "oops\n", out["stderr"])
}

func TestShellCommand_Run_MissingCommands(t *testing.T) {
	tool := NewShellCommand()

	for _, args := range []map[string]any{{}, {"commands": "   "}} {
		_, err := tool.Run(context.Background(), args)
		assert.Error(t, err)
	}
}

func TestShellCommand_Run_Timeout(t *testing.T) {
	tool := &ShellCommand{timeout: 100 * time.Millisecond}

	_, err := tool.Run(context.Background(), map[string]any{"commands": "sleep 5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxShellOutput+100)

	got := truncate(long, maxShellOutput)
	assert.Contains(t, got, "output truncated")
	assert.Less(t, len(got), len(long))

	assert.Equal(t, "short", truncate("short", maxShellOutput))
}
