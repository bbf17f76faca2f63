package ocr

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardRunner() execRunner {
	return newExecRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExecRunnerCapturesStdout(t *testing.T) {
	t.Parallel()

	out, _, err := discardRunner().Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(out))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	t.Parallel()

	_, _, err := discardRunner().Run(context.Background(), "no-such-binary-for-this-test")
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", truncate("abc", 8))
	require.Equal(t, "ab...(truncated)", truncate("abcdef", 2))
}
