package command

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	runner := NewExec()
	ctx := context.Background()

	t.Run("lookpath_missing", func(t *testing.T) {
		_, err := runner.LookPath("definitely-not-a-real-tool-42")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("output", func(t *testing.T) {
		out, err := runner.Output(ctx, Cmd{Name: "sh", Args: []string{"-c", "echo hello"}})
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("output_respects_dir", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runner.Output(ctx, Cmd{Dir: dir, Name: "sh", Args: []string{"-c", "pwd -P"}})
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("exit_error", func(t *testing.T) {
		_, err := runner.Output(ctx, Cmd{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}})

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.Code)
		assert.Equal(t, "boom", exitErr.Stderr)
	})

	t.Run("run_not_found", func(t *testing.T) {
		err := runner.Run(ctx, Cmd{Name: "definitely-not-a-real-tool-42"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCmdString(t *testing.T) {
	c := Cmd{Name: "flutter", Args: []string{"build", "apk", "--release"}}
	assert.Equal(t, "flutter build apk --release", c.String())
}
