package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when the executable is not on PATH
var ErrNotFound = errors.New("executable not found")

// Cmd describes a single subprocess invocation
type Cmd struct {
	Dir  string
	Name string
	Args []string

	// Stdout and Stderr receive streamed output for Run. Nil means the
	// parent's stdout/stderr.
	Stdout io.Writer
	Stderr io.Writer
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes subprocesses. No timeout is applied; only ctx cancellation
// stops a running command.
type Runner interface {
	// LookPath reports where name resolves on PATH, or ErrNotFound
	LookPath(name string) (string, error)

	// Run executes the command, streaming its output
	Run(ctx context.Context, c Cmd) error

	// Output executes the command and returns its stdout
	Output(ctx context.Context, c Cmd) ([]byte, error)
}

// ExitError is returned when the command ran and exited non-zero
type ExitError struct {
	Cmd    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Cmd, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
}

// Exec runs commands with os/exec
type Exec struct{}

// NewExec creates an os/exec backed runner
func NewExec() *Exec {
	return &Exec{}
}

func (Exec) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}

func (e Exec) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	return wrapExecError(c, cmd.Run(), nil)
}

func (e Exec) Output(ctx context.Context, c Cmd) ([]byte, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	return out, wrapExecError(c, err, &stderr)
}

func wrapExecError(c Cmd, err error, stderr *bytes.Buffer) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, c.Name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result := &ExitError{Cmd: c.String(), Code: exitErr.ExitCode()}
		if stderr != nil {
			result.Stderr = strings.TrimSpace(stderr.String())
		}
		return result
	}

	return fmt.Errorf("%s: %w", c, err)
}
