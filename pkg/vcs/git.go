// Package vcs commits and pushes release changes with the git CLI.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/command"
)

// Git drives the git executable inside one working tree
type Git struct {
	runner command.Runner
	dir    string
	logger zerolog.Logger
}

// NewGit creates a git client rooted at dir
func NewGit(runner command.Runner, dir string, logger zerolog.Logger) *Git {
	return &Git{
		runner: runner,
		dir:    dir,
		logger: logger.With().Str("component", "git").Str("repo", dir).Logger(),
	}
}

// Clean reports whether the working tree has no pending changes
func (g *Git) Clean(ctx context.Context) (bool, error) {
	out, err := g.runner.Output(ctx, g.cmd("status", "--short"))
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(string(out)) == "", nil
}

// CommitAndPush stages file, commits it with message and pushes the current
// branch. A clean working tree is a no-op and returns committed=false.
func (g *Git) CommitAndPush(ctx context.Context, file, message string) (bool, error) {
	clean, err := g.Clean(ctx)
	if err != nil {
		return false, err
	}
	if clean {
		g.logger.Info().Msg("No changes to commit")
		return false, nil
	}

	steps := []command.Cmd{
		g.cmd("add", file),
		g.cmd("commit", "-m", message),
		g.cmd("push"),
	}
	for _, step := range steps {
		g.logger.Debug().Str("cmd", step.String()).Msg("Running git")
		if _, err := g.runner.Output(ctx, step); err != nil {
			return false, fmt.Errorf("%s: %w", step.String(), err)
		}
	}

	g.logger.Info().Str("file", file).Msg("Committed and pushed")
	return true, nil
}

func (g *Git) cmd(args ...string) command.Cmd {
	return command.Cmd{Dir: g.dir, Name: "git", Args: args}
}
