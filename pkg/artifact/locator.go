package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/williamokano/apk_releaser/pkg/command"
)

var (
	ErrProjectDirMissing = errors.New("project directory not found")
	ErrBuildToolNotFound = errors.New("no build tool found")
	ErrBuildFailed       = errors.New("build failed")
	ErrArtifactMissing   = errors.New("build finished but artifact not found")
)

// Artifact is the built package handed to the uploader
type Artifact struct {
	Path string
	Size int64
}

// SizeMB returns the artifact size in mebibytes
func (a *Artifact) SizeMB() float64 {
	return float64(a.Size) / (1024 * 1024)
}

// BuildError reports every build command that was attempted
type BuildError struct {
	Err        error // ErrBuildToolNotFound or ErrBuildFailed
	ProjectDir string
	Attempts   []Attempt
}

// Attempt is the outcome of one build command
type Attempt struct {
	Command string
	Err     error
}

func (e *BuildError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Command, a.Err))
	}
	return fmt.Sprintf("%s (%s)", e.Err, strings.Join(parts, "; "))
}

func (e *BuildError) Unwrap() error { return e.Err }

// ManualCommand is the instruction printed when automatic builds fail
func (e *BuildError) ManualCommand() string {
	return fmt.Sprintf("cd %s && flutter build apk --release", e.ProjectDir)
}

// Locator finds the release artifact and builds it when it is missing
type Locator struct {
	path       string
	projectDir string
	commands   [][]string
	runner     command.Runner
	logger     zerolog.Logger
}

// NewLocator creates a locator. commands are tried in order; each entry is
// the executable followed by its arguments.
func NewLocator(path, projectDir string, commands [][]string, runner command.Runner, logger zerolog.Logger) *Locator {
	return &Locator{
		path:       path,
		projectDir: projectDir,
		commands:   commands,
		runner:     runner,
		logger:     logger.With().Str("artifact", path).Logger(),
	}
}

// Ensure returns the artifact, building it first if it does not exist
func (l *Locator) Ensure(ctx context.Context) (*Artifact, error) {
	if art, err := l.stat(); err == nil {
		l.logArtifact(art)
		return art, nil
	}

	l.logger.Warn().Msg("artifact not found, building")

	if err := l.build(ctx); err != nil {
		return nil, err
	}

	art, err := l.stat()
	if err != nil {
		l.logger.Error().Msg("build commands succeeded but produced no artifact")
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, l.path)
	}

	l.logger.Info().Msg("artifact built")
	l.logArtifact(art)

	return art, nil
}

func (l *Locator) build(ctx context.Context) error {
	if info, err := os.Stat(l.projectDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrProjectDirMissing, l.projectDir)
	}

	buildErr := &BuildError{Err: ErrBuildToolNotFound, ProjectDir: l.projectDir}

	for _, argv := range l.commands {
		c := command.Cmd{Dir: l.projectDir, Name: argv[0], Args: argv[1:]}
		cmdLog := l.logger.With().Str("command", c.String()).Logger()

		if _, err := l.runner.LookPath(c.Name); err != nil {
			cmdLog.Warn().Msg("build tool not found")
			buildErr.Attempts = append(buildErr.Attempts, Attempt{Command: c.String(), Err: err})
			continue
		}

		cmdLog.Info().Msg("running build")
		err := l.runner.Run(ctx, c)
		if err == nil {
			return nil
		}

		if errors.Is(err, command.ErrNotFound) {
			cmdLog.Warn().Msg("build tool not found")
		} else {
			cmdLog.Error().Err(err).Msg("build failed")
			buildErr.Err = ErrBuildFailed
		}
		buildErr.Attempts = append(buildErr.Attempts, Attempt{Command: c.String(), Err: err})

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return buildErr
}

func (l *Locator) stat() (*Artifact, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", l.path)
	}
	return &Artifact{Path: l.path, Size: info.Size()}, nil
}

func (l *Locator) logArtifact(a *Artifact) {
	l.logger.Info().
		Int64("size_bytes", a.Size).
		Str("size", fmt.Sprintf("%.2f MB", a.SizeMB())).
		Msg("found artifact")
}
