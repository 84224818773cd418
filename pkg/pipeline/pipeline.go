// Package pipeline runs a release end to end: locate or build the APK, load
// the env file, upload, then hand the download URL to a release sink.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/artifact"
	"github.com/williamokano/apk_releaser/pkg/command"
	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/release"
	"github.com/williamokano/apk_releaser/pkg/storage"
	"github.com/williamokano/apk_releaser/pkg/upload"

	// Import sinks to register them
	_ "github.com/williamokano/apk_releaser/pkg/release/publish"
	_ "github.com/williamokano/apk_releaser/pkg/release/template"
)

// Locator yields the artifact to release
type Locator interface {
	Ensure(ctx context.Context) (*artifact.Artifact, error)
}

// Uploader stores the artifact and returns where it can be downloaded
type Uploader interface {
	Upload(ctx context.Context, art *artifact.Artifact, env envfile.Values) (*upload.Result, error)
}

// EnvLoader reads the env file
type EnvLoader func(path string) (envfile.Values, error)

// Components are the stages of a pipeline
type Components struct {
	Locator  Locator
	EnvFile  string
	LoadEnv  EnvLoader
	Uploader Uploader
	Sink     release.Sink
	Logger   zerolog.Logger
}

// Result summarizes a finished release
type Result struct {
	Artifact *artifact.Artifact
	Upload   *upload.Result
	Sink     string
	Duration time.Duration
}

// Pipeline runs the release stages in order, stopping at the first error
type Pipeline struct {
	c Components
}

// New creates a pipeline from explicit components
func New(c Components) *Pipeline {
	if c.LoadEnv == nil {
		c.LoadEnv = envfile.Load
	}
	return &Pipeline{c: c}
}

// FromConfig wires the concrete stages described by cfg. Unknown storage
// providers and sinks are rejected here, before anything runs.
func FromConfig(cfg *config.Config, deps release.Deps) (*Pipeline, error) {
	if deps.Runner == nil {
		deps.Runner = command.NewExec()
	}
	deps.Config = cfg

	if _, err := storage.RequiredOptions(cfg.GetStorageProvider()); err != nil {
		return nil, err
	}

	sink, err := release.NewSink(cfg.GetSink(), deps)
	if err != nil {
		return nil, err
	}

	return New(Components{
		Locator:  artifact.NewLocator(cfg.GetArtifactPath(), cfg.GetProjectDir(), cfg.GetBuildCommands(), deps.Runner, deps.Logger),
		EnvFile:  cfg.GetEnvFile(),
		Uploader: upload.NewUploader(cfg.GetStorageProvider(), cfg.GetKeyPrefix(), cfg.GetProduct(), deps.Logger),
		Sink:     sink,
		Logger:   deps.Logger,
	}), nil
}

// Run executes locate, env, upload and release
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := p.c.Logger

	log.Info().Msg("Locating APK")
	art, err := p.c.Locator.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("locate artifact: %w", err)
	}

	log.Info().Str("env_file", p.c.EnvFile).Msg("Loading environment")
	env, err := p.c.LoadEnv(p.c.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	res, err := p.c.Uploader.Upload(ctx, art, env)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	log.Info().Str("sink", p.c.Sink.Name()).Msg("Releasing")
	if err := p.c.Sink.Release(ctx, release.Release{
		URL:      res.URL,
		Key:      res.Key,
		Artifact: art,
		Env:      env,
	}); err != nil {
		return nil, fmt.Errorf("release via %s: %w", p.c.Sink.Name(), err)
	}

	return &Result{
		Artifact: art,
		Upload:   res,
		Sink:     p.c.Sink.Name(),
		Duration: time.Since(start),
	}, nil
}
