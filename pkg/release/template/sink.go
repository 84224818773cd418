package template

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/command"
	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/release"
	"github.com/williamokano/apk_releaser/pkg/vcs"
)

// ErrNoTemplatePath is returned when the template sink has no file configured
var ErrNoTemplatePath = errors.New("template sink requires template.path")

func init() {
	release.RegisterSink(config.SinkTemplate, NewSink)
}

// Sink points the page's download link at the new APK and pushes the page
type Sink struct {
	cfg    config.TemplateConfig
	git    *vcs.Git
	logger zerolog.Logger
}

// NewSink creates the template sink from pipeline dependencies
func NewSink(deps release.Deps) (release.Sink, error) {
	if deps.Config == nil || deps.Config.Template.Path == "" {
		return nil, ErrNoTemplatePath
	}
	cfg := deps.Config.Template

	repoDir := cfg.RepoDir
	if repoDir == "" {
		repoDir = filepath.Dir(cfg.Path)
	}

	runner := deps.Runner
	if runner == nil {
		runner = command.NewExec()
	}

	logger := deps.Logger.With().Str("sink", config.SinkTemplate).Str("template", cfg.Path).Logger()
	return &Sink{
		cfg:    cfg,
		git:    vcs.NewGit(runner, repoDir, logger),
		logger: logger,
	}, nil
}

// Name implements release.Sink
func (s *Sink) Name() string {
	return config.SinkTemplate
}

// Release implements release.Sink. Patch failures are fatal; git failures
// are logged and the release still succeeds.
func (s *Sink) Release(ctx context.Context, r release.Release) error {
	changed, err := PatchFile(s.cfg.Path, s.cfg.GetMarker(), s.cfg.GetLinkText(), r.URL)
	if err != nil {
		return err
	}
	s.logger.Info().Bool("changed", changed).Str("url", r.URL).Msg("Template patched")

	path, err := filepath.Abs(s.cfg.Path)
	if err != nil {
		path = s.cfg.Path
	}
	if _, err := s.git.CommitAndPush(ctx, path, s.cfg.GetCommitMessage(r.URL)); err != nil {
		s.logger.Warn().Err(err).Msg("Git commit/push failed, template was updated locally")
	}
	return nil
}
