package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/apk_releaser/pkg/artifact"
	"github.com/williamokano/apk_releaser/pkg/command"
	"github.com/williamokano/apk_releaser/pkg/command/mocks"
	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/prompt"
	"github.com/williamokano/apk_releaser/pkg/release"
	"github.com/williamokano/apk_releaser/pkg/release/publish"
	"github.com/williamokano/apk_releaser/pkg/release/template"
	"github.com/williamokano/apk_releaser/pkg/storage"
	"github.com/williamokano/apk_releaser/pkg/upload"
)

type stubLocator struct {
	art *artifact.Artifact
	err error
}

func (s *stubLocator) Ensure(_ context.Context) (*artifact.Artifact, error) {
	return s.art, s.err
}

type recordingUploader struct {
	calls int
	env   envfile.Values
	err   error
}

func (r *recordingUploader) Upload(_ context.Context, art *artifact.Artifact, env envfile.Values) (*upload.Result, error) {
	r.calls++
	r.env = env
	if r.err != nil {
		return nil, r.err
	}
	return &upload.Result{Key: "apk/app-20240101_120000.apk", URL: "https://cdn/apk/app-20240101_120000.apk", Size: art.Size}, nil
}

type recordingSink struct {
	got []release.Release
	err error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Release(_ context.Context, r release.Release) error {
	s.got = append(s.got, r)
	return s.err
}

func staticEnv(values envfile.Values, err error) EnvLoader {
	return func(string) (envfile.Values, error) { return values, err }
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	art := &artifact.Artifact{Path: "/build/app-release.apk", Size: 2048}
	env := envfile.Values{"AWS_S3_BUCKET": "releases"}

	t.Run("success_hands_url_to_sink", func(t *testing.T) {
		up := &recordingUploader{}
		sink := &recordingSink{}
		p := New(Components{Locator: &stubLocator{art: art}, LoadEnv: staticEnv(env, nil), Uploader: up, Sink: sink, Logger: zerolog.Nop()})

		res, err := p.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, "recording", res.Sink)
		assert.Equal(t, art, res.Artifact)
		assert.Equal(t, env, up.env)
		require.Len(t, sink.got, 1)
		assert.Equal(t, "https://cdn/apk/app-20240101_120000.apk", sink.got[0].URL)
		assert.Equal(t, "apk/app-20240101_120000.apk", sink.got[0].Key)
		assert.Equal(t, env, sink.got[0].Env)
	})

	t.Run("env_error_stops_before_upload", func(t *testing.T) {
		up := &recordingUploader{}
		sink := &recordingSink{}
		p := New(Components{Locator: &stubLocator{art: art}, LoadEnv: staticEnv(nil, envfile.ErrNotFound), Uploader: up, Sink: sink, Logger: zerolog.Nop()})

		_, err := p.Run(ctx)

		assert.ErrorIs(t, err, envfile.ErrNotFound)
		assert.Zero(t, up.calls)
		assert.Empty(t, sink.got)
	})

	t.Run("upload_error_stops_before_sink", func(t *testing.T) {
		up := &recordingUploader{err: fmt.Errorf("s3: %w", storage.ErrConnFailed)}
		sink := &recordingSink{}
		p := New(Components{Locator: &stubLocator{art: art}, LoadEnv: staticEnv(env, nil), Uploader: up, Sink: sink, Logger: zerolog.Nop()})

		_, err := p.Run(ctx)

		assert.ErrorIs(t, err, storage.ErrConnFailed)
		assert.Empty(t, sink.got)
	})

	t.Run("sink_error_is_fatal", func(t *testing.T) {
		sink := &recordingSink{err: &publish.HTTPError{StatusCode: 422, Body: `{"error":"bad version"}`}}
		p := New(Components{Locator: &stubLocator{art: art}, LoadEnv: staticEnv(env, nil), Uploader: &recordingUploader{}, Sink: sink, Logger: zerolog.Nop()})

		_, err := p.Run(ctx)

		var httpErr *publish.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, 422, httpErr.StatusCode)
	})
}

func TestPipeline_NoBuildToolNoUpload(t *testing.T) {
	ctx := context.Background()
	projectDir := t.TempDir()

	runner := mocks.NewMockRunner(t)
	runner.On("LookPath", "flutter").Return("", command.ErrNotFound).Once()
	runner.On("LookPath", "fvm").Return("", command.ErrNotFound).Once()

	locator := artifact.NewLocator(filepath.Join(projectDir, "build", "app-release.apk"), projectDir, config.DefaultBuildCommands(), runner, zerolog.Nop())
	up := &recordingUploader{}
	envLoaded := false
	p := New(Components{
		Locator:  locator,
		LoadEnv:  func(string) (envfile.Values, error) { envLoaded = true; return envfile.Values{}, nil },
		Uploader: up,
		Sink:     &recordingSink{},
		Logger:   zerolog.Nop(),
	})

	_, err := p.Run(ctx)

	require.ErrorIs(t, err, artifact.ErrBuildToolNotFound)
	assert.False(t, envLoaded)
	assert.Zero(t, up.calls)
	for _, call := range runner.Calls {
		assert.NotEqual(t, "Run", call.Method)
	}
	assert.Contains(t, Remediation(err)[0], "cd "+projectDir+" && flutter build apk --release")
}

func TestFromConfig(t *testing.T) {
	deps := release.Deps{Logger: zerolog.Nop()}

	t.Run("defaults", func(t *testing.T) {
		p, err := FromConfig(&config.Config{ArtifactPath: "app.apk", ProjectDir: t.TempDir()}, deps)
		require.NoError(t, err)
		assert.Equal(t, config.SinkPublish, p.c.Sink.Name())
	})

	t.Run("unknown_sink", func(t *testing.T) {
		_, err := FromConfig(&config.Config{Sink: "carrier-pigeon"}, deps)
		assert.ErrorIs(t, err, release.ErrUnknownSink)
	})

	t.Run("unknown_storage", func(t *testing.T) {
		_, err := FromConfig(&config.Config{StorageProvider: "floppy"}, deps)
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("template_sink", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))
		p, err := FromConfig(&config.Config{Sink: config.SinkTemplate, Template: config.TemplateConfig{Path: path}}, deps)
		require.NoError(t, err)
		assert.Equal(t, config.SinkTemplate, p.c.Sink.Name())
	})
}

func TestRemediation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unknown", errors.New("boom"), ""},
		{"project_dir", fmt.Errorf("locate artifact: %w", artifact.ErrProjectDirMissing), "project_dir"},
		{"env_file", fmt.Errorf("load env: %w", envfile.ErrNotFound), "--env-file"},
		{"missing_keys", &storage.MissingOptionsError{Backend: "s3", Keys: []string{"AWS_S3_REGION", "AWS_S3_BUCKET"}}, "AWS_S3_REGION, AWS_S3_BUCKET"},
		{"tls", fmt.Errorf("upload: %w", fmt.Errorf("%w: %w", storage.ErrTLS, errors.New("x509: unknown authority"))), "AWS_S3_CA_BUNDLE"},
		{"conn", fmt.Errorf("%w: dial tcp", storage.ErrConnFailed), "AWS_S3_ENDPOINT"},
		{"auth", storage.ErrAuthFailed, "credentials"},
		{"http", &publish.HTTPError{StatusCode: 422}, "rejected"},
		{"api_down", &publish.ConnError{Endpoint: "http://127.0.0.1:3008", Err: errors.New("refused")}, "APP_UPDATE_API_BASE_URL"},
		{"eof", fmt.Errorf("version: %w", prompt.ErrInputClosed), "interactive"},
		{"link", template.ErrAmbiguousLink, "exactly one"},
		{"sink", release.ErrUnknownSink, "validate-config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := Remediation(tt.err)
			if tt.want == "" {
				assert.Empty(t, hints)
				return
			}
			require.NotEmpty(t, hints)
			assert.Contains(t, hints[0], tt.want)
		})
	}
}
