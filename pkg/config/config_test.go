package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, DefaultBuildCommands(), cfg.GetBuildCommands())
	assert.Equal(t, ".", cfg.GetProjectDir())
	assert.Equal(t, "build/app/outputs/flutter-apk/app-release.apk", cfg.GetArtifactPath())
	assert.Equal(t, ".env", cfg.GetEnvFile())
	assert.Equal(t, "app", cfg.GetProduct())
	assert.Equal(t, "android", cfg.GetPlatform())
	assert.Equal(t, "apk", cfg.GetKeyPrefix())
	assert.Equal(t, "s3", cfg.GetStorageProvider())
	assert.Equal(t, SinkPublish, cfg.GetSink())
	assert.Equal(t, "info", cfg.GetLogLevel())
	assert.Equal(t, "console", cfg.GetLogFormat())
	assert.Equal(t, 20, cfg.GetPublishTimeoutSeconds())
	assert.Equal(t, "APK_DOWNLOAD_LINK", cfg.Template.GetMarker())
	assert.Equal(t, "Download APK", cfg.Template.GetLinkText())
	assert.Equal(t,
		"chore: update APK download link to https://cdn.example.com/apk/a.apk",
		cfg.Template.GetCommitMessage("https://cdn.example.com/apk/a.apk"))
}

func TestConfigOverrides(t *testing.T) {
	cfg := &Config{
		ProjectDir:    "mobile",
		Product:       "driveviewer",
		KeyPrefix:     "/releases/",
		BuildCommands: [][]string{{}, {"make", "apk"}},
		Template:      TemplateConfig{CommitMessage: "release {url} ({url})"},
	}

	assert.Equal(t, "driveviewer", cfg.GetProduct())
	assert.Equal(t, "mobile/build/app/outputs/flutter-apk/app-release.apk", cfg.GetArtifactPath())

	cfg.ArtifactPath = "dist/app.apk"
	assert.Equal(t, "dist/app.apk", cfg.GetArtifactPath())
	assert.Equal(t, "releases", cfg.GetKeyPrefix())
	assert.Equal(t, [][]string{{"make", "apk"}}, cfg.GetBuildCommands())
	assert.Equal(t, "release u (u)", cfg.Template.GetCommitMessage("u"))
}

func TestLoad(t *testing.T) {
	t.Run("empty_path_returns_defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "s3", cfg.GetStorageProvider())
	})

	t.Run("valid_yaml", func(t *testing.T) {
		path := writeConfig(t, "release.yaml", `
artifact_path: build/app/outputs/flutter-apk/app-release.apk
project_dir: ../driver_video_app
env_file: ../api-server/.env
product: driveviewer
sink: template
build_commands:
  - [flutter, build, apk, --release]
template:
  path: site/index.html
  repo_dir: site
publish:
  timeout_seconds: 5
log_level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "build/app/outputs/flutter-apk/app-release.apk", cfg.ArtifactPath)
		assert.Equal(t, "driveviewer", cfg.GetProduct())
		assert.Equal(t, "build/app/outputs/flutter-apk/app-release.apk", cfg.GetArtifactPath())
		assert.Equal(t, SinkTemplate, cfg.GetSink())
		assert.Equal(t, [][]string{{"flutter", "build", "apk", "--release"}}, cfg.GetBuildCommands())
		assert.Equal(t, "site/index.html", cfg.Template.Path)
		assert.Equal(t, "site", cfg.Template.RepoDir)
		assert.Equal(t, 5, cfg.GetPublishTimeoutSeconds())
		assert.Equal(t, "debug", cfg.GetLogLevel())
	})

	t.Run("valid_json", func(t *testing.T) {
		path := writeConfig(t, "release.json", `{"sink": "publish", "storage_provider": "local"}`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.GetStorageProvider())
	})

	t.Run("schema_violation", func(t *testing.T) {
		path := writeConfig(t, "release.yaml", "sink: email\nlog_level: trace\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Problems, 2)
	})

	t.Run("unknown_key", func(t *testing.T) {
		path := writeConfig(t, "release.yaml", "bucket: releases\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidConfig)
	})
}
