package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/williamokano/apk_releaser/pkg/config"
)

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "APK_RELEASER_PROJECT_DIR", envVarName("project-dir"))
	assert.Equal(t, "APK_RELEASER_SINK", envVarName("sink"))
}

func TestReleaseFlags_CoverOverrides(t *testing.T) {
	names := map[string]bool{}
	for _, f := range releaseFlags() {
		names[f.Names()[0]] = true
	}
	for name := range flagFields {
		assert.True(t, names[name], name)
	}
	assert.True(t, names["config"])
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.yaml")
	require.NoError(t, os.WriteFile(path, []byte("product: driver\nsink: template\nenv_file: prod.env\n"), 0o644))

	set := flag.NewFlagSet("release", flag.ContinueOnError)
	for _, f := range releaseFlags() {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--config", path, "--sink", "publish", "--storage", "local"}))

	cfg, err := loadConfig(cli.NewContext(cli.NewApp(), set, nil))

	require.NoError(t, err)
	assert.Equal(t, "driver", cfg.GetProduct())
	assert.Equal(t, config.SinkPublish, cfg.GetSink())
	assert.Equal(t, "local", cfg.GetStorageProvider())
	assert.Equal(t, "prod.env", cfg.GetEnvFile())
}

func TestApplyOverrides_IgnoresUnsetAndEmpty(t *testing.T) {
	cfg := &config.Config{Product: "driver", Sink: config.SinkTemplate}

	applyOverrides(cfg, func(name string) (string, bool) {
		switch name {
		case "product":
			return "", true
		case "sink":
			return "publish", false
		case "template":
			return "site/index.html", true
		}
		return "", false
	})

	assert.Equal(t, "driver", cfg.Product)
	assert.Equal(t, config.SinkTemplate, cfg.Sink)
	assert.Equal(t, "site/index.html", cfg.Template.Path)
}
