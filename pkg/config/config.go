package config

import (
	"path/filepath"
	"strings"
)

const (
	SinkPublish  = "publish"
	SinkTemplate = "template"

	// DefaultArtifactPath is where flutter writes a release APK, relative to the project
	DefaultArtifactPath = "build/app/outputs/flutter-apk/app-release.apk"
)

// TemplateConfig defines how the template sink patches and pushes the download page
type TemplateConfig struct {
	Path          string `yaml:"path" json:"path"`                                         // HTML file holding the download link
	Marker        string `yaml:"marker,omitempty" json:"marker,omitempty"`                 // comment text preceding the anchor
	LinkText      string `yaml:"link_text,omitempty" json:"link_text,omitempty"`           // visible anchor text
	RepoDir       string `yaml:"repo_dir,omitempty" json:"repo_dir,omitempty"`             // git working tree (defaults to the template's dir)
	CommitMessage string `yaml:"commit_message,omitempty" json:"commit_message,omitempty"` // {url} is replaced with the APK URL
}

// PublishConfig defines the publish sink behavior
type PublishConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty"` // default: 20
}

// Config is the root configuration structure
type Config struct {
	ArtifactPath    string         `yaml:"artifact_path" json:"artifact_path"`
	ProjectDir      string         `yaml:"project_dir" json:"project_dir"`
	EnvFile         string         `yaml:"env_file" json:"env_file"`
	Product         string         `yaml:"product,omitempty" json:"product,omitempty"`                   // default: app
	Platform        string         `yaml:"platform,omitempty" json:"platform,omitempty"`                 // default: android
	KeyPrefix       string         `yaml:"key_prefix,omitempty" json:"key_prefix,omitempty"`             // default: apk
	StorageProvider string         `yaml:"storage_provider,omitempty" json:"storage_provider,omitempty"` // s3, backblaze, ssh, local (default: s3)
	Sink            string         `yaml:"sink,omitempty" json:"sink,omitempty"`                         // publish, template (default: publish)
	BuildCommands   [][]string     `yaml:"build_commands,omitempty" json:"build_commands,omitempty"`
	Template        TemplateConfig `yaml:"template,omitempty" json:"template,omitempty"`
	Publish         PublishConfig  `yaml:"publish,omitempty" json:"publish,omitempty"`
	LogLevel        string         `yaml:"log_level,omitempty" json:"log_level,omitempty"`   // debug, info, warn, error (default: info)
	LogFormat       string         `yaml:"log_format,omitempty" json:"log_format,omitempty"` // json, console (default: console)
}

// GetProjectDir returns the Flutter project directory (defaults to the working directory)
func (c *Config) GetProjectDir() string {
	if c.ProjectDir != "" {
		return c.ProjectDir
	}
	return "."
}

// GetArtifactPath returns the APK path, defaulting to flutter's output inside the project
func (c *Config) GetArtifactPath() string {
	if c.ArtifactPath != "" {
		return c.ArtifactPath
	}
	return filepath.Join(c.GetProjectDir(), DefaultArtifactPath)
}

// GetEnvFile returns the env file path (defaults to .env)
func (c *Config) GetEnvFile() string {
	if c.EnvFile != "" {
		return c.EnvFile
	}
	return ".env"
}

// DefaultBuildCommands are tried in order when the artifact is missing
func DefaultBuildCommands() [][]string {
	return [][]string{
		{"flutter", "build", "apk", "--release"},
		{"fvm", "flutter", "build", "apk", "--release"},
	}
}

// GetBuildCommands returns the configured build commands or the flutter defaults
func (c *Config) GetBuildCommands() [][]string {
	var cmds [][]string
	for _, cmd := range c.BuildCommands {
		if len(cmd) > 0 {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return DefaultBuildCommands()
	}
	return cmds
}

// GetProduct returns the product name embedded in object keys (defaults to app)
func (c *Config) GetProduct() string {
	if c.Product != "" {
		return c.Product
	}
	return "app"
}

// GetPlatform returns the release platform (defaults to android)
func (c *Config) GetPlatform() string {
	if c.Platform != "" {
		return c.Platform
	}
	return "android"
}

// GetKeyPrefix returns the object key prefix without slashes (defaults to apk)
func (c *Config) GetKeyPrefix() string {
	if p := strings.Trim(c.KeyPrefix, "/"); p != "" {
		return p
	}
	return "apk"
}

// GetStorageProvider returns the storage backend type (defaults to s3)
func (c *Config) GetStorageProvider() string {
	if c.StorageProvider != "" {
		return c.StorageProvider
	}
	return "s3"
}

// GetSink returns the release sink name (defaults to publish)
func (c *Config) GetSink() string {
	if c.Sink != "" {
		return c.Sink
	}
	return SinkPublish
}

// GetLogLevel returns the log level (defaults to info)
func (c *Config) GetLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return "info"
}

// GetLogFormat returns the log format (defaults to console)
func (c *Config) GetLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	return "console"
}

// GetPublishTimeoutSeconds returns the publish request timeout (defaults to 20)
func (c *Config) GetPublishTimeoutSeconds() int {
	if c.Publish.TimeoutSeconds > 0 {
		return c.Publish.TimeoutSeconds
	}
	return 20
}

// GetMarker returns the template marker comment text
func (t *TemplateConfig) GetMarker() string {
	if t.Marker != "" {
		return t.Marker
	}
	return "APK_DOWNLOAD_LINK"
}

// GetLinkText returns the visible text of the download anchor
func (t *TemplateConfig) GetLinkText() string {
	if t.LinkText != "" {
		return t.LinkText
	}
	return "Download APK"
}

// GetCommitMessage renders the commit message for the given download URL
func (t *TemplateConfig) GetCommitMessage(url string) string {
	msg := t.CommitMessage
	if msg == "" {
		msg = "chore: update APK download link to {url}"
	}
	return strings.ReplaceAll(msg, "{url}", url)
}
