package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/logger"
	"github.com/williamokano/apk_releaser/pkg/pipeline"
	"github.com/williamokano/apk_releaser/pkg/release"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Border(lipgloss.DoubleBorder()).Padding(0, 2)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// flagFields maps string flags onto config fields they override
var flagFields = map[string]func(*config.Config) *string{
	"artifact":    func(c *config.Config) *string { return &c.ArtifactPath },
	"project-dir": func(c *config.Config) *string { return &c.ProjectDir },
	"env-file":    func(c *config.Config) *string { return &c.EnvFile },
	"sink":        func(c *config.Config) *string { return &c.Sink },
	"storage":     func(c *config.Config) *string { return &c.StorageProvider },
	"template":    func(c *config.Config) *string { return &c.Template.Path },
	"repo-dir":    func(c *config.Config) *string { return &c.Template.RepoDir },
	"product":     func(c *config.Config) *string { return &c.Product },
	"log-level":   func(c *config.Config) *string { return &c.LogLevel },
	"log-format":  func(c *config.Config) *string { return &c.LogFormat },
}

func releaseFlags() []cli.Flag {
	usage := map[string]string{
		"artifact":    "APK path (default: <project-dir>/" + config.DefaultArtifactPath + ")",
		"project-dir": "Flutter project directory used for builds",
		"env-file":    "env file with storage and API settings (default: .env)",
		"sink":        "where to announce the release: publish or template",
		"storage":     "storage backend: s3, backblaze, ssh or local",
		"template":    "HTML page whose download link is patched (template sink)",
		"repo-dir":    "git working tree of the template (default: template's directory)",
		"product":     "product name embedded in object keys",
		"log-level":   "debug, info, warn or error",
		"log-format":  "console or json",
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML or JSON config file",
			EnvVars: []string{"APK_RELEASER_CONFIG"},
		},
	}
	for _, name := range []string{"artifact", "project-dir", "env-file", "sink", "storage", "template", "repo-dir", "product", "log-level", "log-format"} {
		flags = append(flags, &cli.StringFlag{
			Name:    name,
			Usage:   usage[name],
			EnvVars: []string{envVarName(name)},
		})
	}
	return flags
}

func releaseCommand() *cli.Command {
	return &cli.Command{
		Name:  "release",
		Usage: "Build if needed, upload and announce the APK",
		Flags: releaseFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				log.Error().Err(err).Msg("Failed to load configuration")
				printHints(err)
				return err
			}

			logger.Init(cfg.GetLogLevel(), cfg.GetLogFormat())
			l := *logger.Get()

			fmt.Fprintln(os.Stderr, bannerStyle.Render("APK release"))

			p, err := pipeline.FromConfig(cfg, release.Deps{
				In:     os.Stdin,
				Out:    os.Stderr,
				Logger: l,
			})
			if err != nil {
				l.Error().Err(err).Msg("Invalid release setup")
				printHints(err)
				return err
			}

			res, err := p.Run(c.Context)
			if err != nil {
				if c.Context.Err() != nil {
					l.Warn().Msg("Release interrupted")
					return err
				}
				l.Error().Err(err).Msg("Release failed")
				printHints(err)
				return err
			}

			l.Info().
				Str("key", res.Upload.Key).
				Str("sink", res.Sink).
				Dur("duration", res.Duration).
				Msg("Release completed")
			fmt.Fprintln(os.Stderr, successStyle.Render("Done! APK download URL:"))
			fmt.Println(res.Upload.URL)
			return nil
		},
	}
}

func validateConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate-config",
		Usage:     "Check a config file against the schema",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one config file", 1)
			}
			file := c.Args().First()

			if err := config.Validate(file); err != nil {
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						log.Error().Str("file", file).Msg(p)
					}
				}
				log.Error().Err(err).Str("file", file).Msg("Configuration is invalid")
				return err
			}

			log.Info().Str("file", file).Msg("Configuration is valid")
			return nil
		},
	}
}

// loadConfig reads the optional config file and applies flag overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, func(name string) (string, bool) {
		return c.String(name), c.IsSet(name)
	})
	return cfg, nil
}

// applyOverrides copies every set, non-empty flag onto cfg
func applyOverrides(cfg *config.Config, lookup func(name string) (string, bool)) {
	for name, field := range flagFields {
		if value, ok := lookup(name); ok && value != "" {
			*field(cfg) = value
		}
	}
}

func envVarName(flag string) string {
	return "APK_RELEASER_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func printHints(err error) {
	for _, hint := range pipeline.Remediation(err) {
		fmt.Fprintln(os.Stderr, hintStyle.Render("hint: "+hint))
	}
}
