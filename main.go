package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/williamokano/apk_releaser/pkg/logger"
)

func main() {
	// Console logging until the config is loaded
	logger.Init("info", "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "apk_releaser",
		Usage: "Build, upload and announce Android APK releases",
		Description: `Releases an APK in one run:
  - builds it with flutter (or fvm flutter) when it is missing
  - uploads it to object storage under a timestamped key
  - publishes the version to the app-update API, or patches the download
    page and pushes it with git`,
		Commands: []*cli.Command{
			releaseCommand(),
			validateConfigCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}
