package publish

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/prompt"
	"github.com/williamokano/apk_releaser/pkg/release"
)

func init() {
	release.RegisterSink(config.SinkPublish, NewSink)
}

// Sink collects version details interactively and publishes them
type Sink struct {
	prompter   *prompt.Prompter
	platform   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewSink creates the publish sink from pipeline dependencies
func NewSink(deps release.Deps) (release.Sink, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	in, out := deps.In, deps.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.GetPublishTimeoutSeconds()) * time.Second}
	}

	return &Sink{
		prompter:   prompt.New(in, out),
		platform:   cfg.GetPlatform(),
		httpClient: httpClient,
		logger:     deps.Logger.With().Str("sink", config.SinkPublish).Logger(),
	}, nil
}

// Name implements release.Sink
func (s *Sink) Name() string {
	return config.SinkPublish
}

// Release implements release.Sink
func (s *Sink) Release(ctx context.Context, r release.Release) error {
	payload, err := CollectPayload(s.prompter, r.URL, s.platform)
	if err != nil {
		return err
	}

	client := NewClient(Endpoint(r.Env), r.Env.Get(KeyToken), s.httpClient, s.logger)
	resp, err := client.Publish(ctx, payload)
	if err != nil {
		return err
	}

	event := s.logger.Info().
		Interface("id", resp.ID).
		Str("version", resp.Version)
	if resp.ForceUpdate != nil {
		event = event.Bool("forceUpdate", *resp.ForceUpdate)
	}
	event.Msg("Version published")
	return nil
}
