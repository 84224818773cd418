// Package release defines the final step of the pipeline: telling the world
// where the uploaded APK lives.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/artifact"
	"github.com/williamokano/apk_releaser/pkg/command"
	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/envfile"
)

// ErrUnknownSink is returned when no sink is registered under a name
var ErrUnknownSink = errors.New("unknown release sink")

// Release is what a sink announces
type Release struct {
	URL      string
	Key      string
	Artifact *artifact.Artifact
	Env      envfile.Values
}

// Sink announces a release
type Sink interface {
	Name() string
	Release(ctx context.Context, r Release) error
}

// Deps carries what sink constructors may need
type Deps struct {
	Config     *config.Config
	Runner     command.Runner
	In         io.Reader
	Out        io.Writer
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// SinkConstructor builds a sink from its dependencies
type SinkConstructor func(deps Deps) (Sink, error)

var sinkRegistry = make(map[string]SinkConstructor)

// RegisterSink registers a sink constructor under name
func RegisterSink(name string, constructor SinkConstructor) {
	sinkRegistry[name] = constructor
}

// Sinks lists the registered sink names
func Sinks() []string {
	names := make([]string, 0, len(sinkRegistry))
	for name := range sinkRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSink creates the sink registered under name
func NewSink(name string, deps Deps) (Sink, error) {
	constructor, ok := sinkRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownSink, name, Sinks())
	}
	return constructor(deps)
}
