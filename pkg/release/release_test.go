package release

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct{ name string }

func (s *stubSink) Name() string {
	return s.name
}

func (s *stubSink) Release(_ context.Context, _ Release) error {
	return nil
}

func TestNewSink(t *testing.T) {
	RegisterSink("stub", func(_ Deps) (Sink, error) {
		return &stubSink{name: "stub"}, nil
	})
	t.Cleanup(func() { delete(sinkRegistry, "stub") })

	sink, err := NewSink("stub", Deps{})
	require.NoError(t, err)
	assert.Equal(t, "stub", sink.Name())
	assert.Contains(t, Sinks(), "stub")

	_, err = NewSink("carrier-pigeon", Deps{})
	assert.ErrorIs(t, err, ErrUnknownSink)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}
