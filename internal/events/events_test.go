package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()
	var sink Sink = &Recorder{}

	sink.Publish(context.Background(), Event{Scope: ScopeStep, Path: "a/b", State: "RUNNING"})
	sink.Publish(context.Background(), Event{Scope: ScopeStep, Path: "a/b", State: "SUCCESS"})

	got := sink.(*Recorder).Events()
	require.Len(t, got, 2)
	assert.Equal(t, "SUCCESS", got[1].State)
	assert.NoError(t, sink.Close())
}

func TestNopSink(t *testing.T) {
	t.Parallel()
	var sink Sink = NopSink{}
	sink.Publish(context.Background(), Event{Path: "x"})
	assert.NoError(t, sink.Close())
}

func TestDial_InvalidURL(t *testing.T) {
	t.Parallel()
	testCases := []string{"::not a url", "localhost:3000", "/just/a/path"}
	for _, raw := range testCases {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			_, err := Dial(context.Background(), raw, "/")
			assert.Error(t, err)
		})
	}
}
