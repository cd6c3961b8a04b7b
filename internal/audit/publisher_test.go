package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecinal/pkg/requestcontext"
)

type captureSink struct {
	events []Event
	err    error
}

func (c *captureSink) Emit(ctx context.Context, event Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() {}

func TestEmit_FillsIdentityAndMetadata(t *testing.T) {
	sink := &captureSink{}
	ctx := requestcontext.WithClientIP(context.Background(), "10.0.0.9")
	ctx = requestcontext.WithUserAgent(ctx, "portal-app/2.1")

	Emit(ctx, sink, slog.Default(), Event{
		Action:  ActionMemberStatusChanged,
		ActorID: "admin-1",
		Subject: "CON-AAAA111122",
		Detail:  "PENDING -> VERIFIED",
	})

	require.Len(t, sink.events, 1)
	got := sink.events[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "10.0.0.9", got.ClientIP)
	assert.Equal(t, "portal-app/2.1", got.UserAgent)
	assert.Equal(t, ActionMemberStatusChanged, got.Action)
}

func TestEmit_NilPublisherIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, slog.Default(), Event{Action: ActionMemberLinked})
	})
}

func TestEmit_SinkFailureDoesNotPropagate(t *testing.T) {
	sink := &captureSink{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), sink, slog.Default(), Event{Action: ActionUserRoleChanged})
	})
}
