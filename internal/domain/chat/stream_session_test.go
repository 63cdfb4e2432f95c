package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

type recordedFlush struct {
	accumulated string
	final       bool
}

type recordingPersister struct {
	flushes []recordedFlush
	err     error
}

func (p *recordingPersister) UpdateStreamingContent(_ context.Context, _ uint, accumulated string, final bool) error {
	if p.err != nil {
		return p.err
	}
	p.flushes = append(p.flushes, recordedFlush{accumulated: accumulated, final: final})
	return nil
}

func newSession(persister *recordingPersister, flushThreshold int, emit func(string) error) *StreamSession {
	if emit == nil {
		emit = func(string) error { return nil }
	}
	return NewStreamSession(persister, 42, flushThreshold, emit, zerolog.Nop())
}

func TestStreamSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{}
	session := newSession(persister, 0, nil)

	assert.Equal(t, StreamStateIdle, session.State())
	session.Begin()
	assert.Equal(t, StreamStateAwaitingFirstToken, session.State())

	require.NoError(t, session.OnFragment(ctx, "Hello"))
	assert.Equal(t, StreamStateStreaming, session.State())

	require.NoError(t, session.OnFragment(ctx, ", world"))
	require.NoError(t, session.Complete(ctx))
	assert.Equal(t, StreamStateCompleted, session.State())
	assert.Equal(t, "Hello, world", session.Accumulated())

	require.NotEmpty(t, persister.flushes)
	last := persister.flushes[len(persister.flushes)-1]
	assert.Equal(t, "Hello, world", last.accumulated)
	assert.True(t, last.final)
}

func TestStreamSessionEmitsBeforeAccumulating(t *testing.T) {
	persister := &recordingPersister{}
	var seen []string
	session := newSession(persister, 0, func(fragment string) error {
		seen = append(seen, fragment)
		return nil
	})
	session.Begin()

	ctx := context.Background()
	require.NoError(t, session.OnFragment(ctx, "a"))
	require.NoError(t, session.OnFragment(ctx, "b"))

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, "ab", session.Accumulated())
}

func TestStreamSessionFlushThreshold(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{}
	session := newSession(persister, 10, nil)
	session.Begin()

	// Three bytes at a time: pending crosses 10 only on the fourth fragment.
	for i := 0; i < 3; i++ {
		require.NoError(t, session.OnFragment(ctx, "abc"))
	}
	assert.Empty(t, persister.flushes)

	require.NoError(t, session.OnFragment(ctx, "abc"))
	require.Len(t, persister.flushes, 1)
	assert.Equal(t, "abcabcabcabc", persister.flushes[0].accumulated)
	assert.False(t, persister.flushes[0].final)
}

func TestStreamSessionZeroThresholdFlushesEveryFragment(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{}
	session := newSession(persister, 0, nil)
	session.Begin()

	require.NoError(t, session.OnFragment(ctx, "x"))
	require.NoError(t, session.OnFragment(ctx, "y"))
	require.Len(t, persister.flushes, 2)
	assert.Equal(t, "x", persister.flushes[0].accumulated)
	assert.Equal(t, "xy", persister.flushes[1].accumulated)
}

func TestStreamSessionFailedFlushRetriesNextFragment(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{err: errors.New("db gone")}
	session := newSession(persister, 0, nil)
	session.Begin()

	// Flush failures never stop the stream; pending bytes stay owed.
	require.NoError(t, session.OnFragment(ctx, "one"))
	assert.Empty(t, persister.flushes)

	persister.err = nil
	require.NoError(t, session.OnFragment(ctx, "two"))
	require.Len(t, persister.flushes, 1)
	assert.Equal(t, "onetwo", persister.flushes[0].accumulated)
}

func TestStreamSessionEmitFailureStopsStream(t *testing.T) {
	persister := &recordingPersister{}
	emitErr := errors.New("client went away")
	session := newSession(persister, 0, func(string) error { return emitErr })
	session.Begin()

	err := session.OnFragment(context.Background(), "lost")
	require.ErrorIs(t, err, emitErr)
	assert.Equal(t, "", session.Accumulated())
	assert.Empty(t, persister.flushes)
}

func TestStreamSessionAbortKeepsPartialText(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{}
	session := newSession(persister, 1024, nil)
	session.Begin()

	require.NoError(t, session.OnFragment(ctx, "partial answ"))

	cause := errors.New("upstream reset")
	err := session.Abort(ctx, cause)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StreamStateAborted, session.State())

	require.Len(t, persister.flushes, 1)
	assert.Equal(t, "partial answ", persister.flushes[0].accumulated)
	assert.True(t, persister.flushes[0].final)
}
