package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// StreamState is the lifecycle of one generation turn.
type StreamState string

const (
	StreamStateIdle               StreamState = "idle"
	StreamStateAwaitingFirstToken StreamState = "awaiting_first_token"
	StreamStateStreaming          StreamState = "streaming"
	StreamStateCompleted          StreamState = "completed"
	StreamStateAborted            StreamState = "aborted"
)

// streamingPersister is the slice of the message store a session writes
// through.
type streamingPersister interface {
	UpdateStreamingContent(ctx context.Context, messageID uint, accumulated string, final bool) error
}

// StreamSession accumulates fragments for one placeholder assistant message,
// emitting each fragment downstream before any persistence work so this
// layer adds no buffering delay. Sessions are driven by a single goroutine.
type StreamSession struct {
	store     streamingPersister
	messageID uint
	emit      func(fragment string) error

	state          StreamState
	builder        strings.Builder
	pendingBytes   int
	flushThreshold int
	log            zerolog.Logger
}

// NewStreamSession creates an Idle session for the given placeholder
// message. flushThreshold is the number of accumulated-but-unpersisted bytes
// that triggers a mid-stream flush; 0 flushes on every fragment.
func NewStreamSession(store streamingPersister, messageID uint, flushThreshold int, emit func(string) error, log zerolog.Logger) *StreamSession {
	return &StreamSession{
		store:          store,
		messageID:      messageID,
		emit:           emit,
		state:          StreamStateIdle,
		flushThreshold: flushThreshold,
		log:            log.With().Str("component", "stream-session").Uint("message_id", messageID).Logger(),
	}
}

// State returns the current lifecycle state.
func (ss *StreamSession) State() StreamState {
	return ss.state
}

// Accumulated returns the text gathered so far.
func (ss *StreamSession) Accumulated() string {
	return ss.builder.String()
}

// Begin moves the session to AwaitingFirstToken.
func (ss *StreamSession) Begin() {
	if ss.state == StreamStateIdle {
		ss.state = StreamStateAwaitingFirstToken
	}
}

// OnFragment emits one fragment downstream, accumulates it, and flushes the
// accumulated buffer to the store when the pending byte count crosses the
// threshold. A failed mid-stream flush is logged and retried implicitly on
// the next flush; only emission failures stop the stream.
func (ss *StreamSession) OnFragment(ctx context.Context, fragment string) error {
	if ss.state == StreamStateAwaitingFirstToken {
		ss.state = StreamStateStreaming
	}

	if err := ss.emit(fragment); err != nil {
		return err
	}

	ss.builder.WriteString(fragment)
	ss.pendingBytes += len(fragment)

	if ss.pendingBytes > ss.flushThreshold {
		if err := ss.store.UpdateStreamingContent(ctx, ss.messageID, ss.builder.String(), false); err != nil {
			ss.log.Warn().Err(err).Msg("mid-stream content flush failed")
		} else {
			ss.pendingBytes = 0
		}
	}
	return nil
}

// Complete persists the full accumulated text as the message's final
// content and moves the session to Completed.
func (ss *StreamSession) Complete(ctx context.Context) error {
	if err := ss.store.UpdateStreamingContent(ctx, ss.messageID, ss.builder.String(), true); err != nil {
		return err
	}
	ss.state = StreamStateCompleted
	return nil
}

// Abort persists whatever has accumulated as the message's final content,
// then wraps the upstream cause. Partial answers are kept, never discarded,
// and the flush runs even when the caller's context is already canceled.
func (ss *StreamSession) Abort(ctx context.Context, cause error) error {
	flushCtx := context.WithoutCancel(ctx)
	if err := ss.store.UpdateStreamingContent(flushCtx, ss.messageID, ss.builder.String(), true); err != nil {
		ss.log.Error().Err(err).Msg("unable to persist partial content on abort")
	}
	ss.state = StreamStateAborted
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
		"generation aborted before completion", cause, "0f9ebbd7-d653-48f7-a8a0-1f2622bb334f")
}
