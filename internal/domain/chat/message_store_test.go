package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

func mustCreateChat(t *testing.T, env *testEnv, userID uint) *Chat {
	t.Helper()
	c, err := env.svc.CreateChat(context.Background(), userID, "gpt-4o-mini", nil)
	require.NoError(t, err)
	return c
}

func mustAppendUserText(t *testing.T, env *testEnv, c *Chat, text string) *Message {
	t.Helper()
	msg, err := env.svc.AppendMessage(context.Background(), c, RoleUser, NewUserTextContent(text), nil)
	require.NoError(t, err)
	return msg
}

func TestAppendMessageSequencesFromOne(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	first := mustAppendUserText(t, env, c, "hello")
	assert.Equal(t, 1, first.Sequence)

	reply, err := NewAssistantContent(ctx, "hi there", nil)
	require.NoError(t, err)
	second, err := env.svc.AppendMessage(ctx, c, RoleAssistant, reply, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Sequence)

	third := mustAppendUserText(t, env, c, "how are you")
	assert.Equal(t, 3, third.Sequence)

	history, err := env.svc.ListMessages(ctx, c)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, msg := range history {
		assert.Equal(t, i+1, msg.Sequence)
	}
}

func TestAppendMessageRejectsInvalidContent(t *testing.T) {
	env := newTestEnv(0)
	c := mustCreateChat(t, env, 1)

	bad := Content{Items: []ContentItem{NewImageURLItem("https://example.com/a.png")}}
	_, err := env.svc.AppendMessage(context.Background(), c, RoleSystem, bad, nil)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	history, listErr := env.svc.ListMessages(context.Background(), c)
	require.NoError(t, listErr)
	assert.Empty(t, history)
}

func TestEditAndTruncateDiscardsContinuation(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	mustAppendUserText(t, env, c, "first question")
	reply, err := NewAssistantContent(ctx, "first answer", nil)
	require.NoError(t, err)
	_, err = env.svc.AppendMessage(ctx, c, RoleAssistant, reply, nil)
	require.NoError(t, err)
	target := mustAppendUserText(t, env, c, "second question")
	reply2, err := NewAssistantContent(ctx, "second answer", nil)
	require.NoError(t, err)
	tail, err := env.svc.AppendMessage(ctx, c, RoleAssistant, reply2, nil)
	require.NoError(t, err)

	// The tail answer carries an attachment whose file must go away with it.
	att, err := NewAttachment(tail.ID, "notes.txt", "loc-tail", "text/plain", 10)
	require.NoError(t, err)
	require.NoError(t, env.attachments.Create(ctx, att))
	tail.Attachments = append(tail.Attachments, att)
	env.files.files["loc-tail"] = []byte("notes")

	edited, err := env.svc.EditAndTruncate(ctx, c, target.Sequence, NewUserTextContent("second question, rephrased"))
	require.NoError(t, err)
	assert.Equal(t, target.Sequence, edited.Sequence)
	assert.Equal(t, "second question, rephrased", edited.Content.TextContent())

	history, err := env.svc.ListMessages(ctx, c)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "second question, rephrased", history[2].Content.TextContent())

	// Sequences stay contiguous so the regenerated answer lands at 4.
	maxSeq, err := env.messages.MaxSequence(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, maxSeq)

	assert.Contains(t, env.files.deleted, "loc-tail")
}

func TestEditAndTruncateMissingSequence(t *testing.T) {
	env := newTestEnv(0)
	c := mustCreateChat(t, env, 1)
	mustAppendUserText(t, env, c, "only message")

	_, err := env.svc.EditAndTruncate(context.Background(), c, 5, NewUserTextContent("edited"))
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestEditAndTruncateRejectsNonUserTarget(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	mustAppendUserText(t, env, c, "question")
	reply, err := NewAssistantContent(ctx, "answer", nil)
	require.NoError(t, err)
	assistant, err := env.svc.AppendMessage(ctx, c, RoleAssistant, reply, nil)
	require.NoError(t, err)

	_, err = env.svc.EditAndTruncate(ctx, c, assistant.Sequence, NewUserTextContent("edited"))
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInvalidOperation))

	// Nothing was truncated.
	history, listErr := env.svc.ListMessages(ctx, c)
	require.NoError(t, listErr)
	assert.Len(t, history, 2)
}

func TestStreamingPlaceholderAndOverwrite(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)
	user := mustAppendUserText(t, env, c, "say hi")

	placeholder, err := env.svc.StreamingAppendPlaceholder(ctx, c, RoleAssistant, user.Sequence+1)
	require.NoError(t, err)
	assert.Equal(t, 2, placeholder.Sequence)
	assert.Equal(t, "", placeholder.Content.TextContent())

	// Each update overwrites wholesale; the last write wins.
	require.NoError(t, env.svc.UpdateStreamingContent(ctx, placeholder.ID, "Hi", false))
	require.NoError(t, env.svc.UpdateStreamingContent(ctx, placeholder.ID, "Hi there", false))
	require.NoError(t, env.svc.UpdateStreamingContent(ctx, placeholder.ID, "Hi there!", true))

	stored, err := env.messages.FindByID(ctx, placeholder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", stored.Content.TextContent())
}

func TestDeriveTitleOnFirstUserMessage(t *testing.T) {
	env := newTestEnv(0)
	c := mustCreateChat(t, env, 1)
	require.Nil(t, c.Title)

	mustAppendUserText(t, env, c, "Explain how tides work")
	require.NotNil(t, c.Title)
	assert.Equal(t, "Explain how tides work", *c.Title)

	// A later user message never retitles the chat.
	mustAppendUserText(t, env, c, "Another topic entirely")
	assert.Equal(t, "Explain how tides work", *c.Title)
}

func TestExplicitTitleIsNotOverwritten(t *testing.T) {
	env := newTestEnv(0)
	title := "My named chat"
	c, err := env.svc.CreateChat(context.Background(), 1, "gpt-4o-mini", &title)
	require.NoError(t, err)

	mustAppendUserText(t, env, c, "Explain how tides work")
	assert.Equal(t, "My named chat", *c.Title)
}

func TestEditAndTruncateReleasesLockBeforeFileRemoval(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	target := mustAppendUserText(t, env, c, "question")
	reply, err := NewAssistantContent(ctx, "answer", nil)
	require.NoError(t, err)
	tail, err := env.svc.AppendMessage(ctx, c, RoleAssistant, reply, nil)
	require.NoError(t, err)

	att, err := NewAttachment(tail.ID, "notes.txt", "loc-tail", "text/plain", 10)
	require.NoError(t, err)
	require.NoError(t, env.attachments.Create(ctx, att))
	tail.Attachments = append(tail.Attachments, att)
	env.files.files["loc-tail"] = []byte("notes")

	// Another writer must be able to take the chat lock while the stale
	// file is still being removed.
	appended := make(chan error, 1)
	env.files.onDelete = func(string) {
		go func() {
			_, appendErr := env.svc.AppendMessage(ctx, c, RoleUser, NewUserTextContent("follow-up"), nil)
			appended <- appendErr
		}()
		select {
		case appendErr := <-appended:
			assert.NoError(t, appendErr)
		case <-time.After(time.Second):
			t.Error("concurrent append blocked while a stored file was being removed")
		}
	}

	_, err = env.svc.EditAndTruncate(ctx, c, target.Sequence, NewUserTextContent("question, rephrased"))
	require.NoError(t, err)
	assert.Contains(t, env.files.deleted, "loc-tail")
}
