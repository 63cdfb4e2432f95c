package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

func TestCreateChatAssignsIdentity(t *testing.T) {
	env := newTestEnv(0)
	c, err := env.svc.CreateChat(context.Background(), 1, "gpt-4o-mini", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, c.PublicID)
	assert.Equal(t, uint(1), c.UserID)
	assert.Equal(t, "gpt-4o-mini", c.Model)
	assert.Nil(t, c.Title)
	assert.False(t, c.Archived)
}

func TestGetOwnedChatHidesOtherUsers(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	got, err := env.svc.GetOwnedChat(ctx, 1, c.PublicID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	// Another user's lookup reads like the chat does not exist at all.
	_, err = env.svc.GetOwnedChat(ctx, 2, c.PublicID)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestListChatsFiltersArchived(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	mustCreateChat(t, env, 1)
	archived := mustCreateChat(t, env, 1)
	flag := true
	_, err := env.svc.UpdateChat(ctx, 1, archived.PublicID, ChatUpdate{Archived: &flag})
	require.NoError(t, err)

	all, err := env.svc.ListChats(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyArchived, err := env.svc.ListChats(ctx, 1, &flag)
	require.NoError(t, err)
	require.Len(t, onlyArchived, 1)
	assert.Equal(t, archived.PublicID, onlyArchived[0].PublicID)

	active := false
	onlyActive, err := env.svc.ListChats(ctx, 1, &active)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.NotEqual(t, archived.PublicID, onlyActive[0].PublicID)
}

func TestDeleteChatRemovesStoredFiles(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)
	msg := mustAppendUserText(t, env, c, "with file")

	att, err := NewAttachment(msg.ID, "doc.txt", "loc-doc", "text/plain", 3)
	require.NoError(t, err)
	require.NoError(t, env.attachments.Create(ctx, att))
	msg.Attachments = append(msg.Attachments, att)
	env.files.files["loc-doc"] = []byte("abc")

	require.NoError(t, env.svc.DeleteChat(ctx, 1, c.PublicID))

	_, err = env.svc.GetOwnedChat(ctx, 1, c.PublicID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.Contains(t, env.files.deleted, "loc-doc")
}

func TestSendMessageStreamsAndPersists(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)
	env.streamer.fragments = []string{"Tides ", "are ", "caused ", "by gravity."}

	var emitted []string
	reply, err := env.svc.SendMessage(ctx, c, SendParams{
		Content: NewUserTextContent("Why are there tides?"),
	}, func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Tides ", "are ", "caused ", "by gravity."}, emitted)
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Equal(t, 2, reply.Sequence)
	assert.Equal(t, "Tides are caused by gravity.", reply.Content.TextContent())

	// Both turns persisted, in order.
	history, err := env.svc.ListMessages(ctx, c)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "Tides are caused by gravity.", history[1].Content.TextContent())

	// The chat model reached the backend and the history carried only the
	// user turn, never the placeholder slot.
	assert.Equal(t, "gpt-4o-mini", env.streamer.model)
	require.Len(t, env.streamer.history, 1)
	assert.Equal(t, string(RoleUser), env.streamer.history[0].Role)

	// First user message titles the chat.
	require.NotNil(t, c.Title)
	assert.Equal(t, "Why are there tides?", *c.Title)
}

func TestSendMessageModelOverride(t *testing.T) {
	env := newTestEnv(0)
	c := mustCreateChat(t, env, 1)
	env.streamer.fragments = []string{"ok"}

	_, err := env.svc.SendMessage(context.Background(), c, SendParams{
		Content: NewUserTextContent("hello"),
		Model:   "gpt-4o",
	}, func(string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", env.streamer.model)
}

func TestSendMessageAbortKeepsPartialAnswer(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)
	env.streamer.fragments = []string{"partial "}
	env.streamer.err = errors.New("connection reset")

	_, err := env.svc.SendMessage(ctx, c, SendParams{
		Content: NewUserTextContent("hello"),
	}, func(string) error { return nil })
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

	// The placeholder keeps whatever arrived before the failure.
	history, listErr := env.svc.ListMessages(ctx, c)
	require.NoError(t, listErr)
	require.Len(t, history, 2)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Equal(t, "partial ", history[1].Content.TextContent())
}

func TestSendMessageEditRegeneratesTail(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	env.streamer.fragments = []string{"first answer"}
	_, err := env.svc.SendMessage(ctx, c, SendParams{
		Content: NewUserTextContent("first question"),
	}, func(string) error { return nil })
	require.NoError(t, err)

	env.streamer.fragments = []string{"revised answer"}
	editSeq := 1
	reply, err := env.svc.SendMessage(ctx, c, SendParams{
		Content:      NewUserTextContent("revised question"),
		EditSequence: &editSeq,
	}, func(string) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 2, reply.Sequence)
	history, err := env.svc.ListMessages(ctx, c)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "revised question", history[0].Content.TextContent())
	assert.Equal(t, "revised answer", history[1].Content.TextContent())
}

func TestSendMessagePersistsUploadRows(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)
	env.streamer.fragments = []string{"I see the file."}
	env.files.files["chats/x/doc.txt"] = []byte("hello")

	_, err := env.svc.SendMessage(ctx, c, SendParams{
		Content: NewUserTextContent("look at this"),
		Uploads: []StoredUpload{{
			Filename: "doc.txt",
			Locator:  "chats/x/doc.txt",
			MIME:     "text/plain",
			Size:     5,
		}},
	}, func(string) error { return nil })
	require.NoError(t, err)

	history, err := env.svc.ListMessages(ctx, c)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Len(t, history[0].Attachments, 1)
	assert.Equal(t, "doc.txt", history[0].Attachments[0].Filename)

	// Resolved attachments ride along as extra items in the wire history.
	require.Len(t, env.streamer.history, 1)
	wire := env.streamer.history[0].Content
	require.False(t, wire.IsText())
	require.Len(t, wire.Items, 2)
	assert.Equal(t, ContentItemTypeText, wire.Items[0].Type)
	assert.Equal(t, ContentItemTypeText, wire.Items[1].Type)
}

func TestSendMessageRejectsInvalidContent(t *testing.T) {
	env := newTestEnv(0)
	c := mustCreateChat(t, env, 1)

	bad := Content{ToolCallID: "call_1", Items: []ContentItem{NewTextItem("x")}}
	_, err := env.svc.SendMessage(context.Background(), c, SendParams{Content: bad}, func(string) error { return nil })
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	history, listErr := env.svc.ListMessages(context.Background(), c)
	require.NoError(t, listErr)
	assert.Empty(t, history)
}

func TestDeleteChatIsOneUnitOfWork(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)
	mustAppendUserText(t, env, c, "hello")

	before := env.tx.calls
	require.NoError(t, env.svc.DeleteChat(ctx, 1, c.PublicID))
	assert.Equal(t, before+1, env.tx.calls)
}

func TestSendMessageEditFailureKeepsTailFiles(t *testing.T) {
	env := newTestEnv(0)
	ctx := context.Background()
	c := mustCreateChat(t, env, 1)

	env.streamer.fragments = []string{"answer one"}
	_, err := env.svc.SendMessage(ctx, c, SendParams{
		Content: NewUserTextContent("question one"),
	}, func(string) error { return nil })
	require.NoError(t, err)

	env.files.files["chats/x/tail.txt"] = []byte("tail")
	env.streamer.fragments = []string{"answer two"}
	_, err = env.svc.SendMessage(ctx, c, SendParams{
		Content: NewUserTextContent("question two"),
		Uploads: []StoredUpload{{
			Filename: "tail.txt",
			Locator:  "chats/x/tail.txt",
			MIME:     "text/plain",
			Size:     4,
		}},
	}, func(string) error { return nil })
	require.NoError(t, err)

	// The replacement turn fails while persisting its attachment row.
	// Nothing committed, so the truncated tail's stored file must survive.
	env.attachments.createErr = errors.New("insert failed")
	env.files.files["chats/x/new.txt"] = []byte("new")
	editSeq := 1
	_, err = env.svc.SendMessage(ctx, c, SendParams{
		Content:      NewUserTextContent("question one, rephrased"),
		EditSequence: &editSeq,
		Uploads: []StoredUpload{{
			Filename: "new.txt",
			Locator:  "chats/x/new.txt",
			MIME:     "text/plain",
			Size:     3,
		}},
	}, func(string) error { return nil })
	require.Error(t, err)
	assert.NotContains(t, env.files.deleted, "chats/x/tail.txt")
}
