package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAttachment(t *testing.T, filename, locator, fileType string, size int64) *Attachment {
	t.Helper()
	att, err := NewAttachment(7, filename, locator, fileType, size)
	require.NoError(t, err)
	return att
}

func TestResolveImageAsDataURL(t *testing.T) {
	files := newMemFileStore()
	files.files["chats/abc/img.png"] = []byte{0x89, 0x50, 0x4e, 0x47}
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	att := testAttachment(t, "img.png", "chats/abc/img.png", "image/png", 4)
	items := resolver.Resolve(context.Background(), []*Attachment{att})
	require.Len(t, items, 1)

	require.Equal(t, ContentItemTypeImageURL, items[0].Type)
	require.NotNil(t, items[0].ImageURL)
	expected := "data:image/png;base64," + base64.StdEncoding.EncodeToString(files.files["chats/abc/img.png"])
	assert.Equal(t, expected, items[0].ImageURL.URL)
}

func TestResolveUnreadableAttachmentBecomesPlaceholder(t *testing.T) {
	files := newMemFileStore()
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	att := testAttachment(t, "gone.png", "chats/abc/gone.png", "image/png", 12)
	items := resolver.Resolve(context.Background(), []*Attachment{att})
	require.Len(t, items, 1)

	require.Equal(t, ContentItemTypeText, items[0].Type)
	require.NotNil(t, items[0].Text)
	assert.True(t, strings.HasPrefix(*items[0].Text, "[Attachment gone.png could not be read:"))
}

func TestResolveAudioPreviewIsCapped(t *testing.T) {
	files := newMemFileStore()
	long := make([]byte, 512)
	for i := range long {
		long[i] = byte(i % 251)
	}
	files.files["chats/abc/clip.mp3"] = long
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	att := testAttachment(t, "clip.mp3", "chats/abc/clip.mp3", "audio/mpeg", 512)
	items := resolver.Resolve(context.Background(), []*Attachment{att})
	require.Len(t, items, 1)

	require.Equal(t, ContentItemTypeText, items[0].Type)
	require.NotNil(t, items[0].Text)
	preview := base64.StdEncoding.EncodeToString(long)[:64]
	assert.Equal(t, fmt.Sprintf("[Audio file clip.mp3 (audio/mpeg), base64 preview: %s...]", preview), *items[0].Text)
}

func TestResolveShortAudioKeepsFullPreview(t *testing.T) {
	files := newMemFileStore()
	files.files["chats/abc/beep.wav"] = []byte("beep")
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	att := testAttachment(t, "beep.wav", "chats/abc/beep.wav", "audio/wav", 4)
	items := resolver.Resolve(context.Background(), []*Attachment{att})
	require.Len(t, items, 1)

	full := base64.StdEncoding.EncodeToString([]byte("beep"))
	assert.Equal(t, fmt.Sprintf("[Audio file beep.wav (audio/wav), base64 preview: %s...]", full), *items[0].Text)
}

func TestResolveOtherFilesDescribeWithoutReading(t *testing.T) {
	files := newMemFileStore()
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	att := testAttachment(t, "report.pdf", "chats/abc/report.pdf", "application/pdf", 3*1024*1024)
	items := resolver.Resolve(context.Background(), []*Attachment{att})
	require.Len(t, items, 1)

	require.Equal(t, ContentItemTypeText, items[0].Type)
	assert.Equal(t, "[File attached: report.pdf (application/pdf, 3.00 MiB)]", *items[0].Text)
}

func TestResolveUnknownSize(t *testing.T) {
	files := newMemFileStore()
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	att := testAttachment(t, "blob.bin", "chats/abc/blob.bin", "application/octet-stream", 0)
	items := resolver.Resolve(context.Background(), []*Attachment{att})
	require.Len(t, items, 1)
	assert.Equal(t, "[File attached: blob.bin (application/octet-stream, unknown size)]", *items[0].Text)
}

func TestResolvePreservesAttachmentOrder(t *testing.T) {
	files := newMemFileStore()
	files.files["a"] = []byte("one")
	resolver := NewAttachmentResolver(files, zerolog.Nop())

	atts := []*Attachment{
		testAttachment(t, "one.png", "a", "image/png", 3),
		testAttachment(t, "two.pdf", "b", "application/pdf", 9),
	}
	items := resolver.Resolve(context.Background(), atts)
	require.Len(t, items, 2)
	assert.Equal(t, ContentItemTypeImageURL, items[0].Type)
	assert.Equal(t, ContentItemTypeText, items[1].Type)
}

func TestResolveEmptyAttachmentList(t *testing.T) {
	resolver := NewAttachmentResolver(newMemFileStore(), zerolog.Nop())
	assert.Nil(t, resolver.Resolve(context.Background(), nil))
}
