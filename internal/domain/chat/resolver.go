package chat

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
)

// FileReader is the read side of the file storage capability.
type FileReader interface {
	Read(ctx context.Context, locator string) ([]byte, error)
}

// audioPreviewLen caps the base64 preview embedded for audio attachments.
const audioPreviewLen = 64

// AttachmentResolver expands stored attachment metadata into inline content
// items at the moment a message is sent to the inference backend. It is
// read-only with respect to storage and preserves attachment order.
type AttachmentResolver struct {
	files FileReader
	log   zerolog.Logger
}

// NewAttachmentResolver creates a resolver over the given file reader.
func NewAttachmentResolver(files FileReader, log zerolog.Logger) *AttachmentResolver {
	return &AttachmentResolver{
		files: files,
		log:   log.With().Str("component", "attachment-resolver").Logger(),
	}
}

// Resolve converts each attachment into one content item. Read failures are
// downgraded to visible text placeholders so a single bad attachment never
// aborts the whole message.
func (r *AttachmentResolver) Resolve(ctx context.Context, attachments []*Attachment) []ContentItem {
	if len(attachments) == 0 {
		return nil
	}

	items := make([]ContentItem, 0, len(attachments))
	for _, att := range attachments {
		items = append(items, r.resolveOne(ctx, att))
	}
	return items
}

func (r *AttachmentResolver) resolveOne(ctx context.Context, att *Attachment) ContentItem {
	switch att.Category() {
	case FileCategoryImage:
		data, err := r.files.Read(ctx, att.StoragePath)
		if err != nil {
			r.log.Warn().Err(err).Str("attachment_id", att.PublicID).Str("filename", att.Filename).
				Msg("unable to read image attachment, emitting placeholder")
			return NewTextItem(fmt.Sprintf("[Attachment %s could not be read: %v]", att.Filename, err))
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", att.FileType, base64.StdEncoding.EncodeToString(data))
		return NewImageURLItem(dataURL)

	case FileCategoryAudio:
		data, err := r.files.Read(ctx, att.StoragePath)
		if err != nil {
			r.log.Warn().Err(err).Str("attachment_id", att.PublicID).Str("filename", att.Filename).
				Msg("unable to read audio attachment, emitting placeholder")
			return NewTextItem(fmt.Sprintf("[Attachment %s could not be read: %v]", att.Filename, err))
		}
		preview := base64.StdEncoding.EncodeToString(data)
		if len(preview) > audioPreviewLen {
			preview = preview[:audioPreviewLen]
		}
		return NewTextItem(fmt.Sprintf("[Audio file %s (%s), base64 preview: %s...]", att.Filename, att.FileType, preview))

	default:
		return NewTextItem(fmt.Sprintf("[File attached: %s (%s, %s)]", att.Filename, att.FileType, formatSize(att.FileSize)))
	}
}

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "unknown size"
	}
	return fmt.Sprintf("%.2f MiB", float64(bytes)/(1024*1024))
}
