package chat

import (
	"context"
	"strings"
	"time"

	"github.com/kangsive/ai-chat-bot/internal/utils/idgen"
)

// FileCategory classifies an attachment's MIME type for resolution.
type FileCategory string

const (
	FileCategoryImage    FileCategory = "image"
	FileCategoryAudio    FileCategory = "audio"
	FileCategoryDocument FileCategory = "document"
	FileCategoryOther    FileCategory = "other"
)

// documentMIMEs are the non-prefix MIME types treated as documents.
var documentMIMEs = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/rtf":  true,
	"application/json": true,
	"text/csv":         true,
}

// CategoryForMIME maps a MIME type into {image, audio, document, other};
// unknown types classify as other.
func CategoryForMIME(mime string) FileCategory {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return FileCategoryImage
	case strings.HasPrefix(mime, "audio/"):
		return FileCategoryAudio
	case strings.HasPrefix(mime, "text/"), documentMIMEs[mime]:
		return FileCategoryDocument
	default:
		return FileCategoryOther
	}
}

// Attachment is a file stored alongside a user message. StoragePath is an
// opaque locator understood only by the file storage backend.
type Attachment struct {
	ID          uint
	PublicID    string
	MessageID   uint
	Filename    string
	StoragePath string
	FileType    string
	FileSize    int64
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAttachment creates attachment metadata for a stored file.
func NewAttachment(messageID uint, filename, storagePath, fileType string, fileSize int64) (*Attachment, error) {
	publicID, err := idgen.GenerateSecureID("att", 16)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		PublicID:    publicID,
		MessageID:   messageID,
		Filename:    filename,
		StoragePath: storagePath,
		FileType:    fileType,
		FileSize:    fileSize,
	}, nil
}

// Category classifies the attachment by its stored MIME type.
func (a *Attachment) Category() FileCategory {
	return CategoryForMIME(a.FileType)
}

// AttachmentRepository is the persistence boundary for attachments.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) error
	FindByPublicID(ctx context.Context, publicID string) (*Attachment, error)
	ListByMessage(ctx context.Context, messageID uint) ([]*Attachment, error)
	Delete(ctx context.Context, attachment *Attachment) error
}
