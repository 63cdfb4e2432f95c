package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// storeConcurrency caps parallel writes to the storage backend per request.
const storeConcurrency = 4

// Upload is one incoming file before storage.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// StoredUpload records a stored file awaiting its message row.
type StoredUpload struct {
	Filename string
	Locator  string
	MIME     string
	Size     int64
}

// StoreUploads detects each upload's MIME type from its bytes and stores it
// under a chat-scoped key. This runs before the chat lock is taken: file
// I/O never holds the per-chat ordering lock. Reads happen sequentially,
// storage writes fan out; result order follows the upload order.
func (s *Service) StoreUploads(ctx context.Context, chat *Chat, uploads []Upload, maxBytes int64) ([]StoredUpload, error) {
	type pendingUpload struct {
		filename string
		key      string
		mime     string
		data     []byte
	}

	pending := make([]pendingUpload, 0, len(uploads))
	for _, up := range uploads {
		if up.Size > maxBytes {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("file %s exceeds the %d byte upload limit", up.Filename, maxBytes), nil, "b298e07f-ea7b-4eb7-a6cf-397c039f66a9")
		}

		data, err := io.ReadAll(io.LimitReader(up.Reader, maxBytes+1))
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
				fmt.Sprintf("unable to read upload %s", up.Filename), err, "82f79ed2-9b6b-41f8-84e9-986037b7f6fa")
		}
		if int64(len(data)) > maxBytes {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("file %s exceeds the %d byte upload limit", up.Filename, maxBytes), nil, "aca5189d-b59b-47b6-b3fd-4bbb24d69f15")
		}

		mime := mimetype.Detect(data)
		ext := strings.ToLower(filepath.Ext(up.Filename))
		if ext == "" {
			ext = mime.Extension()
		}
		pending = append(pending, pendingUpload{
			filename: up.Filename,
			key:      fmt.Sprintf("%s/%s%s", chat.PublicID, ulid.Make().String(), ext),
			mime:     mime.String(),
			data:     data,
		})
	}

	stored := make([]StoredUpload, len(pending))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(storeConcurrency)
	for i, up := range pending {
		g.Go(func() error {
			locator, err := s.files.Store(gCtx, up.key, bytes.NewReader(up.data), int64(len(up.data)), up.mime)
			if err != nil {
				return platformerrors.NewError(gCtx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal,
					fmt.Sprintf("unable to store upload %s", up.filename), err, "e5671f60-0d5b-4868-9097-5362d7c2a4ba")
			}
			stored[i] = StoredUpload{
				Filename: up.filename,
				Locator:  locator,
				MIME:     up.mime,
				Size:     int64(len(up.data)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stored, nil
}

// getOwnedAttachment resolves an attachment and verifies the requesting
// user owns the chat it hangs off.
func (s *Service) getOwnedAttachment(ctx context.Context, userID uint, publicID string) (*Attachment, error) {
	att, err := s.attachments.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	msg, err := s.messages.FindByID(ctx, att.MessageID)
	if err != nil {
		return nil, err
	}
	chat, err := s.chats.FindByID(ctx, msg.ChatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("attachment %s not found", publicID), nil, "f75dc96f-0a1b-4a7e-8abc-f9fafd249ad5")
	}
	return att, nil
}

// ReadAttachment returns an owned attachment's metadata and bytes.
func (s *Service) ReadAttachment(ctx context.Context, userID uint, publicID string) (*Attachment, []byte, error) {
	att, err := s.getOwnedAttachment(ctx, userID, publicID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.files.Read(ctx, att.StoragePath)
	if err != nil {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal,
			fmt.Sprintf("unable to read attachment %s", publicID), err, "2d63f52e-451a-4426-aed1-8782479ad91e")
	}
	return att, data, nil
}

// DeleteAttachment removes an owned attachment row and its stored file.
func (s *Service) DeleteAttachment(ctx context.Context, userID uint, publicID string) error {
	att, err := s.getOwnedAttachment(ctx, userID, publicID)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, att); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, att.StoragePath); err != nil {
		s.log.Warn().Err(err).Str("locator", att.StoragePath).Msg("unable to delete stored attachment file")
	}
	return nil
}
