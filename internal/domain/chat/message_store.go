package chat

import (
	"context"
	"fmt"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// AppendMessage validates content for the role and appends it at the next
// sequence of the chat, holding the chat lock for the whole mutation.
func (s *Service) AppendMessage(ctx context.Context, chat *Chat, role Role, content Content, metadata map[string]any) (*Message, error) {
	if err := content.Validate(ctx, role); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(chat.ID)
	defer unlock()

	var msg *Message
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		msg, txErr = s.appendTx(txCtx, chat, role, content, metadata)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.maybeDeriveTitle(ctx, chat, msg)
	return msg, nil
}

// appendTx assigns sequence = max existing + 1 (1 for an empty chat) and
// persists the message. Caller holds the chat lock and a transaction.
func (s *Service) appendTx(ctx context.Context, chat *Chat, role Role, content Content, metadata map[string]any) (*Message, error) {
	maxSeq, err := s.messages.MaxSequence(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	return s.createAtTx(ctx, chat, role, content, metadata, maxSeq+1)
}

// createAtTx persists a message at an explicit sequence.
func (s *Service) createAtTx(ctx context.Context, chat *Chat, role Role, content Content, metadata map[string]any, sequence int) (*Message, error) {
	msg, err := NewMessage(chat.ID, role, content)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"unable to generate message id", err, "0ab730b0-2732-4c9a-9dd2-fb97697b23c4")
	}
	msg.Sequence = sequence
	msg.Metadata = metadata
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// EditAndTruncate overwrites the user message at targetSequence and deletes
// every later message together with its attachments. History stays linear:
// the superseded continuation is discarded, not branched. Stored files of
// the truncated tail go only after the rows are committed away and the chat
// lock is released.
func (s *Service) EditAndTruncate(ctx context.Context, chat *Chat, targetSequence int, newContent Content) (*Message, error) {
	if err := newContent.Validate(ctx, RoleUser); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(chat.ID)
	var (
		edited   *Message
		locators []string
	)
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		edited, locators, txErr = s.editAndTruncateTx(txCtx, chat, targetSequence, newContent)
		return txErr
	})
	unlock()
	if err != nil {
		return nil, err
	}

	s.deleteFiles(ctx, locators)
	return edited, nil
}

// editAndTruncateTx runs inside the caller's transaction and chat lock. It
// returns the locators of the truncated tail's stored files; the caller
// deletes them only once its unit of work has committed.
func (s *Service) editAndTruncateTx(ctx context.Context, chat *Chat, targetSequence int, newContent Content) (*Message, []string, error) {
	target, err := s.messages.FindByChatAndSequence(ctx, chat.ID, targetSequence)
	if err != nil {
		return nil, nil, err
	}
	if target.Role != RoleUser {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidOperation,
			fmt.Sprintf("only user messages can be edited, message at sequence %d has role %q", targetSequence, target.Role),
			nil, "ee94076c-2bb1-4abf-b42c-598a405ac2e1")
	}

	trailing, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, nil, err
	}
	var locators []string
	for _, msg := range trailing {
		if msg.Sequence > targetSequence {
			for _, att := range msg.Attachments {
				locators = append(locators, att.StoragePath)
			}
		}
	}

	if err := s.messages.DeleteAfterSequence(ctx, chat.ID, targetSequence); err != nil {
		return nil, nil, err
	}
	if err := s.messages.UpdateContent(ctx, target.ID, newContent); err != nil {
		return nil, nil, err
	}

	target.Content = newContent
	return target, locators, nil
}

func (s *Service) deleteFiles(ctx context.Context, locators []string) {
	for _, locator := range locators {
		if err := s.files.Delete(ctx, locator); err != nil {
			s.log.Warn().Err(err).Str("locator", locator).Msg("unable to delete stored attachment file")
		}
	}
}

// StreamingAppendPlaceholder reserves the assistant's slot at an explicit
// sequence with empty text content, before generation begins.
func (s *Service) StreamingAppendPlaceholder(ctx context.Context, chat *Chat, role Role, sequence int) (*Message, error) {
	placeholder, err := NewAssistantContent(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	return s.createAtTx(ctx, chat, role, placeholder, nil, sequence)
}

// UpdateStreamingContent replaces the message's text content wholesale with
// the accumulated buffer. Every call is a full overwrite, so repeated calls
// with growing prefixes are safe; callers serialize per message.
func (s *Service) UpdateStreamingContent(ctx context.Context, messageID uint, accumulated string, final bool) error {
	content, err := NewAssistantContent(ctx, accumulated, nil)
	if err != nil {
		return err
	}
	if err := s.messages.UpdateContent(ctx, messageID, content); err != nil {
		return err
	}
	if final {
		s.log.Debug().Uint("message_id", messageID).Int("chars", len(accumulated)).Msg("final streaming content persisted")
	}
	return nil
}

// ListMessages returns the chat's history ordered by sequence.
func (s *Service) ListMessages(ctx context.Context, chat *Chat) ([]*Message, error) {
	return s.messages.ListByChat(ctx, chat.ID)
}
