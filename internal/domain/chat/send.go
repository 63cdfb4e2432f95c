package chat

import (
	"context"
)

// SendParams describes one user turn. EditSequence, when set, replaces the
// user message at that sequence and discards the superseded continuation
// instead of appending.
type SendParams struct {
	Content      Content
	Uploads      []StoredUpload
	EditSequence *int
	Model        string
}

// SendMessage runs one full request/response turn: persist (or edit) the
// user message with its attachments, assemble the wire history, reserve the
// assistant's placeholder, then drive the inference stream into it. Each
// fragment is passed to emit as it arrives. The per-chat lock is held for
// the entire turn so no concurrent writer can interleave sequencing; stored
// files of an edited-away tail are removed only after the lock releases.
// Returns the assistant message carrying the final accumulated content.
func (s *Service) SendMessage(ctx context.Context, chat *Chat, params SendParams, emit func(fragment string) error) (*Message, error) {
	if err := params.Content.Validate(ctx, RoleUser); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(chat.ID)
	reply, staleLocators, err := s.runTurn(ctx, chat, params, emit)
	unlock()
	if err != nil {
		return nil, err
	}

	s.deleteFiles(ctx, staleLocators)
	return reply, nil
}

func (s *Service) runTurn(ctx context.Context, chat *Chat, params SendParams, emit func(fragment string) error) (*Message, []string, error) {
	model := params.Model
	if model == "" {
		model = chat.Model
	}

	var (
		userMsg  *Message
		locators []string
	)
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		if params.EditSequence != nil {
			userMsg, locators, txErr = s.editAndTruncateTx(txCtx, chat, *params.EditSequence, params.Content)
		} else {
			userMsg, txErr = s.appendTx(txCtx, chat, RoleUser, params.Content, nil)
		}
		if txErr != nil {
			return txErr
		}

		for _, up := range params.Uploads {
			att, attErr := NewAttachment(userMsg.ID, up.Filename, up.Locator, up.MIME, up.Size)
			if attErr != nil {
				return attErr
			}
			if attErr = s.attachments.Create(txCtx, att); attErr != nil {
				return attErr
			}
			userMsg.Attachments = append(userMsg.Attachments, att)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.maybeDeriveTitle(ctx, chat, userMsg)

	// History is assembled after the edit settles and before the
	// placeholder exists, so the backend never sees the empty slot.
	history, err := s.BuildHistory(ctx, chat)
	if err != nil {
		return nil, nil, err
	}

	placeholder, err := s.StreamingAppendPlaceholder(ctx, chat, RoleAssistant, userMsg.Sequence+1)
	if err != nil {
		return nil, nil, err
	}

	session := NewStreamSession(s, placeholder.ID, s.flushThreshold, emit, s.log)
	session.Begin()

	streamErr := s.streamer.StreamCompletion(ctx, model, history, func(fragment string) error {
		return session.OnFragment(ctx, fragment)
	})
	if streamErr != nil {
		return nil, nil, session.Abort(ctx, streamErr)
	}
	if err := session.Complete(ctx); err != nil {
		return nil, nil, err
	}

	final, err := NewAssistantContent(ctx, session.Accumulated(), nil)
	if err != nil {
		return nil, nil, err
	}
	placeholder.Content = final
	return placeholder, locators, nil
}
