package chat

import "context"

// BuildHistory converts the chat's full message history, ordered by
// sequence, into the wire format consumed by the inference backend.
// Attachments are resolved only for messages that carry them; no windowing
// or summarization is applied.
func (s *Service) BuildHistory(ctx context.Context, chat *Chat) ([]WireMessage, error) {
	messages, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	history := make([]WireMessage, 0, len(messages))
	for _, msg := range messages {
		var attachmentItems []ContentItem
		if len(msg.Attachments) > 0 {
			attachmentItems = s.resolver.Resolve(ctx, msg.Attachments)
		}
		history = append(history, msg.Content.ToWireMessage(msg.Role, attachmentItems))
	}
	return history, nil
}
