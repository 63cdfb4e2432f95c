package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// WireMessage is the role/content shape exchanged with the inference
// backend: content is a plain string for simple text and an item list for
// multi-modal messages.
type WireMessage struct {
	Role       string      `json:"role"`
	Content    WireContent `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
}

// WireContent is the string-or-list content slot of a wire message.
type WireContent struct {
	Text  string
	Items []ContentItem
}

// IsText reports whether the content is the collapsed string form.
func (w WireContent) IsText() bool {
	return w.Items == nil
}

// NewWireText returns collapsed string content.
func NewWireText(text string) WireContent {
	return WireContent{Text: text}
}

// NewWireItems returns structured list content.
func NewWireItems(items []ContentItem) WireContent {
	if items == nil {
		items = []ContentItem{}
	}
	return WireContent{Items: items}
}

// MarshalJSON emits a JSON string for collapsed content and a JSON array
// otherwise.
func (w WireContent) MarshalJSON() ([]byte, error) {
	if w.IsText() {
		return json.Marshal(w.Text)
	}
	return json.Marshal(w.Items)
}

// UnmarshalJSON accepts either a JSON string or an array of content items.
func (w *WireContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*w = WireContent{Text: text}
		return nil
	}

	var items []ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("wire content must be a string or an item list: %w", err)
	}
	*w = WireContent{Items: items}
	return nil
}

// ToWireMessage converts stored content into the wire shape for the given
// role. Resolved attachment items (if any) are appended after the stored
// items; single-text content with no extra items collapses to a string.
func (c Content) ToWireMessage(role Role, attachmentItems []ContentItem) WireMessage {
	msg := WireMessage{
		Role:       string(role),
		ToolCalls:  c.ToolCalls,
		ToolCallID: c.ToolCallID,
	}

	items := make([]ContentItem, 0, len(c.Items)+len(attachmentItems))
	items = append(items, c.Items...)
	if role == RoleUser {
		items = append(items, attachmentItems...)
	}

	if len(items) == 1 && items[0].Type == ContentItemTypeText && items[0].Text != nil {
		msg.Content = NewWireText(*items[0].Text)
		return msg
	}
	msg.Content = NewWireItems(items)
	return msg
}

// FromWireMessage is the inverse of ToWireMessage: it rebuilds validated
// content from a wire message, dispatching the legality rules on role.
func FromWireMessage(ctx context.Context, msg WireMessage) (Role, Content, error) {
	role := Role(msg.Role)
	if !role.Valid() {
		return "", Content{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown wire message role %q", msg.Role), nil, "6fc1d0f9-5519-4ced-8277-d1ed3a3ca151")
	}

	var items []ContentItem
	if msg.Content.IsText() {
		items = []ContentItem{NewTextItem(msg.Content.Text)}
	} else {
		items = msg.Content.Items
	}

	content := Content{
		Items:      items,
		ToolCalls:  msg.ToolCalls,
		ToolCallID: msg.ToolCallID,
	}
	if err := content.Validate(ctx, role); err != nil {
		return "", Content{}, err
	}
	return role, content, nil
}
