package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// Role identifies the author of a message and gates which content shapes
// are legal for it.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ContentItemType discriminates the content item union.
type ContentItemType string

const (
	ContentItemTypeText       ContentItemType = "text"
	ContentItemTypeImageURL   ContentItemType = "image_url"
	ContentItemTypeInputAudio ContentItemType = "input_audio"
)

// Valid reports whether the item type is recognized.
func (t ContentItemType) Valid() bool {
	switch t {
	case ContentItemTypeText, ContentItemTypeImageURL, ContentItemTypeInputAudio:
		return true
	}
	return false
}

// ImageURL carries an image reference, either an http(s) URL or a
// base64 data-URL produced by the attachment resolver.
type ImageURL struct {
	URL string `json:"url"`
}

// InputAudio carries base64 encoded audio data.
type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
}

// ContentItem is one element of a structured content list. Exactly the
// field matching Type is populated.
type ContentItem struct {
	Type       ContentItemType `json:"type"`
	Text       *string         `json:"text,omitempty"`
	ImageURL   *ImageURL       `json:"image_url,omitempty"`
	InputAudio *InputAudio     `json:"input_audio,omitempty"`
}

// NewTextItem creates a text content item.
func NewTextItem(text string) ContentItem {
	return ContentItem{Type: ContentItemTypeText, Text: &text}
}

// NewImageURLItem creates an image_url content item.
func NewImageURLItem(url string) ContentItem {
	return ContentItem{Type: ContentItemTypeImageURL, ImageURL: &ImageURL{URL: url}}
}

// NewInputAudioItem creates an input_audio content item.
func NewInputAudioItem(data, format string) ContentItem {
	return ContentItem{Type: ContentItemTypeInputAudio, InputAudio: &InputAudio{Data: data, Format: format}}
}

func (i ContentItem) validate() error {
	switch i.Type {
	case ContentItemTypeText:
		if i.Text == nil {
			return fmt.Errorf("text item is missing the text field")
		}
	case ContentItemTypeImageURL:
		if i.ImageURL == nil || i.ImageURL.URL == "" {
			return fmt.Errorf("image_url item is missing the url field")
		}
	case ContentItemTypeInputAudio:
		if i.InputAudio == nil || i.InputAudio.Data == "" {
			return fmt.Errorf("input_audio item is missing the data field")
		}
	default:
		return fmt.Errorf("unknown content item type %q", i.Type)
	}
	return nil
}

// FunctionCall names the function an assistant tool call targets.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCall is one tool invocation requested by the assistant.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

func (tc ToolCall) validate() error {
	if tc.ID == "" {
		return fmt.Errorf("tool call is missing id")
	}
	if tc.Type == "" {
		return fmt.Errorf("tool call %s is missing type", tc.ID)
	}
	if tc.Function.Name == "" {
		return fmt.Errorf("tool call %s is missing function.name", tc.ID)
	}
	return nil
}

// Content is the tagged-union message payload, persisted as one JSON
// envelope per message. Which shapes are legal depends on the owning
// message's role; construction goes through the role-gated factories and
// Validate re-checks the invariant at write boundaries.
type Content struct {
	Items      []ContentItem `json:"content"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

// NewSystemContent wraps instruction text as a single text item.
func NewSystemContent(text string) Content {
	return Content{Items: []ContentItem{NewTextItem(text)}}
}

// NewUserTextContent wraps user text as a single text item.
func NewUserTextContent(text string) Content {
	return Content{Items: []ContentItem{NewTextItem(text)}}
}

// NewUserContent builds user content from an explicit item list. Items may
// mix text, image_url and input_audio; anything else fails validation.
func NewUserContent(ctx context.Context, items []ContentItem) (Content, error) {
	content := Content{Items: items}
	if err := content.Validate(ctx, RoleUser); err != nil {
		return Content{}, err
	}
	return content, nil
}

// NewAssistantContent builds assistant content. Text may be empty, which is
// the shape of a streaming placeholder. Tool calls are optional but must be
// well formed when present.
func NewAssistantContent(ctx context.Context, text string, toolCalls []ToolCall) (Content, error) {
	content := Content{Items: []ContentItem{NewTextItem(text)}, ToolCalls: toolCalls}
	if err := content.Validate(ctx, RoleAssistant); err != nil {
		return Content{}, err
	}
	return content, nil
}

// NewToolTextContent builds tool content from plain text.
func NewToolTextContent(ctx context.Context, text, toolCallID string) (Content, error) {
	return NewToolContent(ctx, []ContentItem{NewTextItem(text)}, toolCallID)
}

// NewToolContent builds tool content from an item list. Tool results carry
// text only and must reference the originating tool call.
func NewToolContent(ctx context.Context, items []ContentItem, toolCallID string) (Content, error) {
	content := Content{Items: items, ToolCallID: toolCallID}
	if err := content.Validate(ctx, RoleTool); err != nil {
		return Content{}, err
	}
	return content, nil
}

// Validate enforces the role-gated legality rules. Failures are reported as
// validation errors, never coerced.
func (c Content) Validate(ctx context.Context, role Role) error {
	if !role.Valid() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown message role %q", role), nil, "fa0cf620-7643-4e57-b190-52ff95b17a2a")
	}
	if len(c.Items) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content must contain at least one item", nil, "6b96ef2a-eb9c-4270-8c39-e8b5c79148ef")
	}

	for _, item := range c.Items {
		if err := item.validate(); err != nil {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				err.Error(), nil, "6581cd95-61be-4210-8fda-ca6eaf345ca3")
		}
		if item.Type != ContentItemTypeText && (role == RoleSystem || role == RoleAssistant || role == RoleTool) {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("%s messages accept text items only, got %q", role, item.Type), nil, "0f9466c7-0b69-407b-be79-52016bc0cc3d")
		}
	}

	if len(c.ToolCalls) > 0 {
		if role != RoleAssistant {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("tool_calls are only valid on assistant messages, got role %q", role), nil, "48fcc3a4-0485-4a89-9756-5084c962dffd")
		}
		for _, tc := range c.ToolCalls {
			if err := tc.validate(); err != nil {
				return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
					err.Error(), nil, "1bcf61d0-46ad-4c61-b134-764a3d7dbd73")
			}
		}
	}

	switch role {
	case RoleTool:
		if c.ToolCallID == "" {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"tool messages require a non-empty tool_call_id", nil, "359e5ac1-f0fc-4120-a027-8cea4ce0f195")
		}
	default:
		if c.ToolCallID != "" {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("tool_call_id is only valid on tool messages, got role %q", role), nil, "aec08aa8-f757-4b9c-8fc8-f426ab060cf0")
		}
	}

	return nil
}

// TextContent joins the text of all text items with a single space. Non-text
// items are skipped.
func (c Content) TextContent() string {
	var parts []string
	for _, item := range c.Items {
		if item.Type == ContentItemTypeText && item.Text != nil {
			parts = append(parts, *item.Text)
		}
	}
	return strings.Join(parts, " ")
}

// isSingleText reports whether the content collapses to a plain string.
func (c Content) isSingleText() bool {
	return len(c.Items) == 1 && c.Items[0].Type == ContentItemTypeText && c.Items[0].Text != nil
}

// FlattenForDisplay is the public read projection: system and tool content
// flattens to joined text, user and assistant content collapses to a string
// only when it holds a single text item, multi-modal content stays a list.
// The return value is either a string or a []ContentItem.
func (c Content) FlattenForDisplay(role Role) any {
	switch role {
	case RoleSystem, RoleTool:
		return c.TextContent()
	default:
		if c.isSingleText() {
			return *c.Items[0].Text
		}
		items := make([]ContentItem, len(c.Items))
		copy(items, c.Items)
		return items
	}
}

// MarshalEnvelope serializes the content to its persisted JSON envelope.
func (c Content) MarshalEnvelope() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalEnvelope restores content from its persisted JSON envelope.
func UnmarshalEnvelope(data []byte) (Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("decode content envelope: %w", err)
	}
	return c, nil
}
