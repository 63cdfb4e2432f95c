package chat

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
	"github.com/kangsive/ai-chat-bot/internal/utils/stringutils"
)

const chatTitleMaxLen = 60

// Transactor runs fn inside one atomic unit of work; repository calls made
// with the ctx it passes join that unit.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// FileStore is the file storage capability: locators returned by Store are
// opaque strings the domain only hands back to Read and Delete.
type FileStore interface {
	FileReader
	Store(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, locator string) error
}

// CompletionStreamer is the inference capability: it turns an ordered wire
// history into an asynchronous sequence of text fragments, invoking
// onFragment for each one until exhaustion or error.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, model string, history []WireMessage, onFragment func(fragment string) error) error
}

// chatLocker hands out one mutex per chat id so concurrent writers to the
// same chat serialize. Entries are refcounted and dropped when idle.
type chatLocker struct {
	mu    sync.Mutex
	locks map[uint]*chatLockEntry
}

type chatLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newChatLocker() *chatLocker {
	return &chatLocker{locks: make(map[uint]*chatLockEntry)}
}

// Lock acquires the chat's mutex and returns its release func.
func (l *chatLocker) Lock(chatID uint) func() {
	l.mu.Lock()
	entry, ok := l.locks[chatID]
	if !ok {
		entry = &chatLockEntry{}
		l.locks[chatID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, chatID)
		}
		l.mu.Unlock()
	}
}

// Service owns chat lifecycle and message sequencing. All chat-mutating
// paths take the per-chat lock for their whole duration.
type Service struct {
	chats       ChatRepository
	messages    MessageRepository
	attachments AttachmentRepository
	files       FileStore
	resolver    *AttachmentResolver
	streamer    CompletionStreamer
	tx          Transactor
	locks       *chatLocker
	log         zerolog.Logger

	flushThreshold int
}

// NewService wires the chat service.
func NewService(
	chats ChatRepository,
	messages MessageRepository,
	attachments AttachmentRepository,
	files FileStore,
	resolver *AttachmentResolver,
	streamer CompletionStreamer,
	tx Transactor,
	flushThreshold int,
	log zerolog.Logger,
) *Service {
	return &Service{
		chats:          chats,
		messages:       messages,
		attachments:    attachments,
		files:          files,
		resolver:       resolver,
		streamer:       streamer,
		tx:             tx,
		locks:          newChatLocker(),
		log:            log.With().Str("component", "chat-service").Logger(),
		flushThreshold: flushThreshold,
	}
}

// CreateChat creates a chat for the user.
func (s *Service) CreateChat(ctx context.Context, userID uint, model string, title *string) (*Chat, error) {
	chat, err := NewChat(userID, model, title)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"unable to generate chat id", err, "81ad001b-f4cf-4151-b9d4-5edee8983e14")
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// GetOwnedChat loads a chat and verifies ownership. Chats of other users
// surface as not found rather than forbidden.
func (s *Service) GetOwnedChat(ctx context.Context, userID uint, publicID string) (*Chat, error) {
	chat, err := s.chats.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("chat %s not found", publicID), nil, "bd94fa88-88a5-4caa-a46a-0f1a9ae9a9a9")
	}
	return chat, nil
}

// ListChats returns the user's chats, most recently updated first.
func (s *Service) ListChats(ctx context.Context, userID uint, archived *bool) ([]*Chat, error) {
	return s.chats.List(ctx, ChatFilter{UserID: &userID, Archived: archived})
}

// ChatUpdate carries the mutable chat fields; nil means keep.
type ChatUpdate struct {
	Title    *string
	Model    *string
	Archived *bool
}

// UpdateChat applies a partial update to a chat the user owns.
func (s *Service) UpdateChat(ctx context.Context, userID uint, publicID string, update ChatUpdate) (*Chat, error) {
	chat, err := s.GetOwnedChat(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		chat.Title = update.Title
	}
	if update.Model != nil {
		chat.Model = *update.Model
	}
	if update.Archived != nil {
		chat.Archived = *update.Archived
	}
	if err := s.chats.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteChat removes a chat, its messages and their attachment rows in one
// unit of work. Stored files go only after the rows are committed away and
// the chat lock is released; a failed file removal is logged, not surfaced.
func (s *Service) DeleteChat(ctx context.Context, userID uint, publicID string) error {
	chat, err := s.GetOwnedChat(ctx, userID, publicID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(chat.ID)
	var locators []string
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		messages, txErr := s.messages.ListByChat(txCtx, chat.ID)
		if txErr != nil {
			return txErr
		}
		for _, msg := range messages {
			for _, att := range msg.Attachments {
				locators = append(locators, att.StoragePath)
			}
		}
		return s.chats.Delete(txCtx, chat)
	})
	unlock()
	if err != nil {
		return err
	}

	s.deleteFiles(ctx, locators)
	return nil
}

// maybeDeriveTitle sets the chat title from the first user message of an
// untitled chat.
func (s *Service) maybeDeriveTitle(ctx context.Context, chat *Chat, msg *Message) {
	if chat.Title != nil || msg.Role != RoleUser || msg.Sequence != 1 {
		return
	}
	title := stringutils.GenerateTitle(msg.Content.TextContent(), chatTitleMaxLen)
	if title == "" {
		return
	}
	chat.Title = &title
	if err := s.chats.Update(ctx, chat); err != nil {
		s.log.Warn().Err(err).Str("chat_id", chat.PublicID).Msg("unable to persist derived chat title")
	}
}
