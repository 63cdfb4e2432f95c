package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

func notFoundErr(what string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, what+" not found", nil, "00000000-0000-4000-8000-000000000001")
}

type memChatRepo struct {
	nextID uint
	chats  map[uint]*Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[uint]*Chat)}
}

func (r *memChatRepo) Create(_ context.Context, chat *Chat) error {
	r.nextID++
	chat.ID = r.nextID
	r.chats[chat.ID] = chat
	return nil
}

func (r *memChatRepo) FindByID(_ context.Context, id uint) (*Chat, error) {
	if c, ok := r.chats[id]; ok {
		return c, nil
	}
	return nil, notFoundErr("chat")
}

func (r *memChatRepo) FindByPublicID(_ context.Context, publicID string) (*Chat, error) {
	for _, c := range r.chats {
		if c.PublicID == publicID {
			return c, nil
		}
	}
	return nil, notFoundErr("chat")
}

func (r *memChatRepo) List(_ context.Context, filter ChatFilter) ([]*Chat, error) {
	var out []*Chat
	for _, c := range r.chats {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Archived != nil && c.Archived != *filter.Archived {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memChatRepo) Update(_ context.Context, chat *Chat) error {
	if _, ok := r.chats[chat.ID]; !ok {
		return notFoundErr("chat")
	}
	r.chats[chat.ID] = chat
	return nil
}

func (r *memChatRepo) Delete(_ context.Context, chat *Chat) error {
	delete(r.chats, chat.ID)
	return nil
}

type memMessageRepo struct {
	nextID      uint
	messages    map[uint]*Message
	attachments *memAttachmentRepo
}

func newMemMessageRepo(attachments *memAttachmentRepo) *memMessageRepo {
	return &memMessageRepo{messages: make(map[uint]*Message), attachments: attachments}
}

func (r *memMessageRepo) Create(_ context.Context, message *Message) error {
	r.nextID++
	message.ID = r.nextID
	r.messages[message.ID] = message
	return nil
}

func (r *memMessageRepo) FindByID(_ context.Context, id uint) (*Message, error) {
	if m, ok := r.messages[id]; ok {
		return m, nil
	}
	return nil, notFoundErr("message")
}

func (r *memMessageRepo) FindByPublicID(_ context.Context, publicID string) (*Message, error) {
	for _, m := range r.messages {
		if m.PublicID == publicID {
			return m, nil
		}
	}
	return nil, notFoundErr("message")
}

func (r *memMessageRepo) FindByChatAndSequence(_ context.Context, chatID uint, sequence int) (*Message, error) {
	for _, m := range r.messages {
		if m.ChatID == chatID && m.Sequence == sequence {
			return m, nil
		}
	}
	return nil, notFoundErr("message")
}

func (r *memMessageRepo) ListByChat(_ context.Context, chatID uint) ([]*Message, error) {
	var out []*Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memMessageRepo) MaxSequence(_ context.Context, chatID uint) (int, error) {
	max := 0
	for _, m := range r.messages {
		if m.ChatID == chatID && m.Sequence > max {
			max = m.Sequence
		}
	}
	return max, nil
}

func (r *memMessageRepo) UpdateContent(_ context.Context, messageID uint, content Content) error {
	m, ok := r.messages[messageID]
	if !ok {
		return notFoundErr("message")
	}
	m.Content = content
	return nil
}

func (r *memMessageRepo) DeleteAfterSequence(_ context.Context, chatID uint, sequence int) error {
	for id, m := range r.messages {
		if m.ChatID == chatID && m.Sequence > sequence {
			if r.attachments != nil {
				r.attachments.deleteByMessage(id)
			}
			delete(r.messages, id)
		}
	}
	return nil
}

type memAttachmentRepo struct {
	nextID      uint
	attachments map[uint]*Attachment
	createErr   error
}

func newMemAttachmentRepo() *memAttachmentRepo {
	return &memAttachmentRepo{attachments: make(map[uint]*Attachment)}
}

func (r *memAttachmentRepo) Create(_ context.Context, attachment *Attachment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	attachment.ID = r.nextID
	r.attachments[attachment.ID] = attachment
	return nil
}

func (r *memAttachmentRepo) FindByPublicID(_ context.Context, publicID string) (*Attachment, error) {
	for _, a := range r.attachments {
		if a.PublicID == publicID {
			return a, nil
		}
	}
	return nil, notFoundErr("attachment")
}

func (r *memAttachmentRepo) ListByMessage(_ context.Context, messageID uint) ([]*Attachment, error) {
	var out []*Attachment
	for _, a := range r.attachments {
		if a.MessageID == messageID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAttachmentRepo) Delete(_ context.Context, attachment *Attachment) error {
	delete(r.attachments, attachment.ID)
	return nil
}

func (r *memAttachmentRepo) deleteByMessage(messageID uint) {
	for id, a := range r.attachments {
		if a.MessageID == messageID {
			delete(r.attachments, id)
		}
	}
}

type memFileStore struct {
	files    map[string][]byte
	deleted  []string
	onDelete func(locator string)
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (s *memFileStore) Store(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.files[key] = buf.Bytes()
	return key, nil
}

func (s *memFileStore) Read(_ context.Context, locator string) ([]byte, error) {
	if data, ok := s.files[locator]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", locator)
}

func (s *memFileStore) Delete(_ context.Context, locator string) error {
	if s.onDelete != nil {
		s.onDelete(locator)
	}
	delete(s.files, locator)
	s.deleted = append(s.deleted, locator)
	return nil
}

// passTx runs the unit of work directly and counts invocations; the
// in-memory repositories have no transactional semantics to join.
type passTx struct {
	calls int
}

func (t *passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// scriptedStreamer emits a fixed fragment sequence and then the configured
// error, if any.
type scriptedStreamer struct {
	fragments []string
	err       error
	history   []WireMessage
	model     string
}

func (s *scriptedStreamer) StreamCompletion(_ context.Context, model string, history []WireMessage, onFragment func(string) error) error {
	s.model = model
	s.history = history
	for _, frag := range s.fragments {
		if err := onFragment(frag); err != nil {
			return err
		}
	}
	return s.err
}

type testEnv struct {
	svc         *Service
	chats       *memChatRepo
	messages    *memMessageRepo
	attachments *memAttachmentRepo
	files       *memFileStore
	streamer    *scriptedStreamer
	tx          *passTx
}

func newTestEnv(flushThreshold int) *testEnv {
	attachments := newMemAttachmentRepo()
	messages := newMemMessageRepo(attachments)
	chats := newMemChatRepo()
	files := newMemFileStore()
	streamer := &scriptedStreamer{}
	tx := &passTx{}
	log := zerolog.Nop()

	svc := NewService(
		chats,
		messages,
		attachments,
		files,
		NewAttachmentResolver(files, log),
		streamer,
		tx,
		flushThreshold,
		log,
	)
	return &testEnv{
		svc:         svc,
		chats:       chats,
		messages:    messages,
		attachments: attachments,
		files:       files,
		streamer:    streamer,
		tx:          tx,
	}
}
