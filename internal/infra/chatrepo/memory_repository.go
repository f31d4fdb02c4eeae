package chatrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/beforest/brandvoice/internal/domain/chat"
)

// MemoryRepository keeps conversations and messages in memory.
type MemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]chat.Conversation
	messages      map[string][]storedMessage
	seq           int64
}

type storedMessage struct {
	msg chat.Message
	seq int64
}

// NewMemoryRepository constructs an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string][]storedMessage),
	}
}

func (r *MemoryRepository) CreateConversation(_ context.Context, conv chat.Conversation) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conversations[conv.ID]; exists {
		return chat.Conversation{}, fmt.Errorf("conversation %s already exists", conv.ID)
	}
	r.conversations[conv.ID] = conv
	return conv, nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, id string) (chat.Conversation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conversations[id]
	return conv, ok, nil
}

func (r *MemoryRepository) ListConversations(_ context.Context, userID int64) ([]chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chat.Conversation, 0)
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateTitle(_ context.Context, id, title string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok {
		return chat.Conversation{}, fmt.Errorf("conversation %s not found", id)
	}
	conv.Title = title
	r.conversations[id] = conv
	return conv, nil
}

func (r *MemoryRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %s not found", id)
	}
	conv.LastActivity = at
	r.conversations[id] = conv
	return nil
}

func (r *MemoryRepository) DeleteConversation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
	delete(r.messages, id)
	return nil
}

func (r *MemoryRepository) AppendMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[msg.ConversationID]; !ok {
		return chat.Message{}, fmt.Errorf("conversation %s not found", msg.ConversationID)
	}
	r.seq++
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], storedMessage{msg: msg, seq: r.seq})
	return msg, nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, conversationID string) ([]chat.Message, error) {
	return r.ordered(conversationID), nil
}

func (r *MemoryRepository) ListRecent(_ context.Context, conversationID string, limit int) ([]chat.Message, error) {
	msgs := r.ordered(conversationID)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *MemoryRepository) ordered(conversationID string) []chat.Message {
	r.mu.RLock()
	stored := append([]storedMessage(nil), r.messages[conversationID]...)
	r.mu.RUnlock()
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].msg.Timestamp.Equal(stored[j].msg.Timestamp) {
			return stored[i].seq < stored[j].seq
		}
		return stored[i].msg.Timestamp.Before(stored[j].msg.Timestamp)
	})
	out := make([]chat.Message, len(stored))
	for i, s := range stored {
		out[i] = s.msg
	}
	return out
}

var _ chat.Repository = (*MemoryRepository)(nil)
