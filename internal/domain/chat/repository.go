package chat

import (
	"context"
	"time"
)

// ConversationRepository persists conversations.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conv Conversation) (Conversation, error)
	GetConversation(ctx context.Context, id string) (Conversation, bool, error)
	ListConversations(ctx context.Context, userID int64) ([]Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) (Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
	// DeleteConversation removes the conversation and its messages.
	DeleteConversation(ctx context.Context, id string) error
}

// MessageRepository persists messages.
type MessageRepository interface {
	AppendMessage(ctx context.Context, msg Message) (Message, error)
	// ListMessages returns every message ordered by timestamp, then insertion.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
	// ListRecent returns the newest limit messages in ascending order.
	ListRecent(ctx context.Context, conversationID string, limit int) ([]Message, error)
}

// Repository is implemented by stores holding both tables.
type Repository interface {
	ConversationRepository
	MessageRepository
}

// TokenCounter sizes text for the model context window.
type TokenCounter interface {
	Count(text string) int
}

// ObjectStorage stores exported transcripts.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	// PresignGet returns an empty URL when the backend cannot sign.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
