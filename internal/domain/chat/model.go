package chat

import (
	"encoding/json"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation modes.
const (
	ModeChat      = "chat"
	ModeTransform = "transform"
)

// Frame types emitted by the relay.
const (
	FrameContent   = "content"
	FrameWebSearch = "web_search"
	FrameComplete  = "complete"
	FrameError     = "error"
)

const (
	webSearchTool       = "web_search_preview"
	defaultHistoryTurns = 20
	defaultMaxTokens    = 1500
	generateFailedMsg   = "Failed to generate response"
	saveFailedMsg       = "Failed to save response"
)

// Config configures the chat service.
type Config struct {
	SystemPrompt       string
	Model              string
	Temperature        float32
	MaxTokens          int
	HistoryWindow      int
	HistoryTokenBudget int
	DefaultTitle       string
	EnableWebSearch    bool
	ExportURLTTL       time.Duration
}

// Conversation is a chat thread owned by one user.
type Conversation struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	Mode         string    `json:"mode"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	IsArchived   bool      `json:"is_archived"`
}

// Message is one immutable turn.
type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	TokenCount     int             `json:"token_count"`
}

// Location hints the web search tool.
type Location struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message         string          `json:"message"`
	ConversationID  string          `json:"conversationId"`
	Context         json.RawMessage `json:"context,omitempty"`
	EnableWebSearch bool            `json:"enableWebSearch"`
	UserLocation    *Location       `json:"userLocation,omitempty"`
}

// Frame is one SSE event.
type Frame struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	Status         string `json:"status,omitempty"`
	Query          string `json:"query,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// CreateConversationRequest is the POST /conversations payload.
type CreateConversationRequest struct {
	Title string `json:"title"`
	Mode  string `json:"mode,omitempty"`
}

// RenameRequest is the PUT /conversations payload. ID is taken from the path when present.
type RenameRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StoredObject describes an uploaded blob.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// ExportResult points at a rendered transcript.
type ExportResult struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	URL  string `json:"url,omitempty"`
}
