package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	apperrors "github.com/beforest/brandvoice/pkg/errors"
	"github.com/beforest/brandvoice/pkg/util"
)

// Service exposes conversations and the streaming chat relay.
type Service interface {
	ListConversations(ctx context.Context, userID int64) ([]Conversation, error)
	CreateConversation(ctx context.Context, userID int64, req CreateConversationRequest) (Conversation, error)
	RenameConversation(ctx context.Context, userID int64, req RenameRequest) (Conversation, error)
	DeleteConversation(ctx context.Context, userID int64, id string) error
	ListMessages(ctx context.Context, userID int64, id string) ([]Message, error)
	ExportConversation(ctx context.Context, userID int64, id string) (ExportResult, error)
	Stream(ctx context.Context, userID int64, req ChatRequest) (<-chan Frame, error)
}

// ChatClient is the streaming subset of the LLM client.
type ChatClient interface {
	CreateChatCompletionStream(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

type service struct {
	cfg     Config
	repo    Repository
	client  ChatClient
	tokens  TokenCounter
	storage ObjectStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the chat domain.
func NewService(cfg Config, repo Repository, client ChatClient, tokens TokenCounter, storage ObjectStorage, logger *slog.Logger) Service {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryTurns
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if strings.TrimSpace(cfg.DefaultTitle) == "" {
		cfg.DefaultTitle = fallbackTitle
	}
	if cfg.ExportURLTTL <= 0 {
		cfg.ExportURLTTL = 15 * time.Minute
	}
	return &service{
		cfg:     cfg,
		repo:    repo,
		client:  client,
		tokens:  tokens,
		storage: storage,
		logger:  logger.With("component", "chat.service"),
		now:     util.NowUTC,
	}
}

func (s *service) ListConversations(ctx context.Context, userID int64) ([]Conversation, error) {
	convs, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to fetch conversations", err)
	}
	if convs == nil {
		convs = []Conversation{}
	}
	return convs, nil
}

func (s *service) CreateConversation(ctx context.Context, userID int64, req CreateConversationRequest) (Conversation, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return Conversation{}, apperrors.Wrap("invalid_input", "title is required", nil)
	}
	mode := strings.TrimSpace(req.Mode)
	switch mode {
	case "":
		mode = ModeChat
	case ModeChat, ModeTransform:
	default:
		return Conversation{}, apperrors.Wrap("invalid_input", "mode must be chat or transform", nil)
	}
	now := s.now()
	conv, err := s.repo.CreateConversation(ctx, Conversation{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Mode:         mode,
		CreatedAt:    now,
		LastActivity: now,
	})
	if err != nil {
		return Conversation{}, apperrors.Wrap("storage_error", "failed to create conversation", err)
	}
	s.logger.Info("conversation created", "conversation_id", conv.ID, "user_id", userID)
	return conv, nil
}

func (s *service) RenameConversation(ctx context.Context, userID int64, req RenameRequest) (Conversation, error) {
	title := strings.TrimSpace(req.Title)
	if strings.TrimSpace(req.ID) == "" || title == "" {
		return Conversation{}, apperrors.Wrap("invalid_input", "id and title are required", nil)
	}
	conv, err := s.mutableConversation(ctx, userID, req.ID)
	if err != nil {
		return Conversation{}, err
	}
	updated, err := s.repo.UpdateTitle(ctx, conv.ID, title)
	if err != nil {
		return Conversation{}, apperrors.Wrap("storage_error", "failed to update conversation", err)
	}
	return updated, nil
}

func (s *service) DeleteConversation(ctx context.Context, userID int64, id string) error {
	conv, err := s.mutableConversation(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteConversation(ctx, conv.ID); err != nil {
		return apperrors.Wrap("storage_error", "failed to delete conversation", err)
	}
	s.logger.Info("conversation deleted", "conversation_id", conv.ID, "user_id", userID)
	return nil
}

func (s *service) ListMessages(ctx context.Context, userID int64, id string) ([]Message, error) {
	conv, err := s.ownedConversation(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to fetch messages", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

func (s *service) ExportConversation(ctx context.Context, userID int64, id string) (ExportResult, error) {
	conv, err := s.ownedConversation(ctx, userID, id)
	if err != nil {
		return ExportResult{}, err
	}
	msgs, err := s.repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return ExportResult{}, apperrors.Wrap("storage_error", "failed to fetch messages", err)
	}
	key := fmt.Sprintf("exports/%d/%s/%d.md", userID, conv.ID, s.now().Unix())
	obj, err := s.storage.Put(ctx, key, []byte(renderTranscript(conv, msgs)), "text/markdown; charset=utf-8")
	if err != nil {
		return ExportResult{}, apperrors.Wrap("storage_error", "failed to store export", err)
	}
	result := ExportResult{Key: obj.Key, Size: obj.Size}
	if url, err := s.storage.PresignGet(ctx, obj.Key, s.cfg.ExportURLTTL); err != nil {
		s.logger.Warn("presign export failed", "key", obj.Key, "error", err)
	} else {
		result.URL = url
	}
	s.logger.Info("conversation exported", "conversation_id", conv.ID, "key", obj.Key, "size", obj.Size)
	return result, nil
}

// ownedConversation hides foreign conversations behind not_found.
func (s *service) ownedConversation(ctx context.Context, userID int64, id string) (Conversation, error) {
	conv, err := s.lookup(ctx, id)
	if err != nil {
		return Conversation{}, err
	}
	if conv.UserID != userID {
		return Conversation{}, apperrors.Wrap("not_found", "conversation not found", nil)
	}
	return conv, nil
}

// mutableConversation reports foreign conversations as forbidden.
func (s *service) mutableConversation(ctx context.Context, userID int64, id string) (Conversation, error) {
	conv, err := s.lookup(ctx, id)
	if err != nil {
		return Conversation{}, err
	}
	if conv.UserID != userID {
		return Conversation{}, apperrors.Wrap("forbidden", "conversation belongs to another user", nil)
	}
	return conv, nil
}

func (s *service) lookup(ctx context.Context, id string) (Conversation, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return Conversation{}, apperrors.Wrap("not_found", "conversation not found", nil)
	}
	conv, found, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return Conversation{}, apperrors.Wrap("storage_error", "failed to fetch conversation", err)
	}
	if !found {
		return Conversation{}, apperrors.Wrap("not_found", "conversation not found", nil)
	}
	return conv, nil
}

func renderTranscript(conv Conversation, msgs []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conv.Title)
	for _, msg := range msgs {
		fmt.Fprintf(&b, "**%s** (%s)\n\n%s\n\n", msg.Role, msg.Timestamp.UTC().Format(time.RFC3339), strings.TrimSpace(msg.Content))
	}
	return b.String()
}
