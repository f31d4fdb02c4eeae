package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	apperrors "github.com/beforest/brandvoice/pkg/errors"
)

// Stream saves the user turn and relays one upstream completion. Only a failure before
// the upstream call is returned as an error; everything after arrives as frames.
func (s *service) Stream(ctx context.Context, userID int64, req ChatRequest) (<-chan Frame, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" || strings.TrimSpace(req.ConversationID) == "" {
		return nil, apperrors.Wrap("invalid_input", "message and conversationId are required", nil)
	}
	conv, err := s.ownedConversation(ctx, userID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.appendMessage(ctx, conv.ID, RoleUser, req.Message, req.Context)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to save message", err)
	}

	history, err := s.repo.ListRecent(ctx, conv.ID, s.cfg.HistoryWindow)
	if err != nil || len(history) == 0 {
		if err != nil {
			s.logger.Warn("history unavailable, sending current turn only", "conversation_id", conv.ID, "error", err)
		}
		history = []Message{userMsg}
	}
	if len(history) == 1 && isDefaultTitle(conv.Title, s.cfg.DefaultTitle) {
		s.retitle(ctx, conv, req.Message)
	}

	upstream := chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildContext(history),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: chatgpt.Float32(s.cfg.Temperature),
	}
	if req.EnableWebSearch && s.cfg.EnableWebSearch {
		upstream.Tools = []chatgpt.Tool{webSearchToolDef(req.UserLocation)}
	}

	out := make(chan Frame)
	go s.relay(ctx, conv.ID, upstream, out)
	return out, nil
}

func (s *service) relay(ctx context.Context, conversationID string, req chatgpt.ChatCompletionRequest, out chan<- Frame) {
	defer close(out)
	logger := s.logger.With("conversation_id", conversationID)

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("chat stream request failed", "error", err)
			emit(ctx, out, Frame{Type: FrameError, Error: generateFailedMsg})
		}
		return
	}
	defer stream.Close()

	var acc strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("chat stream cancelled by client")
				return
			}
			logger.Error("chat stream recv failed", "error", err)
			emit(ctx, out, Frame{Type: FrameError, Error: generateFailedMsg})
			return
		}
		for _, choice := range chunk.Choices {
			if content := choice.Delta.Content; content != "" {
				acc.WriteString(content)
				if !emit(ctx, out, Frame{Type: FrameContent, Content: content, ConversationID: conversationID}) {
					return
				}
			}
			for _, call := range choice.Delta.ToolCalls {
				if call.Function.Name != webSearchTool {
					continue
				}
				if !emit(ctx, out, Frame{Type: FrameWebSearch, Status: "searching", Query: call.Function.Arguments, ConversationID: conversationID}) {
					return
				}
			}
			if choice.FinishReason == "tool_calls" {
				if !emit(ctx, out, Frame{Type: FrameWebSearch, Status: "completed", ConversationID: conversationID}) {
					return
				}
			}
		}
	}
	if ctx.Err() != nil {
		return
	}

	saved, err := s.appendMessage(ctx, conversationID, RoleAssistant, acc.String(), nil)
	if err != nil {
		logger.Error("failed to save assistant message", "error", err)
		emit(ctx, out, Frame{Type: FrameError, Error: saveFailedMsg, ConversationID: conversationID})
		return
	}
	if err := s.repo.Touch(ctx, conversationID, saved.Timestamp); err != nil {
		logger.Warn("failed to bump conversation activity", "error", err)
	}
	emit(ctx, out, Frame{Type: FrameComplete, MessageID: saved.ID, ConversationID: conversationID})
}

// emit reports false once the consumer is gone.
func emit(ctx context.Context, out chan<- Frame, frame Frame) bool {
	select {
	case out <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *service) appendMessage(ctx context.Context, conversationID, role, content string, metadata []byte) (Message, error) {
	return s.repo.AppendMessage(ctx, Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       metadata,
		Timestamp:      s.now(),
		TokenCount:     s.tokens.Count(content),
	})
}

// buildContext prepends the system prompt and drops the oldest turns until the history
// fits the token budget. The newest turn is always kept.
func (s *service) buildContext(history []Message) []chatgpt.Message {
	start := 0
	if budget := s.cfg.HistoryTokenBudget; budget > 0 {
		total := 0
		for i := len(history) - 1; i >= 0; i-- {
			count := history[i].TokenCount
			if count <= 0 {
				count = s.tokens.Count(history[i].Content)
			}
			if total+count > budget && i < len(history)-1 {
				start = i + 1
				break
			}
			total += count
		}
	}

	messages := make([]chatgpt.Message, 0, len(history)-start+1)
	if prompt := strings.TrimSpace(s.cfg.SystemPrompt); prompt != "" {
		messages = append(messages, chatgpt.Message{Role: RoleSystem, Content: prompt})
	}
	for _, msg := range history[start:] {
		messages = append(messages, chatgpt.Message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

func (s *service) retitle(ctx context.Context, conv Conversation, message string) {
	title := GenerateTitle(message)
	if title == conv.Title {
		return
	}
	if _, err := s.repo.UpdateTitle(ctx, conv.ID, title); err != nil {
		s.logger.Warn("auto title failed", "conversation_id", conv.ID, "error", err)
	}
}

func webSearchToolDef(loc *Location) chatgpt.Tool {
	where := Location{Country: "US", City: "New York", Region: "New York"}
	if loc != nil {
		if loc.Country != "" {
			where.Country = loc.Country
		}
		if loc.City != "" {
			where.City = loc.City
		}
		if loc.Region != "" {
			where.Region = loc.Region
		}
	}
	return chatgpt.Tool{
		Type: "function",
		Function: chatgpt.ToolFunction{
			Name:        webSearchTool,
			Description: fmt.Sprintf("Search the web for current information. Approximate user location: %s, %s, %s.", where.City, where.Region, where.Country),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "search query"},
				},
				"required": []string{"query"},
			},
		},
	}
}
