package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	"github.com/beforest/brandvoice/pkg/metrics"
)

const analystSystemPrompt = "You are an expert content analyst specializing in Beforest's brand voice. Provide precise, factual analysis in the requested JSON format."

// analyze asks the model to explain a transformation. It never fails: any upstream or
// parse error yields the fixed fallback. Usage is reported whenever the upstream sent it.
func (s *service) analyze(ctx context.Context, req Request, transformed string, prompts settings.Prompts, model settings.ModelParams) (*Analysis, *metrics.TokenUsage) {
	vars := templateVars(req)
	vars["transformed_content"] = transformed
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: model.Deployment,
		Messages: []chatgpt.Message{
			{Role: "system", Content: analystSystemPrompt},
			{Role: "user", Content: RenderTemplate(prompts.Justification, vars)},
		},
		MaxTokens:   800,
		Temperature: chatgpt.Float32(0.3),
	})
	if err != nil {
		s.logger.Warn("analysis request failed, using fallback", "error", err)
		return fallbackAnalysis(req.TargetAudience), nil
	}
	usage := tokenUsage(resp.Usage)
	if len(resp.Choices) == 0 {
		s.logger.Warn("analysis returned no choices, using fallback")
		return fallbackAnalysis(req.TargetAudience), usage
	}
	analysis, err := parseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("analysis malformed, using fallback", "error", err)
		return fallbackAnalysis(req.TargetAudience), usage
	}
	return analysis, usage
}

func parseAnalysis(content string) (*Analysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty analysis")
	}
	var out Analysis
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if len(out.KeyChanges) == 0 && len(out.BrandVoiceImprovements) == 0 && out.OverallStrategy == "" {
		return nil, errors.New("analysis has no content")
	}
	return &out, nil
}

func fallbackAnalysis(audience string) *Analysis {
	return &Analysis{
		KeyChanges: []string{
			"Enhanced clarity and directness",
			"Aligned with brand voice guidelines",
			"Improved professional tone",
		},
		BrandVoiceImprovements: []string{
			"Applied calm self-assurance principle",
			"Removed dramatic or promotional language",
			"Maintained factual, science-based approach",
		},
		AudienceAdaptation: fmt.Sprintf("Adapted tone and content for %s", audience),
		OverallStrategy:    "Transformed to match Beforest's authentic, data-driven brand voice",
	}
}
