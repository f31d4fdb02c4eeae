package transform

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	apperrors "github.com/beforest/brandvoice/pkg/errors"
	"github.com/beforest/brandvoice/pkg/metrics"
	"github.com/beforest/brandvoice/pkg/util"
)

// Service exposes the brand voice transformation workflows.
type Service interface {
	Transform(ctx context.Context, meta RequestMeta, req Request) (Response, error)
	History(ctx context.Context, userID int64, query ListQuery) (ListResult, error)
	Feedback(ctx context.Context, userID int64, id string, feedback int) (FeedbackResult, error)
	TestPrompts(ctx context.Context, req TestPromptRequest) (TestPromptResponse, error)
}

// ChatClient is the subset of the LLM client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// PromptSource supplies the editable prompts and model parameters.
type PromptSource interface {
	Prompts(ctx context.Context) (settings.Prompts, error)
	ModelParams(ctx context.Context) (settings.ModelParams, error)
}

type service struct {
	cfg     Config
	repo    Repository
	prompts PromptSource
	client  ChatClient
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the transform domain.
func NewService(cfg Config, repo Repository, prompts PromptSource, client ChatClient, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		repo:    repo,
		prompts: prompts,
		client:  client,
		logger:  logger.With("component", "transform.service"),
		now:     util.NowUTC,
	}
}

func (s *service) Transform(ctx context.Context, meta RequestMeta, req Request) (Response, error) {
	if err := validateRequest(req); err != nil {
		return Response{}, err
	}
	req = trimRequest(req)
	prompts, model := s.loadSettings(ctx)

	start := time.Now()
	content, usage, err := s.complete(ctx, model, prompts.Main, buildUserPrompt(prompts.Transform, req))
	if err != nil {
		return Response{}, err
	}
	elapsed := time.Since(start).Milliseconds()

	originalLen := RuneLength(req.OriginalContent)
	transformedLen := RuneLength(content)
	pct := LengthChangePercent(originalLen, transformedLen)
	score := QualityScore(req.ContentType, originalLen, transformedLen, pct)

	justification := Justification{
		ContentType:          req.ContentType,
		TargetAudience:       req.TargetAudience,
		OriginalLength:       originalLen,
		TransformedLength:    transformedLen,
		LengthChangePercent:  pct,
		ProcessingTimeMs:     elapsed,
		BrandElementsApplied: append([]string(nil), brandElements...),
		AudienceOptimization: "Optimized for " + req.TargetAudience,
		TransformationType:   req.ContentType,
	}
	if s.cfg.GenerateAnalysis {
		var analysisUsage *metrics.TokenUsage
		justification.Analysis, analysisUsage = s.analyze(ctx, req, content, prompts, model)
		usage = combineUsage(usage, analysisUsage)
	}

	now := s.now()
	record, err := s.repo.Create(ctx, Transformation{
		ID:                  uuid.NewString(),
		UserID:              meta.UserID,
		UserEmail:           meta.UserEmail,
		OriginalContent:     req.OriginalContent,
		TransformedContent:  content,
		ContentType:         req.ContentType,
		TargetAudience:      req.TargetAudience,
		AdditionalContext:   req.AdditionalContext,
		OriginalLength:      originalLen,
		TransformedLength:   transformedLen,
		LengthChangePercent: pct,
		Justification:       justification,
		QualityScore:        &score,
		ProcessingTimeMs:    elapsed,
		APIModelUsed:        model.Deployment,
		UserIP:              meta.UserIP,
		UserAgent:           meta.UserAgent,
		SessionID:           meta.SessionID,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		return Response{}, apperrors.Wrap("storage_error", "failed to save transformation", err)
	}
	s.logger.Info("content transformed",
		"transformation_id", record.ID,
		"user_id", meta.UserID,
		"content_type", req.ContentType,
		"processing_time_ms", elapsed,
	)

	return Response{
		TransformedContent:  content,
		TransformationID:    record.ID,
		OriginalLength:      originalLen,
		TransformedLength:   transformedLen,
		LengthChangePercent: pct,
		ProcessingTimeMs:    elapsed,
		QualityScore:        score,
		Justification:       justification,
		TokenUsage:          usage,
	}, nil
}

func (s *service) History(ctx context.Context, userID int64, query ListQuery) (ListResult, error) {
	limit, offset := pageWindow(query)
	filter := Filter{
		UserID:         userID,
		ContentType:    strings.ToLower(strings.TrimSpace(query.ContentType)),
		TargetAudience: strings.TrimSpace(query.TargetAudience),
		Limit:          limit,
		Offset:         offset,
	}

	var (
		items []Transformation
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, apperrors.Wrap("storage_error", "failed to fetch transformations", err)
	}
	if items == nil {
		items = []Transformation{}
	}
	return ListResult{
		Transformations: items,
		TotalCount:      total,
		Limit:           limit,
		Offset:          offset,
		HasNext:         total > offset+limit,
	}, nil
}

func (s *service) Feedback(ctx context.Context, userID int64, id string, feedback int) (FeedbackResult, error) {
	if feedback < 1 || feedback > 5 {
		return FeedbackResult{}, apperrors.Wrap("invalid_input", "feedback must be an integer between 1 and 5", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return FeedbackResult{}, apperrors.Wrap("not_found", "transformation not found", nil)
	}
	updated, err := s.repo.SetFeedback(ctx, id, userID, feedback, s.now())
	if err != nil {
		return FeedbackResult{}, apperrors.Wrap("storage_error", "failed to record feedback", err)
	}
	if !updated {
		return FeedbackResult{}, apperrors.Wrap("not_found", "transformation not found", nil)
	}
	s.logger.Info("feedback recorded", "transformation_id", id, "user_id", userID, "feedback", feedback)
	return FeedbackResult{Message: "Feedback recorded", TransformationID: id, Feedback: feedback}, nil
}

func (s *service) TestPrompts(ctx context.Context, req TestPromptRequest) (TestPromptResponse, error) {
	if err := validateRequest(req.Request); err != nil {
		return TestPromptResponse{}, err
	}
	if strings.TrimSpace(req.SystemPrompt) == "" || strings.TrimSpace(req.TransformPrompt) == "" {
		return TestPromptResponse{}, apperrors.Wrap("invalid_input", "system_prompt and transform_prompt are required", nil)
	}
	base := trimRequest(req.Request)
	_, model := s.loadSettings(ctx)

	start := time.Now()
	content, _, err := s.complete(ctx, model, req.SystemPrompt, RenderTemplate(req.TransformPrompt, templateVars(base)))
	if err != nil {
		return TestPromptResponse{}, err
	}
	originalLen := RuneLength(base.OriginalContent)
	transformedLen := RuneLength(content)
	return TestPromptResponse{
		TransformedContent:  content,
		OriginalLength:      originalLen,
		TransformedLength:   transformedLen,
		LengthChangePercent: LengthChangePercent(originalLen, transformedLen),
		ProcessingTimeMs:    time.Since(start).Milliseconds(),
		TestMode:            true,
	}, nil
}

func (s *service) complete(ctx context.Context, model settings.ModelParams, system, user string) (string, *metrics.TokenUsage, error) {
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: model.Deployment,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:        model.MaxTokens,
		Temperature:      chatgpt.Float32(model.Temperature),
		TopP:             model.TopP,
		FrequencyPenalty: model.FrequencyPenalty,
		PresencePenalty:  model.PresencePenalty,
	})
	if err != nil {
		return "", nil, apperrors.Wrap("llm_error", "transformation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, apperrors.Wrap("llm_error", "transformation returned no choices", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", nil, apperrors.Wrap("llm_error", "transformation returned empty content", nil)
	}
	return content, tokenUsage(resp.Usage), nil
}

func tokenUsage(u *chatgpt.Usage) *metrics.TokenUsage {
	if u == nil {
		return nil
	}
	usage := metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if usage.IsZero() {
		return nil
	}
	return &usage
}

// combineUsage sums the usage of both completions. Either side may be nil.
func combineUsage(a, b *metrics.TokenUsage) *metrics.TokenUsage {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	sum := a.Add(*b)
	return &sum
}

// loadSettings never fails: a broken settings store degrades to the built-in defaults.
func (s *service) loadSettings(ctx context.Context) (settings.Prompts, settings.ModelParams) {
	prompts, err := s.prompts.Prompts(ctx)
	if err != nil {
		s.logger.Warn("prompt settings unavailable, using defaults", "error", err)
		prompts = settings.DefaultPrompts()
	}
	model, err := s.prompts.ModelParams(ctx)
	if err != nil {
		s.logger.Warn("model settings unavailable, using defaults", "error", err)
		model = settings.DefaultModelParams()
		if s.cfg.MaxTokens > 0 {
			model.MaxTokens = s.cfg.MaxTokens
		}
	}
	if strings.TrimSpace(model.Deployment) == "" {
		model.Deployment = s.cfg.Model
	}
	return prompts, model
}

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.OriginalContent) == "":
		return apperrors.Wrap("invalid_input", "original_content is required", nil)
	case strings.TrimSpace(req.ContentType) == "":
		return apperrors.Wrap("invalid_input", "content_type is required", nil)
	case strings.TrimSpace(req.TargetAudience) == "":
		return apperrors.Wrap("invalid_input", "target_audience is required", nil)
	}
	return nil
}

// trimRequest normalizes the metadata fields. The content keeps its original spacing so
// lengths match what the caller sent.
func trimRequest(req Request) Request {
	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))
	req.TargetAudience = strings.TrimSpace(req.TargetAudience)
	req.AdditionalContext = strings.TrimSpace(req.AdditionalContext)
	return req
}

func pageWindow(q ListQuery) (limit, offset int) {
	limit, offset = q.Limit, q.Offset
	if q.PageSize > 0 {
		limit = min(q.PageSize, maxPageSize)
		page := max(q.Page, 1)
		offset = (page - 1) * limit
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
