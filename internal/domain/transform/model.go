package transform

import (
	"time"

	"github.com/beforest/brandvoice/pkg/metrics"
)

// Config configures the transformation service.
type Config struct {
	// Model is used when the stored model settings carry no deployment.
	Model            string
	MaxTokens        int
	GenerateAnalysis bool
}

// Request is the POST /transform payload.
type Request struct {
	OriginalContent   string `json:"original_content"`
	ContentType       string `json:"content_type"`
	TargetAudience    string `json:"target_audience"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// RequestMeta carries caller details persisted alongside a transformation.
type RequestMeta struct {
	UserID    int64
	UserEmail string
	UserIP    string
	UserAgent string
	SessionID string
}

// Response is returned by POST /transform.
type Response struct {
	TransformedContent  string              `json:"transformed_content"`
	TransformationID    string              `json:"transformation_id"`
	OriginalLength      int                 `json:"original_length"`
	TransformedLength   int                 `json:"transformed_length"`
	LengthChangePercent float64             `json:"length_change_percent"`
	ProcessingTimeMs    int64               `json:"processing_time_ms"`
	QualityScore        float64             `json:"quality_score"`
	Justification       Justification       `json:"justification"`
	TokenUsage          *metrics.TokenUsage `json:"token_usage,omitempty"`
}

// Justification explains a transformation. Analysis is only present when generated.
type Justification struct {
	ContentType          string    `json:"content_type"`
	TargetAudience       string    `json:"target_audience"`
	OriginalLength       int       `json:"original_length"`
	TransformedLength    int       `json:"transformed_length"`
	LengthChangePercent  float64   `json:"length_change_percent"`
	ProcessingTimeMs     int64     `json:"processing_time_ms"`
	BrandElementsApplied []string  `json:"brand_elements_applied"`
	AudienceOptimization string    `json:"audience_optimization"`
	TransformationType   string    `json:"transformation_type"`
	Analysis             *Analysis `json:"analysis,omitempty"`
}

// Analysis is the model-written explanation of what changed.
type Analysis struct {
	KeyChanges             []string `json:"key_changes"`
	BrandVoiceImprovements []string `json:"brand_voice_improvements"`
	AudienceAdaptation     string   `json:"audience_adaptation"`
	OverallStrategy        string   `json:"overall_strategy"`
}

// Transformation is one stored request/result pair.
type Transformation struct {
	ID                  string        `json:"id"`
	UserID              int64         `json:"user_id"`
	UserEmail           string        `json:"user_email,omitempty"`
	OriginalContent     string        `json:"original_content"`
	TransformedContent  string        `json:"transformed_content"`
	ContentType         string        `json:"content_type"`
	TargetAudience      string        `json:"target_audience"`
	AdditionalContext   string        `json:"additional_context,omitempty"`
	OriginalLength      int           `json:"original_length"`
	TransformedLength   int           `json:"transformed_length"`
	LengthChangePercent float64       `json:"length_change_percent"`
	Justification       Justification `json:"justification"`
	QualityScore        *float64      `json:"transformation_quality_score"`
	UserFeedback        *int          `json:"user_feedback"`
	ProcessingTimeMs    int64         `json:"processing_time_ms"`
	APIModelUsed        string        `json:"api_model_used"`
	UserIP              string        `json:"-"`
	UserAgent           string        `json:"-"`
	SessionID           string        `json:"session_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Filter selects a page of a user's transformations.
type Filter struct {
	UserID         int64
	ContentType    string
	TargetAudience string
	Limit          int
	Offset         int
}

// ListQuery is the parsed GET /transform query. Page and PageSize take precedence over Offset.
type ListQuery struct {
	Limit          int
	Offset         int
	Page           int
	PageSize       int
	ContentType    string
	TargetAudience string
}

// ListResult is one page of history.
type ListResult struct {
	Transformations []Transformation `json:"transformations"`
	TotalCount      int              `json:"total_count"`
	Limit           int              `json:"limit"`
	Offset          int              `json:"offset"`
	HasNext         bool             `json:"has_next"`
}

// FeedbackResult acknowledges a rating.
type FeedbackResult struct {
	Message          string `json:"message"`
	TransformationID string `json:"transformation_id"`
	Feedback         int    `json:"feedback"`
}

// TestPromptRequest runs a transformation with caller-supplied prompts.
type TestPromptRequest struct {
	Request
	SystemPrompt    string `json:"system_prompt"`
	TransformPrompt string `json:"transform_prompt"`
}

// TestPromptResponse is never persisted.
type TestPromptResponse struct {
	TransformedContent  string  `json:"transformed_content"`
	OriginalLength      int     `json:"original_length"`
	TransformedLength   int     `json:"transformed_length"`
	LengthChangePercent float64 `json:"length_change_percent"`
	ProcessingTimeMs    int64   `json:"processing_time_ms"`
	TestMode            bool    `json:"test_mode"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var brandElements = []string{
	"authentic_tone",
	"warm_language",
	"premium_positioning",
	"accessibility",
	"sustainability_focus",
}
