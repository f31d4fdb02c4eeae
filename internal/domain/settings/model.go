package settings

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// KeyPrompts stores the Prompts record.
	KeyPrompts = "prompts"
	// KeyModel stores the ModelParams record.
	KeyModel = "model"

	minPromptLength = 10
)

// Flattened prompt keys exposed over HTTP.
const (
	PromptMain          = "prompts.main"
	PromptTransform     = "prompts.transform"
	PromptJustification = "prompts.justification"
)

// Config controls the settings service.
type Config struct {
	PasscodeHash string
	CacheTTL     time.Duration
	// DefaultDeployment fills ModelParams.Deployment when the stored record leaves it empty.
	DefaultDeployment string
}

// Record is one stored key/value row.
type Record struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy string          `json:"updatedBy,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Prompts groups the editable prompt templates.
type Prompts struct {
	Main          string `json:"main"`
	Transform     string `json:"transform"`
	Justification string `json:"justification"`
}

// Validate enforces the minimum length of each template.
func (p Prompts) Validate() error {
	fields := []struct{ key, value string }{
		{PromptMain, p.Main},
		{PromptTransform, p.Transform},
		{PromptJustification, p.Justification},
	}
	for _, f := range fields {
		if len([]rune(strings.TrimSpace(f.value))) < minPromptLength {
			return fmt.Errorf("invalid or missing setting: %s (minimum %d characters)", f.key, minPromptLength)
		}
	}
	return nil
}

// Flatten returns the dotted-key view.
func (p Prompts) Flatten() map[string]string {
	return map[string]string{
		PromptMain:          p.Main,
		PromptTransform:     p.Transform,
		PromptJustification: p.Justification,
	}
}

// ModelParams tunes completion calls.
type ModelParams struct {
	Deployment       string  `json:"deployment"`
	MaxTokens        int     `json:"max_tokens"`
	Temperature      float32 `json:"temperature"`
	TopP             float32 `json:"top_p"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
	PresencePenalty  float32 `json:"presence_penalty"`
}

// Validate enforces the ranges accepted by chat completion APIs.
func (m ModelParams) Validate() error {
	switch {
	case m.MaxTokens < 1 || m.MaxTokens > 16000:
		return fmt.Errorf("max_tokens must be between 1 and 16000")
	case m.Temperature < 0 || m.Temperature > 2:
		return fmt.Errorf("temperature must be between 0 and 2")
	case m.TopP <= 0 || m.TopP > 1:
		return fmt.Errorf("top_p must be greater than 0 and at most 1")
	case m.FrequencyPenalty < -2 || m.FrequencyPenalty > 2:
		return fmt.Errorf("frequency_penalty must be between -2 and 2")
	case m.PresencePenalty < -2 || m.PresencePenalty > 2:
		return fmt.Errorf("presence_penalty must be between -2 and 2")
	}
	return nil
}

// View is returned by GET /settings.
type View struct {
	Settings    map[string]string `json:"settings"`
	Model       ModelParams       `json:"model"`
	LastUpdated *time.Time        `json:"lastUpdated"`
	Count       int               `json:"count"`
}

// SaveRequest is the POST /settings body. Settings values stay untyped so non-string
// values can be rejected with a precise message.
type SaveRequest struct {
	Settings map[string]any `json:"settings"`
	Model    *ModelParams   `json:"model,omitempty"`
}

// PutRequest upserts a single record.
type PutRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// SaveResult acknowledges a write.
type SaveResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Saved     int       `json:"saved"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultPrompts returns the built-in Beforest templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Main:          defaultMainPrompt,
		Transform:     defaultTransformPrompt,
		Justification: defaultJustificationPrompt,
	}
}

// DefaultModelParams mirrors the seeded model record.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Deployment:  "o3-mini",
		MaxTokens:   2000,
		Temperature: 0.7,
		TopP:        0.9,
	}
}

const defaultMainPrompt = `You are the Beforest Brand Voice Transformer, an expert AI assistant specialized in transforming content to match Beforest's exact brand voice and communication style.

VOICE CHARACTERISTICS:
- Speak with calm self-assurance
- Maintain authenticity at all times
- Show respect for audience intelligence
- Never condescend or oversimplify

NEVER USE:
- Superlatives (amazing, incredible, revolutionary, best, ultimate, etc.)
- Hyperbole or exaggerated claims
- Poetry, flowery language, or dramatic phrasing
- Drama or emotional manipulation
- Buzzwords or corporate jargon

REQUIRED WRITING STYLE:
- Simple, factual sentences
- Insightful observations
- Clear, direct communication
- Let data and evidence lead the conversation
- Use copy to spark curiosity, not to convince through drama

Transform the provided content to follow Beforest's brand voice while keeping the original intent and key information.`

const defaultTransformPrompt = `Transform the following content for Beforest:

ORIGINAL CONTENT:
{original_content}

CONTENT TYPE: {content_type}
TARGET AUDIENCE: {target_audience}
ADDITIONAL CONTEXT: {additional_context}

Transform this content to match Beforest's brand voice while maintaining the original message's intent and key information. Ensure the output is appropriate for the specified content type and target audience.`

const defaultJustificationPrompt = `Analyze the content transformation below and explain what changed and why, based on Beforest's brand voice guidelines.

ORIGINAL CONTENT:
{original_content}

TRANSFORMED CONTENT:
{transformed_content}

CONTENT TYPE: {content_type}
TARGET AUDIENCE: {target_audience}

Respond only with JSON in this exact shape:
{"key_changes": ["..."], "brand_voice_improvements": ["..."], "audience_adaptation": "...", "overall_strategy": "..."}

Keep each point under 50 words.`
