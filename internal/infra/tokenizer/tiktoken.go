package tokenizer

import (
	"log/slog"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts model tokens with tiktoken. The encoding is loaded on first use; when it
// cannot be loaded (offline hosts, unknown model) Count falls back to an estimate.
type Counter struct {
	model  string
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter constructs a lazy token counter for model.
func NewCounter(model string, logger *slog.Logger) *Counter {
	if model == "" {
		model = "gpt-4"
	}
	return &Counter{model: model, logger: logger.With("component", "tokenizer")}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(c.load)
	if c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *Counter) load() {
	enc, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		c.logger.Warn("tiktoken encoding unavailable, estimating token counts", "model", c.model, "error", err)
		return
	}
	c.enc = enc
}

// Estimate approximates BPE token counts at about four bytes of English text per token.
func Estimate(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	words := len(strings.Fields(text))
	byRunes := int(math.Ceil(float64(utf8.RuneCountInString(text)) / 4))
	return max(words, byRunes)
}
