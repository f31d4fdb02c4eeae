package tokenizer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "blank", text: " \n\t", want: 0},
		{name: "short words", text: "a b c d e", want: 5},
		{name: "long word", text: "regeneration", want: 3},
		{name: "sentence", text: "Hello, world", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Estimate(tt.text))
		})
	}
}

func TestCounter_FallsBackWithoutEncoding(t *testing.T) {
	counter := NewCounter("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Equal(t, "gpt-4", counter.model)
	// mark the encoding as already attempted so the test never downloads BPE ranks
	counter.once.Do(func() {})

	require.Zero(t, counter.Count(""))
	require.Equal(t, Estimate("calm, factual sentences"), counter.Count("calm, factual sentences"))
}
