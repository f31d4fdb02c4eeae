package settings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/beforest/brandvoice/pkg/errors"
)

func TestService_GetFallsBackToDefaults(t *testing.T) {
	svc := NewService(Config{DefaultDeployment: "gpt-4o-mini"}, newStubRepo(), newStubCache(), newTestLogger())

	view, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, view.Count)
	require.Nil(t, view.LastUpdated)
	require.Equal(t, DefaultPrompts().Main, view.Settings[PromptMain])
	require.Len(t, view.Settings, 3)
	require.Equal(t, "o3-mini", view.Model.Deployment)
	require.Equal(t, 2000, view.Model.MaxTokens)
}

func TestService_SaveValidatesEachPrompt(t *testing.T) {
	valid := map[string]any{
		PromptMain:          "You are a calm and factual writer.",
		PromptTransform:     "Rewrite {original_content} for {target_audience}.",
		PromptJustification: "Explain the changes made to the text.",
	}
	cases := []struct {
		name    string
		mutate  func(map[string]any)
		wantMsg string
	}{
		{name: "short main", mutate: func(m map[string]any) { m[PromptMain] = "   tiny   " }, wantMsg: PromptMain},
		{name: "missing transform", mutate: func(m map[string]any) { delete(m, PromptTransform) }, wantMsg: PromptTransform},
		{name: "non string justification", mutate: func(m map[string]any) { m[PromptJustification] = 42.0 }, wantMsg: "must be a string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubRepo()
			svc := NewService(Config{}, repo, newStubCache(), newTestLogger())
			values := make(map[string]any, len(valid))
			for k, v := range valid {
				values[k] = v
			}
			tc.mutate(values)

			_, err := svc.Save(context.Background(), "editor@example.com", SaveRequest{Settings: values})
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Contains(t, err.Error(), tc.wantMsg)
			require.Empty(t, repo.records)
		})
	}

	repo := newStubRepo()
	svc := NewService(Config{}, repo, newStubCache(), newTestLogger())
	result, err := svc.Save(context.Background(), "editor@example.com", SaveRequest{Settings: valid})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Settings saved successfully", result.Message)
	require.Equal(t, 1, result.Saved)
	require.Equal(t, "editor@example.com", repo.records[KeyPrompts].UpdatedBy)

	prompts, err := svc.Prompts(context.Background())
	require.NoError(t, err)
	require.Equal(t, "You are a calm and factual writer.", prompts.Main)
}

func TestService_PutTypedRecords(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(Config{DefaultDeployment: "fallback"}, repo, newStubCache(), newTestLogger())
	ctx := context.Background()

	_, err := svc.Put(ctx, "a@example.com", PutRequest{Key: "model", Value: json.RawMessage(`{"max_tokens":500,"temperature":0.2,"top_p":1}`)})
	require.NoError(t, err)
	model, err := svc.ModelParams(ctx)
	require.NoError(t, err)
	require.Equal(t, 500, model.MaxTokens)
	require.Equal(t, "fallback", model.Deployment)

	_, err = svc.Put(ctx, "a@example.com", PutRequest{Key: "model", Value: json.RawMessage(`{"max_tokens":500,"temperature":7,"top_p":1}`)})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Put(ctx, "a@example.com", PutRequest{Key: "model", Value: json.RawMessage(`{"max_tokens":500,"top_p":1,"surprise":true}`)})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Put(ctx, "a@example.com", PutRequest{Key: "theme", Value: json.RawMessage(`"dark"`)})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_ReadThroughCacheInvalidatedOnWrite(t *testing.T) {
	repo := newStubRepo()
	cache := newStubCache()
	svc := NewService(Config{CacheTTL: time.Minute}, repo, cache, newTestLogger())
	ctx := context.Background()

	_, err := svc.Seed(ctx, false)
	require.NoError(t, err)
	repo.gets = 0

	_, err = svc.Prompts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.gets)
	_, err = svc.Prompts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.gets, "second read should be served from cache")
	require.Equal(t, time.Minute, cache.ttls[KeyPrompts])

	updated := DefaultPrompts()
	updated.Main = "A different main prompt."
	raw, err := json.Marshal(updated)
	require.NoError(t, err)
	_, err = svc.Put(ctx, "a@example.com", PutRequest{Key: KeyPrompts, Value: raw})
	require.NoError(t, err)

	prompts, err := svc.Prompts(ctx)
	require.NoError(t, err)
	require.Equal(t, "A different main prompt.", prompts.Main)
}

func TestService_CacheFailureFallsBackToRepository(t *testing.T) {
	repo := newStubRepo()
	cache := newStubCache()
	cache.err = errors.New("valkey down")
	svc := NewService(Config{}, repo, cache, newTestLogger())

	_, err := svc.Seed(context.Background(), false)
	require.NoError(t, err)
	prompts, err := svc.Prompts(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultPrompts(), prompts)
}

func TestService_Seed(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(Config{}, repo, newStubCache(), newTestLogger())

	written, err := svc.Seed(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, written)

	written, err = svc.Seed(context.Background(), false)
	require.NoError(t, err)
	require.Zero(t, written)

	written, err = svc.Seed(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 2, written)
}

func TestService_Passcode(t *testing.T) {
	sum := sha256.Sum256([]byte("123456"))
	svc := NewService(Config{PasscodeHash: strings.ToUpper(hex.EncodeToString(sum[:]))}, newStubRepo(), newStubCache(), newTestLogger())

	require.NoError(t, svc.CheckPasscode("123456"))
	require.True(t, svc.VerifyPasscode("123456"))
	require.True(t, apperrors.IsCode(svc.CheckPasscode("654321"), "forbidden"))
	require.True(t, apperrors.IsCode(svc.CheckPasscode(""), "forbidden"))

	open := NewService(Config{}, newStubRepo(), newStubCache(), newTestLogger())
	require.NoError(t, open.CheckPasscode(""))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRepo struct {
	records map[string]Record
	gets    int
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[string]Record)}
}

func (r *stubRepo) Get(_ context.Context, key string) (Record, bool, error) {
	r.gets++
	record, ok := r.records[key]
	return record, ok, nil
}

func (r *stubRepo) Upsert(_ context.Context, record Record) (Record, error) {
	r.records[record.Key] = record
	return record, nil
}

func (r *stubRepo) List(_ context.Context) ([]Record, error) {
	out := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}

type stubCache struct {
	items map[string][]byte
	ttls  map[string]time.Duration
	err   error
}

func newStubCache() *stubCache {
	return &stubCache{items: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	value, ok := c.items[key]
	return value, ok, nil
}

func (c *stubCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.items[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	if c.err != nil {
		return c.err
	}
	delete(c.items, key)
	return nil
}
