package settingsrepo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/infra/postgres/pgtest"
)

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestPostgresRepository(t *testing.T) {
	exerciseRepository(t, NewPostgresRepository(pgtest.NewPool(t)))
}

func exerciseRepository(t *testing.T, repo settings.Repository) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	_, found, err := repo.Get(ctx, settings.KeyModel)
	require.NoError(t, err)
	require.False(t, found)

	_, err = repo.Upsert(ctx, settings.Record{Key: settings.KeyModel, Value: json.RawMessage(`{"max_tokens":100}`), UpdatedAt: at})
	require.NoError(t, err)
	saved, err := repo.Upsert(ctx, settings.Record{
		Key:       settings.KeyModel,
		Value:     json.RawMessage(`{"max_tokens":500}`),
		UpdatedBy: "editor",
		UpdatedAt: at.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "editor", saved.UpdatedBy)

	got, found, err := repo.Get(ctx, settings.KeyModel)
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"max_tokens":500}`, string(got.Value))
	require.True(t, at.Add(time.Hour).Equal(got.UpdatedAt))

	_, err = repo.Upsert(ctx, settings.Record{Key: settings.KeyPrompts, Value: json.RawMessage(`{"main":"x"}`), UpdatedAt: at})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, settings.KeyModel, all[0].Key)
	require.Equal(t, settings.KeyPrompts, all[1].Key)
	require.Empty(t, all[1].UpdatedBy)
}
