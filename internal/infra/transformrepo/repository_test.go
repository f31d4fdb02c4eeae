package transformrepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/beforest/brandvoice/internal/domain/transform"
	"github.com/beforest/brandvoice/internal/infra/postgres/pgtest"
)

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository(), 1, 2)
}

func TestPostgresRepository(t *testing.T) {
	pool := pgtest.NewPool(t)
	owner := pgtest.CreateUser(t, pool, "owner@example.com")
	other := pgtest.CreateUser(t, pool, "other@example.com")
	exerciseRepository(t, NewPostgresRepository(pool), owner, other)
}

func exerciseRepository(t *testing.T, repo transform.Repository, owner, other int64) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 7; i++ {
		contentType := "blog"
		if i%3 == 0 {
			contentType = "email"
		}
		created, err := repo.Create(ctx, record(owner, contentType, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := repo.Create(ctx, record(other, "blog", base))
	require.NoError(t, err)

	page, err := repo.List(ctx, transform.Filter{UserID: owner, Limit: 3, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, ids[6], page[0].ID)
	require.Equal(t, "parents", page[0].TargetAudience)
	require.Equal(t, []string{"authentic_tone"}, page[0].Justification.BrandElementsApplied)
	require.NotNil(t, page[0].QualityScore)
	require.Nil(t, page[0].UserFeedback)
	require.Equal(t, "10.0.0.9", page[0].UserIP)

	tail, err := repo.List(ctx, transform.Filter{UserID: owner, Limit: 3, Offset: 6})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, ids[0], tail[0].ID)

	total, err := repo.Count(ctx, transform.Filter{UserID: owner})
	require.NoError(t, err)
	require.Equal(t, 7, total)
	emails, err := repo.Count(ctx, transform.Filter{UserID: owner, ContentType: "email"})
	require.NoError(t, err)
	require.Equal(t, 3, emails)
	filtered, err := repo.List(ctx, transform.Filter{UserID: owner, ContentType: "email", TargetAudience: "parents", Limit: 10})
	require.NoError(t, err)
	require.Len(t, filtered, 3)

	updated, err := repo.SetFeedback(ctx, ids[2], other, 5, base)
	require.NoError(t, err)
	require.False(t, updated)
	updated, err = repo.SetFeedback(ctx, ids[2], owner, 5, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.True(t, updated)
	updated, err = repo.SetFeedback(ctx, uuid.NewString(), owner, 5, base)
	require.NoError(t, err)
	require.False(t, updated)

	since, err := repo.ListSince(ctx, owner, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, since, 5)
	var rated *transform.Transformation
	for i := range since {
		if since[i].ID == ids[2] {
			rated = &since[i]
		}
	}
	require.NotNil(t, rated)
	require.NotNil(t, rated.UserFeedback)
	require.Equal(t, 5, *rated.UserFeedback)
	require.True(t, base.Add(24*time.Hour).Equal(rated.UpdatedAt))
}

func record(userID int64, contentType string, at time.Time) transform.Transformation {
	score := 3.5
	return transform.Transformation{
		ID:                  uuid.NewString(),
		UserID:              userID,
		UserEmail:           fmt.Sprintf("user%d@example.com", userID),
		OriginalContent:     "Buy now!!!",
		TransformedContent:  "Available today.",
		ContentType:         contentType,
		TargetAudience:      "parents",
		OriginalLength:      10,
		TransformedLength:   16,
		LengthChangePercent: 60,
		Justification: transform.Justification{
			ContentType:          contentType,
			BrandElementsApplied: []string{"authentic_tone"},
		},
		QualityScore:     &score,
		ProcessingTimeMs: 120,
		APIModelUsed:     "o3-mini",
		UserIP:           "10.0.0.9",
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}
