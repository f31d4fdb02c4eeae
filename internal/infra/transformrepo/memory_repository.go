package transformrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/beforest/brandvoice/internal/domain/transform"
)

// MemoryRepository keeps transformations in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]transform.Transformation
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]transform.Transformation)}
}

func (r *MemoryRepository) Create(_ context.Context, t transform.Transformation) (transform.Transformation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[t.ID]; exists {
		return transform.Transformation{}, fmt.Errorf("transformation %s already exists", t.ID)
	}
	r.items[t.ID] = t
	return t, nil
}

func (r *MemoryRepository) List(_ context.Context, filter transform.Filter) ([]transform.Transformation, error) {
	matched := r.match(filter, time.Time{})
	if filter.Offset >= len(matched) {
		return []transform.Transformation{}, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], nil
}

func (r *MemoryRepository) Count(_ context.Context, filter transform.Filter) (int, error) {
	return len(r.match(filter, time.Time{})), nil
}

func (r *MemoryRepository) SetFeedback(_ context.Context, id string, userID int64, feedback int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	t.UserFeedback = &feedback
	t.UpdatedAt = at
	r.items[id] = t
	return true, nil
}

func (r *MemoryRepository) ListSince(_ context.Context, userID int64, since time.Time) ([]transform.Transformation, error) {
	return r.match(transform.Filter{UserID: userID}, since), nil
}

func (r *MemoryRepository) match(filter transform.Filter, since time.Time) []transform.Transformation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]transform.Transformation, 0)
	for _, t := range r.items {
		switch {
		case t.UserID != filter.UserID:
		case filter.ContentType != "" && t.ContentType != filter.ContentType:
		case filter.TargetAudience != "" && t.TargetAudience != filter.TargetAudience:
		case !since.IsZero() && t.CreatedAt.Before(since):
		default:
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ transform.Repository = (*MemoryRepository)(nil)
