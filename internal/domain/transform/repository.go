package transform

import (
	"context"
	"time"
)

// Repository persists transformations.
type Repository interface {
	Create(ctx context.Context, t Transformation) (Transformation, error)
	List(ctx context.Context, filter Filter) ([]Transformation, error)
	Count(ctx context.Context, filter Filter) (int, error)
	// SetFeedback reports false when no row with id belongs to userID.
	SetFeedback(ctx context.Context, id string, userID int64, feedback int, at time.Time) (bool, error)
	ListSince(ctx context.Context, userID int64, since time.Time) ([]Transformation, error)
}
