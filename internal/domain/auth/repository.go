package auth

import (
	"context"
	"time"
)

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, user NewUser) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) error
}
