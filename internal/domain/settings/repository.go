package settings

import (
	"context"
	"time"
)

// Repository persists setting records by key.
type Repository interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Upsert(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context) ([]Record, error)
}

// Cache is a byte oriented read-through cache in front of Repository.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
