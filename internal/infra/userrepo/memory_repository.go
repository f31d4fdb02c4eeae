package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/beforest/brandvoice/internal/domain/auth"
)

// MemoryRepository provides an in-memory user store for tests/dev.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[int64]auth.User
	emailIndex    map[string]int64
	usernameIndex map[string]int64
	seq           int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[int64]auth.User),
		emailIndex:    make(map[string]int64),
		usernameIndex: make(map[string]int64),
	}
}

// Create stores the user record.
func (r *MemoryRepository) Create(_ context.Context, in auth.NewUser) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[in.Email]; exists {
		return auth.User{}, auth.ErrEmailExists
	}
	if _, exists := r.usernameIndex[in.Username]; exists {
		return auth.User{}, auth.ErrUsernameExists
	}
	r.seq++
	user := auth.User{
		ID:           r.seq,
		Email:        in.Email,
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		PasswordHash: in.PasswordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user.ID
	r.usernameIndex[user.Username] = user.ID
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

// GetByUsername returns a user by username.
func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.usernameIndex[username]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

// TouchLogin records the last successful login.
func (r *MemoryRepository) TouchLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil
	}
	at = at.UTC()
	user.LastLogin = &at
	r.users[id] = user
	return nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
