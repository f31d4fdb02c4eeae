package settingsrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/beforest/brandvoice/internal/domain/settings"
)

// MemoryRepository keeps setting records in a map.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]settings.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]settings.Record)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (settings.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[key]
	return cloneRecord(record), ok, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, record settings.Record) (settings.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneRecord(record)
	r.records[record.Key] = stored
	return cloneRecord(stored), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]settings.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]settings.Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func cloneRecord(record settings.Record) settings.Record {
	if record.Value != nil {
		record.Value = append([]byte(nil), record.Value...)
	}
	return record
}

var _ settings.Repository = (*MemoryRepository)(nil)
