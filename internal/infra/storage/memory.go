package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"

	"github.com/beforest/brandvoice/internal/domain/chat"
)

// MemoryStorage keeps exports in process memory. It cannot presign URLs.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob
}

type storedBlob struct {
	data     []byte
	mimeType string
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string]storedBlob)}
}

// Put stores the blob and returns metadata.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (chat.StoredObject, error) {
	hash := md5.Sum(data)
	s.mu.Lock()
	s.blobs[key] = storedBlob{data: append([]byte(nil), data...), mimeType: mimeType}
	s.mu.Unlock()
	return chat.StoredObject{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}, nil
}

// PresignGet returns an empty URL.
func (s *MemoryStorage) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

// Object returns a stored blob.
func (s *MemoryStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	return blob.data, ok
}

var _ chat.ObjectStorage = (*MemoryStorage)(nil)
