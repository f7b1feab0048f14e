package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/NextShop-AI/assistant-go/model"
)

// MemoryBackend is an in-process Backend used in tests and local runs.
// MaxBytes simulates a storage quota: saves whose encoded blob exceeds it
// fail with ErrQuotaExceeded. LoadErr simulates an unreachable backend.
type MemoryBackend struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	MaxBytes int
	LoadErr  error
}

// NewMemoryBackend creates an unbounded in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(ctx context.Context, userID string) ([]model.ChatSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.LoadErr != nil {
		return nil, b.LoadErr
	}

	raw, ok := b.blobs[userID]
	if !ok {
		return nil, nil
	}
	var sessions []model.ChatSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode session blob: %w", err)
	}
	return sessions, nil
}

func (b *MemoryBackend) Save(ctx context.Context, userID string, sessions []model.ChatSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode session blob: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.MaxBytes > 0 && len(data) > b.MaxBytes {
		return fmt.Errorf("%w: %d bytes over %d byte budget", ErrQuotaExceeded, len(data), b.MaxBytes)
	}
	b.blobs[userID] = data
	return nil
}
