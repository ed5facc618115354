package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/pkg/utils"
)

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps each session as the same JSON document the Redis store writes.
type MemorySessionRepository struct {
	sessions map[domain.SessionID]storedSession
	mu       sync.RWMutex
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[domain.SessionID]storedSession),
	}
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	entry := storedSession{data: data}
	if ttl > 0 {
		entry.expiresAt = utils.Now().Add(ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = entry
	return nil
}

func (r *MemorySessionRepository) Get(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	r.mu.RLock()
	entry, exists := r.sessions[id]
	r.mu.RUnlock()

	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && utils.Now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Raw returns the stored JSON document for a session.
func (r *MemorySessionRepository) Raw(id domain.SessionID) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, exists := r.sessions[id]
	return entry.data, exists
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id domain.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
