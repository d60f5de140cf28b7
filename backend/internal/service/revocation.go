package service

import (
	"context"
	"sync"
	"time"

	"github.com/deskfolio/deskfolio/shared/logger"
)

// Revocations records signed-out sessions until their tokens expire.
type Revocations interface {
	Revoke(ctx context.Context, tokenId string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

// MemoryRevocations is the single-instance Revocations backend.
type MemoryRevocations struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, tokenId string, expiresAt time.Time) error {
	if !expiresAt.After(m.now()) {
		return nil
	}
	m.mu.Lock()
	m.revoked[tokenId] = expiresAt
	m.mu.Unlock()
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	m.mu.RLock()
	expiresAt, ok := m.revoked[tokenId]
	m.mu.RUnlock()
	return ok && expiresAt.After(m.now()), nil
}

// Sweep drops entries whose tokens have expired and returns how many were dropped.
func (m *MemoryRevocations) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, expiresAt := range m.revoked {
		if !expiresAt.After(now) {
			delete(m.revoked, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *MemoryRevocations) StartSweeper(ctx context.Context, interval time.Duration) {
	log := logger.Component("revocations")
	ticker := time.NewTicker(interval)
	log.Info("started revocation sweeper", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					log.Debug("swept expired revocations", "count", n)
				}
			case <-ctx.Done():
				log.Info("stopping revocation sweeper")
				return
			}
		}
	}()
}

func (m *MemoryRevocations) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.revoked)
}
