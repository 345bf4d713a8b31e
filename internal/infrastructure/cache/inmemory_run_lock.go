package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
)

// lease represents a held lock with its owner token and expiration
type lease struct {
	token     string
	expiresAt time.Time
}

// InMemoryRunLock implements billing.RunLock using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryRunLock struct {
	mu     sync.Mutex
	leases map[string]lease
}

// NewInMemoryRunLock creates a new in-memory run lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{
		leases: make(map[string]lease),
	}
}

// TryAcquire attempts to take the named lock for at most ttl.
// Returns false if the lock is held and its lease has not expired.
func (l *InMemoryRunLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, exists := l.leases[key]; exists && time.Now().Before(held.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.leases[key] = lease{token: token, expiresAt: time.Now().Add(ttl)}
	return token, true, nil
}

// Release gives the lock back if token still owns it. A holder whose lease
// expired and was taken over by another run leaves the new lease untouched.
func (l *InMemoryRunLock) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, exists := l.leases[key]; exists && held.token == token {
		delete(l.leases, key)
	}
	return nil
}

// Ensure InMemoryRunLock implements RunLock
var _ billing.RunLock = (*InMemoryRunLock)(nil)
