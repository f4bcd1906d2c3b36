package userstore

import (
	"context"
	"sync"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/google/uuid"
)

// Memory is an in-process UserProvider. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu      sync.RWMutex
	byPhone map[string]string
	byID    map[string]phoneAuth.UserRecord
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		byPhone: make(map[string]string),
		byID:    make(map[string]phoneAuth.UserRecord),
	}
}

func (m *Memory) FindByPhone(_ context.Context, phone string) (phoneAuth.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPhone[phone]
	if !ok {
		return phoneAuth.UserRecord{}, phoneAuth.ErrUserNotFound
	}
	return m.byID[id], nil
}

// CreateWithPhone returns the existing account for phone or creates one.
func (m *Memory) CreateWithPhone(_ context.Context, phone string) (phoneAuth.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byPhone[phone]; ok {
		return m.byID[id], nil
	}

	rec := phoneAuth.UserRecord{
		UserID: uuid.NewString(),
		Phone:  phone,
	}
	m.byPhone[phone] = rec.UserID
	m.byID[rec.UserID] = rec
	return rec, nil
}

func (m *Memory) SetPasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[userID]
	if !ok {
		return phoneAuth.ErrUserNotFound
	}
	rec.PasswordHash = hash
	m.byID[userID] = rec
	return nil
}

// Len returns the number of accounts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}
