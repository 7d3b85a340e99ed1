package database

import (
	"context"
	"fmt"
	"sync"
)

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[int]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int]string)}
}

func (ms *MemoryUserStore) SaveUser(user User) error {
	if user.UserID <= 0 {
		return ErrUserIDInvalid
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.users[user.UserID] = user.Name
	return nil
}

func (ms *MemoryUserStore) DeleteUser(userID int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.users, userID)
}

func (ms *MemoryUserStore) GetUserName(_ context.Context, userID int) (string, error) {
	if userID <= 0 {
		return "", ErrUserIDInvalid
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	name, ok := ms.users[userID]
	if !ok {
		return "", fmt.Errorf("user_id=%d: %w", userID, ErrUserNotFound)
	}
	return name, nil
}
