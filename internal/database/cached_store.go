package database

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
)

// CachedUserStore keeps resolved names for ttl. Failed lookups are not cached.
type CachedUserStore struct {
	store UserStore
	names *expirable.LRU[int, string]
}

func NewCachedUserStore(store UserStore, size int, ttl time.Duration) *CachedUserStore {
	return &CachedUserStore{
		store: store,
		names: expirable.NewLRU[int, string](size, nil, ttl),
	}
}

func (cs *CachedUserStore) GetUserName(ctx context.Context, userID int) (string, error) {
	if name, ok := cs.names.Get(userID); ok {
		return name, nil
	}
	name, err := cs.store.GetUserName(ctx, userID)
	if err != nil {
		return "", err
	}
	cs.names.Add(userID, name)
	logger.DebugF("user name cached: user_id=%d", userID)
	return name, nil
}

// Forget drops a cached name, e.g. after a rename.
func (cs *CachedUserStore) Forget(userID int) {
	cs.names.Remove(userID)
}
