package database

import (
	"fmt"
	"strings"
	"time"

	c "github.com/life-stream-dev/life-stream-go-linkplay/internal/config"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/event"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/utils"
)

// ConnectDatabase opens the configured user store, registers its close
// callback with the cleaner and puts the name cache in front of it.
func ConnectDatabase(config c.Config) (*CachedUserStore, error) {
	var store UserStore

	switch strings.ToLower(config.Database.Driver) {
	case "mongo", "mongodb":
		mongoStore, err := ConnectMongo(config)
		if err != nil {
			return nil, err
		}
		event.NewCleaner().Add(mongoStore)
		store = mongoStore
	case "postgres", "postgresql":
		gormStore, err := ConnectPostgres(config)
		if err != nil {
			return nil, err
		}
		event.NewCleaner().Add(gormStore)
		store = gormStore
	case "memory":
		logger.Warn("Using in-memory user store, names must be seeded by the caller")
		store = NewMemoryUserStore()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	logger.InfoF("User store ready: driver=%s", config.Database.Driver)
	ttl := utils.ParseStringTimeOr(config.Database.NameCacheTTL, 10*time.Minute)
	return NewCachedUserStore(store, config.Database.NameCacheSize, ttl), nil
}
