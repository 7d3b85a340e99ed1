package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/life-stream-dev/life-stream-go-linkplay/internal/config"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormUserStore reads names from a SQL users table.
type GormUserStore struct {
	db               *gorm.DB
	operationTimeout time.Duration
}

func ConnectPostgres(config c.Config) (*GormUserStore, error) {
	if config.Database.DSN == "" {
		return nil, errors.New("postgres driver requires database.dsn")
	}
	logger.DebugF("Connecting to postgres database...")

	logLevel := gormlogger.Warn
	if config.DebugMode {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(config.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("error occured while connecting to database: %w", err)
	}
	return NewGormUserStore(db, utils.ParseStringTimeOr(config.Database.OperationTimeout, 5*time.Second))
}

// NewGormUserStore wraps an open connection and pings it.
func NewGormUserStore(db *gorm.DB, operationTimeout time.Duration) (*GormUserStore, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error occured while acquiring sql handle: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error occured while pinging database: %w", err)
	}
	return &GormUserStore{db: db, operationTimeout: operationTimeout}, nil
}

func (gs *GormUserStore) GetUserName(ctx context.Context, userID int) (string, error) {
	if userID <= 0 {
		return "", ErrUserIDInvalid
	}
	ctx, cancel := context.WithTimeout(ctx, gs.operationTimeout)
	defer cancel()

	var user User
	startTime := time.Now()
	err := gs.db.WithContext(ctx).Select("name").Where("user_id = ?", userID).Take(&user).Error
	logger.DebugF("user name query cost: %v", time.Since(startTime))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user_id=%d: %w", userID, ErrUserNotFound)
		}
		return "", fmt.Errorf("database operation failed: %w", err)
	}
	return user.Name, nil
}

func (gs *GormUserStore) Invoke(_ context.Context) error {
	logger.InfoF("Closing postgres connection")
	sqlDB, err := gs.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
