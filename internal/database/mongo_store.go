package database

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	c "github.com/life-stream-dev/life-stream-go-linkplay/internal/config"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoUserStore struct {
	client           *mongo.Client
	users            *mongo.Collection
	operationTimeout time.Duration
}

func mongoURL(config c.DatabaseConfig) string {
	if config.DSN != "" {
		return config.DSN
	}
	encodedUser := url.QueryEscape(config.Username)
	encodedPass := url.QueryEscape(config.Password)
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=admin",
		encodedUser, encodedPass,
		config.Host,
		config.Port,
	)
}

func ConnectMongo(config c.Config) (*MongoUserStore, error) {
	logger.DebugF("Connecting to mongo database...")
	dbConfig := config.Database

	clientOptions := options.Client().ApplyURI(mongoURL(dbConfig)).SetAppName(config.AppName)
	clientOptions.SetMinPoolSize(dbConfig.MinPoolSize)
	if dbConfig.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(dbConfig.MaxPoolSize)
	}
	if idle := utils.ParseStringTimeOr(dbConfig.ConnectIdleTimeout, 0); idle > 0 {
		clientOptions.SetMaxConnIdleTime(idle)
	}
	clientOptions.SetConnectTimeout(utils.ParseStringTimeOr(dbConfig.ConnectTimeout, 10*time.Second))
	if socket := utils.ParseStringTimeOr(dbConfig.SocketTimeout, 0); socket > 0 {
		clientOptions.SetSocketTimeout(socket)
	}
	if heartbeat := utils.ParseStringTimeOr(dbConfig.Heartbeat, 0); heartbeat > 0 {
		clientOptions.SetHeartbeatInterval(heartbeat)
	}
	if dbConfig.UseTLS {
		clientOptions.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	clientOptions.SetPoolMonitor(&event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			switch evt.Type {
			case event.ConnectionCreated:
				logger.DebugF("Database connection created: address=%s id=%d", evt.Address, evt.ConnectionID)
			case event.ConnectionClosed:
				logger.DebugF("Database connection closed: address=%s id=%d reason=%s", evt.Address, evt.ConnectionID, evt.Reason)
			}
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error occured while connecting to database: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error occured while pinging database: %w", err)
	}

	users := client.Database(dbConfig.Database).Collection(UserCollectionName)
	_, err = users.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_user_id_unique"),
		},
	)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error occured while creating database indexes: %w", err)
	}

	return &MongoUserStore{
		client:           client,
		users:            users,
		operationTimeout: utils.ParseStringTimeOr(dbConfig.OperationTimeout, 5*time.Second),
	}, nil
}

func (ms *MongoUserStore) GetUserName(ctx context.Context, userID int) (string, error) {
	if userID <= 0 {
		return "", ErrUserIDInvalid
	}
	ctx, cancel := context.WithTimeout(ctx, ms.operationTimeout)
	defer cancel()

	filter := bson.D{{Key: "user_id", Value: userID}}
	opts := options.FindOne().SetProjection(bson.D{{Key: "name", Value: 1}})
	var user User

	startTime := time.Now()
	err := ms.users.FindOne(ctx, filter, opts).Decode(&user)
	logger.DebugF("user name query cost: %v", time.Since(startTime))

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", fmt.Errorf("user_id=%d: %w", userID, ErrUserNotFound)
		}
		return "", fmt.Errorf("database operation failed: %w", err)
	}
	return user.Name, nil
}

func (ms *MongoUserStore) Invoke(ctx context.Context) error {
	logger.InfoF("Closing mongo connection")
	return ms.client.Disconnect(ctx)
}
