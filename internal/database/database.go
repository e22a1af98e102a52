// Package database 保存会话中的频道事件, 并可选地归档到MongoDB
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongoevent "go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/config"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/utils"
)

// DBCloseCallback 在清理阶段断开数据库连接
type DBCloseCallback struct {
	store *DBStore
}

func NewDBCloseCallback(store *DBStore) *DBCloseCallback {
	return &DBCloseCallback{store: store}
}

func (dc *DBCloseCallback) Invoke(ctx context.Context) error {
	logger.InfoF("Closing database connection")
	ctx, cancel := context.WithTimeout(ctx, dc.store.operationTimeout)
	defer cancel()
	return dc.store.client.Disconnect(ctx)
}

// BuildURI 构造连接串, 用户名和密码经过转义
func BuildURI(cfg config.ArchiveConfig) string {
	if cfg.Username == "" {
		return fmt.Sprintf("mongodb://%s:%d/", cfg.Host, cfg.Port)
	}
	encodedUser := url.QueryEscape(cfg.Username)
	encodedPass := url.QueryEscape(cfg.Password)
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=admin",
		encodedUser, encodedPass,
		cfg.Host,
		cfg.Port,
	)
}

// ConnectDatabase 连接MongoDB并创建事件索引
func ConnectDatabase(ctx context.Context, cfg config.ArchiveConfig, appName string) (*DBStore, error) {
	logger.DebugF("Connecting to database...")

	clientOptions := options.Client().ApplyURI(BuildURI(cfg)).SetAppName(appName)
	// 连接池配置
	clientOptions.SetMinPoolSize(cfg.MinPoolSize)
	clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	// 超时限制
	connectTimeout := utils.ParseStringTime(cfg.ConnectTimeout)
	clientOptions.SetConnectTimeout(connectTimeout)
	clientOptions.SetServerSelectionTimeout(connectTimeout)
	// TLS
	if cfg.UseTLS {
		clientOptions.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	// 连接池监控
	clientOptions.SetPoolMonitor(&mongoevent.PoolMonitor{
		Event: func(evt *mongoevent.PoolEvent) {
			switch evt.Type {
			case mongoevent.ConnectionCreated:
				logger.DebugF("Database connection created: address=%s id=%d", evt.Address, evt.ConnectionID)
			case mongoevent.ConnectionClosed:
				logger.DebugF("Database connection closed: address=%s id=%d reason=%s", evt.Address, evt.ConnectionID, evt.Reason)
			}
		},
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout+5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error occured while connecting to database: %w", err)
	}

	// 验证连接
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error occured while pinging database: %w", err)
	}

	collectionName := cfg.Collection
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	collection := client.Database(cfg.Database).Collection(collectionName)

	_, err = collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "channel", Value: 1},
				{Key: "user", Value: 1},
				{Key: "date_time", Value: 1},
				{Key: "event_name", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName(EventIndexName),
		},
	)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error occured while creating database indexes: %w", err)
	}

	logger.InfoF("Connected to database %s/%s", cfg.Database, collectionName)
	return &DBStore{
		client:           client,
		collection:       collection,
		operationTimeout: utils.ParseStringTime(cfg.OperationTimeout),
	}, nil
}
