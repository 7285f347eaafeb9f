package database

import (
	"context"
	"fmt"
	"time"

	"codecamp/internal/platform/config"
	"codecamp/internal/platform/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	UsersCollection                = "users"
	ProblemsCollection             = "problems"
	NotificationsCollection        = "notifications"
	NotificationFailuresCollection = "notification_failures"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

func Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(config.AppConfig.MongoURI).
		SetMaxPoolSize(50).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	Client = client
	DB = client.Database(config.AppConfig.MongoDB)
	logger.Info(ctx, "connected to MongoDB", zap.String("database", config.AppConfig.MongoDB))
	return nil
}

func Close() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		logger.Warn(ctx, "mongo disconnect failed", zap.Error(err))
		return
	}
	logger.Info(ctx, "database connection closed")
}
