package util

import (
	"context"
	"time"

	"spectre/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectAttempts = 10
	connectDelay    = 3 * time.Second
)

// ConnectMongoDB делает до 10 попыток подключения с паузой 3с
func ConnectMongoDB(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	var err error
	for i := 0; i < connectAttempts; i++ {
		var client *mongo.Client
		client, err = tryConnect(clientOptions)
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(connectDelay)
	}

	return nil, err
}

func tryConnect(clientOptions *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// DisconnectMongoDB закрывает клиент с таймаутом
func DisconnectMongoDB(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
	}
}
