package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

type Config struct {
	URI      string
	Database string
	// AppName shows up in the server's connection logs.
	AppName string
}

// Connect opens the database and returns it with a function that
// disconnects the client.
func Connect(ctx context.Context, cfg Config) (*mongo.Database, func(), error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(connectTimeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	disconnect := func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		_ = client.Disconnect(dctx)
	}

	if err := client.Ping(ctx, nil); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(cfg.Database), disconnect, nil
}
