package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// defaultMongoDatabase matches the database selected when the URL names none.
const defaultMongoDatabase = "test"

// MongoConnector connects to MongoDB. The driver connects lazily, so a
// primary Ping confirms readiness.
type MongoConnector struct {
	uri        string
	user       string
	password   string
	authSource string
	timeout    time.Duration
	database   string
	logger     *slog.Logger
}

// NewMongoConnector creates a MongoConnector from cfg.
func NewMongoConnector(cfg Config) (*MongoConnector, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse mongo url: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		db = defaultMongoDatabase
	}
	authSource := cfg.AuthSource
	if authSource == "" {
		authSource = DefaultAuthSource
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &MongoConnector{
		uri:        cfg.URL,
		user:       cfg.User,
		password:   cfg.Password,
		authSource: authSource,
		timeout:    timeout,
		database:   db,
		logger:     logger,
	}, nil
}

// ClientOptions builds the driver options for this connector.
func (c *MongoConnector) ClientOptions() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(c.uri).
		SetConnectTimeout(c.timeout).
		SetServerSelectionTimeout(c.timeout)

	if c.user != "" && c.password != "" {
		opts.SetAuth(options.Credential{
			Username:   c.user,
			Password:   c.password,
			AuthSource: c.authSource,
		})
	}
	return opts
}

// Connect opens the client and pings the primary.
func (c *MongoConnector) Connect(ctx context.Context) (Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, c.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("mongo: ping primary: %w", err)
	}

	c.logger.Debug("mongo primary reachable",
		"database", c.database,
		"authenticated", c.user != "" && c.password != "")

	return &MongoHandle{client: client}, nil
}

// MongoHandle is a connected Mongo client.
type MongoHandle struct {
	client *mongo.Client
}

// Driver implements Handle.
func (h *MongoHandle) Driver() string { return "mongodb" }

// Ping implements Handle.
func (h *MongoHandle) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}

// Close implements Handle.
func (h *MongoHandle) Close(ctx context.Context) error {
	return h.client.Disconnect(ctx)
}
