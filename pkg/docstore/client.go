package docstore

import (
	"context"
	"fmt"

	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps the Mongo connection backing the per-user document store.
type Client struct {
	raw *mongo.Client
	db  *mongo.Database
	cfg config.MongoConfig
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New connects to the document store and verifies connectivity.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	raw, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to document store: %w", err)
	}
	if err := raw.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping document store: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "document store connection established")
	}

	return &Client{raw: raw, db: raw.Database(cfg.Database), cfg: cfg}, nil
}

// Collection returns a raw handle for the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.raw.Ping(ctx, readpref.Primary())
}

// Close disconnects from the document store.
func (c *Client) Close(ctx context.Context) error {
	return c.raw.Disconnect(ctx)
}
