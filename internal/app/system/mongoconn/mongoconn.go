// Package mongoconn owns the process-wide MongoDB client. The connection is
// opened explicitly at startup and shared by every store.
package mongoconn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/greenledger/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ErrNotOpen is returned by accessors called before EnsureOpen succeeds.
var ErrNotOpen = errors.New("mongoconn: connection not open")

// Options tunes the client pool. Zero values keep driver defaults.
type Options struct {
	MaxPoolSize uint64
	MinPoolSize uint64
}

// Conn is a lazily opened, shareable MongoDB connection.
type Conn struct {
	uri    string
	dbName string
	opts   Options
	log    *zap.Logger

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// New describes a connection. Nothing is dialed until EnsureOpen.
func New(uri, dbName string, opts Options, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{uri: uri, dbName: dbName, opts: opts, log: log}
}

// EnsureOpen connects and pings on first use and returns the database.
// Later calls return the same handle. A failed attempt leaves the Conn
// unopened so the caller may retry.
func (c *Conn) EnsureOpen(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}
	if c.dbName == "" {
		return nil, errors.New("mongoconn: database name is empty")
	}

	clientOpts := options.Client().ApplyURI(c.uri)
	if c.opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(c.opts.MaxPoolSize)
	}
	if c.opts.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(c.opts.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongoconn: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongoconn: ping: %w", err)
	}

	c.client = client
	c.db = client.Database(c.dbName)
	c.log.Info("connected to MongoDB", zap.String("database", c.dbName))
	return c.db, nil
}

// Client returns the underlying client, or nil before EnsureOpen.
func (c *Conn) Client() *mongo.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Ping checks connectivity against the primary.
func (c *Conn) Ping(ctx context.Context) error {
	client := c.Client()
	if client == nil {
		return ErrNotOpen
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects. Closing an unopened Conn is a no-op.
func (c *Conn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.db = nil
	return err
}
