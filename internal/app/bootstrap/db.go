// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/greenledger/internal/app/system/indexes"
	"github.com/dalemusser/greenledger/internal/app/system/mongoconn"
	"github.com/dalemusser/greenledger/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB connection. A failure aborts startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	conn := mongoconn.New(appCfg.MongoURI, appCfg.MongoDatabase, mongoconn.Options{
		MaxPoolSize: appCfg.MongoMaxPoolSize,
		MinPoolSize: appCfg.MongoMinPoolSize,
	}, logger)

	db, err := conn.EnsureOpen(ctx)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	return DBDeps{
		Conn:          conn,
		MongoClient:   conn.Client(),
		MongoDatabase: db,
	}, nil
}

// EnsureSchema creates the collections with their JSON-Schema validators,
// then creates or reconciles the indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}
