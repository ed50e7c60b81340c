// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the stores rely on. Index creation is
// idempotent, so this runs on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"projects": {
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		"boards": {
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "order", Value: 1}}},
		},
		"tasks": {
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
		},
		"friend_requests": {
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "from", Value: 1}, {Key: "status", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			logger.Error("index creation failed", zap.String("collection", coll), zap.Error(err))
			return err
		}
	}
	return nil
}
