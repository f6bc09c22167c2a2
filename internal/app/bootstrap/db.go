// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/studycove/studyhub/internal/app/store/audit"
	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB builds the storage backends selected by persistence_mode.
// In memory mode no external connection is made.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.PersistenceMode == "memory" {
		logger.Warn("using in-memory persistence; data is lost on restart")
		return DBDeps{
			Groups:        groupstore.NewMemory(),
			Memberships:   membershipstore.NewMemory(),
			Invites:       invitestore.NewMemory(),
			Confirmations: confirmstore.NewMemory(),
			Contents:      contentstore.NewMemory(),
			Audit:         audit.NewMemory(),
		}, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Groups:        groupstore.NewMongo(db),
		Memberships:   membershipstore.NewMongo(db),
		Invites:       invitestore.NewMongo(db),
		Confirmations: confirmstore.NewMongo(db),
		Contents:      contentstore.NewMongo(db),
		Audit:         audit.NewMongo(db),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on, in particular the
// unique indexes that back invite-token and membership uniqueness.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.PersistenceMode == "memory" {
		return nil
	}

	type indexer interface {
		EnsureIndexes(context.Context) error
	}
	for name, s := range map[string]any{
		"memberships":   deps.Memberships,
		"invites":       deps.Invites,
		"confirmations": deps.Confirmations,
		"contents":      deps.Contents,
		"audit":         deps.Audit,
	} {
		ix, ok := s.(indexer)
		if !ok {
			continue
		}
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
		logger.Debug("ensured indexes", zap.String("store", name))
	}
	return nil
}
