// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	auditstore "github.com/dalemusser/regdash/internal/app/store/audit"
	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/store/sessions"
	"github.com/dalemusser/regdash/internal/app/system/ratelimit"
	"github.com/dalemusser/regdash/internal/app/system/snapshot"
	"github.com/dalemusser/regdash/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects MongoDB and builds the registration backend client and
// the statistics snapshot.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("regdash").
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	backend, err := registrants.New(registrants.Config{
		BaseURL:      appCfg.BackendBaseURL,
		UsersPath:    appCfg.BackendUsersPath,
		AllUsersPath: appCfg.BackendAllUsersPath,
		Logger:       logger,
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	snaps := snapshot.New(backend, snapshot.Options{
		TTL:         appCfg.StatsCacheTTL,
		RefreshWait: appCfg.RefreshDebounce,
		Location:    appCfg.DisplayLocation,
		Logger:      logger,
	})

	db := client.Database(appCfg.MongoDatabase)
	sessStore := sessions.New(db)

	return DBDeps{
		MongoClient:    client,
		MongoDatabase:  db,
		Sessions:       sessStore,
		Registrants:    backend,
		Snapshots:      snaps,
		LoginLimiter:   ratelimit.NewLoginLimiter(),
		SessionCleanup: workers.NewSessionCleanup(sessStore, logger, 0),
	}, nil
}

// EnsureSchema creates the indexes for the session and audit collections.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return ensureIndexes(ctx, deps.MongoDatabase, logger)
}

func ensureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := sessions.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("sessions indexes: %w", err)
	}
	if err := auditstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	logger.Info("indexes ensured")
	return nil
}
