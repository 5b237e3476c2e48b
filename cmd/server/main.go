package main

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rahat-dev/sharebite/backend/internal/reconcile"
	"github.com/rahat-dev/sharebite/backend/internal/router"
	"github.com/rahat-dev/sharebite/backend/internal/store"
	"github.com/rahat-dev/sharebite/backend/pkg/config"
	"github.com/rahat-dev/sharebite/backend/pkg/firebase"
	"github.com/rahat-dev/sharebite/backend/pkg/logger"
	"github.com/rahat-dev/sharebite/backend/validators"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	docs, authClient, cleanup, err := initStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}
	defer cleanup()

	audit, err := initAudit(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize saga audit log")
	}
	if audit == nil {
		log.Info().Msg("no Postgres configured, saga divergences are log-only")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, log)
	router.SetupRoutes(e, docs, authClient, audit, log)

	log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// initStore builds the configured document store backend. Firestore also
// yields the Firebase auth client; the other backends run with header auth.
func initStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.DocumentStore, *auth.Client, func(), error) {
	switch cfg.StoreBackend {
	case "firestore":
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Msg("Firebase app, auth and Firestore clients initialized")
		return store.NewFirestoreStore(app.Firestore), app.AuthClient, func() { _ = app.Close() }, nil

	case "mongo":
		if cfg.MongoURI == "" {
			return nil, nil, nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		log.Info().Msg("connected to MongoDB")
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return store.NewMongoStore(client.Database(cfg.MongoDB)), nil, cleanup, nil

	case "memory":
		return store.NewMemoryStore(), nil, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func initAudit(cfg *config.Config) (*reconcile.AuditLog, error) {
	if cfg.PostgresConnStr == "" {
		return nil, nil
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresConnStr), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return reconcile.NewAuditLog(db)
}
