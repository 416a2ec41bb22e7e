package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"shopflow/internal/config"
	"shopflow/internal/db"
	"shopflow/internal/migrate"
	"shopflow/internal/observability"
)

func main() {
	cfg := config.FromEnv()
	logger, err := observability.NewLogger("migrate")
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied", zap.Uint("schema_version", version))
}
