package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"shopflow/internal/config"
	"shopflow/internal/db"
	"shopflow/internal/observability"
	"shopflow/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger, err := observability.NewLogger("seed")
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

	if err := seed.Apply(ctx, pool); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied")
}
