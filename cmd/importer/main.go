package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"shopflow/internal/config"
	"shopflow/internal/db"
	"shopflow/internal/importer"
	"shopflow/internal/observability"
	productrepo "shopflow/internal/repository/product"
	stockrepo "shopflow/internal/repository/stock"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := observability.NewLogger("importer")
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open csv", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool), stockrepo.NewPostgres(pool))
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}
	logger.Info("import complete", zap.Int("imported", count))
}
