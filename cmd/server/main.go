package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"filecrate/internal/config"
	"filecrate/internal/handler"
	"filecrate/internal/objectstore/s3"
	"filecrate/internal/repository/bindings"
	"filecrate/internal/repository/postgres"
	"filecrate/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database connected", "items_table", tables.Items)

	store, err := s3.NewStore(ctx, s3.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to ensure bucket: %v", err)
	}
	logger.Info("object store ready", "bucket", cfg.S3Bucket)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	storageRepo := postgres.NewStorageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)
	bindingRepo := bindings.NewUnbound(logger)

	storageService := service.NewFileStorageService(
		storageRepo,
		store,
		bindingRepo,
		txManager,
		cfg.SrcPrefix,
		logger,
	)

	storageHandler := handler.NewStorageHandler(storageService, cfg.DefaultPerPage, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", storageHandler.HealthCheck)

	mux.HandleFunc("GET /api/files", storageHandler.ListFiles)
	mux.HandleFunc("POST /api/files", storageHandler.UploadFile)
	mux.HandleFunc("PUT /api/files/by-path", storageHandler.UploadFileByPath)
	mux.HandleFunc("GET /api/files/{id}/content", storageHandler.DownloadFile)

	mux.HandleFunc("POST /api/folders", storageHandler.CreateFolder)
	mux.HandleFunc("POST /api/move", storageHandler.MoveItem)
	mux.HandleFunc("DELETE /api/items/{id}", storageHandler.DeleteItem)
	mux.HandleFunc("GET /api/page-by-path", storageHandler.GetPageByPath)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	logger.Info("server listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
