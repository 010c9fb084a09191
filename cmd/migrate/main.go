package main

import (
	"context"
	"flag"
	"log"

	"course-assistant-be/internal/config"
	"course-assistant-be/internal/migration"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/database"
)

func main() {
	m := flag.Int("hnsw-m", 16, "hnsw graph connections per node")
	efConstruction := flag.Int("hnsw-ef-construction", 64, "hnsw candidate list size while building")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer func() { _ = sysLogger.Sync() }()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogLevel)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer func() { _ = database.Close(db) }()

	index, err := migration.Run(context.Background(), db, migration.Options{
		IndexName:          cfg.Rag.IndexName,
		EmbeddingModel:     cfg.Embedding.Model,
		Provider:           cfg.Embedding.Provider,
		Dimension:          cfg.Embedding.Dimension,
		HnswM:              *m,
		HnswEfConstruction: *efConstruction,
	}, sysLogger)
	if err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	log.Printf("Success: schema ready, index %q uses %s (%d dims)", index.Name, index.EmbeddingModel, index.Dimension)
}
