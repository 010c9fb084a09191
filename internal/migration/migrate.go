// Package migration creates and upgrades the course assistant schema.
package migration

import (
	"context"
	"fmt"
	"strings"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/model"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/implementation"

	"gorm.io/gorm"
)

// modelDimension is the vector size declared on model.Chunk.
const modelDimension = 1536

type Options struct {
	IndexName      string
	EmbeddingModel string
	Provider       string
	Dimension      int
	// HnswM and HnswEfConstruction tune the HNSW graph of the ANN index.
	HnswM              int
	HnswEfConstruction int
}

// Run is idempotent: every step may be repeated against a migrated database.
func Run(ctx context.Context, db *gorm.DB, opts Options, log logger.ILogger) (*entity.RagIndex, error) {
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", opts.Dimension)
	}
	if opts.HnswM <= 0 {
		opts.HnswM = 16
	}
	if opts.HnswEfConstruction <= 0 {
		opts.HnswEfConstruction = 64
	}
	db = db.WithContext(ctx)

	log.Info("MIGRATION", "Step 1: Setting up extensions", nil)
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			return nil, fmt.Errorf("setup extensions: %w", err)
		}
	}

	log.Info("MIGRATION", "Step 2: Running AutoMigrate", nil)
	if err := db.AutoMigrate(
		&model.Source{},
		&model.Document{},
		&model.Chunk{},
		&model.Citation{},
		&model.RagIndex{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	log.Info("MIGRATION", "Step 3: Adding insertion order column", nil)
	for _, sql := range []string{
		`ALTER TABLE documents ADD COLUMN IF NOT EXISTS seq BIGSERIAL;`,
		`ALTER TABLE documents ALTER COLUMN course_code TYPE text, ALTER COLUMN units TYPE text;`,
		`CREATE INDEX IF NOT EXISTS idx_documents_course_code_seq ON documents (course_code, seq);`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			return nil, fmt.Errorf("documents seq column: %w", err)
		}
	}

	if err := resizeVectorColumn(db, opts.Dimension, log); err != nil {
		return nil, err
	}

	log.Info("MIGRATION", "Step 5: Creating vector index", map[string]interface{}{
		"m":               opts.HnswM,
		"ef_construction": opts.HnswEfConstruction,
	})
	if err := dropLegacyVectorIndex(db, log); err != nil {
		return nil, err
	}
	if err := db.Exec(vectorIndexSQL(opts)).Error; err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}

	log.Info("MIGRATION", "Step 6: Ensuring index configuration", map[string]interface{}{"name": opts.IndexName})
	description := "Course catalog chunks"
	index, err := implementation.NewRagIndexRepository(db).Ensure(ctx, &entity.RagIndex{
		Name:           opts.IndexName,
		EmbeddingModel: opts.EmbeddingModel,
		Dimension:      opts.Dimension,
		Description:    &description,
		Config: map[string]any{
			"provider":        opts.Provider,
			"metric":          "cosine",
			"index":           "hnsw",
			"m":               opts.HnswM,
			"ef_construction": opts.HnswEfConstruction,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure index config: %w", err)
	}
	if index.Dimension != opts.Dimension || index.EmbeddingModel != opts.EmbeddingModel {
		log.Warn("MIGRATION", "Stored index configuration differs from the environment", map[string]interface{}{
			"stored_dimension":     index.Dimension,
			"configured_dimension": opts.Dimension,
			"stored_model":         index.EmbeddingModel,
			"configured_model":     opts.EmbeddingModel,
		})
	}
	return index, nil
}

// vectorIndexSQL builds the HNSW index. Its graph is maintained on every
// insert, so building it on an empty table loses no recall.
func vectorIndexSQL(opts Options) string {
	return fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx ON chunks USING hnsw (embedding_vector vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
		opts.HnswM, opts.HnswEfConstruction)
}

// dropLegacyVectorIndex removes an ivfflat index left by earlier schemas. Its
// centroids were trained on whatever rows existed when it was built.
func dropLegacyVectorIndex(db *gorm.DB, log logger.ILogger) error {
	var definition string
	err := db.Raw(`SELECT COALESCE(MAX(indexdef), '') FROM pg_indexes WHERE indexname = 'chunks_embedding_idx'`).
		Scan(&definition).Error
	if err != nil {
		return fmt.Errorf("read vector index: %w", err)
	}
	if !strings.Contains(strings.ToLower(definition), "ivfflat") {
		return nil
	}
	log.Warn("MIGRATION", "Replacing ivfflat vector index with hnsw", nil)
	if err := db.Exec(`DROP INDEX IF EXISTS chunks_embedding_idx;`).Error; err != nil {
		return fmt.Errorf("drop legacy vector index: %w", err)
	}
	return nil
}

// resizeVectorColumn changes the chunk vector dimension. Existing vectors of
// another size cannot be converted, so they are cleared and their chunks
// return to pending.
func resizeVectorColumn(db *gorm.DB, dimension int, log logger.ILogger) error {
	var current int
	err := db.Raw(`SELECT atttypmod FROM pg_attribute WHERE attrelid = 'chunks'::regclass AND attname = 'embedding_vector'`).
		Scan(&current).Error
	if err != nil {
		return fmt.Errorf("read vector column: %w", err)
	}
	if current == dimension || (current <= 0 && dimension == modelDimension) {
		return nil
	}

	log.Warn("MIGRATION", "Step 4: Resizing vector column, existing embeddings are reset", map[string]interface{}{
		"from": current,
		"to":   dimension,
	})
	return db.Transaction(func(tx *gorm.DB) error {
		for _, sql := range []string{
			`DROP INDEX IF EXISTS chunks_embedding_idx;`,
			`UPDATE chunks SET embedding_vector = NULL, status = 'pending', last_error = NULL WHERE embedding_vector IS NOT NULL;`,
			fmt.Sprintf(`ALTER TABLE chunks ALTER COLUMN embedding_vector TYPE vector(%d);`, dimension),
		} {
			if err := tx.Exec(sql).Error; err != nil {
				return fmt.Errorf("resize vector column: %w", err)
			}
		}
		return nil
	})
}
