package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk statuses.
const (
	ChunkStatusPending  = "pending"
	ChunkStatusEmbedded = "embedded"
	ChunkStatusFailed   = "failed"
)

type Chunk struct {
	Id              int64            `gorm:"primaryKey;autoIncrement"`
	DocumentId      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChunkIndex      int              `gorm:"not null;default:0"`
	Text            string           `gorm:"type:text;not null"`
	EmbeddingVector *pgvector.Vector `gorm:"type:vector(1536)"` // resized by cmd/migrate when EMBEDDING_DIMENSION differs
	Status          string           `gorm:"type:varchar(16);not null;default:'pending';index"`
	TokenCount      int              `gorm:"not null;default:0"`
	LastError       *string          `gorm:"type:text"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`

	// Relationships
	Document *Document `gorm:"foreignKey:DocumentId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Chunk) TableName() string {
	return "chunks"
}
