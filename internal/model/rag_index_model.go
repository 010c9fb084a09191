package model

import (
	"time"

	"gorm.io/datatypes"
)

// RagIndex is the configuration of one logical vector index.
type RagIndex struct {
	Id             uint           `gorm:"primaryKey"`
	Name           string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	EmbeddingModel string         `gorm:"type:varchar(100);not null"`
	Dimension      int            `gorm:"not null"`
	Description    *string        `gorm:"type:text"`
	Config         datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (RagIndex) TableName() string {
	return "rag_indexes"
}
