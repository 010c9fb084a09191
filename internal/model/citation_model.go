package model

import (
	"time"

	"github.com/google/uuid"
)

// Citation records where a chunk came from.
type Citation struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	ChunkId   int64     `gorm:"not null;index"`
	SourceId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Note      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Relationships
	Chunk  *Chunk  `gorm:"foreignKey:ChunkId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Source *Source `gorm:"foreignKey:SourceId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Citation) TableName() string {
	return "citations"
}
