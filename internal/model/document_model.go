package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq         int64          `gorm:"->;-:migration"` // insertion order; bigserial column added by cmd/migrate
	Title       string         `gorm:"type:text;not null"`
	Content     string         `gorm:"type:text;not null"`
	RawMetadata datatypes.JSON `gorm:"type:jsonb"`
	ContentHash string         `gorm:"type:varchar(64);not null;index"`
	SourceId    *uuid.UUID     `gorm:"type:uuid;index"`
	CourseCode  string         `gorm:"type:text;index"`
	Department  string         `gorm:"type:text"`
	Campus      string         `gorm:"type:text"`
	Units       string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`

	// Relationships
	Source *Source `gorm:"foreignKey:SourceId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (Document) TableName() string {
	return "documents"
}
