package model

import (
	"time"

	"github.com/google/uuid"
)

type Source struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(255);not null;index"`
	Type      string    `gorm:"type:varchar(50);not null"`
	Url       *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Source) TableName() string {
	return "sources"
}
