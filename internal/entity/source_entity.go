package entity

import (
	"time"

	"github.com/google/uuid"
)

type Source struct {
	Id        uuid.UUID
	Name      string
	Type      string
	Url       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
