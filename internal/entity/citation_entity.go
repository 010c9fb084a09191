package entity

import (
	"time"

	"github.com/google/uuid"
)

type Citation struct {
	Id        int64
	ChunkId   int64
	SourceId  uuid.UUID
	Note      *string
	CreatedAt time.Time
}
