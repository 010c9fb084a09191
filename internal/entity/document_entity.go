package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id          uuid.UUID
	Seq         int64
	Title       string
	Content     string
	RawMetadata map[string]any
	ContentHash string
	SourceId    *uuid.UUID
	CourseCode  string
	Department  string
	Campus      string
	Units       string
	CreatedAt   time.Time
}
