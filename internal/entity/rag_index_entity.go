package entity

import "time"

type RagIndex struct {
	Id             uint
	Name           string
	EmbeddingModel string
	Dimension      int
	Description    *string
	Config         map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
