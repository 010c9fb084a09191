package rag

import "errors"

var (
	// ErrInvalidArgument marks caller configuration errors (limit, topK, threshold, blank query).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDimensionMismatch is returned when an embedding does not match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrIndexNotConfigured is returned when no index config row exists for the configured index.
	ErrIndexNotConfigured = errors.New("rag index not configured")
	// ErrEmbeddingProvider wraps failures of the external embedding service.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrOracle wraps failures of the language model service.
	ErrOracle = errors.New("language model error")
)
