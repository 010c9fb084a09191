package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorIndexSQL_UsesHnswCosine(t *testing.T) {
	sql := vectorIndexSQL(Options{HnswM: 24, HnswEfConstruction: 128})

	assert.Contains(t, sql, "USING hnsw (embedding_vector vector_cosine_ops)")
	assert.Contains(t, sql, "m = 24, ef_construction = 128")
	assert.NotContains(t, sql, "ivfflat")
}
