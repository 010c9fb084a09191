package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIngested_PayloadRoundTripsId(t *testing.T) {
	id := uuid.New()
	evt := NewDocumentIngested(id, "catalog.json", "COM 2158 — Networks", 3)

	data, err := json.Marshal(evt.Payload())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	got, ok := DocumentIdFromPayload(decoded)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, DocumentIngestedType, evt.EventType())
	assert.EqualValues(t, 3, decoded["chunk_count"])
}

func TestDocumentIdFromPayload_Invalid(t *testing.T) {
	_, ok := DocumentIdFromPayload(map[string]interface{}{"document_id": "not-a-uuid"})
	assert.False(t, ok)

	_, ok = DocumentIdFromPayload(map[string]interface{}{})
	assert.False(t, ok)
}
