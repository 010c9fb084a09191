package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Title(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
	}{
		{
			name:   "explicit title wins",
			record: map[string]any{"title": "Intro to Networks", "name": "ignored"},
			want:   "Intro to Networks",
		},
		{
			name:   "composite prefix and number",
			record: map[string]any{"course_prefix": "COM", "course_number": "2158", "course_title": "Intro to Networks", "title": "Other"},
			want:   "COM 2158 — Intro to Networks",
		},
		{
			name:   "blank title falls through",
			record: map[string]any{"title": "   ", "program_name": "Cybersecurity AAS"},
			want:   "Cybersecurity AAS",
		},
		{
			name:   "job title",
			record: map[string]any{"job_title": "Network Administrator"},
			want:   "Network Administrator",
		},
		{
			name:   "fallback label",
			record: map[string]any{"foo": "bar"},
			want:   DefaultTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.record).Title)
		})
	}
}

func TestNormalize_ContentPriority(t *testing.T) {
	record := map[string]any{
		"notes":       "Bring a laptop.",
		"description": "Covers IP, TCP...",
		"metadata":    "Offered in fall.",
	}

	got := Normalize(record).Content

	assert.Equal(t, "Covers IP, TCP...\n\nOffered in fall.\n\nBring a laptop.", got)
}

func TestNormalize_SerializationFallback(t *testing.T) {
	record := map[string]any{"zeta": 1.0, "alpha": "x"}

	got := Normalize(record).Content

	assert.True(t, strings.HasPrefix(got, "{"))
	assert.Less(t, strings.Index(got, `"alpha"`), strings.Index(got, `"zeta"`))
	assert.Equal(t, got, Normalize(record).Content, "must be deterministic")
}

func TestNormalize_CanonicalFields(t *testing.T) {
	record := map[string]any{
		"course_prefix": "COM",
		"course_number": 2158.0,
		"dept_name":     "Pacific Center for Advanced Technology Training",
		"campus":        "Honolulu",
		"num_units":     3.0,
	}

	n := Normalize(record)

	assert.Equal(t, "COM 2158", n.CourseCode)
	assert.Equal(t, "Pacific Center for Advanced Technology Training", n.Department)
	assert.Equal(t, "Honolulu", n.Campus)
	assert.Equal(t, "3", n.Units)
}

func TestNormalize_EmptyRecord(t *testing.T) {
	n := Normalize(map[string]any{})

	assert.Equal(t, DefaultTitle, n.Title)
	assert.Equal(t, "{}", n.Content)
	assert.Empty(t, n.CourseCode)
}

func TestPick_SkipsNilAndBlank(t *testing.T) {
	record := map[string]any{"a": nil, "b": "", "c": "value"}

	v, ok := Pick(record, "a", "b", "c")

	assert.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = Pick(record, "a", "b", "missing")
	assert.False(t, ok)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "3.5", Stringify(3.5))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "a, b", Stringify([]any{"a", "b"}))
	assert.Equal(t, "{\n  \"k\": \"v\"\n}", Stringify(map[string]any{"k": "v"}))
}
