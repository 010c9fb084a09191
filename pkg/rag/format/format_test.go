package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"course-assistant-be/pkg/rag"
)

func TestSearchResults_Empty(t *testing.T) {
	assert.Equal(t, NoSearchResults, SearchResults(nil))
}

func TestSearchResults_PlainText(t *testing.T) {
	got := SearchResults([]rag.SearchResult{
		{SourceName: "courses.json", CourseCode: "COM 2158", Content: "  Covers IP, TCP...  "},
		{Content: "Second chunk"},
	})

	assert.Equal(t, "[1] | courses.json | COM 2158\nCovers IP, TCP...\n\n[2]\nSecond chunk", got)
}

func TestSearchResults_StructuredPayload(t *testing.T) {
	payload := map[string]any{
		"course_prefix":    "COM",
		"course_number":    "2158",
		"course_title":     "Intro to Networks",
		"dept_name":        "PCATT",
		"num_units":        3.0,
		"course_desc":      "Covers IP, TCP...",
		"learner_outcomes": []any{"Configure routers", "Subnet networks"},
		"prerequisites":    "COM 1100",
	}

	got := SearchResults([]rag.SearchResult{{SourceName: "uhcc", Payload: payload}})

	want := strings.Join([]string{
		"[1] | uhcc",
		"Course: COM 2158 - Intro to Networks",
		"Department: PCATT",
		"Units: 3",
		"Description: Covers IP, TCP...",
		"Learner Outcomes:\n  • Configure routers\n  • Subnet networks",
		"Prerequisites: COM 1100",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestSearchResults_ExplicitCodeBeatsComposite(t *testing.T) {
	payload := map[string]any{"course_code": "COM 2158B", "course_prefix": "COM", "course_number": "2158"}

	got := SearchResults([]rag.SearchResult{{Payload: payload}})

	assert.Contains(t, got, "Course: COM 2158B")
}

func TestSearchResults_Fallbacks(t *testing.T) {
	withText := SearchResults([]rag.SearchResult{{Payload: map[string]any{"snippet": "raw snippet"}}})
	assert.Equal(t, "[1]\nraw snippet", withText)

	unknown := SearchResults([]rag.SearchResult{{Payload: map[string]any{"zzz": 1.0}}})
	assert.Equal(t, "[1]\n{\n  \"zzz\": 1\n}", unknown)
}

func TestCourseListings(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := CourseListings([]rag.CourseListing{
		{CourseCode: "COM 2158", Title: "Intro to Networks", Campus: "Honolulu", Units: "3", Description: long},
		{CourseCode: "ICS 101", Title: "Digital Tools", Department: "ICS"},
	})

	blocks := strings.Split(got, "\n\n")
	assert.Len(t, blocks, 2)
	assert.Equal(t, "[1] COM 2158 - Intro to Networks\n   Campus/Department: Honolulu\n   Units: 3\n   Description: "+strings.Repeat("a", 200)+"...", blocks[0])
	assert.Equal(t, "[2] ICS 101 - Digital Tools\n   Campus/Department: ICS", blocks[1])
}

func TestCourseListings_Empty(t *testing.T) {
	assert.Equal(t, NoCourses, CourseListings(nil))
}

func TestTruncate_CountsRunes(t *testing.T) {
	assert.Equal(t, "ʻōlelo", Truncate("ʻōlelo", 6))
	assert.Equal(t, "ʻō...", Truncate("ʻōlelo", 2))
}
