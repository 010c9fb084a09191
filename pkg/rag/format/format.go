// Package format renders search results and course listings as the text
// handed back to the language model.
package format

import (
	"fmt"
	"strings"

	"course-assistant-be/pkg/rag"
	"course-assistant-be/pkg/rag/normalize"
)

const (
	NoSearchResults = "No relevant course information found. Try rephrasing your question or ask about a specific course code."
	NoCourses       = "No courses found matching those criteria."

	descriptionLimit = 200
)

// Field-priority tables for structured chunk payloads.
var (
	codeKeys         = []string{"course_code", "course", "courseId", "course_num", "code"}
	titleKeys        = []string{"course_title", "title", "name"}
	departmentKeys   = []string{"dept_name", "department", "dept", "division"}
	unitsKeys        = []string{"num_units", "units", "credits", "credit_hours"}
	descriptionKeys  = []string{"course_desc", "description", "desc", "summary", "overview"}
	additionalKeys   = []string{"metadata", "additional_info", "additional", "notes"}
	outcomeKeys      = []string{"learner_outcomes", "outcomes", "learning_outcomes"}
	prerequisiteKeys = []string{"prerequisites", "required_prep", "required_prereq", "prereq"}
	sectionNoteKeys  = []string{"section_notes", "sectionNotes", "section", "section_note"}
	fallbackKeys     = []string{"text", "content", "snippet"}
)

// SearchResults numbers results from [1] in the order given.
func SearchResults(results []rag.SearchResult) string {
	if len(results) == 0 {
		return NoSearchResults
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, header(i+1, r)+"\n"+body(r))
	}
	return strings.Join(blocks, "\n\n")
}

func header(n int, r rag.SearchResult) string {
	parts := []string{fmt.Sprintf("[%d]", n)}
	if r.SourceName != "" {
		parts = append(parts, r.SourceName)
	}
	if r.CourseCode != "" {
		parts = append(parts, r.CourseCode)
	}
	return strings.Join(parts, " | ")
}

func body(r rag.SearchResult) string {
	if r.Payload == nil {
		return strings.TrimSpace(r.Content)
	}
	lines := payloadLines(r.Payload)
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	if fallback := normalize.PickString(r.Payload, fallbackKeys...); fallback != "" {
		return fallback
	}
	return normalize.Serialize(r.Payload)
}

func payloadLines(p map[string]any) []string {
	var lines []string

	var course []string
	prefix := normalize.PickString(p, normalize.CoursePrefixKey)
	number := normalize.PickString(p, normalize.CourseNumberKey)
	if code := normalize.PickString(p, codeKeys...); code != "" {
		course = append(course, code)
	} else if prefix != "" && number != "" {
		course = append(course, prefix+" "+number)
	}
	if title := normalize.PickString(p, titleKeys...); title != "" {
		course = append(course, title)
	}
	if len(course) > 0 {
		lines = append(lines, "Course: "+strings.Join(course, " - "))
	}

	lines = appendField(lines, "Department", normalize.PickString(p, departmentKeys...))
	lines = appendField(lines, "Units", normalize.PickString(p, unitsKeys...))
	lines = appendField(lines, "Description", normalize.PickString(p, descriptionKeys...))
	lines = appendField(lines, "Additional Info", normalize.PickString(p, additionalKeys...))

	if outcomes, ok := normalize.Pick(p, outcomeKeys...); ok {
		if list, isList := outcomes.([]any); isList {
			bullets := make([]string, 0, len(list))
			for _, o := range list {
				bullets = append(bullets, "  • "+normalize.Stringify(o))
			}
			lines = append(lines, "Learner Outcomes:\n"+strings.Join(bullets, "\n"))
		} else {
			lines = append(lines, "Learner Outcomes: "+normalize.Stringify(outcomes))
		}
	}

	lines = appendField(lines, "Prerequisites", normalize.PickString(p, prerequisiteKeys...))
	lines = appendField(lines, "Section Notes", normalize.PickString(p, sectionNoteKeys...))
	return lines
}

func appendField(lines []string, label, value string) []string {
	if value == "" {
		return lines
	}
	return append(lines, label+": "+value)
}

// CourseListings renders listing rows; descriptions are cut at 200 characters.
func CourseListings(rows []rag.CourseListing) string {
	if len(rows) == 0 {
		return NoCourses
	}
	blocks := make([]string, 0, len(rows))
	for i, row := range rows {
		lines := []string{fmt.Sprintf("[%d] %s - %s", i+1, row.CourseCode, row.Title)}
		if where := firstNonEmpty(row.Campus, row.Department); where != "" {
			lines = append(lines, "   Campus/Department: "+where)
		}
		if row.Units != "" {
			lines = append(lines, "   Units: "+row.Units)
		}
		if row.Description != "" {
			lines = append(lines, "   Description: "+Truncate(row.Description, descriptionLimit))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// Truncate cuts s to limit runes and appends "..." when anything was removed.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
