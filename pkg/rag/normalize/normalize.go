// Package normalize turns heterogeneous catalog records (courses, programs, jobs)
// into canonical documents using ordered field-priority tables.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitle is used when a record has none of the title candidates.
const DefaultTitle = "Document"

// Field-priority tables. Order matters: the first present key wins.
var (
	TitleKeys       = []string{"title", "course_title", "program_name", "name", "job_title"}
	ContentKeys     = []string{"description", "course_desc", "program_desc", "metadata", "content", "summary", "job_description", "notes"}
	CourseCodeKeys  = []string{"course_code", "course", "courseId", "course_num", "code"}
	DepartmentKeys  = []string{"dept_name", "department", "dept", "division"}
	CampusKeys      = []string{"campus", "campus_name", "location"}
	UnitsKeys       = []string{"num_units", "units", "credits", "credit_hours"}
	CoursePrefixKey = "course_prefix"
	CourseNumberKey = "course_number"
	CourseTitleKey  = "course_title"
)

// Normalized is the canonical form of one record.
type Normalized struct {
	Title      string
	Content    string
	CourseCode string
	Department string
	Campus     string
	Units      string
}

// Normalize never fails: a record without any known textual field is
// serialized verbatim as its content.
func Normalize(record map[string]any) Normalized {
	n := Normalized{
		Title:      resolveTitle(record),
		Content:    resolveContent(record),
		CourseCode: CourseCode(record),
		Department: PickString(record, DepartmentKeys...),
		Campus:     PickString(record, CampusKeys...),
		Units:      PickString(record, UnitsKeys...),
	}
	return n
}

// CourseCode resolves an explicit code field, then the "prefix number" composite.
func CourseCode(record map[string]any) string {
	if code := PickString(record, CourseCodeKeys...); code != "" {
		return code
	}
	prefix := PickString(record, CoursePrefixKey)
	number := PickString(record, CourseNumberKey)
	if prefix != "" && number != "" {
		return prefix + " " + number
	}
	return ""
}

func resolveTitle(record map[string]any) string {
	prefix := PickString(record, CoursePrefixKey)
	number := PickString(record, CourseNumberKey)
	courseTitle := PickString(record, CourseTitleKey)
	if prefix != "" && number != "" && courseTitle != "" {
		return fmt.Sprintf("%s %s — %s", prefix, number, courseTitle)
	}
	if title := PickString(record, TitleKeys...); title != "" {
		return title
	}
	return DefaultTitle
}

func resolveContent(record map[string]any) string {
	parts := make([]string, 0, len(ContentKeys))
	for _, key := range ContentKeys {
		if v, ok := Pick(record, key); ok {
			parts = append(parts, Stringify(v))
		}
	}
	if len(parts) == 0 {
		return Serialize(record)
	}
	return strings.Join(parts, "\n\n")
}

// Pick returns the value of the first key that is present and non-blank.
func Pick(record map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		v, ok := record[key]
		if !ok || v == nil {
			continue
		}
		if strings.TrimSpace(Stringify(v)) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// PickString is Pick followed by Stringify; missing values yield "".
func PickString(record map[string]any, keys ...string) string {
	v, ok := Pick(record, keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(Stringify(v))
}

// Stringify renders a decoded JSON value as text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, Stringify(item))
		}
		return strings.Join(items, ", ")
	default:
		return Serialize(t)
	}
}

// Serialize renders any value as indented JSON. Map keys come out sorted,
// which keeps content hashes stable across runs.
func Serialize(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
