package specification

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByName filters by exact name
type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// ByContentHash filters documents by their content digest
type ByContentHash struct {
	Hash string
}

func (s ByContentHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_hash = ?", s.Hash)
}

// ByStatuses filters chunks by status
type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// ByDocumentIds filters chunks by owning document
type ByDocumentIds struct {
	Ids []uuid.UUID
}

func (s ByDocumentIds) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id IN ?", s.Ids)
}

// HasCourseCode keeps documents that carry a canonical course code
type HasCourseCode struct{}

func (s HasCourseCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_code IS NOT NULL AND course_code <> ''")
}

// ContainsInsensitive is a case-insensitive substring match. LIKE wildcards in
// Value match literally.
type ContainsInsensitive struct {
	Field string
	Value string
}

func (s ContainsInsensitive) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + EscapeLike(s.Value) + "%"
	return db.Where(fmt.Sprintf("%s ILIKE ? ESCAPE '\\'", s.Field), pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters with a backslash.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
