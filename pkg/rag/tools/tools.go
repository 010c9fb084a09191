// Package tools declares the callable tools offered to the language model and
// executes them against the search and listing services.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/rag"
	"course-assistant-be/pkg/rag/format"
)

const (
	ListCoursesName         = "listCourses"
	SearchKnowledgeBaseName = "searchKnowledgeBase"

	DefaultListCoursesDescription         = "List courses from the knowledge base. Use when user wants to see all courses, browse courses, or list courses from a specific department/campus."
	DefaultSearchKnowledgeBaseDescription = "Search the course knowledge base for specific courses or topics. Use when user asks about specific course codes, prerequisites, topics, or detailed course information."
)

var listCoursesParameters = json.RawMessage(`{
  "type": "object",
  "properties": {
    "department": {"type": "string", "description": "Filter by department name (e.g., 'Pacific Center for Advanced Technology Training')"},
    "campus": {"type": "string", "description": "Filter by campus name"},
    "limit": {"type": "integer", "description": "Maximum number of courses to return", "default": 20}
  },
  "additionalProperties": false
}`)

var searchKnowledgeBaseParameters = json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "The search query to find relevant information"}
  },
  "required": ["query"],
  "additionalProperties": false
}`)

type Searcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64) ([]rag.SearchResult, error)
}

type CourseLister interface {
	ListCourses(ctx context.Context, query rag.ListCoursesQuery) ([]rag.CourseListing, error)
}

// Error is a tool failure whose message is safe to show the model. The cause
// is kept for logging.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Tool couples a schema with its executor.
type Tool struct {
	Schema  llm.ToolSchema
	Execute func(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry keeps tools in declaration order.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Schema.Name]; !exists {
			r.order = append(r.order, t.Schema.Name)
		}
		r.tools[t.Schema.Name] = t
	}
	return r
}

func (r *Registry) Schemas() []llm.ToolSchema {
	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema)
	}
	return schemas
}

func (r *Registry) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return "", &Error{Message: fmt.Sprintf("unknown tool %q", call.Name)}
	}
	return t.Execute(ctx, call.Arguments)
}

type listCoursesArgs struct {
	Department *string  `json:"department"`
	Campus     *string  `json:"campus"`
	Limit      *float64 `json:"limit"`
}

func NewListCoursesTool(lister CourseLister, description string) Tool {
	if description == "" {
		description = DefaultListCoursesDescription
	}
	return Tool{
		Schema: llm.ToolSchema{
			Name:        ListCoursesName,
			Description: description,
			Parameters:  listCoursesParameters,
		},
		Execute: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args listCoursesArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}

			query := rag.ListCoursesQuery{
				Department: nonBlank(args.Department),
				Campus:     nonBlank(args.Campus),
			}
			if args.Limit != nil {
				if *args.Limit != math.Trunc(*args.Limit) {
					return "", &Error{
						Message: "limit must be a positive integer",
						Err:     rag.ErrInvalidArgument,
					}
				}
				limit := int(*args.Limit)
				query.Limit = &limit
			}

			rows, err := lister.ListCourses(ctx, query)
			if err != nil {
				if errors.Is(err, rag.ErrInvalidArgument) {
					return "", &Error{Message: "limit must be a positive integer", Err: err}
				}
				return "", &Error{Message: "could not retrieve the course list. Please try again.", Err: err}
			}
			return format.CourseListings(rows), nil
		},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

func NewSearchKnowledgeBaseTool(searcher Searcher, description string, topK int, threshold float64) Tool {
	if description == "" {
		description = DefaultSearchKnowledgeBaseDescription
	}
	return Tool{
		Schema: llm.ToolSchema{
			Name:        SearchKnowledgeBaseName,
			Description: description,
			Parameters:  searchKnowledgeBaseParameters,
		},
		Execute: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args searchArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}
			if strings.TrimSpace(args.Query) == "" {
				return "", &Error{Message: "query must not be empty", Err: rag.ErrInvalidArgument}
			}

			results, err := searcher.Search(ctx, args.Query, topK, threshold)
			if err != nil {
				return "", &Error{
					Message: "could not search the course knowledge base. Please try again or refine your query.",
					Err:     err,
				}
			}
			return format.SearchResults(results), nil
		},
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{
			Message: "tool arguments are not valid JSON for this tool",
			Err:     fmt.Errorf("decode tool arguments: %v: %w", err, rag.ErrInvalidArgument),
		}
	}
	return nil
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
