package store

import (
	"errors"
	"fmt"
	"strings"
)

// Store is the narrow relational surface the poll services run on. Rows travel
// as plain column->value maps so callers can address tables and columns by raw
// name; schema drift then shows up as real driver errors instead of being
// papered over by the ORM layer.
type Store interface {
	Select(table string, columns []string, filters map[string]any, opts SelectOptions) ([]map[string]any, error)
	Insert(table string, rows []map[string]any) error
	Update(table string, patch map[string]any, filters map[string]any) (int64, error)
}

type SelectOptions struct {
	OrderBy string
	Limit   int
}

// Error carries the machine-readable code plus the human-readable parts a
// database (or REST gateway in front of one) returns alongside it.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store error %s: %s", e.Code, e.Message)
	}
	return "store error: " + e.Message
}

// Class buckets a store failure for the fallback logic in the poll resolver.
type Class int

const (
	ClassOther Class = iota
	ClassMissingTable
	ClassMissingColumn
	ClassConflict
)

// codeClasses covers postgres SQLSTATEs, mysql error numbers and PostgREST
// codes. Anything not listed falls through to substring matching.
var codeClasses = map[string]Class{
	"42P01":    ClassMissingTable,
	"1146":     ClassMissingTable,
	"PGRST205": ClassMissingTable,
	"42703":    ClassMissingColumn,
	"1054":     ClassMissingColumn,
	"PGRST204": ClassMissingColumn,
	"23505":    ClassConflict,
	"1062":     ClassConflict,
}

// Classify decides whether err means a missing table, a missing column, a
// uniqueness conflict or something else. The code is authoritative when we
// recognize it; otherwise we fall back to case-insensitive sniffing of the
// message, details and hint text, which is all some drivers give us.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}

	text := err.Error()
	var se *Error
	if errors.As(err, &se) {
		if class, ok := codeClasses[se.Code]; ok {
			return class
		}
		text = strings.Join([]string{se.Message, se.Details, se.Hint}, " ")
	}
	text = strings.ToLower(text)

	switch {
	case strings.Contains(text, "no such table"),
		strings.Contains(text, "relation") && strings.Contains(text, "does not exist"),
		strings.Contains(text, "table") && strings.Contains(text, "doesn't exist"):
		return ClassMissingTable
	case strings.Contains(text, "no such column"),
		strings.Contains(text, "unknown column"),
		strings.Contains(text, "column") && strings.Contains(text, "does not exist"),
		strings.Contains(text, "could not find the") && strings.Contains(text, "column"):
		return ClassMissingColumn
	case strings.Contains(text, "duplicate entry"),
		strings.Contains(text, "unique constraint"),
		strings.Contains(text, "duplicate key"):
		return ClassConflict
	}
	return ClassOther
}
