// Package taskfilter compiles ad-hoc CEL expressions over tasks, for
// example `priority == "high" && 3 in tag_ids && due_date < now`.
package taskfilter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

var (
	// ErrInvalidExpression wraps parse, type-check and non-boolean result errors.
	ErrInvalidExpression = errors.New("invalid task filter expression")
	// ErrScanLimit is returned when an expression would have to inspect more
	// tasks than the listing allows.
	ErrScanLimit = errors.New("task filter expression scan limit exceeded")
)

// Variables lists the names an expression may refer to.
var Variables = []string{
	"title", "description", "status", "priority",
	"has_due_date", "due_date", "category_id", "tag_ids",
	"time_entries", "attachments", "created_at", "now",
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("title", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("status", cel.StringType),
		cel.Variable("priority", cel.StringType),
		cel.Variable("has_due_date", cel.BoolType),
		cel.Variable("due_date", cel.TimestampType),
		cel.Variable("category_id", cel.IntType),
		cel.Variable("tag_ids", cel.ListType(cel.IntType)),
		cel.Variable("time_entries", cel.IntType),
		cel.Variable("attachments", cel.IntType),
		cel.Variable("created_at", cel.TimestampType),
		cel.Variable("now", cel.TimestampType),
	)
}

// Expression is a compiled filter. A nil Expression matches every task.
type Expression struct {
	source  string
	program cel.Program
}

// Compile parses and type-checks raw. Blank input yields a nil Expression.
func Compile(raw string) (*Expression, error) {
	src := strings.TrimSpace(raw)
	if src == "" {
		return nil, nil
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("build CEL env: %w", err)
	}

	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: result is %s, want bool", ErrInvalidExpression, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build CEL program: %w", err)
	}
	return &Expression{source: src, program: program}, nil
}

func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	return e.source
}

// Matches evaluates the expression for t. A missing due date binds
// has_due_date = false and due_date to the zero time; a missing category
// binds category_id = 0.
func (e *Expression) Matches(t *entities.Task, now time.Time) (bool, error) {
	if e == nil {
		return true, nil
	}

	var due time.Time
	if t.DueDate != nil {
		due = *t.DueDate
	}
	var category int64
	if t.CategoryID != nil {
		category = int64(*t.CategoryID)
	}
	var description string
	if t.Description != nil {
		description = *t.Description
	}
	tags := make([]int64, len(t.TagIDs))
	for i, id := range t.TagIDs {
		tags[i] = int64(id)
	}

	out, _, err := e.program.Eval(map[string]any{
		"title":        t.Title,
		"description":  description,
		"status":       string(t.Status),
		"priority":     string(t.Priority),
		"has_due_date": t.DueDate != nil,
		"due_date":     due,
		"category_id":  category,
		"tag_ids":      tags,
		"time_entries": int64(t.TimeEntryCount),
		"attachments":  int64(t.AttachmentCount),
		"created_at":   t.CreatedAt,
		"now":          now,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: result is %T, want bool", ErrInvalidExpression, out.Value())
	}
	return b, nil
}
