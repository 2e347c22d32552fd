// Package smarttag evaluates saved smart tag definitions against tasks.
//
// A definition is compiled once into a Filter: one Rule per enabled toggle,
// combined with AND. The same Filter answers both "does this task match"
// (Matches) and "which rows match" (Where), so the two can not drift apart.
package smarttag

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

// Schema names the tables a compiled filter refers to. Tasks is the table or
// alias of the outer task row; the other tables are joined by task_id.
type Schema struct {
	Tasks       string
	TaskTags    string
	TimeEntries string
	Attachments string

	// TimeArg converts time bounds into query arguments. Nil passes
	// time.Time through unchanged.
	TimeArg func(time.Time) interface{}
}

// DefaultSchema matches the tables created by the migrations.
func DefaultSchema() Schema {
	return Schema{
		Tasks:       "tasks",
		TaskTags:    "task_tags",
		TimeEntries: "time_entries",
		Attachments: "task_attachments",
	}
}

func (s Schema) col(name string) string {
	return s.Tasks + "." + name
}

func (s Schema) related(table string) string {
	return fmt.Sprintf("SELECT 1 FROM %s r WHERE r.task_id = %s", table, s.col("id"))
}

func (s Schema) timeArg(t time.Time) interface{} {
	if s.TimeArg != nil {
		return s.TimeArg(t)
	}
	return t
}

// Filter is a compiled smart tag. The zero value and nil match every task.
type Filter struct {
	rules []Rule
}

// NewFilter builds a filter from already constructed rules.
func NewFilter(rules ...Rule) *Filter {
	return &Filter{rules: rules}
}

func (f *Filter) Rules() []Rule {
	if f == nil {
		return nil
	}
	return f.rules
}

// Universal reports whether the filter has no constraint at all.
func (f *Filter) Universal() bool {
	return f == nil || len(f.rules) == 0
}

// Matches reports whether t satisfies every rule.
func (f *Filter) Matches(t *entities.Task, now time.Time) bool {
	if f == nil {
		return true
	}
	for _, r := range f.rules {
		if !r.Match(t, now) {
			return false
		}
	}
	return true
}

// Where renders the filter as a squirrel condition with ? placeholders. The
// result is an sq.And and may be nested into further conjunctions.
func (f *Filter) Where(now time.Time, s Schema) sq.And {
	and := sq.And{}
	for _, r := range f.Rules() {
		and = append(and, r.Where(now, s))
	}
	return and
}

// Compile turns persisted criteria into a Filter. It fails with an error
// wrapping ErrInvalidCriteria when an enabled toggle can not be evaluated.
func Compile(c entities.SmartTagCriteria) (*Filter, error) {
	f := &Filter{}

	if c.FilterByDueDate {
		r, err := compileDueDate(c.DueDate)
		if err != nil {
			return nil, err
		}
		f.rules = append(f.rules, r)
	}

	if c.FilterByPriority {
		var levels []entities.Priority
		if c.Priority.IncludeHigh {
			levels = append(levels, entities.PriorityHigh)
		}
		if c.Priority.IncludeMedium {
			levels = append(levels, entities.PriorityMedium)
		}
		if c.Priority.IncludeLow {
			levels = append(levels, entities.PriorityLow)
		}
		f.rules = append(f.rules, NewPriorityIn(levels...))
	}

	if c.FilterByStatus {
		var statuses []entities.TaskStatus
		if c.Status.IncludePending {
			statuses = append(statuses, entities.TaskStatusPending)
		}
		if c.Status.IncludeInProgress {
			statuses = append(statuses, entities.TaskStatusInProgress)
		}
		if c.Status.IncludeCompleted {
			statuses = append(statuses, entities.TaskStatusCompleted)
		}
		f.rules = append(f.rules, NewStatusIn(statuses...))
	}

	if c.FilterByCategory {
		f.rules = append(f.rules, NewCategoryIn(c.Category.CategoryIDs...))
	}

	if c.FilterByTags {
		switch c.Tags.Mode {
		case entities.TagModeHasAny:
			f.rules = append(f.rules, AnyTag{})
		case entities.TagModeHasNone:
			f.rules = append(f.rules, NoTags{})
		case entities.TagModeHasSpecific:
			f.rules = append(f.rules, NewTagIn(c.Tags.TagIDs...))
		default:
			return nil, invalid(ToggleTags, "mode", fmt.Sprintf("unknown mode %q", c.Tags.Mode))
		}
	}

	// An unset tri-state carries no constraint; validation keeps new
	// definitions from storing it.
	if c.FilterByTimeEntries && c.TimeEntries.HasEntries != nil {
		f.rules = append(f.rules, TimeEntries{Present: *c.TimeEntries.HasEntries})
	}
	if c.FilterByAttachments && c.Attachments.HasAttachments != nil {
		f.rules = append(f.rules, Attachments{Present: *c.Attachments.HasAttachments})
	}

	if c.FilterByCreatedDate {
		f.rules = append(f.rules, CreatedWithin{From: c.CreatedDate.Start, To: c.CreatedDate.End})
	}

	return f, nil
}

func compileDueDate(c entities.DueDateCriteria) (Rule, error) {
	switch c.Operator {
	case entities.DueBefore:
		if c.Value == nil {
			return nil, invalid(ToggleDueDate, "value", "required for operator before")
		}
		return DueBefore{Day: *c.Value}, nil
	case entities.DueAfter:
		if c.Value == nil {
			return nil, invalid(ToggleDueDate, "value", "required for operator after")
		}
		return DueAfter{Day: *c.Value}, nil
	case entities.DueBetween:
		if c.Value == nil {
			return nil, invalid(ToggleDueDate, "value", "required for operator between")
		}
		if c.EndValue == nil {
			return nil, invalid(ToggleDueDate, "end_value", "required for operator between")
		}
		return DueBetween{From: *c.Value, To: *c.EndValue}, nil
	case entities.DueOverdue:
		return Overdue{}, nil
	case entities.DueToday:
		return DueToday{}, nil
	case entities.DueNext7Days:
		return DueNextWeek{}, nil
	case "":
		return nil, invalid(ToggleDueDate, "operator", "missing")
	default:
		return nil, invalid(ToggleDueDate, "operator", fmt.Sprintf("unknown operator %q", c.Operator))
	}
}

// Matches evaluates tag against a single task.
func Matches(tag *entities.SmartTag, t *entities.Task, now time.Time) (bool, error) {
	f, err := Compile(tag.Criteria)
	if err != nil {
		return false, fmt.Errorf("smart tag %d: %w", tag.ID, err)
	}
	return f.Matches(t, now), nil
}

// QueryFilter compiles tag into a condition over DefaultSchema. Callers AND
// it with ownership, paging and sorting clauses of their own.
func QueryFilter(tag *entities.SmartTag, now time.Time) (sq.And, error) {
	f, err := Compile(tag.Criteria)
	if err != nil {
		return nil, fmt.Errorf("smart tag %d: %w", tag.ID, err)
	}
	return f.Where(now, DefaultSchema()), nil
}
