package smarttag

import (
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

// Toggle names one filter dimension of a smart tag.
type Toggle string

const (
	ToggleDueDate     Toggle = "dueDate"
	TogglePriority    Toggle = "priority"
	ToggleStatus      Toggle = "status"
	ToggleCategory    Toggle = "category"
	ToggleTags        Toggle = "tags"
	ToggleTimeEntries Toggle = "timeEntries"
	ToggleAttachments Toggle = "attachments"
	ToggleCreatedDate Toggle = "createdDate"
)

// Rule is one compiled constraint. Match and Where implement the same rule
// in memory and in SQL; a task satisfies Match iff the row satisfies Where.
type Rule interface {
	Toggle() Toggle
	Match(t *entities.Task, now time.Time) bool
	Where(now time.Time, s Schema) sq.Sqlizer
	rule()
}

var matchNothing = sq.Expr("1=0")

// DueBefore matches tasks due before the start of Day.
type DueBefore struct{ Day entities.Date }

// DueAfter matches tasks due on a day after Day.
type DueAfter struct{ Day entities.Date }

// DueBetween matches tasks due on From, To or any day in between.
type DueBetween struct{ From, To entities.Date }

// Overdue matches unfinished tasks whose due time has passed.
type Overdue struct{}

// DueToday matches tasks due on the calendar day of now.
type DueToday struct{}

// DueNextWeek matches tasks due after now and no later than seven days on.
type DueNextWeek struct{}

func (DueBefore) Toggle() Toggle   { return ToggleDueDate }
func (DueAfter) Toggle() Toggle    { return ToggleDueDate }
func (DueBetween) Toggle() Toggle  { return ToggleDueDate }
func (Overdue) Toggle() Toggle     { return ToggleDueDate }
func (DueToday) Toggle() Toggle    { return ToggleDueDate }
func (DueNextWeek) Toggle() Toggle { return ToggleDueDate }

func (r DueBefore) Match(t *entities.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(r.Day.Start(now.Location()))
}

func (r DueBefore) Where(now time.Time, s Schema) sq.Sqlizer {
	return sq.Lt{s.col("due_date"): s.timeArg(r.Day.Start(now.Location()))}
}

func (r DueAfter) Match(t *entities.Task, now time.Time) bool {
	return t.DueDate != nil && !t.DueDate.Before(r.Day.AddDays(1).Start(now.Location()))
}

func (r DueAfter) Where(now time.Time, s Schema) sq.Sqlizer {
	return sq.GtOrEq{s.col("due_date"): s.timeArg(r.Day.AddDays(1).Start(now.Location()))}
}

func (r DueBetween) bounds(loc *time.Location) (time.Time, time.Time) {
	return r.From.Start(loc), r.To.AddDays(1).Start(loc)
}

func (r DueBetween) Match(t *entities.Task, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	lo, hi := r.bounds(now.Location())
	return !t.DueDate.Before(lo) && t.DueDate.Before(hi)
}

func (r DueBetween) Where(now time.Time, s Schema) sq.Sqlizer {
	lo, hi := r.bounds(now.Location())
	return sq.And{
		sq.GtOrEq{s.col("due_date"): s.timeArg(lo)},
		sq.Lt{s.col("due_date"): s.timeArg(hi)},
	}
}

func (Overdue) Match(t *entities.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != entities.TaskStatusCompleted
}

func (Overdue) Where(now time.Time, s Schema) sq.Sqlizer {
	return sq.And{
		sq.Lt{s.col("due_date"): s.timeArg(now)},
		sq.NotEq{s.col("status"): string(entities.TaskStatusCompleted)},
	}
}

func todayBounds(now time.Time) (time.Time, time.Time) {
	day := entities.DateOf(now)
	return day.Start(now.Location()), day.AddDays(1).Start(now.Location())
}

func (DueToday) Match(t *entities.Task, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	lo, hi := todayBounds(now)
	return !t.DueDate.Before(lo) && t.DueDate.Before(hi)
}

func (DueToday) Where(now time.Time, s Schema) sq.Sqlizer {
	lo, hi := todayBounds(now)
	return sq.And{
		sq.GtOrEq{s.col("due_date"): s.timeArg(lo)},
		sq.Lt{s.col("due_date"): s.timeArg(hi)},
	}
}

func weekAhead(now time.Time) time.Time {
	return now.AddDate(0, 0, 7)
}

func (DueNextWeek) Match(t *entities.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.After(now) && !t.DueDate.After(weekAhead(now))
}

func (DueNextWeek) Where(now time.Time, s Schema) sq.Sqlizer {
	return sq.And{
		sq.Gt{s.col("due_date"): s.timeArg(now)},
		sq.LtOrEq{s.col("due_date"): s.timeArg(weekAhead(now))},
	}
}

// PriorityIn matches tasks whose priority is one of the checked levels.
// With no level checked it matches nothing.
type PriorityIn struct {
	levels map[entities.Priority]struct{}
}

func NewPriorityIn(levels ...entities.Priority) PriorityIn {
	set := make(map[entities.Priority]struct{}, len(levels))
	for _, l := range levels {
		set[l] = struct{}{}
	}
	return PriorityIn{levels: set}
}

func (PriorityIn) Toggle() Toggle { return TogglePriority }

func (r PriorityIn) Match(t *entities.Task, _ time.Time) bool {
	_, ok := r.levels[t.Priority]
	return ok
}

func (r PriorityIn) Where(_ time.Time, s Schema) sq.Sqlizer {
	var values []string
	for _, p := range entities.Priorities {
		if _, ok := r.levels[p]; ok {
			values = append(values, string(p))
		}
	}
	if len(values) == 0 {
		return matchNothing
	}
	return sq.Eq{s.col("priority"): values}
}

// StatusIn matches tasks whose status is one of the checked statuses.
// With no status checked it matches nothing.
type StatusIn struct {
	statuses map[entities.TaskStatus]struct{}
}

func NewStatusIn(statuses ...entities.TaskStatus) StatusIn {
	set := make(map[entities.TaskStatus]struct{}, len(statuses))
	for _, st := range statuses {
		set[st] = struct{}{}
	}
	return StatusIn{statuses: set}
}

func (StatusIn) Toggle() Toggle { return ToggleStatus }

func (r StatusIn) Match(t *entities.Task, _ time.Time) bool {
	_, ok := r.statuses[t.Status]
	return ok
}

func (r StatusIn) Where(_ time.Time, s Schema) sq.Sqlizer {
	var values []string
	for _, st := range entities.TaskStatuses {
		if _, ok := r.statuses[st]; ok {
			values = append(values, string(st))
		}
	}
	if len(values) == 0 {
		return matchNothing
	}
	return sq.Eq{s.col("status"): values}
}

type idSet map[int]struct{}

func newIDSet(ids []int) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// CategoryIn matches tasks filed under one of the categories. Tasks without
// a category never match, and neither does anything when the set is empty.
type CategoryIn struct{ ids idSet }

func NewCategoryIn(ids ...int) CategoryIn { return CategoryIn{ids: newIDSet(ids)} }

func (CategoryIn) Toggle() Toggle { return ToggleCategory }

func (r CategoryIn) Match(t *entities.Task, _ time.Time) bool {
	return t.CategoryID != nil && r.ids.has(*t.CategoryID)
}

func (r CategoryIn) Where(_ time.Time, s Schema) sq.Sqlizer {
	if len(r.ids) == 0 {
		return matchNothing
	}
	return sq.Eq{s.col("category_id"): r.ids.sorted()}
}

// AnyTag matches tasks carrying at least one tag.
type AnyTag struct{}

// NoTags matches untagged tasks.
type NoTags struct{}

// TagIn matches tasks carrying at least one of the tags.
type TagIn struct{ ids idSet }

func NewTagIn(ids ...int) TagIn { return TagIn{ids: newIDSet(ids)} }

func (AnyTag) Toggle() Toggle { return ToggleTags }
func (NoTags) Toggle() Toggle { return ToggleTags }
func (TagIn) Toggle() Toggle  { return ToggleTags }

func (AnyTag) Match(t *entities.Task, _ time.Time) bool { return len(t.TagIDs) > 0 }

func (AnyTag) Where(_ time.Time, s Schema) sq.Sqlizer {
	return sq.Expr("EXISTS (" + s.related(s.TaskTags) + ")")
}

func (NoTags) Match(t *entities.Task, _ time.Time) bool { return len(t.TagIDs) == 0 }

func (NoTags) Where(_ time.Time, s Schema) sq.Sqlizer {
	return sq.Expr("NOT EXISTS (" + s.related(s.TaskTags) + ")")
}

func (r TagIn) Match(t *entities.Task, _ time.Time) bool {
	for _, id := range t.TagIDs {
		if r.ids.has(id) {
			return true
		}
	}
	return false
}

func (r TagIn) Where(_ time.Time, s Schema) sq.Sqlizer {
	if len(r.ids) == 0 {
		return matchNothing
	}
	ids := r.ids.sorted()
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return sq.Expr(
		fmt.Sprintf("EXISTS (%s AND r.tag_id IN (%s))", s.related(s.TaskTags), sq.Placeholders(len(ids))),
		args...,
	)
}

// TimeEntries matches tasks with (Present) or without time entries.
type TimeEntries struct{ Present bool }

// Attachments matches tasks with (Present) or without attachments.
type Attachments struct{ Present bool }

func (TimeEntries) Toggle() Toggle { return ToggleTimeEntries }
func (Attachments) Toggle() Toggle { return ToggleAttachments }

func (r TimeEntries) Match(t *entities.Task, _ time.Time) bool {
	return (t.TimeEntryCount > 0) == r.Present
}

func (r TimeEntries) Where(_ time.Time, s Schema) sq.Sqlizer {
	return existence(r.Present, s.related(s.TimeEntries))
}

func (r Attachments) Match(t *entities.Task, _ time.Time) bool {
	return (t.AttachmentCount > 0) == r.Present
}

func (r Attachments) Where(_ time.Time, s Schema) sq.Sqlizer {
	return existence(r.Present, s.related(s.Attachments))
}

func existence(present bool, subquery string) sq.Sqlizer {
	if present {
		return sq.Expr("EXISTS (" + subquery + ")")
	}
	return sq.Expr("NOT EXISTS (" + subquery + ")")
}

// CreatedWithin matches tasks created on From, To or a day in between. A nil
// bound leaves that side open.
type CreatedWithin struct{ From, To *entities.Date }

func (CreatedWithin) Toggle() Toggle { return ToggleCreatedDate }

func (r CreatedWithin) Match(t *entities.Task, now time.Time) bool {
	loc := now.Location()
	if r.From != nil && t.CreatedAt.Before(r.From.Start(loc)) {
		return false
	}
	if r.To != nil && !t.CreatedAt.Before(r.To.AddDays(1).Start(loc)) {
		return false
	}
	return true
}

func (r CreatedWithin) Where(now time.Time, s Schema) sq.Sqlizer {
	loc := now.Location()
	var parts sq.And
	if r.From != nil {
		parts = append(parts, sq.GtOrEq{s.col("created_at"): s.timeArg(r.From.Start(loc))})
	}
	if r.To != nil {
		parts = append(parts, sq.Lt{s.col("created_at"): s.timeArg(r.To.AddDays(1).Start(loc))})
	}
	if len(parts) == 0 {
		return sq.Expr("1=1")
	}
	return parts
}

func (DueBefore) rule()     {}
func (DueAfter) rule()      {}
func (DueBetween) rule()    {}
func (Overdue) rule()       {}
func (DueToday) rule()      {}
func (DueNextWeek) rule()   {}
func (PriorityIn) rule()    {}
func (StatusIn) rule()      {}
func (CategoryIn) rule()    {}
func (AnyTag) rule()        {}
func (NoTags) rule()        {}
func (TagIn) rule()         {}
func (TimeEntries) rule()   {}
func (Attachments) rule()   {}
func (CreatedWithin) rule() {}
