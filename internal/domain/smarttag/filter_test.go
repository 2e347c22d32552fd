package smarttag

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

var (
	plus2 = time.FixedZone("UTC+2", 2*60*60)
	now   = time.Date(2024, time.January, 15, 10, 30, 0, 0, plus2)
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func datePtr(y int, m time.Month, d int) *entities.Date {
	day := entities.NewDate(y, m, d)
	return &day
}

func at(y int, m time.Month, d, hh, mm int) *time.Time {
	t := time.Date(y, m, d, hh, mm, 0, 0, plus2)
	return &t
}

func task(opts ...func(*entities.Task)) *entities.Task {
	t := &entities.Task{
		ID:        1,
		Title:     "write report",
		Status:    entities.TaskStatusPending,
		Priority:  entities.PriorityMedium,
		CreatedAt: now.AddDate(0, 0, -3),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func mustMatch(t *testing.T, c entities.SmartTagCriteria, tk *entities.Task) bool {
	t.Helper()
	f, err := Compile(c)
	require.NoError(t, err)
	return f.Matches(tk, now)
}

func TestEmptyCriteriaMatchEverything(t *testing.T) {
	tasks := []*entities.Task{
		task(),
		task(func(t *entities.Task) { t.Status = entities.TaskStatusCompleted; t.Priority = entities.PriorityHigh }),
		task(func(t *entities.Task) { t.DueDate = at(2020, 1, 1, 0, 0); t.TagIDs = []int{4} }),
		{},
	}

	f, err := Compile(entities.SmartTagCriteria{})
	require.NoError(t, err)
	assert.True(t, f.Universal())

	for _, tk := range tasks {
		assert.True(t, f.Matches(tk, now))
	}
}

func TestDisabledTogglesIgnoreTheirPayload(t *testing.T) {
	c := entities.SmartTagCriteria{
		DueDate:  entities.DueDateCriteria{Operator: "nonsense"},
		Priority: entities.PriorityCriteria{},
		Tags:     entities.TagCriteria{Mode: entities.TagModeHasSpecific},
	}
	assert.True(t, mustMatch(t, c, task()))
}

func TestDueDateOperators(t *testing.T) {
	jan := func(d int) *entities.Date { return datePtr(2024, time.January, d) }

	tests := []struct {
		name     string
		criteria entities.DueDateCriteria
		due      *time.Time
		status   entities.TaskStatus
		want     bool
	}{
		{"before: earlier day", entities.DueDateCriteria{Operator: entities.DueBefore, Value: jan(10)}, at(2024, 1, 9, 23, 59), "", true},
		{"before: same day", entities.DueDateCriteria{Operator: entities.DueBefore, Value: jan(10)}, at(2024, 1, 10, 0, 0), "", false},
		{"after: next day", entities.DueDateCriteria{Operator: entities.DueAfter, Value: jan(10)}, at(2024, 1, 11, 0, 0), "", true},
		{"after: same day", entities.DueDateCriteria{Operator: entities.DueAfter, Value: jan(10)}, at(2024, 1, 10, 23, 59), "", false},
		{"between: first day", entities.DueDateCriteria{Operator: entities.DueBetween, Value: jan(1), EndValue: jan(31)}, at(2024, 1, 1, 0, 0), "", true},
		{"between: last day", entities.DueDateCriteria{Operator: entities.DueBetween, Value: jan(1), EndValue: jan(31)}, at(2024, 1, 31, 0, 0), "", true},
		{"between: last day evening", entities.DueDateCriteria{Operator: entities.DueBetween, Value: jan(1), EndValue: jan(31)}, at(2024, 1, 31, 22, 0), "", true},
		{"between: day before", entities.DueDateCriteria{Operator: entities.DueBetween, Value: jan(1), EndValue: jan(31)}, at(2023, 12, 31, 0, 0), "", false},
		{"between: day after", entities.DueDateCriteria{Operator: entities.DueBetween, Value: jan(1), EndValue: jan(31)}, at(2024, 2, 1, 0, 0), "", false},
		{"overdue: yesterday pending", entities.DueDateCriteria{Operator: entities.DueOverdue}, at(2024, 1, 14, 12, 0), entities.TaskStatusPending, true},
		{"overdue: yesterday completed", entities.DueDateCriteria{Operator: entities.DueOverdue}, at(2024, 1, 14, 12, 0), entities.TaskStatusCompleted, false},
		{"overdue: due exactly now", entities.DueDateCriteria{Operator: entities.DueOverdue}, at(2024, 1, 15, 10, 30), entities.TaskStatusPending, false},
		{"overdue: later today", entities.DueDateCriteria{Operator: entities.DueOverdue}, at(2024, 1, 15, 18, 0), entities.TaskStatusPending, false},
		{"today: midnight", entities.DueDateCriteria{Operator: entities.DueToday}, at(2024, 1, 15, 0, 0), "", true},
		{"today: late evening", entities.DueDateCriteria{Operator: entities.DueToday}, at(2024, 1, 15, 23, 59), "", true},
		{"today: tomorrow", entities.DueDateCriteria{Operator: entities.DueToday}, at(2024, 1, 16, 0, 0), "", false},
		{"next 7 days: exactly now", entities.DueDateCriteria{Operator: entities.DueNext7Days}, at(2024, 1, 15, 10, 30), "", false},
		{"next 7 days: in a week", entities.DueDateCriteria{Operator: entities.DueNext7Days}, at(2024, 1, 22, 10, 30), "", true},
		{"next 7 days: past the week", entities.DueDateCriteria{Operator: entities.DueNext7Days}, at(2024, 1, 22, 10, 31), "", false},
		{"next 7 days: tomorrow", entities.DueDateCriteria{Operator: entities.DueNext7Days}, at(2024, 1, 16, 9, 0), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := entities.SmartTagCriteria{FilterByDueDate: true, DueDate: tt.criteria}
			tk := task(func(t *entities.Task) {
				t.DueDate = tt.due
				if tt.status != "" {
					t.Status = tt.status
				}
			})
			assert.Equal(t, tt.want, mustMatch(t, c, tk))
		})
	}
}

func TestDueDateMissingFailsEveryOperator(t *testing.T) {
	ops := []entities.DueDateCriteria{
		{Operator: entities.DueBefore, Value: datePtr(2030, 1, 1)},
		{Operator: entities.DueAfter, Value: datePtr(2000, 1, 1)},
		{Operator: entities.DueBetween, Value: datePtr(2000, 1, 1), EndValue: datePtr(2030, 1, 1)},
		{Operator: entities.DueOverdue},
		{Operator: entities.DueToday},
		{Operator: entities.DueNext7Days},
	}
	for _, op := range ops {
		c := entities.SmartTagCriteria{FilterByDueDate: true, DueDate: op}
		assert.False(t, mustMatch(t, c, task()), "operator %s", op.Operator)
	}
}

func TestPriorityAndStatusRestrictiveEmpty(t *testing.T) {
	noPriority := entities.SmartTagCriteria{FilterByPriority: true}
	noStatus := entities.SmartTagCriteria{FilterByStatus: true}

	for _, p := range entities.Priorities {
		for _, s := range entities.TaskStatuses {
			tk := task(func(t *entities.Task) { t.Priority = p; t.Status = s })
			assert.False(t, mustMatch(t, noPriority, tk))
			assert.False(t, mustMatch(t, noStatus, tk))
		}
	}
}

func TestPriorityAndStatusScenario(t *testing.T) {
	c := entities.SmartTagCriteria{
		FilterByPriority: true,
		Priority:         entities.PriorityCriteria{IncludeHigh: true},
		FilterByStatus:   true,
		Status:           entities.StatusCriteria{IncludePending: true, IncludeInProgress: true},
	}

	a := task(func(t *entities.Task) { t.Priority = entities.PriorityHigh; t.Status = entities.TaskStatusPending })
	b := task(func(t *entities.Task) { t.Priority = entities.PriorityHigh; t.Status = entities.TaskStatusCompleted })
	cc := task(func(t *entities.Task) { t.Priority = entities.PriorityMedium; t.Status = entities.TaskStatusPending })

	assert.True(t, mustMatch(t, c, a))
	assert.False(t, mustMatch(t, c, b))
	assert.False(t, mustMatch(t, c, cc))
}

func TestCategory(t *testing.T) {
	c := entities.SmartTagCriteria{FilterByCategory: true, Category: entities.CategoryCriteria{CategoryIDs: []int{3, 5}}}

	assert.True(t, mustMatch(t, c, task(func(t *entities.Task) { t.CategoryID = intPtr(5) })))
	assert.False(t, mustMatch(t, c, task(func(t *entities.Task) { t.CategoryID = intPtr(4) })))
	assert.False(t, mustMatch(t, c, task()), "uncategorized task")

	empty := entities.SmartTagCriteria{FilterByCategory: true}
	assert.False(t, mustMatch(t, empty, task(func(t *entities.Task) { t.CategoryID = intPtr(5) })))
}

func TestTagModes(t *testing.T) {
	untagged := task()
	tagged := task(func(t *entities.Task) { t.TagIDs = []int{2, 7} })

	hasNone := entities.SmartTagCriteria{FilterByTags: true, Tags: entities.TagCriteria{Mode: entities.TagModeHasNone}}
	assert.True(t, mustMatch(t, hasNone, untagged))
	assert.False(t, mustMatch(t, hasNone, tagged))

	hasAny := entities.SmartTagCriteria{FilterByTags: true, Tags: entities.TagCriteria{Mode: entities.TagModeHasAny}}
	assert.False(t, mustMatch(t, hasAny, untagged))
	assert.True(t, mustMatch(t, hasAny, tagged))

	specific := entities.SmartTagCriteria{FilterByTags: true, Tags: entities.TagCriteria{Mode: entities.TagModeHasSpecific, TagIDs: []int{7, 9}}}
	assert.False(t, mustMatch(t, specific, untagged))
	assert.True(t, mustMatch(t, specific, tagged))
	assert.False(t, mustMatch(t, specific, task(func(t *entities.Task) { t.TagIDs = []int{1} })))
}

func TestTriStateToggles(t *testing.T) {
	withEntries := task(func(t *entities.Task) { t.TimeEntryCount = 2; t.AttachmentCount = 1 })
	bare := task()

	yes := entities.SmartTagCriteria{
		FilterByTimeEntries: true, TimeEntries: entities.TimeEntryCriteria{HasEntries: boolPtr(true)},
		FilterByAttachments: true, Attachments: entities.AttachmentCriteria{HasAttachments: boolPtr(true)},
	}
	no := entities.SmartTagCriteria{
		FilterByTimeEntries: true, TimeEntries: entities.TimeEntryCriteria{HasEntries: boolPtr(false)},
		FilterByAttachments: true, Attachments: entities.AttachmentCriteria{HasAttachments: boolPtr(false)},
	}
	unset := entities.SmartTagCriteria{FilterByTimeEntries: true, FilterByAttachments: true}

	assert.True(t, mustMatch(t, yes, withEntries))
	assert.False(t, mustMatch(t, yes, bare))
	assert.False(t, mustMatch(t, no, withEntries))
	assert.True(t, mustMatch(t, no, bare))

	assert.True(t, mustMatch(t, unset, withEntries))
	assert.True(t, mustMatch(t, unset, bare))
}

func TestCreatedDateRange(t *testing.T) {
	created := func(y int, m time.Month, d, hh int) *entities.Task {
		return task(func(t *entities.Task) { t.CreatedAt = *at(y, m, d, hh, 0) })
	}

	closed := entities.SmartTagCriteria{FilterByCreatedDate: true, CreatedDate: entities.CreatedDateCriteria{
		Start: datePtr(2024, 1, 1), End: datePtr(2024, 1, 10),
	}}
	assert.True(t, mustMatch(t, closed, created(2024, 1, 1, 0)))
	assert.True(t, mustMatch(t, closed, created(2024, 1, 10, 23)))
	assert.False(t, mustMatch(t, closed, created(2023, 12, 31, 23)))
	assert.False(t, mustMatch(t, closed, created(2024, 1, 11, 0)))

	openEnd := entities.SmartTagCriteria{FilterByCreatedDate: true, CreatedDate: entities.CreatedDateCriteria{Start: datePtr(2024, 1, 1)}}
	assert.True(t, mustMatch(t, openEnd, created(2031, 6, 1, 12)))

	openStart := entities.SmartTagCriteria{FilterByCreatedDate: true, CreatedDate: entities.CreatedDateCriteria{End: datePtr(2024, 1, 10)}}
	assert.True(t, mustMatch(t, openStart, created(1999, 6, 1, 12)))

	unbounded := entities.SmartTagCriteria{FilterByCreatedDate: true}
	assert.True(t, mustMatch(t, unbounded, created(1999, 6, 1, 12)))
}

func TestCompileRejectsUnevaluableCriteria(t *testing.T) {
	tests := []struct {
		name   string
		c      entities.SmartTagCriteria
		toggle Toggle
		field  string
	}{
		{"between without end", entities.SmartTagCriteria{FilterByDueDate: true, DueDate: entities.DueDateCriteria{Operator: entities.DueBetween, Value: datePtr(2024, 1, 1)}}, ToggleDueDate, "end_value"},
		{"before without value", entities.SmartTagCriteria{FilterByDueDate: true, DueDate: entities.DueDateCriteria{Operator: entities.DueBefore}}, ToggleDueDate, "value"},
		{"missing operator", entities.SmartTagCriteria{FilterByDueDate: true}, ToggleDueDate, "operator"},
		{"unknown operator", entities.SmartTagCriteria{FilterByDueDate: true, DueDate: entities.DueDateCriteria{Operator: "someday"}}, ToggleDueDate, "operator"},
		{"unknown tag mode", entities.SmartTagCriteria{FilterByTags: true, Tags: entities.TagCriteria{Mode: "has_some"}}, ToggleTags, "mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCriteria))

			var ce *CriteriaError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.toggle, ce.Toggle)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestMatchesReportsInvalidCriteria(t *testing.T) {
	tag := &entities.SmartTag{ID: 42, Criteria: entities.SmartTagCriteria{
		FilterByDueDate: true,
		DueDate:         entities.DueDateCriteria{Operator: entities.DueBetween},
	}}

	matched, err := Matches(tag, task(), now)
	assert.False(t, matched)
	assert.ErrorIs(t, err, ErrInvalidCriteria)
	assert.Contains(t, err.Error(), "smart tag 42")

	_, err = QueryFilter(tag, now)
	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestWhereRendersPerToggleFragments(t *testing.T) {
	c := entities.SmartTagCriteria{
		FilterByPriority: true,
		Priority:         entities.PriorityCriteria{IncludeHigh: true, IncludeLow: true},
		FilterByTags:     true,
		Tags:             entities.TagCriteria{Mode: entities.TagModeHasSpecific, TagIDs: []int{9, 3}},
	}
	f, err := Compile(c)
	require.NoError(t, err)

	sql, args, err := f.Where(now, DefaultSchema()).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"(tasks.priority IN (?,?) AND EXISTS (SELECT 1 FROM task_tags r WHERE r.task_id = tasks.id AND r.tag_id IN (?,?)))",
		sql)
	assert.Equal(t, []interface{}{"low", "high", 3, 9}, args)
}

func TestWhereOfUniversalFilterIsTrue(t *testing.T) {
	f, err := Compile(entities.SmartTagCriteria{})
	require.NoError(t, err)

	sql, args, err := f.Where(now, DefaultSchema()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1=1)", sql)
	assert.Empty(t, args)
}

func TestRestrictiveEmptyRendersFalse(t *testing.T) {
	f, err := Compile(entities.SmartTagCriteria{FilterByStatus: true})
	require.NoError(t, err)

	sql, _, err := f.Where(now, DefaultSchema()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1=0)", sql)
}
