package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/domain/smarttag"
	"github.com/goleaf/api-todo-app/internal/infrastructure/metrics"
	"github.com/goleaf/api-todo-app/internal/ports"
)

func highPriority() entities.SmartTagCriteria {
	return entities.SmartTagCriteria{
		FilterByPriority: true,
		Priority:         entities.PriorityCriteria{IncludeHigh: true},
	}
}

func dueToday() entities.SmartTagCriteria {
	return entities.SmartTagCriteria{
		FilterByDueDate: true,
		DueDate:         entities.DueDateCriteria{Operator: entities.DueToday},
	}
}

func TestCreateSmartTagRejectsInvalidCriteria(t *testing.T) {
	f := newFixture()
	svc := f.smartTagService()
	userID := uuid.New()

	_, err := svc.CreateSmartTag(context.Background(), userID, ports.SmartTagRequest{
		Name: "broken",
		Criteria: entities.SmartTagCriteria{
			FilterByDueDate: true,
			DueDate:         entities.DueDateCriteria{Operator: entities.DueBetween},
		},
	})

	var verrs smarttag.ValidationErrors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	assert.Equal(t, smarttag.ToggleDueDate, verrs[0].Toggle)

	tags, err := svc.ListSmartTags(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCreateSmartTagChecksOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.smartTagService()
	alice, bob := uuid.New(), uuid.New()

	bobsCategory, err := f.categories.add(bob, "work")
	require.NoError(t, err)
	alicesTag, err := f.tags.add(alice, "urgent")
	require.NoError(t, err)

	_, err = svc.CreateSmartTag(ctx, alice, ports.SmartTagRequest{
		Name: "work",
		Criteria: entities.SmartTagCriteria{
			FilterByCategory: true,
			Category:         entities.CategoryCriteria{CategoryIDs: []int{bobsCategory}},
		},
	})
	assert.ErrorIs(t, err, entities.ErrCategoryNotFound)

	tag, err := svc.CreateSmartTag(ctx, alice, ports.SmartTagRequest{
		Name: "urgent",
		Criteria: entities.SmartTagCriteria{
			FilterByTags: true,
			Tags: entities.TagCriteria{
				Mode:   entities.TagModeHasSpecific,
				TagIDs: []int{alicesTag, alicesTag},
			},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, tag.ID)

	_, err = svc.CreateSmartTag(ctx, alice, ports.SmartTagRequest{
		Name: "someone else's",
		Criteria: entities.SmartTagCriteria{
			FilterByTags: true,
			Tags:         entities.TagCriteria{Mode: entities.TagModeHasSpecific, TagIDs: []int{alicesTag + 100}},
		},
	})
	assert.ErrorIs(t, err, entities.ErrTagNotFound)
}

func TestSmartTagsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.smartTagService()
	alice, bob := uuid.New(), uuid.New()

	tag, err := svc.CreateSmartTag(ctx, alice, ports.SmartTagRequest{Name: "high", Criteria: highPriority()})
	require.NoError(t, err)

	_, err = svc.GetSmartTag(ctx, bob, tag.ID)
	assert.ErrorIs(t, err, entities.ErrSmartTagNotFound)
	_, err = svc.UpdateSmartTag(ctx, bob, tag.ID, ports.SmartTagRequest{Name: "mine", Criteria: highPriority()})
	assert.ErrorIs(t, err, entities.ErrSmartTagNotFound)
	assert.ErrorIs(t, svc.DeleteSmartTag(ctx, bob, tag.ID), entities.ErrSmartTagNotFound)
	_, err = svc.SmartTagTasks(ctx, bob, tag.ID, ports.Page{})
	assert.ErrorIs(t, err, entities.ErrSmartTagNotFound)

	updated, err := svc.UpdateSmartTag(ctx, alice, tag.ID, ports.SmartTagRequest{Name: "due today", Criteria: dueToday()})
	require.NoError(t, err)
	assert.Equal(t, "due today", updated.Name)
	assert.True(t, updated.Criteria.FilterByDueDate)

	require.NoError(t, svc.DeleteSmartTag(ctx, alice, tag.ID))
	_, err = svc.GetSmartTag(ctx, alice, tag.ID)
	assert.ErrorIs(t, err, entities.ErrSmartTagNotFound)
}

func TestSmartTagTasksScopesQueryToOwnerAndPages(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.smartTagService()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.tasks.Create(ctx, &entities.Task{UserID: userID, Priority: entities.PriorityHigh}))
	}
	require.NoError(t, f.tasks.Create(ctx, &entities.Task{UserID: uuid.New(), Priority: entities.PriorityHigh}))

	tag, err := svc.CreateSmartTag(ctx, userID, ports.SmartTagRequest{Name: "high", Criteria: highPriority()})
	require.NoError(t, err)

	page, err := svc.SmartTagTasks(ctx, userID, tag.ID, ports.Page{Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit, "default limit applies")
	assert.Equal(t, 1, page.Offset)

	filter := f.tasks.lastFilter()
	assert.Equal(t, userID, filter.UserID)
	sql, args, err := filter.Condition.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "tasks.priority IN (?)")
	assert.Equal(t, []interface{}{"high"}, args)

	page, err = svc.SmartTagTasks(ctx, userID, tag.ID, ports.Page{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Limit, "limit is capped")

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.SmartTagEvaluations.WithLabelValues(metrics.ModeQuery)))
}

func TestQueryModeUsesUserTimezone(t *testing.T) {
	ctx := context.Background()
	tokyo := &entities.User{ID: uuid.New(), Timezone: "Asia/Tokyo"}
	f := newFixture(tokyo)
	svc := f.smartTagService()

	_, err := svc.PreviewSmartTag(ctx, tokyo.ID, ports.PreviewRequest{Criteria: dueToday()})
	require.NoError(t, err)

	_, args, err := f.tasks.lastFilter().Condition.ToSql()
	require.NoError(t, err)
	require.Len(t, args, 2)

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	// 20:00 UTC on the 15th is already the 16th in Tokyo.
	assert.True(t, time.Date(2024, time.January, 16, 0, 0, 0, 0, loc).Equal(args[0].(time.Time)))
	assert.True(t, time.Date(2024, time.January, 17, 0, 0, 0, 0, loc).Equal(args[1].(time.Time)))
}

func TestEvaluateSmartTag(t *testing.T) {
	ctx := context.Background()
	tokyo := &entities.User{ID: uuid.New(), Timezone: "Asia/Tokyo"}
	utc := &entities.User{ID: uuid.New()}
	f := newFixture(tokyo, utc)
	svc := f.smartTagService()

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	due := time.Date(2024, time.January, 16, 9, 0, 0, 0, loc)

	check := func(user *entities.User) bool {
		task := &entities.Task{UserID: user.ID, Priority: entities.PriorityLow, DueDate: &due}
		require.NoError(t, f.tasks.Create(ctx, task))
		tag, err := svc.CreateSmartTag(ctx, user.ID, ports.SmartTagRequest{Name: "today", Criteria: dueToday()})
		require.NoError(t, err)

		res, err := svc.EvaluateSmartTag(ctx, user.ID, tag.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, tag.ID, res.SmartTagID)
		assert.Equal(t, task.ID, res.TaskID)
		return res.Matches
	}

	assert.True(t, check(tokyo), "due later today in Tokyo")
	assert.False(t, check(utc), "due tomorrow in UTC")

	_, err = svc.EvaluateSmartTag(ctx, utc.ID, 1, 1)
	assert.ErrorIs(t, err, entities.ErrSmartTagNotFound, "smart tag 1 belongs to the Tokyo user")
}

func TestSmartTagCountsAreCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.smartTagService()
	userID := uuid.New()

	require.NoError(t, f.tasks.Create(ctx, &entities.Task{UserID: userID, Priority: entities.PriorityHigh}))
	_, err := svc.CreateSmartTag(ctx, userID, ports.SmartTagRequest{Name: "high", Criteria: highPriority()})
	require.NoError(t, err)

	first, err := svc.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.EqualValues(t, 1, first[0].Count)
	assert.Equal(t, 1, f.tasks.counts)

	second, err := svc.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.tasks.counts, "second call is served from cache")
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("hit")))

	_, err = svc.CreateSmartTag(ctx, userID, ports.SmartTagRequest{Name: "today", Criteria: dueToday()})
	require.NoError(t, err)

	third, err := svc.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 3, f.tasks.counts)
}

func TestSmartTagCountsReportBrokenDefinitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.smartTagService()
	userID := uuid.New()

	// Stored without going through validation.
	require.NoError(t, f.smartTags.Create(ctx, &entities.SmartTag{
		UserID: userID,
		Name:   "legacy",
		Criteria: entities.SmartTagCriteria{
			FilterByDueDate: true,
			DueDate:         entities.DueDateCriteria{Operator: "someday"},
		},
	}))
	_, err := svc.CreateSmartTag(ctx, userID, ports.SmartTagRequest{Name: "high", Criteria: highPriority()})
	require.NoError(t, err)

	counts, err := svc.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	assert.Equal(t, "high", counts[0].Name)
	assert.Empty(t, counts[0].Error)
	assert.Equal(t, "legacy", counts[1].Name)
	assert.Contains(t, counts[1].Error, "someday")
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SmartTagInvalidCriteria))

	_, err = svc.SmartTagTasks(ctx, userID, counts[1].SmartTagID, ports.Page{})
	assert.ErrorIs(t, err, smarttag.ErrInvalidCriteria)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.SmartTagInvalidCriteria))
}

func TestTaskWritesInvalidateCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tags := f.smartTagService()
	tasks := f.taskService()
	userID := uuid.New()

	_, err := tags.CreateSmartTag(ctx, userID, ports.SmartTagRequest{Name: "high", Criteria: highPriority()})
	require.NoError(t, err)

	counts, err := tags.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counts[0].Count)

	task, err := tasks.CreateTask(ctx, userID, ports.CreateTaskRequest{Title: "ship", Priority: entities.PriorityHigh})
	require.NoError(t, err)

	counts, err = tags.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[0].Count)

	require.NoError(t, tasks.DeleteTask(ctx, userID, task.ID))
	counts, err = tags.SmartTagCounts(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counts[0].Count)
}
