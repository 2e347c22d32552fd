package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/domain/smarttag"
	"github.com/goleaf/api-todo-app/internal/domain/taskfilter"
	"github.com/goleaf/api-todo-app/internal/infrastructure/config"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/infrastructure/metrics"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// TaskService handles task, category and tag operations
type TaskService struct {
	repos    Repositories
	cache    ports.CacheRepository
	metrics  *metrics.Metrics
	logger   *logger.Logger
	cacheCfg config.CacheConfig
	tasksCfg config.TasksConfig
	location *time.Location
	now      func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(repos Repositories, cache ports.CacheRepository, cfg *config.Config, m *metrics.Metrics, logger *logger.Logger) *TaskService {
	return &TaskService{
		repos:    repos,
		cache:    cache,
		metrics:  m,
		logger:   logger.WithComponent("tasks"),
		cacheCfg: cfg.Cache,
		tasksCfg: cfg.Tasks,
		location: cfg.App.Location(),
		now:      time.Now,
	}
}

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	if req.CategoryID != nil {
		n, err := s.repos.Categories.CountOwned(ctx, userID, []int{*req.CategoryID})
		if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		if n != 1 {
			return nil, entities.ErrCategoryNotFound
		}
	}
	tagIDs := distinct(req.TagIDs)
	if len(tagIDs) > 0 {
		n, err := s.repos.Tags.CountOwned(ctx, userID, tagIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to check tags: %w", err)
		}
		if n != len(tagIDs) {
			return nil, entities.ErrTagNotFound
		}
	}

	status := req.Status
	if status == "" {
		status = entities.TaskStatusPending
	}
	if !status.Valid() {
		return nil, entities.ErrInvalidStatus
	}
	if !req.Priority.Valid() {
		return nil, entities.ErrInvalidPriority
	}

	now := s.now().UTC()
	task := &entities.Task{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		TagIDs:      tagIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == entities.TaskStatusCompleted {
		task.CompletedAt = &now
	}

	if err := s.repos.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	invalidateCounts(ctx, s.cache, s.cacheCfg.KeyPrefix, userID, s.logger)
	s.logger.Infow("Task created", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// GetTask retrieves one of the user's tasks
func (s *TaskService) GetTask(ctx context.Context, userID uuid.UUID, id int) (*entities.Task, error) {
	return s.repos.Tasks.GetByID(ctx, userID, id)
}

// UpdateTaskStatus moves a task to status; completing stamps completed_at
// and reopening clears it.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, userID uuid.UUID, id int, status entities.TaskStatus) (*entities.Task, error) {
	if !status.Valid() {
		return nil, entities.ErrInvalidStatus
	}

	var completedAt *time.Time
	if status == entities.TaskStatusCompleted {
		now := s.now().UTC()
		completedAt = &now
	}

	if err := s.repos.Tasks.UpdateStatus(ctx, userID, id, status, completedAt); err != nil {
		return nil, err
	}

	invalidateCounts(ctx, s.cache, s.cacheCfg.KeyPrefix, userID, s.logger)
	s.logger.Infow("Task status updated", "task_id", id, "status", status)
	return s.repos.Tasks.GetByID(ctx, userID, id)
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, userID uuid.UUID, id int) error {
	if err := s.repos.Tasks.Delete(ctx, userID, id); err != nil {
		return err
	}

	invalidateCounts(ctx, s.cache, s.cacheCfg.KeyPrefix, userID, s.logger)
	s.logger.Infow("Task deleted", "task_id", id, "user_id", userID)
	return nil
}

// ListTasks runs the task list pipeline: column filters, an optional smart
// tag in query mode, an optional expression applied in memory, then sort
// and page.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, q ports.TaskListQuery) (*ports.PaginatedResponse[*entities.Task], error) {
	filter := ports.TaskFilter{
		UserID:    userID,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	if q.Status != "" {
		status := entities.TaskStatus(q.Status)
		filter.Status = &status
	}
	if q.Priority != "" {
		priority := entities.Priority(q.Priority)
		filter.Priority = &priority
	}
	if q.CategoryID > 0 {
		filter.CategoryID = &q.CategoryID
	}
	if q.Search != "" {
		filter.Search = &q.Search
	}

	expr, err := taskfilter.Compile(q.Expr)
	if err != nil {
		return nil, err
	}

	var now time.Time
	if q.SmartTagID > 0 || expr != nil {
		if now, err = localNow(ctx, s.repos.Users, userID, s.now(), s.location); err != nil {
			return nil, err
		}
	}

	if q.SmartTagID > 0 {
		tag, err := s.repos.SmartTags.GetByID(ctx, userID, q.SmartTagID)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		cond, err := smarttag.QueryFilter(tag, now)
		recordEvaluation(s.metrics, s.logger, userID, tag.ID, metrics.ModeQuery, start, err)
		if err != nil {
			return nil, err
		}
		filter.Condition = cond
	}

	page := pageBounds(q.Page, s.tasksCfg)
	if expr == nil {
		return listPage(ctx, s.repos.Tasks, filter, page)
	}
	return s.listExpression(ctx, filter, expr, page, now)
}

// listExpression reads every candidate row, up to the scan limit, and
// pages over the ones the expression accepts.
func (s *TaskService) listExpression(ctx context.Context, filter ports.TaskFilter, expr *taskfilter.Expression, page ports.Page, now time.Time) (*ports.PaginatedResponse[*entities.Task], error) {
	filter.Limit = s.tasksCfg.MaxScan + 1
	filter.Offset = 0

	candidates, err := s.repos.Tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(candidates) > s.tasksCfg.MaxScan {
		return nil, fmt.Errorf("%w: more than %d tasks match the other filters", taskfilter.ErrScanLimit, s.tasksCfg.MaxScan)
	}

	matched := make([]*entities.Task, 0, len(candidates))
	for _, t := range candidates {
		ok, err := expr.Matches(t, now)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, t)
		}
	}

	from := min(page.Offset, len(matched))
	to := min(from+page.Limit, len(matched))
	return &ports.PaginatedResponse[*entities.Task]{
		Data:   matched[from:to],
		Total:  int64(len(matched)),
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// CreateCategory creates a category owned by the user
func (s *TaskService) CreateCategory(ctx context.Context, userID uuid.UUID, req ports.LabelRequest) (*entities.Category, error) {
	category := &entities.Category{UserID: userID, Name: req.Name, Color: req.Color}
	if err := s.repos.Categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.LogUserAction(userID.String(), "category.create", map[string]interface{}{"category_id": category.ID})
	return category, nil
}

// ListCategories returns the user's categories
func (s *TaskService) ListCategories(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	return s.repos.Categories.ListByUser(ctx, userID)
}

// CreateTag creates a tag owned by the user
func (s *TaskService) CreateTag(ctx context.Context, userID uuid.UUID, req ports.LabelRequest) (*entities.Tag, error) {
	tag := &entities.Tag{UserID: userID, Name: req.Name, Color: req.Color}
	if err := s.repos.Tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.logger.LogUserAction(userID.String(), "tag.create", map[string]interface{}{"tag_id": tag.ID})
	return tag, nil
}

// ListTags returns the user's tags
func (s *TaskService) ListTags(ctx context.Context, userID uuid.UUID) ([]*entities.Tag, error) {
	return s.repos.Tags.ListByUser(ctx, userID)
}
