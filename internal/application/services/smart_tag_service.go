package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/domain/smarttag"
	"github.com/goleaf/api-todo-app/internal/infrastructure/config"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/infrastructure/metrics"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// SmartTagService manages smart tags and runs them against tasks
type SmartTagService struct {
	repos    Repositories
	cache    ports.CacheRepository
	metrics  *metrics.Metrics
	logger   *logger.Logger
	cacheCfg config.CacheConfig
	tasksCfg config.TasksConfig
	location *time.Location
	now      func() time.Time
}

// NewSmartTagService creates a new smart tag service
func NewSmartTagService(repos Repositories, cache ports.CacheRepository, cfg *config.Config, m *metrics.Metrics, logger *logger.Logger) *SmartTagService {
	return &SmartTagService{
		repos:    repos,
		cache:    cache,
		metrics:  m,
		logger:   logger.WithComponent("smart_tags"),
		cacheCfg: cfg.Cache,
		tasksCfg: cfg.Tasks,
		location: cfg.App.Location(),
		now:      time.Now,
	}
}

// CreateSmartTag validates and stores a new smart tag
func (s *SmartTagService) CreateSmartTag(ctx context.Context, userID uuid.UUID, req ports.SmartTagRequest) (*entities.SmartTag, error) {
	if err := s.checkCriteria(ctx, userID, req.Criteria); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tag := &entities.SmartTag{
		UserID:      userID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
		Criteria:    req.Criteria,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.SmartTags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create smart tag: %w", err)
	}

	invalidateCounts(ctx, s.cache, s.cacheCfg.KeyPrefix, userID, s.logger)
	s.logger.LogUserAction(userID.String(), "smart_tag.create", map[string]interface{}{
		"smart_tag_id": tag.ID,
		"name":         tag.Name,
	})
	return tag, nil
}

// UpdateSmartTag replaces the definition of an existing smart tag
func (s *SmartTagService) UpdateSmartTag(ctx context.Context, userID uuid.UUID, id int, req ports.SmartTagRequest) (*entities.SmartTag, error) {
	tag, err := s.repos.SmartTags.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCriteria(ctx, userID, req.Criteria); err != nil {
		return nil, err
	}

	tag.Name = req.Name
	tag.Color = req.Color
	tag.Description = req.Description
	tag.Criteria = req.Criteria
	tag.UpdatedAt = s.now().UTC()

	if err := s.repos.SmartTags.Update(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to update smart tag: %w", err)
	}

	invalidateCounts(ctx, s.cache, s.cacheCfg.KeyPrefix, userID, s.logger)
	s.logger.LogUserAction(userID.String(), "smart_tag.update", map[string]interface{}{"smart_tag_id": id})
	return tag, nil
}

// GetSmartTag returns one of the user's smart tags
func (s *SmartTagService) GetSmartTag(ctx context.Context, userID uuid.UUID, id int) (*entities.SmartTag, error) {
	return s.repos.SmartTags.GetByID(ctx, userID, id)
}

// DeleteSmartTag removes a smart tag
func (s *SmartTagService) DeleteSmartTag(ctx context.Context, userID uuid.UUID, id int) error {
	if err := s.repos.SmartTags.Delete(ctx, userID, id); err != nil {
		return err
	}

	invalidateCounts(ctx, s.cache, s.cacheCfg.KeyPrefix, userID, s.logger)
	s.logger.LogUserAction(userID.String(), "smart_tag.delete", map[string]interface{}{"smart_tag_id": id})
	return nil
}

// ListSmartTags returns all of the user's smart tags ordered by name
func (s *SmartTagService) ListSmartTags(ctx context.Context, userID uuid.UUID) ([]*entities.SmartTag, error) {
	tags, err := s.repos.SmartTags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list smart tags: %w", err)
	}
	return tags, nil
}

// SmartTagTasks returns one page of the tasks a stored smart tag matches
func (s *SmartTagService) SmartTagTasks(ctx context.Context, userID uuid.UUID, id int, page ports.Page) (*ports.PaginatedResponse[*entities.Task], error) {
	tag, err := s.repos.SmartTags.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, userID, tag, page, metrics.ModeQuery)
}

// PreviewSmartTag runs an unsaved definition so the user can see what it
// would match
func (s *SmartTagService) PreviewSmartTag(ctx context.Context, userID uuid.UUID, req ports.PreviewRequest) (*ports.PaginatedResponse[*entities.Task], error) {
	if err := s.checkCriteria(ctx, userID, req.Criteria); err != nil {
		return nil, err
	}
	tag := &entities.SmartTag{UserID: userID, Criteria: req.Criteria}
	return s.page(ctx, userID, tag, req.Page, metrics.ModePreview)
}

// EvaluateSmartTag reports whether a single task satisfies a smart tag
func (s *SmartTagService) EvaluateSmartTag(ctx context.Context, userID uuid.UUID, id, taskID int) (*ports.EvaluationResult, error) {
	tag, err := s.repos.SmartTags.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task, err := s.repos.Tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	now, err := localNow(ctx, s.repos.Users, userID, s.now(), s.location)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ok, err := smarttag.Matches(tag, task, now)
	s.observe(userID, tag.ID, metrics.ModePredicate, start, err)
	if err != nil {
		return nil, err
	}

	return &ports.EvaluationResult{
		SmartTagID:  tag.ID,
		TaskID:      task.ID,
		Matches:     ok,
		EvaluatedAt: now,
	}, nil
}

// SmartTagCounts returns how many tasks each smart tag matches. Results are
// cached per user; tags whose stored definition is broken report an error
// instead of failing the whole listing.
func (s *SmartTagService) SmartTagCounts(ctx context.Context, userID uuid.UUID) ([]ports.SmartTagCount, error) {
	key := countsKey(s.cacheCfg.KeyPrefix, userID)

	var cached []ports.SmartTagCount
	switch err := s.cache.Get(ctx, key, &cached); {
	case err == nil:
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, entities.ErrCacheMiss):
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warnw("Failed to read smart tag counts from cache", "user_id", userID, "error", err)
	}

	tags, err := s.repos.SmartTags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list smart tags: %w", err)
	}
	now, err := localNow(ctx, s.repos.Users, userID, s.now(), s.location)
	if err != nil {
		return nil, err
	}

	counts := make([]ports.SmartTagCount, 0, len(tags))
	for _, tag := range tags {
		c := ports.SmartTagCount{SmartTagID: tag.ID, Name: tag.Name}

		start := time.Now()
		cond, err := smarttag.QueryFilter(tag, now)
		if err != nil {
			s.observe(userID, tag.ID, metrics.ModeCount, start, err)
			c.Error = err.Error()
			counts = append(counts, c)
			continue
		}

		c.Count, err = s.repos.Tasks.Count(ctx, ports.TaskFilter{UserID: userID, Condition: cond})
		s.observe(userID, tag.ID, metrics.ModeCount, start, err)
		if err != nil {
			return nil, fmt.Errorf("failed to count smart tag %d: %w", tag.ID, err)
		}
		counts = append(counts, c)
	}

	if err := s.cache.Set(ctx, key, counts, s.cacheCfg.CountsTTL); err != nil {
		s.logger.Warnw("Failed to cache smart tag counts", "user_id", userID, "error", err)
	}
	return counts, nil
}

// checkCriteria validates a definition at the write boundary and makes
// sure every category and tag it names belongs to the user.
func (s *SmartTagService) checkCriteria(ctx context.Context, userID uuid.UUID, c entities.SmartTagCriteria) error {
	if err := smarttag.Validate(c); err != nil {
		return err
	}

	categoryIDs, tagIDs := smarttag.ReferencedIDs(c)
	if ids := distinct(categoryIDs); len(ids) > 0 {
		n, err := s.repos.Categories.CountOwned(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("failed to check categories: %w", err)
		}
		if n != len(ids) {
			return entities.ErrCategoryNotFound
		}
	}
	if ids := distinct(tagIDs); len(ids) > 0 {
		n, err := s.repos.Tags.CountOwned(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("failed to check tags: %w", err)
		}
		if n != len(ids) {
			return entities.ErrTagNotFound
		}
	}
	return nil
}

func (s *SmartTagService) page(ctx context.Context, userID uuid.UUID, tag *entities.SmartTag, page ports.Page, mode string) (*ports.PaginatedResponse[*entities.Task], error) {
	now, err := localNow(ctx, s.repos.Users, userID, s.now(), s.location)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cond, err := smarttag.QueryFilter(tag, now)
	if err != nil {
		s.observe(userID, tag.ID, mode, start, err)
		return nil, err
	}

	page = pageBounds(page, s.tasksCfg)
	resp, err := listPage(ctx, s.repos.Tasks, ports.TaskFilter{UserID: userID, Condition: cond}, page)
	s.observe(userID, tag.ID, mode, start, err)
	return resp, err
}

func (s *SmartTagService) observe(userID uuid.UUID, tagID int, mode string, start time.Time, err error) {
	recordEvaluation(s.metrics, s.logger, userID, tagID, mode, start, err)
}

// listPage fetches one page of tasks along with the total for the filter.
func listPage(ctx context.Context, repo ports.TaskRepository, filter ports.TaskFilter, page ports.Page) (*ports.PaginatedResponse[*entities.Task], error) {
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	tasks, err := repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &ports.PaginatedResponse[*entities.Task]{
		Data:   tasks,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

func distinct(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
