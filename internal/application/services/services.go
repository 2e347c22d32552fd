// Package services holds the application use cases behind the HTTP and CLI
// adapters.
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

// Repositories bundles the storage ports the task and smart tag services
// share.
type Repositories struct {
	Users      ports.UserRepository
	Tasks      ports.TaskRepository
	Categories ports.CategoryRepository
	Tags       ports.TagRepository
	SmartTags  ports.SmartTagRepository
}

// localNow returns the current instant in the user's timezone, which
// decides where "today" starts for date criteria.
func localNow(ctx context.Context, users ports.UserRepository, userID uuid.UUID, now time.Time, fallback *time.Location) (time.Time, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return now.In(fallback), nil
		}
		return time.Time{}, fmt.Errorf("failed to load user: %w", err)
	}
	return now.In(user.Location(fallback)), nil
}

// pageBounds applies the configured default and ceiling to a requested page.
func pageBounds(p ports.Page, cfg config.TasksConfig) ports.Page {
	if p.Limit <= 0 {
		p.Limit = cfg.DefaultLimit
	}
	if cfg.MaxLimit > 0 && p.Limit > cfg.MaxLimit {
		p.Limit = cfg.MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func countsKey(prefix string, userID uuid.UUID) string {
	return fmt.Sprintf("%s:counts:%s", prefix, userID)
}

// invalidateCounts drops the cached smart tag counts of one user. Failures
// are logged; the entry expires on its own.
func invalidateCounts(ctx context.Context, cache ports.CacheRepository, prefix string, userID uuid.UUID, log *logger.Logger) {
	if err := cache.Delete(ctx, countsKey(prefix, userID)); err != nil {
		log.Warnw("Failed to invalidate smart tag counts", "user_id", userID, "error", err)
	}
}

func recordEvaluation(m *metrics.Metrics, log *logger.Logger, userID uuid.UUID, tagID int, mode string, start time.Time, err error) {
	elapsed := time.Since(start)
	m.SmartTagEvaluations.WithLabelValues(mode).Inc()
	m.SmartTagDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if errors.Is(err, smarttag.ErrInvalidCriteria) {
		m.SmartTagInvalidCriteria.Inc()
	}
	log.LogSmartTagEvaluation(userID.String(), tagID, mode, float64(elapsed.Microseconds())/1000, err)
}
