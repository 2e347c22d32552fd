package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goleaf/api-todo-app/internal/adapters/cache"
	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/config"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/infrastructure/metrics"
	"github.com/goleaf/api-todo-app/internal/ports"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newFakeUsers(users ...*entities.User) *fakeUsers {
	f := &fakeUsers{users: make(map[uuid.UUID]*entities.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return entities.ErrDuplicateName
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return entities.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

type fakeAuth struct {
	mu     sync.Mutex
	tokens map[string]*ports.RefreshToken
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokens: make(map[string]*ports.RefreshToken)}
}

func (f *fakeAuth) CreateRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[tokenHash] = &ports.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeAuth) GetRefreshToken(_ context.Context, tokenHash string) (*ports.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, entities.ErrUnauthorized
	}
	cp := *t
	return &cp, nil
}

func (f *fakeAuth) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok || t.RevokedAt != nil {
		return entities.ErrUnauthorized
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (f *fakeAuth) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeAuth) CleanupExpiredTokens(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, t := range f.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(f.tokens, hash)
			n++
		}
	}
	return n, nil
}

// fakeLabels backs both categories and tags.
type fakeLabels struct {
	mu     sync.Mutex
	owners map[int]uuid.UUID
	names  map[int]string
	nextID int
}

func newFakeLabels() *fakeLabels {
	return &fakeLabels{owners: make(map[int]uuid.UUID), names: make(map[int]string)}
}

func (f *fakeLabels) add(userID uuid.UUID, name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, n := range f.names {
		if n == name && f.owners[id] == userID {
			return 0, entities.ErrDuplicateName
		}
	}
	f.nextID++
	f.owners[f.nextID] = userID
	f.names[f.nextID] = name
	return f.nextID, nil
}

func (f *fakeLabels) ids(userID uuid.UUID) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int
	for id, owner := range f.owners {
		if owner == userID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func (f *fakeLabels) CountOwned(_ context.Context, userID uuid.UUID, ids []int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range ids {
		if f.owners[id] == userID {
			n++
		}
	}
	return n, nil
}

type fakeCategories struct{ *fakeLabels }

func (f fakeCategories) Create(_ context.Context, c *entities.Category) error {
	id, err := f.add(c.UserID, c.Name)
	c.ID = id
	return err
}

func (f fakeCategories) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	var out []*entities.Category
	for _, id := range f.ids(userID) {
		out = append(out, &entities.Category{ID: id, UserID: userID, Name: f.names[id]})
	}
	return out, nil
}

type fakeTags struct{ *fakeLabels }

func (f fakeTags) Create(_ context.Context, t *entities.Tag) error {
	id, err := f.add(t.UserID, t.Name)
	t.ID = id
	return err
}

func (f fakeTags) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.Tag, error) {
	var out []*entities.Tag
	for _, id := range f.ids(userID) {
		out = append(out, &entities.Tag{ID: id, UserID: userID, Name: f.names[id]})
	}
	return out, nil
}

type fakeSmartTags struct {
	mu     sync.Mutex
	tags   map[int]*entities.SmartTag
	nextID int
}

func newFakeSmartTags() *fakeSmartTags {
	return &fakeSmartTags{tags: make(map[int]*entities.SmartTag)}
}

func (f *fakeSmartTags) Create(_ context.Context, tag *entities.SmartTag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tags {
		if t.UserID == tag.UserID && t.Name == tag.Name {
			return entities.ErrDuplicateName
		}
	}
	f.nextID++
	tag.ID = f.nextID
	cp := *tag
	f.tags[tag.ID] = &cp
	return nil
}

func (f *fakeSmartTags) GetByID(_ context.Context, userID uuid.UUID, id int) (*entities.SmartTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok || t.UserID != userID {
		return nil, entities.ErrSmartTagNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeSmartTags) Update(_ context.Context, tag *entities.SmartTag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[tag.ID]
	if !ok || t.UserID != tag.UserID {
		return entities.ErrSmartTagNotFound
	}
	cp := *tag
	f.tags[tag.ID] = &cp
	return nil
}

func (f *fakeSmartTags) Delete(_ context.Context, userID uuid.UUID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok || t.UserID != userID {
		return entities.ErrSmartTagNotFound
	}
	delete(f.tags, id)
	return nil
}

func (f *fakeSmartTags) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.SmartTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.SmartTag
	for _, t := range f.tags {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeTasks applies the column filters of a TaskFilter and records every
// filter it receives. SQL conditions can not run here, so Condition is only
// recorded.
type fakeTasks struct {
	mu      sync.Mutex
	tasks   map[int]*entities.Task
	nextID  int
	filters []ports.TaskFilter
	counts  int
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: make(map[int]*entities.Task)}
}

func (f *fakeTasks) Create(_ context.Context, task *entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, userID uuid.UUID, id int) (*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, entities.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) UpdateStatus(_ context.Context, userID uuid.UUID, id int, status entities.TaskStatus, completedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return entities.ErrTaskNotFound
	}
	t.Status = status
	t.CompletedAt = completedAt
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, userID uuid.UUID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return entities.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) selectTasks(filter ports.TaskFilter) []*entities.Task {
	var out []*entities.Task
	for _, t := range f.tasks {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeTasks) List(_ context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)

	out := f.selectTasks(filter)
	if filter.Offset > 0 {
		out = out[min(filter.Offset, len(out)):]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeTasks) Count(_ context.Context, filter ports.TaskFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	f.counts++
	return int64(len(f.selectTasks(filter))), nil
}

func (f *fakeTasks) lastFilter() ports.TaskFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

type fixture struct {
	users      *fakeUsers
	tasks      *fakeTasks
	smartTags  *fakeSmartTags
	categories *fakeLabels
	tags       *fakeLabels
	cache      *cache.MemoryCache
	metrics    *metrics.Metrics
	cfg        *config.Config
	now        time.Time
}

func newFixture(users ...*entities.User) *fixture {
	return &fixture{
		users:      newFakeUsers(users...),
		tasks:      newFakeTasks(),
		smartTags:  newFakeSmartTags(),
		categories: newFakeLabels(),
		tags:       newFakeLabels(),
		cache:      cache.NewMemoryCache(),
		metrics:    metrics.New(),
		cfg: &config.Config{
			App:   config.AppConfig{DefaultTimezone: "UTC"},
			Cache: config.CacheConfig{CountsTTL: time.Minute, KeyPrefix: "todo"},
			Tasks: config.TasksConfig{DefaultLimit: 2, MaxLimit: 5, MaxScan: 10},
		},
		now: time.Date(2024, time.January, 15, 20, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) repos() Repositories {
	return Repositories{
		Users:      f.users,
		Tasks:      f.tasks,
		Categories: fakeCategories{f.categories},
		Tags:       fakeTags{f.tags},
		SmartTags:  f.smartTags,
	}
}

func (f *fixture) smartTagService() *SmartTagService {
	s := NewSmartTagService(f.repos(), f.cache, f.cfg, f.metrics, logger.Nop())
	s.now = func() time.Time { return f.now }
	return s
}

func (f *fixture) taskService() *TaskService {
	s := NewTaskService(f.repos(), f.cache, f.cfg, f.metrics, logger.Nop())
	s.now = func() time.Time { return f.now }
	return s
}
