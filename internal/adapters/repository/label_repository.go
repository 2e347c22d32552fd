package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/database"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// labelStore backs both categories and tags; the two tables share a shape.
type labelStore struct {
	db    *sqlx.DB
	sb    sq.StatementBuilderType
	table string
}

func (s labelStore) create(ctx context.Context, userID uuid.UUID, name, color string) (id int, createdAt time.Time, err error) {
	query, args, err := s.sb.Insert(s.table).
		Columns("user_id", "name", "color").
		Values(userID.String(), name, color).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("build insert %s: %w", s.table, err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt); err != nil {
		if isUniqueViolation(err) {
			return 0, time.Time{}, fmt.Errorf("create %s %q: %w", s.table, name, entities.ErrDuplicateName)
		}
		return 0, time.Time{}, fmt.Errorf("create %s: %w", s.table, err)
	}
	return id, createdAt, nil
}

func (s labelStore) list(ctx context.Context, userID uuid.UUID, dest interface{}) error {
	query, args, err := s.sb.Select("id", "user_id", "name", "color", "created_at").
		From(s.table).
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build list %s: %w", s.table, err)
	}

	if err := s.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("list %s: %w", s.table, err)
	}
	return nil
}

func (s labelStore) countOwned(ctx context.Context, userID uuid.UUID, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := s.sb.Select("COUNT(*)").
		From(s.table).
		Where(sq.Eq{"user_id": userID.String(), "id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", s.table, err)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	store labelStore
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{store: labelStore{db: db, sb: database.Builder(), table: "categories"}}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	id, createdAt, err := r.store.create(ctx, category.UserID, category.Name, category.Color)
	if err != nil {
		return err
	}
	category.ID, category.CreatedAt = id, createdAt
	return nil
}

func (r *CategoryRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	var categories []*entities.Category
	if err := r.store.list(ctx, userID, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepositoryImpl) CountOwned(ctx context.Context, userID uuid.UUID, ids []int) (int, error) {
	return r.store.countOwned(ctx, userID, ids)
}

// TagRepositoryImpl implements the TagRepository interface
type TagRepositoryImpl struct {
	store labelStore
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sqlx.DB) ports.TagRepository {
	return &TagRepositoryImpl{store: labelStore{db: db, sb: database.Builder(), table: "tags"}}
}

func (r *TagRepositoryImpl) Create(ctx context.Context, tag *entities.Tag) error {
	id, createdAt, err := r.store.create(ctx, tag.UserID, tag.Name, tag.Color)
	if err != nil {
		return err
	}
	tag.ID, tag.CreatedAt = id, createdAt
	return nil
}

func (r *TagRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	if err := r.store.list(ctx, userID, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagRepositoryImpl) CountOwned(ctx context.Context, userID uuid.UUID, ids []int) (int, error) {
	return r.store.countOwned(ctx, userID, ids)
}
