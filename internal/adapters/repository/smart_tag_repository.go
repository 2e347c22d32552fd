package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/ports"
)

const smartTagColumns = `id, user_id, name, color, description, criteria, created_at, updated_at`

// SmartTagRepositoryImpl stores smart tags with their criteria as JSONB
type SmartTagRepositoryImpl struct {
	db *sqlx.DB
}

// NewSmartTagRepository creates a new smart tag repository
func NewSmartTagRepository(db *sqlx.DB) ports.SmartTagRepository {
	return &SmartTagRepositoryImpl{db: db}
}

func (r *SmartTagRepositoryImpl) Create(ctx context.Context, tag *entities.SmartTag) error {
	query := `
		INSERT INTO smart_tags (user_id, name, color, description, criteria)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		tag.UserID, tag.Name, tag.Color, tag.Description, tag.Criteria,
	).Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create smart tag %q: %w", tag.Name, entities.ErrDuplicateName)
		}
		return fmt.Errorf("create smart tag: %w", err)
	}

	return nil
}

func (r *SmartTagRepositoryImpl) GetByID(ctx context.Context, userID uuid.UUID, id int) (*entities.SmartTag, error) {
	query := `SELECT ` + smartTagColumns + ` FROM smart_tags WHERE user_id = $1 AND id = $2`

	var tag entities.SmartTag
	err := r.db.GetContext(ctx, &tag, query, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSmartTagNotFound
		}
		return nil, fmt.Errorf("get smart tag by id: %w", err)
	}

	return &tag, nil
}

func (r *SmartTagRepositoryImpl) Update(ctx context.Context, tag *entities.SmartTag) error {
	query := `
		UPDATE smart_tags
		SET name = $3, color = $4, description = $5, criteria = $6, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		tag.UserID, tag.ID, tag.Name, tag.Color, tag.Description, tag.Criteria,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrSmartTagNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("rename smart tag to %q: %w", tag.Name, entities.ErrDuplicateName)
		}
		return fmt.Errorf("update smart tag: %w", err)
	}

	return nil
}

func (r *SmartTagRepositoryImpl) Delete(ctx context.Context, userID uuid.UUID, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM smart_tags WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete smart tag: %w", err)
	}
	return expectAffected(result, entities.ErrSmartTagNotFound)
}

func (r *SmartTagRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SmartTag, error) {
	query := `SELECT ` + smartTagColumns + ` FROM smart_tags WHERE user_id = $1 ORDER BY name, id`

	var tags []*entities.SmartTag
	if err := r.db.SelectContext(ctx, &tags, query, userID); err != nil {
		return nil, fmt.Errorf("list smart tags: %w", err)
	}
	return tags, nil
}
