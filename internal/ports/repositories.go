package ports

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error)
	// CountOwned returns how many of ids exist and belong to userID.
	CountOwned(ctx context.Context, userID uuid.UUID, ids []int) (int, error)
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *entities.Tag) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Tag, error)
	CountOwned(ctx context.Context, userID uuid.UUID, ids []int) (int, error)
}

// TaskRepository defines the interface for task data operations. Every
// method is scoped to the owning user.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, userID uuid.UUID, id int) (*entities.Task, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, id int, status entities.TaskStatus, completedAt *time.Time) error
	Delete(ctx context.Context, userID uuid.UUID, id int) error
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
}

// SmartTagRepository defines the interface for smart tag data operations
type SmartTagRepository interface {
	Create(ctx context.Context, tag *entities.SmartTag) error
	GetByID(ctx context.Context, userID uuid.UUID, id int) (*entities.SmartTag, error)
	Update(ctx context.Context, tag *entities.SmartTag) error
	Delete(ctx context.Context, userID uuid.UUID, id int) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SmartTag, error)
}

// AuthRepository defines the interface for refresh token storage
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// CacheRepository defines the interface for caching operations. Get returns
// entities.ErrCacheMiss when the key is absent.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// TaskFilter narrows a task listing. Condition carries extra SQL, such as a
// compiled smart tag, and is ANDed with the other fields.
type TaskFilter struct {
	UserID     uuid.UUID
	Status     *entities.TaskStatus
	Priority   *entities.Priority
	CategoryID *int
	Search     *string
	Condition  sq.Sqlizer
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}

// Task sort columns accepted by TaskFilter.SortBy
const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
	SortByTitle     = "title"
)

// RefreshToken represents a refresh token record
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired at now
func (rt *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}
