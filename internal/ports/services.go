package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ValidateToken(tokenString string) (*Claims, error)
}

// UserService interface for account administration
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*entities.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// SmartTagService interface for smart tag management and evaluation
type SmartTagService interface {
	CreateSmartTag(ctx context.Context, userID uuid.UUID, req SmartTagRequest) (*entities.SmartTag, error)
	UpdateSmartTag(ctx context.Context, userID uuid.UUID, id int, req SmartTagRequest) (*entities.SmartTag, error)
	GetSmartTag(ctx context.Context, userID uuid.UUID, id int) (*entities.SmartTag, error)
	DeleteSmartTag(ctx context.Context, userID uuid.UUID, id int) error
	ListSmartTags(ctx context.Context, userID uuid.UUID) ([]*entities.SmartTag, error)
	SmartTagTasks(ctx context.Context, userID uuid.UUID, id int, page Page) (*PaginatedResponse[*entities.Task], error)
	PreviewSmartTag(ctx context.Context, userID uuid.UUID, req PreviewRequest) (*PaginatedResponse[*entities.Task], error)
	EvaluateSmartTag(ctx context.Context, userID uuid.UUID, id, taskID int) (*EvaluationResult, error)
	SmartTagCounts(ctx context.Context, userID uuid.UUID) ([]SmartTagCount, error)
}

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, userID uuid.UUID, id int) (*entities.Task, error)
	UpdateTaskStatus(ctx context.Context, userID uuid.UUID, id int, status entities.TaskStatus) (*entities.Task, error)
	DeleteTask(ctx context.Context, userID uuid.UUID, id int) error
	ListTasks(ctx context.Context, userID uuid.UUID, query TaskListQuery) (*PaginatedResponse[*entities.Task], error)
	CreateCategory(ctx context.Context, userID uuid.UUID, req LabelRequest) (*entities.Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error)
	CreateTag(ctx context.Context, userID uuid.UUID, req LabelRequest) (*entities.Tag, error)
	ListTags(ctx context.Context, userID uuid.UUID) ([]*entities.Tag, error)
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

// CreateUserRequest is used by administrators; unlike RegisterRequest it
// sets the role.
type CreateUserRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	Name     string            `json:"name" validate:"required,max=100"`
	Password string            `json:"password" validate:"required,min=8"`
	Role     entities.UserRole `json:"role" validate:"required,oneof=admin member"`
	Timezone string            `json:"timezone" validate:"omitempty,timezone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

type Claims struct {
	UserID string            `json:"user_id"`
	Email  string            `json:"email"`
	Role   entities.UserRole `json:"role"`
}

// Smart tag related types

// SmartTagRequest creates or replaces a smart tag. Criteria is checked by
// the smart tag validator, not by struct tags.
type SmartTagRequest struct {
	Name        string                    `json:"name" validate:"required,max=100"`
	Color       string                    `json:"color" validate:"omitempty,hexcolor"`
	Description *string                   `json:"description" validate:"omitempty,max=500"`
	Criteria    entities.SmartTagCriteria `json:"criteria" validate:"-"`
}

type PreviewRequest struct {
	Criteria entities.SmartTagCriteria `json:"criteria" validate:"-"`
	Page
}

type Page struct {
	Limit  int `json:"limit" query:"limit" validate:"omitempty,min=1"`
	Offset int `json:"offset" query:"offset" validate:"omitempty,min=0"`
}

type EvaluationResult struct {
	SmartTagID  int       `json:"smart_tag_id"`
	TaskID      int       `json:"task_id"`
	Matches     bool      `json:"matches"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

type SmartTagCount struct {
	SmartTagID int    `json:"smart_tag_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
	// Error is set when the stored definition can not be evaluated.
	Error string `json:"error,omitempty"`
}

// Task related types
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,max=500"`
	Description *string             `json:"description" validate:"omitempty,max=2000"`
	Status      entities.TaskStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority    entities.Priority   `json:"priority" validate:"required,oneof=low medium high"`
	CategoryID  *int                `json:"category_id" validate:"omitempty,gt=0"`
	TagIDs      []int               `json:"tag_ids" validate:"dive,gt=0"`
	DueDate     *time.Time          `json:"due_date"`
}

type UpdateTaskStatusRequest struct {
	Status entities.TaskStatus `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// TaskListQuery is the query string of a task listing
type TaskListQuery struct {
	Status     string `query:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority   string `query:"priority" validate:"omitempty,oneof=low medium high"`
	CategoryID int    `query:"category_id" validate:"omitempty,gt=0"`
	Search     string `query:"search" validate:"omitempty,max=200"`
	SmartTagID int    `query:"smart_tag_id" validate:"omitempty,gt=0"`
	Expr       string `query:"expr" validate:"omitempty,max=1000"`
	SortBy     string `query:"sort_by" validate:"omitempty,oneof=created_at due_date priority title"`
	SortOrder  string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page
}

// LabelRequest creates a category or a tag
type LabelRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// Response types for pagination and common structures
type PaginatedResponse[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
