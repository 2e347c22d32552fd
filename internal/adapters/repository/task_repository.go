package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/database"
	"github.com/goleaf/api-todo-app/internal/ports"
)

var taskColumns = []string{
	"tasks.id", "tasks.user_id", "tasks.category_id", "tasks.title", "tasks.description",
	"tasks.status", "tasks.priority", "tasks.due_date", "tasks.completed_at",
	"tasks.created_at", "tasks.updated_at",
	"(SELECT COUNT(*) FROM time_entries te WHERE te.task_id = tasks.id) AS time_entry_count",
	"(SELECT COUNT(*) FROM task_attachments ta WHERE ta.task_id = tasks.id) AS attachment_count",
}

const priorityRank = "CASE tasks.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db, sb: database.Builder()}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create task: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tasks (user_id, category_id, title, description, status, priority, due_date, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		task.UserID, task.CategoryID, task.Title, task.Description,
		task.Status, task.Priority, task.DueDate, task.CompletedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create task: %w", entities.ErrCategoryNotFound)
		}
		return fmt.Errorf("create task: %w", err)
	}

	if len(task.TagIDs) > 0 {
		insert := r.sb.Insert("task_tags").Columns("task_id", "tag_id")
		for _, tagID := range task.TagIDs {
			insert = insert.Values(task.ID, tagID)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build task tags insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("tag task %d: %w", task.ID, entities.ErrTagNotFound)
			}
			return fmt.Errorf("tag task %d: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create task: %w", err)
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, userID uuid.UUID, id int) (*entities.Task, error) {
	query, args, err := r.sb.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"tasks.user_id": userID.String(), "tasks.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get task: %w", err)
	}

	var task entities.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	if err := r.loadTags(ctx, []*entities.Task{&task}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) UpdateStatus(ctx context.Context, userID uuid.UUID, id int, status entities.TaskStatus, completedAt *time.Time) error {
	query, args, err := r.sb.Update("tasks").
		Set("status", status).
		Set("completed_at", completedAt).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"user_id": userID.String(), "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task status: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return expectAffected(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, userID uuid.UUID, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectAffected(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	query, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks: %w", err)
	}

	var tasks []*entities.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if err := r.loadTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("tasks").
		Where(taskConditions(filter)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count tasks: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, nil
}

func (r *TaskRepositoryImpl) listQuery(filter ports.TaskFilter) sq.SelectBuilder {
	q := r.sb.Select(taskColumns...).
		From("tasks").
		Where(taskConditions(filter)).
		OrderBy(taskOrder(filter.SortBy, filter.SortOrder)...)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// likeEscaper makes search text literal inside an ILIKE pattern; backslash
// is the default escape character in PostgreSQL.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func taskConditions(filter ports.TaskFilter) sq.And {
	where := sq.And{sq.Eq{"tasks.user_id": filter.UserID.String()}}

	if filter.Status != nil {
		where = append(where, sq.Eq{"tasks.status": *filter.Status})
	}
	if filter.Priority != nil {
		where = append(where, sq.Eq{"tasks.priority": *filter.Priority})
	}
	if filter.CategoryID != nil {
		where = append(where, sq.Eq{"tasks.category_id": *filter.CategoryID})
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(*filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"tasks.title": pattern},
			sq.ILike{"tasks.description": pattern},
		})
	}
	if filter.Condition != nil {
		where = append(where, filter.Condition)
	}
	return where
}

// taskOrder always ends with tasks.id so pages are stable.
func taskOrder(sortBy, sortOrder string) []string {
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}

	switch sortBy {
	case ports.SortByDueDate:
		return []string{"tasks.due_date " + dir + " NULLS LAST", "tasks.id " + dir}
	case ports.SortByPriority:
		return []string{priorityRank + " " + dir, "tasks.id " + dir}
	case ports.SortByTitle:
		return []string{"tasks.title " + dir, "tasks.id " + dir}
	default:
		return []string{"tasks.created_at " + dir, "tasks.id " + dir}
	}
}

func (r *TaskRepositoryImpl) loadTags(ctx context.Context, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int]*entities.Task, len(tasks))
	ids := make([]int, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = t
		ids[i] = t.ID
		t.TagIDs = []int{}
	}

	query, args, err := r.sb.Select("task_id", "tag_id").
		From("task_tags").
		Where(sq.Eq{"task_id": ids}).
		OrderBy("task_id", "tag_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build load task tags: %w", err)
	}

	var rows []struct {
		TaskID int `db:"task_id"`
		TagID  int `db:"tag_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("load task tags: %w", err)
	}

	for _, row := range rows {
		if t, ok := byID[row.TaskID]; ok {
			t.TagIDs = append(t.TagIDs, row.TagID)
		}
	}
	return nil
}
