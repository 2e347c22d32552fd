package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// TaskHandler handles task, category and tag requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks godoc
//
//	@Summary		List tasks
//	@Description	Filters combine with AND. expr is a CEL expression over title, description, status, priority, has_due_date, due_date, category_id, tag_ids, time_entries, attachments, created_at and now.
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status			query		string	false	"pending, in_progress or completed"
//	@Param			priority		query		string	false	"low, medium or high"
//	@Param			category_id		query		int		false	"Category ID"
//	@Param			search			query		string	false	"Substring of title or description"
//	@Param			smart_tag_id	query		int		false	"Only tasks matched by this smart tag"
//	@Param			expr			query		string	false	"CEL expression"
//	@Param			sort_by			query		string	false	"created_at, due_date, priority or title"
//	@Param			sort_order		query		string	false	"asc or desc"
//	@Param			limit			query		int		false	"Page size"
//	@Param			offset			query		int		false	"Page offset"
//	@Success		200				{object}	ports.PaginatedResponse[entities.Task]
//	@Failure		400				{object}	ports.ErrorResponse
//	@Router			/tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var q ports.TaskListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	resp, err := h.taskService.ListTasks(c.Request().Context(), userID, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateTask godoc
//
//	@Summary	Create a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.CreateTaskRequest	true	"Task"
//	@Success	201		{object}	entities.Task
//	@Failure	404		{object}	ports.ErrorResponse	"unknown category or tag"
//	@Router		/tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
//
//	@Summary	Get a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Task ID"
//	@Success	200	{object}	entities.Task
//	@Failure	404	{object}	ports.ErrorResponse
//	@Router		/tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus godoc
//
//	@Summary	Change the status of a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int								true	"Task ID"
//	@Param		body	body		ports.UpdateTaskStatusRequest	true	"Status"
//	@Success	200		{object}	entities.Task
//	@Failure	404		{object}	ports.ErrorResponse
//	@Router		/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTaskStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request().Context(), userID, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
//
//	@Summary	Delete a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Task ID"
//	@Success	204
//	@Router		/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCategories godoc
//
//	@Summary	List categories
//	@Tags		Labels
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	entities.Category
//	@Router		/categories [get]
func (h *TaskHandler) ListCategories(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	categories, err := h.taskService.ListCategories(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory godoc
//
//	@Summary	Create a category
//	@Tags		Labels
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.LabelRequest	true	"Category"
//	@Success	201		{object}	entities.Category
//	@Failure	409		{object}	ports.ErrorResponse
//	@Router		/categories [post]
func (h *TaskHandler) CreateCategory(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ports.LabelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.taskService.CreateCategory(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// ListTags godoc
//
//	@Summary	List tags
//	@Tags		Labels
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	entities.Tag
//	@Router		/tags [get]
func (h *TaskHandler) ListTags(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	tags, err := h.taskService.ListTags(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// CreateTag godoc
//
//	@Summary	Create a tag
//	@Tags		Labels
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.LabelRequest	true	"Tag"
//	@Success	201		{object}	entities.Tag
//	@Failure	409		{object}	ports.ErrorResponse
//	@Router		/tags [post]
func (h *TaskHandler) CreateTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ports.LabelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := h.taskService.CreateTag(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}
