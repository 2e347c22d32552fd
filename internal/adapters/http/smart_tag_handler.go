package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// SmartTagHandler handles smart tag requests
type SmartTagHandler struct {
	smartTagService ports.SmartTagService
	logger          *logger.Logger
}

// NewSmartTagHandler creates a new smart tag handler
func NewSmartTagHandler(smartTagService ports.SmartTagService, logger *logger.Logger) *SmartTagHandler {
	return &SmartTagHandler{
		smartTagService: smartTagService,
		logger:          logger,
	}
}

// ListSmartTags godoc
//
//	@Summary	List smart tags
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	entities.SmartTag
//	@Router		/smart-tags [get]
func (h *SmartTagHandler) ListSmartTags(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	tags, err := h.smartTagService.ListSmartTags(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// CreateSmartTag godoc
//
//	@Summary	Create a smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.SmartTagRequest	true	"Smart tag"
//	@Success	201		{object}	entities.SmartTag
//	@Failure	409		{object}	ports.ErrorResponse
//	@Failure	422		{object}	ports.ErrorResponse
//	@Router		/smart-tags [post]
func (h *SmartTagHandler) CreateSmartTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ports.SmartTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := h.smartTagService.CreateSmartTag(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

// GetSmartTag godoc
//
//	@Summary	Get a smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Smart tag ID"
//	@Success	200	{object}	entities.SmartTag
//	@Failure	404	{object}	ports.ErrorResponse
//	@Router		/smart-tags/{id} [get]
func (h *SmartTagHandler) GetSmartTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	tag, err := h.smartTagService.GetSmartTag(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// UpdateSmartTag godoc
//
//	@Summary	Replace a smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Smart tag ID"
//	@Param		body	body		ports.SmartTagRequest	true	"Smart tag"
//	@Success	200		{object}	entities.SmartTag
//	@Failure	404		{object}	ports.ErrorResponse
//	@Failure	422		{object}	ports.ErrorResponse
//	@Router		/smart-tags/{id} [put]
func (h *SmartTagHandler) UpdateSmartTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req ports.SmartTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := h.smartTagService.UpdateSmartTag(c.Request().Context(), userID, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteSmartTag godoc
//
//	@Summary	Delete a smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Smart tag ID"
//	@Success	204
//	@Failure	404	{object}	ports.ErrorResponse
//	@Router		/smart-tags/{id} [delete]
func (h *SmartTagHandler) DeleteSmartTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.smartTagService.DeleteSmartTag(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SmartTagTasks godoc
//
//	@Summary	Tasks matched by a smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		int	true	"Smart tag ID"
//	@Param		limit	query		int	false	"Page size"
//	@Param		offset	query		int	false	"Page offset"
//	@Success	200		{object}	ports.PaginatedResponse[entities.Task]
//	@Failure	422		{object}	ports.ErrorResponse	"stored definition can not be evaluated"
//	@Router		/smart-tags/{id}/tasks [get]
func (h *SmartTagHandler) SmartTagTasks(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var page ports.Page
	if err := bindAndValidate(c, &page); err != nil {
		return err
	}

	resp, err := h.smartTagService.SmartTagTasks(c.Request().Context(), userID, id, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// PreviewSmartTag godoc
//
//	@Summary	Run an unsaved definition
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.PreviewRequest	true	"Criteria and page"
//	@Success	200		{object}	ports.PaginatedResponse[entities.Task]
//	@Failure	422		{object}	ports.ErrorResponse
//	@Router		/smart-tags/preview [post]
func (h *SmartTagHandler) PreviewSmartTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ports.PreviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.smartTagService.PreviewSmartTag(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// EvaluateSmartTag godoc
//
//	@Summary	Check one task against a smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		int	true	"Smart tag ID"
//	@Param		taskId	path		int	true	"Task ID"
//	@Success	200		{object}	ports.EvaluationResult
//	@Failure	404		{object}	ports.ErrorResponse
//	@Router		/smart-tags/{id}/tasks/{taskId}/match [get]
func (h *SmartTagHandler) EvaluateSmartTag(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "taskId")
	if err != nil {
		return err
	}

	res, err := h.smartTagService.EvaluateSmartTag(c.Request().Context(), userID, id, taskID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// SmartTagCounts godoc
//
//	@Summary	Number of matching tasks per smart tag
//	@Tags		SmartTags
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	ports.SmartTagCount
//	@Router		/smart-tags/counts [get]
func (h *SmartTagHandler) SmartTagCounts(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	counts, err := h.smartTagService.SmartTagCounts(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}
