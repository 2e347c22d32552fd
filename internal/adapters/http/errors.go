package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/domain/smarttag"
	"github.com/goleaf/api-todo-app/internal/domain/taskfilter"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// FieldError is one rejected field of a request body or query.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ErrorHandler renders errors returned by handlers as ports.ErrorResponse,
// choosing the status from the domain error.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := toResponse(err)
		if code >= http.StatusInternalServerError {
			log.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path, "method", c.Request().Method)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Errorw("Error sending response", "error", err)
		}
	}
}

func toResponse(err error) (int, ports.ErrorResponse) {
	var (
		httpErr     *echo.HTTPError
		fieldErrs   validator.ValidationErrors
		criteriaErr smarttag.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, ports.ErrorResponse{Message: msg}

	case errors.As(err, &fieldErrs):
		details := make([]FieldError, len(fieldErrs))
		for i, fe := range fieldErrs {
			details[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
		}
		return http.StatusUnprocessableEntity, ports.ErrorResponse{Message: "validation failed", Details: details}

	case errors.As(err, &criteriaErr):
		return http.StatusUnprocessableEntity, ports.ErrorResponse{Message: "invalid smart tag criteria", Details: []*smarttag.ValidationError(criteriaErr)}

	case errors.Is(err, smarttag.ErrInvalidCriteria):
		return http.StatusUnprocessableEntity, ports.ErrorResponse{Message: err.Error()}

	case errors.Is(err, taskfilter.ErrInvalidExpression),
		errors.Is(err, taskfilter.ErrScanLimit),
		errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrInvalidPriority):
		return http.StatusBadRequest, ports.ErrorResponse{Message: err.Error()}

	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrSmartTagNotFound),
		errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrCategoryNotFound),
		errors.Is(err, entities.ErrTagNotFound):
		return http.StatusNotFound, ports.ErrorResponse{Message: rootMessage(err)}

	case errors.Is(err, entities.ErrDuplicateName):
		return http.StatusConflict, ports.ErrorResponse{Message: entities.ErrDuplicateName.Error()}

	case errors.Is(err, entities.ErrInvalidCredentials), errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized, ports.ErrorResponse{Message: http.StatusText(http.StatusUnauthorized)}

	case errors.Is(err, entities.ErrAccountInactive):
		return http.StatusForbidden, ports.ErrorResponse{Message: entities.ErrAccountInactive.Error()}
	}

	return http.StatusInternalServerError, ports.ErrorResponse{Message: http.StatusText(http.StatusInternalServerError)}
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
