package http

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// Validator adapts go-playground/validator to echo. Field errors carry the
// JSON name of the field.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			if name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &Validator{validator: v}
}

// Validate validates structs
func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, userService ports.UserService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

// Register handles self sign-up
//
//	@Summary	Register a new account
//	@Tags		Authentication
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.RegisterRequest	true	"Account"
//	@Success	201		{object}	ports.AuthResponse
//	@Failure	409		{object}	ports.ErrorResponse
//	@Failure	422		{object}	ports.ErrorResponse
//	@Router		/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles user login
//
//	@Summary	Log in with email and password
//	@Tags		Authentication
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.LoginRequest	true	"Credentials"
//	@Success	200		{object}	ports.AuthResponse
//	@Failure	401		{object}	ports.ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.LogSecurityEvent("login_failed", "", c.RealIP(), map[string]interface{}{"email": req.Email})
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshToken handles token refresh
//
//	@Summary	Exchange a refresh token for a new token pair
//	@Tags		Authentication
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.RefreshTokenRequest	true	"Refresh token"
//	@Success	200		{object}	ports.AuthResponse
//	@Failure	401		{object}	ports.ErrorResponse
//	@Router		/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req ports.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout handles user logout
//
//	@Summary	Revoke every refresh token of the caller
//	@Tags		Authentication
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	ports.MessageResponse
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

// Me returns the caller's profile
//
//	@Summary	Current user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	entities.User
//	@Router		/users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser lets an administrator create an account with any role
//
//	@Summary	Create a user
//	@Tags		Users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ports.CreateUserRequest	true	"User"
//	@Success	201		{object}	entities.User
//	@Failure	409		{object}	ports.ErrorResponse
//	@Router		/users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req ports.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Utility functions

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return c.Validate(req)
}

func getUserIDFromContext(c echo.Context) uuid.UUID {
	userIDStr, ok := c.Get("user").(string)
	if !ok {
		return uuid.Nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	userID := getUserIDFromContext(c)
	if userID == uuid.Nil {
		return uuid.Nil, entities.ErrUnauthorized
	}
	return userID, nil
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}
