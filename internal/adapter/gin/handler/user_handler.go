package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-api/internal/usecase/user"
	pkgerrors "users-api/pkg/errors"
	"users-api/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// A client-supplied "id" has no field to land in and is dropped.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be a JSON object with name and email",
		})
		return
	}

	resp, err := h.uc.CreateUser(ctx, user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(resp.User))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{})
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Always a JSON array, never null
	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toResponse(u)
	}

	c.JSON(http.StatusOK, users)
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status := pkgerrors.HTTPStatus(err)
	log := logger.WithContext(c.Request.Context(), h.log)

	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed", zap.Error(err))
		message = "An internal error occurred"
	case http.StatusServiceUnavailable:
		log.Error("request failed", zap.Error(err))
		message = "The user store is temporarily unavailable"
	default:
		log.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}

	c.JSON(status, ErrorResponse{
		Error:   pkgerrors.Code(err),
		Message: message,
	})
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
