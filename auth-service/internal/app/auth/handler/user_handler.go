package handler

import (
	"net/http"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/auth-service/internal/app/auth/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UserHandler - /users, только для admin
type UserHandler struct {
	userService service.UserServiceInterface
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req entity.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var req entity.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword - PUT /users/:id/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var req entity.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), id, req.Password); err != nil {
		respondServiceError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Password updated"})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorID, id); err != nil {
		respondServiceError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return false
	}
	return true
}
