package handler

import (
	"net/http"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/auth-service/internal/app/auth/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// Login - POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to login")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh - POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req entity.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout - POST /auth/logout, тело необязательно
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var req entity.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
			return
		}
	}

	if err := h.authService.Logout(c.Request.Context(), claims, c.GetString(ctxAccessToken), req.RefreshToken); err != nil {
		respondServiceError(c, err, "Failed to logout")
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Successfully logged out"})
}

// Me - GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to get user info")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) bind(c *gin.Context, req interface{}) bool {
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
