package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/auth-service/internal/app/auth/service"
	"spectre/auth-service/internal/app/auth/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*entity.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *util.JWTClaims, accessToken, refreshToken string) error {
	args := m.Called(ctx, claims, accessToken, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*util.JWTClaims), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) (*entity.UserListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserListResponse), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateUserRequest) (*entity.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	args := m.Called(ctx, id, password)
	return args.Error(0)
}

func (m *MockUserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}

const (
	adminToken  = "admin-token"
	editorToken = "editor-token"
)

type testEnv struct {
	router  *gin.Engine
	auth    *MockAuthService
	users   *MockUserService
	adminID uuid.UUID
	claims  *util.JWTClaims
}

func setupTestRouter() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		auth:    new(MockAuthService),
		users:   new(MockUserService),
		adminID: uuid.New(),
	}
	env.claims = &util.JWTClaims{UserID: env.adminID.String(), Email: "admin@example.com", Role: entity.RoleAdmin}
	editorClaims := &util.JWTClaims{UserID: uuid.NewString(), Email: "editor@example.com", Role: entity.RoleEditor}

	env.auth.On("ValidateToken", mock.Anything, adminToken).Return(env.claims, nil).Maybe()
	env.auth.On("ValidateToken", mock.Anything, editorToken).Return(editorClaims, nil).Maybe()

	env.router = SetupRoutes(NewAuthHandler(env.auth), NewUserHandler(env.users), NewAuthMiddleware(env.auth))
	return env
}

func perform(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ===================== Login / Refresh =====================

func TestLoginHandler_Success(t *testing.T) {
	env := setupTestRouter()
	resp := &entity.AuthResponse{
		User:   entity.User{ID: uuid.New(), Email: "admin@example.com", Role: entity.RoleAdmin},
		Tokens: entity.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900},
	}
	env.auth.On("Login", mock.Anything, &entity.LoginRequest{Email: "admin@example.com", Password: "secret123"}).
		Return(resp, nil)

	w := perform(env.router, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"secret123"}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	tokens := body["tokens"].(map[string]interface{})
	assert.Equal(t, "access", tokens["access_token"])
	assert.Equal(t, "refresh", tokens["refresh_token"])
	assert.NotContains(t, w.Body.String(), "password")
	env.auth.AssertExpectations(t)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials)

	w := perform(env.router, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"wrong"}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthorized, decodeBody(t, w)["code"])
}

func TestLoginHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"email":`},
		{"bad email", `{"email":"nope","password":"x"}`},
		{"missing password", `{"email":"admin@example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter()

			w := perform(env.router, http.MethodPost, "/auth/login", tt.body, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
		})
	}
}

func TestRefreshHandler(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("Refresh", mock.Anything, "old").Return(&entity.AuthResponse{
		Tokens: entity.TokenPair{AccessToken: "a2", RefreshToken: "r2"},
	}, nil)
	env.auth.On("Refresh", mock.Anything, "stale").Return(nil, service.ErrInvalidRefreshToken)

	w := perform(env.router, http.MethodPost, "/auth/refresh", `{"refresh_token":"old"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(env.router, http.MethodPost, "/auth/refresh", `{"refresh_token":"stale"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(env.router, http.MethodPost, "/auth/refresh", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== Middleware =====================

func TestAuthenticate_Failures(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("ValidateToken", mock.Anything, "expired").Return(nil, service.ErrTokenExpired)
	env.auth.On("ValidateToken", mock.Anything, "revoked").Return(nil, service.ErrTokenRevoked)
	env.auth.On("ValidateToken", mock.Anything, "broken-redis").Return(nil, errors.New("redis down"))

	w := perform(env.router, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(env.router, http.MethodGet, "/auth/me", "", "expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", decodeBody(t, w)["error"])

	w = perform(env.router, http.MethodGet, "/auth/me", "", "revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(env.router, http.MethodGet, "/auth/me", "", "broken-redis")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	env.auth.AssertNotCalled(t, "Me", mock.Anything, mock.Anything)
}

func TestAuthenticate_RequiresBearerScheme(t *testing.T) {
	env := setupTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Basic "+adminToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env.auth.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestRequireRole_EditorCannotManageUsers(t *testing.T) {
	env := setupTestRouter()

	w := perform(env.router, http.MethodGet, "/users", "", editorToken)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeForbidden, decodeBody(t, w)["code"])
	env.users.AssertNotCalled(t, "List", mock.Anything)
}

// ===================== Me / Logout =====================

func TestMeHandler(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("Me", mock.Anything, env.adminID).
		Return(&entity.User{ID: env.adminID, Email: "admin@example.com", Role: entity.RoleAdmin}, nil)

	w := perform(env.router, http.MethodGet, "/auth/me", "", adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, env.adminID.String(), decodeBody(t, w)["id"])
}

func TestMeHandler_UserDeleted(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("Me", mock.Anything, env.adminID).Return(nil, service.ErrUserNotFound)

	w := perform(env.router, http.MethodGet, "/auth/me", "", adminToken)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutHandler_WithRefreshToken(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("Logout", mock.Anything, env.claims, adminToken, "refresh-1").Return(nil)

	w := perform(env.router, http.MethodPost, "/auth/logout", `{"refresh_token":"refresh-1"}`, adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	env.auth.AssertExpectations(t)
}

func TestLogoutHandler_EmptyBody(t *testing.T) {
	env := setupTestRouter()
	env.auth.On("Logout", mock.Anything, env.claims, adminToken, "").Return(nil)

	w := perform(env.router, http.MethodPost, "/auth/logout", "", adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	env.auth.AssertExpectations(t)
}

// ===================== Users =====================

func TestListUsersHandler(t *testing.T) {
	env := setupTestRouter()
	env.users.On("List", mock.Anything).Return(&entity.UserListResponse{
		Total: 1,
		Items: []entity.User{{ID: env.adminID, Email: "admin@example.com", PasswordHash: "$2a$hash"}},
	}, nil)

	w := perform(env.router, http.MethodGet, "/users", "", adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])
	assert.NotContains(t, w.Body.String(), "$2a$hash")
}

func TestCreateUserHandler(t *testing.T) {
	env := setupTestRouter()
	created := &entity.User{ID: uuid.New(), Email: "editor@example.com", Name: "Éditeur", Role: entity.RoleEditor}
	env.users.On("Create", mock.Anything, mock.MatchedBy(func(req *entity.CreateUserRequest) bool {
		return req.Email == "editor@example.com" && req.Role == entity.RoleEditor
	})).Return(created, nil)

	body := `{"email":"editor@example.com","password":"password1","name":"Éditeur","role":"editor"}`
	w := perform(env.router, http.MethodPost, "/users", body, adminToken)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, created.ID.String(), decodeBody(t, w)["id"])
}

func TestCreateUserHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"short password", `{"email":"a@example.com","password":"short","name":"A","role":"editor"}`, nil, http.StatusBadRequest},
		{"unknown role", `{"email":"a@example.com","password":"password1","name":"A","role":"customer"}`, nil, http.StatusBadRequest},
		{"email taken", `{"email":"a@example.com","password":"password1","name":"A","role":"editor"}`, service.ErrUserExists, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter()
			if tt.err != nil {
				env.users.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			w := perform(env.router, http.MethodPost, "/users", tt.body, adminToken)

			assert.Equal(t, tt.status, w.Code)
			if tt.err == nil {
				env.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUpdateUserHandler(t *testing.T) {
	env := setupTestRouter()
	id := uuid.New()
	env.users.On("Update", mock.Anything, id, &entity.UpdateUserRequest{Role: entity.RoleAdmin}).
		Return(&entity.User{ID: id, Role: entity.RoleAdmin}, nil)

	w := perform(env.router, http.MethodPut, "/users/"+id.String(), `{"role":"admin"}`, adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.RoleAdmin, decodeBody(t, w)["role"])
}

func TestUpdateUserHandler_InvalidID(t *testing.T) {
	env := setupTestRouter()

	w := perform(env.router, http.MethodPut, "/users/not-a-uuid", `{"name":"A"}`, adminToken)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePasswordHandler(t *testing.T) {
	env := setupTestRouter()
	id := uuid.New()
	env.users.On("ChangePassword", mock.Anything, id, "new-password").Return(nil)

	w := perform(env.router, http.MethodPut, "/users/"+id.String()+"/password", `{"password":"new-password"}`, adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	env.users.AssertExpectations(t)
}

func TestDeleteUserHandler(t *testing.T) {
	env := setupTestRouter()
	id := uuid.New()
	env.users.On("Delete", mock.Anything, env.adminID, id).Return(nil)

	w := perform(env.router, http.MethodDelete, "/users/"+id.String(), "", adminToken)

	assert.Equal(t, http.StatusNoContent, w.Code)
	env.users.AssertExpectations(t)
}

func TestDeleteUserHandler_Errors(t *testing.T) {
	env := setupTestRouter()
	missing := uuid.New()
	env.users.On("Delete", mock.Anything, env.adminID, env.adminID).Return(service.ErrCannotDeleteSelf)
	env.users.On("Delete", mock.Anything, env.adminID, missing).Return(service.ErrUserNotFound)

	w := perform(env.router, http.MethodDelete, "/users/"+env.adminID.String(), "", adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(env.router, http.MethodDelete, "/users/"+missing.String(), "", adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestRouter()

	w := perform(env.router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, serviceName, decodeBody(t, w)["service"])

	w = perform(env.router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
