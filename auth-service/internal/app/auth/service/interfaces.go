package service

import (
	"context"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/auth-service/internal/app/auth/util"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.AuthResponse, error)
	Logout(ctx context.Context, claims *util.JWTClaims, accessToken, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error)
}

type UserServiceInterface interface {
	List(ctx context.Context) (*entity.UserListResponse, error)
	Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, req *entity.UpdateUserRequest) (*entity.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, password string) error
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

var (
	_ AuthServiceInterface = (*AuthService)(nil)
	_ UserServiceInterface = (*UserService)(nil)
)
