package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/auth-service/internal/app/auth/repository"
	"spectre/auth-service/internal/app/auth/util"
	"spectre/pkg/logger"

	"github.com/google/uuid"
)

// UserService - управление сотрудниками (только admin)
type UserService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

func NewUserService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *UserService {
	return &UserService{userRepo: userRepo, tokenRepo: tokenRepo}
}

func (s *UserService) List(ctx context.Context) (*entity.UserListResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &entity.UserListResponse{Total: len(users), Items: users}, nil
}

func (s *UserService) Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	hash, err := util.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, util.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("User created")
	return user, nil
}

// Update меняет имя и роль. При смене роли refresh токены отзываются.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateUserRequest) (*entity.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	roleChanged := req.Role != "" && req.Role != user.Role
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if roleChanged {
		s.revokeSessions(ctx, id)
	}
	return user, nil
}

// ChangePassword - администратор задаёт новый пароль, все сессии пользователя закрываются
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := util.HashPassword(password)
	if err != nil {
		if errors.Is(err, util.ErrPasswordTooLong) {
			return ErrPasswordTooLong
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.revokeSessions(ctx, id)
	return nil
}

func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.revokeSessions(ctx, id)
	logger.Info().Str("user_id", id.String()).Str("actor_id", actorID.String()).Msg("User deleted")
	return nil
}

func (s *UserService) getUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// revokeSessions - ошибка Redis только логируется: изменение в БД уже сохранено
func (s *UserService) revokeSessions(ctx context.Context, id uuid.UUID) {
	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, id); err != nil {
		logger.Warn().Err(err).Str("user_id", id.String()).Msg("Failed to revoke refresh tokens")
	}
}
