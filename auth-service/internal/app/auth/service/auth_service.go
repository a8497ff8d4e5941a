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
	"spectre/pkg/metrics"

	"github.com/google/uuid"
)

// AuthService - вход сотрудников, выпуск и отзыв токенов
type AuthService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		logger.Info().Str("user_id", user.ID.String()).Msg("Login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.AuthLogins.WithLabelValues("success").Inc()
	logger.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("User logged in")
	return resp, nil
}

// Refresh меняет refresh токен на новую пару; старый токен больше не действует
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.AuthResponse, error) {
	stored, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issue(ctx, user)
}

// Logout заносит access токен в чёрный список до истечения и отзывает refresh токен.
// Без refresh токена отзываются все refresh токены пользователя.
func (s *AuthService) Logout(ctx context.Context, claims *util.JWTClaims, accessToken, refreshToken string) error {
	if claims.ExpiresAt != nil {
		if err := s.tokenRepo.AddToBlacklist(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
	}

	if refreshToken != "" {
		stored, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get refresh token: %w", err)
		}
		// чужой refresh токен не отзываем
		if stored.UserID.String() != claims.UserID {
			return nil
		}
		err = s.tokenRepo.DeleteRefreshToken(ctx, refreshToken)
		if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidToken
	}
	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ValidateToken - подпись, срок и чёрный список
func (s *AuthService) ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateToken(accessToken)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	revoked, err := s.tokenRepo.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// EnsureAdmin создаёт первого администратора, если таблица users пуста.
// Возвращает true, если пользователь был создан.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &entity.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Info().Str("email", admin.Email).Msg("Bootstrap admin created")
	return true, nil
}

func (s *AuthService) issue(ctx context.Context, user *entity.User) (*entity.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.jwtManager.RefreshTokenDuration())
	if err := s.tokenRepo.SaveRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	metrics.AuthTokensIssued.WithLabelValues("access").Inc()
	metrics.AuthTokensIssued.WithLabelValues("refresh").Inc()

	return &entity.AuthResponse{
		User: *user,
		Tokens: entity.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(s.jwtManager.AccessTokenDuration().Seconds()),
		},
	}, nil
}
