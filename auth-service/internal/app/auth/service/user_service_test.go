package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/auth-service/internal/app/auth/repository"
	"spectre/auth-service/internal/app/auth/repository/mocks"
	"spectre/auth-service/internal/app/auth/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserTestDeps() (*mocks.MockUserRepository, *mocks.MockTokenRepository, *UserService) {
	users := new(mocks.MockUserRepository)
	tokens := new(mocks.MockTokenRepository)
	return users, tokens, NewUserService(users, tokens)
}

func TestUserService_List(t *testing.T) {
	users, _, svc := newUserTestDeps()
	ctx := context.Background()

	users.On("List", ctx).Return([]entity.User{*newTestUser(entity.RoleAdmin), *newTestUser(entity.RoleEditor)}, nil)

	resp, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Items, 2)
}

func TestUserService_Create(t *testing.T) {
	users, _, svc := newUserTestDeps()
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "new@example.com" &&
			u.Name == "Julie" &&
			u.Role == entity.RoleEditor &&
			u.ID != uuid.Nil &&
			util.CheckPassword("long-enough", u.PasswordHash)
	})).Return(nil)

	user, err := svc.Create(ctx, &entity.CreateUserRequest{
		Email:    "New@Example.com",
		Password: "long-enough",
		Name:     " Julie ",
		Role:     entity.RoleEditor,
	})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	users.AssertExpectations(t)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	users, _, svc := newUserTestDeps()
	ctx := context.Background()

	users.On("Create", ctx, mock.Anything).Return(repository.ErrEmailTaken)

	_, err := svc.Create(ctx, &entity.CreateUserRequest{Email: "a@example.com", Password: "long-enough", Name: "A", Role: entity.RoleAdmin})

	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserService_Create_PasswordTooLong(t *testing.T) {
	_, _, svc := newUserTestDeps()

	_, err := svc.Create(context.Background(), &entity.CreateUserRequest{
		Email: "a@example.com", Password: strings.Repeat("x", 80), Name: "A", Role: entity.RoleAdmin,
	})

	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestUserService_Update_RoleChangeRevokesSessions(t *testing.T) {
	users, tokens, svc := newUserTestDeps()
	ctx := context.Background()
	user := newTestUser(entity.RoleEditor)

	users.On("GetByID", ctx, user.ID).Return(user, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Role == entity.RoleAdmin && u.Name == "Staff"
	})).Return(nil)
	tokens.On("DeleteUserRefreshTokens", ctx, user.ID).Return(nil).Once()

	updated, err := svc.Update(ctx, user.ID, &entity.UpdateUserRequest{Role: entity.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, updated.Role)
	tokens.AssertExpectations(t)
}

func TestUserService_Update_NameOnlyKeepsSessions(t *testing.T) {
	users, tokens, svc := newUserTestDeps()
	ctx := context.Background()
	user := newTestUser(entity.RoleEditor)

	users.On("GetByID", ctx, user.ID).Return(user, nil)
	users.On("Update", ctx, mock.Anything).Return(nil)

	updated, err := svc.Update(ctx, user.ID, &entity.UpdateUserRequest{Name: "Renamed", Role: entity.RoleEditor})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	tokens.AssertNotCalled(t, "DeleteUserRefreshTokens", mock.Anything, mock.Anything)
}

func TestUserService_Update_NotFound(t *testing.T) {
	users, _, svc := newUserTestDeps()
	ctx := context.Background()
	id := uuid.New()

	users.On("GetByID", ctx, id).Return(nil, repository.ErrUserNotFound)

	_, err := svc.Update(ctx, id, &entity.UpdateUserRequest{Name: "X"})

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	users, tokens, svc := newUserTestDeps()
	ctx := context.Background()
	id := uuid.New()

	users.On("UpdatePassword", ctx, id, mock.MatchedBy(func(hash string) bool {
		return util.CheckPassword("brand-new-pass", hash)
	})).Return(nil)
	tokens.On("DeleteUserRefreshTokens", ctx, id).Return(errors.New("redis down"))

	err := svc.ChangePassword(ctx, id, "brand-new-pass")

	require.NoError(t, err)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestUserService_ChangePassword_NotFound(t *testing.T) {
	users, _, svc := newUserTestDeps()
	ctx := context.Background()
	id := uuid.New()

	users.On("UpdatePassword", ctx, id, mock.Anything).Return(repository.ErrUserNotFound)

	err := svc.ChangePassword(ctx, id, "brand-new-pass")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	users, tokens, svc := newUserTestDeps()
	ctx := context.Background()
	actor, target := uuid.New(), uuid.New()

	users.On("Delete", ctx, target).Return(nil)
	tokens.On("DeleteUserRefreshTokens", ctx, target).Return(nil)

	err := svc.Delete(ctx, actor, target)

	require.NoError(t, err)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestUserService_Delete_Self(t *testing.T) {
	users, _, svc := newUserTestDeps()
	id := uuid.New()

	err := svc.Delete(context.Background(), id, id)

	assert.ErrorIs(t, err, ErrCannotDeleteSelf)
	users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	users, _, svc := newUserTestDeps()
	ctx := context.Background()
	target := uuid.New()

	users.On("Delete", ctx, target).Return(repository.ErrUserNotFound)

	err := svc.Delete(ctx, uuid.New(), target)

	assert.ErrorIs(t, err, ErrUserNotFound)
}
