package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserExists          = errors.New("user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrTokenExpired        = errors.New("token has expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrPasswordTooLong     = errors.New("password is longer than 72 bytes")
)
