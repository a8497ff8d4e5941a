package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt учитывает только первые 72 байта
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password is longer than 72 bytes")

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
