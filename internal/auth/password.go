package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", httperr.ErrBusiness("weak_password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
