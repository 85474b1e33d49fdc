package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordCost      = 10
	minPasswordLength = 6
)

// HashPassword returns the bcrypt hash stored for a user.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
