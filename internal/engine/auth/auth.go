package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"aerocode/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// PermissionDeniedError indicates the actor's role ranks below the one the
// operation requires.
type PermissionDeniedError struct {
	Operation    string
	RequiredRole domain.Role
}

func (e PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s: %s or higher required", e.Operation, e.RequiredRole)
}

// Rank embeds the role hierarchy into integers. Unknown roles rank zero and
// satisfy nothing.
func Rank(r domain.Role) int {
	switch r {
	case domain.RoleOperator:
		return 1
	case domain.RoleEngineer:
		return 2
	case domain.RoleAdministrator:
		return 3
	}
	return 0
}

// Satisfies reports whether actor ranks at least as high as required.
func Satisfies(actor, required domain.Role) bool {
	return Rank(actor) > 0 && Rank(actor) >= Rank(required)
}

// Require fails closed with PermissionDeniedError.
func Require(actor domain.Role, operation string, required domain.Role) error {
	if !Satisfies(actor, required) {
		return PermissionDeniedError{Operation: operation, RequiredRole: required}
	}
	return nil
}

func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func CheckSecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
