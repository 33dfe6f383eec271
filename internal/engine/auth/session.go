package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"aerocode/internal/domain"
)

const sessionIssuer = "aerocode"

type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Session identifies the employee who logged in on this workspace.
type Session struct {
	EmployeeID string
	Role       domain.Role
	ExpiresAt  time.Time
}

// IssueSession signs an HS256 token for the employee.
func IssueSession(secret string, emp domain.Employee, now time.Time, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("session secret not configured")
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(emp.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSession validates a token produced by IssueSession.
func ParseSession(token, secret string, now time.Time) (Session, error) {
	if strings.TrimSpace(secret) == "" {
		return Session{}, errors.New("session secret not configured")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &sessionClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, err
	}
	if !parsed.Valid {
		return Session{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Session{}, errors.New("subject claim required")
	}
	s := Session{EmployeeID: claims.Subject, Role: domain.Role(claims.Role)}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
