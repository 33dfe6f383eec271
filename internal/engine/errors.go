package engine

import (
	"errors"
	"fmt"
	"strings"

	"aerocode/internal/domain"
	"aerocode/internal/engine/auth"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrDependencyExists  = errors.New("dependency exists")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDuplicateTest     = errors.New("duplicate test")
	ErrInvalid           = errors.New("invalid input")
)

// PermissionDeniedError is raised by the role hierarchy check.
type PermissionDeniedError = auth.PermissionDeniedError

type NotFoundError struct {
	Kind domain.EntityKind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

type AlreadyExistsError struct {
	Kind domain.EntityKind
	ID   string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}

func (e AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// DependencyExistsError lists every referent that blocks a deletion.
type DependencyExistsError struct {
	Kind     domain.EntityKind
	ID       string
	Blockers []string
}

func (e DependencyExistsError) Error() string {
	return fmt.Sprintf("cannot delete %s %s; dependencies exist:\n   %s", e.Kind, e.ID, strings.Join(e.Blockers, "\n   "))
}

func (e DependencyExistsError) Is(target error) bool { return target == ErrDependencyExists }

type InvalidTransitionError struct {
	StageID string
	From    domain.StageStatus
	To      domain.StageStatus
	Reason  string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("stage %s cannot move %s -> %s: %s", e.StageID, e.From, e.To, e.Reason)
}

func (e InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type DuplicateTestError struct {
	AircraftCode string
	Kind         domain.TestKind
}

func (e DuplicateTestError) Error() string {
	return fmt.Sprintf("aircraft %s already has a %s test", e.AircraftCode, e.Kind)
}

func (e DuplicateTestError) Is(target error) bool { return target == ErrDuplicateTest }

// ValidationError reports malformed caller input.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

func (e ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(format string, args ...any) error {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// errorKind names the taxonomy entry of err for logs.
func errorKind(err error) string {
	var denied PermissionDeniedError
	switch {
	case errors.As(err, &denied):
		return "permission_denied"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrDependencyExists):
		return "dependency_exists"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrDuplicateTest):
		return "duplicate_test"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	}
	return "internal"
}
