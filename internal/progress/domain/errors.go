package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidActivity          = errors.New("invalid activity")
	ErrActivityNotFound         = errors.New("activity not found")
	ErrActivityNotOwned         = errors.New("activity belongs to another user")
	ErrAchievementNotFound      = errors.New("achievement not found")
	ErrAchievementAlreadyViewed = errors.New("achievement already viewed")
	ErrInvalidGoal              = errors.New("daily goal must be positive")
)

// ValidationError labels the field that made an input unusable.
// It unwraps to ErrInvalidActivity so callers can match with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidActivity
}
