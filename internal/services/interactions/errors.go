package interactions

import (
	"errors"
	"fmt"

	"github.com/unicrossed/backend/internal/domain/rules"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfInteraction = errors.New("cannot interact with yourself")
	ErrTargetNotFound  = errors.New("target user not found")
)

type InvalidMessageLengthError struct {
	Bound  rules.MessageBound
	Length int
	Min    int
	Max    int
}

func (e InvalidMessageLengthError) Error() string {
	if e.Bound == rules.MessageBoundMax {
		return fmt.Sprintf("superlike message too long: %d > %d", e.Length, e.Max)
	}
	return fmt.Sprintf("superlike message too short: %d < %d", e.Length, e.Min)
}

func IsInvalidMessageLength(err error) (InvalidMessageLengthError, bool) {
	var target InvalidMessageLengthError
	if errors.As(err, &target) {
		return target, true
	}
	return InvalidMessageLengthError{}, false
}
