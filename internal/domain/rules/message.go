package rules

import (
	"strings"
	"unicode/utf8"
)

const (
	SuperlikeMessageMin = 10
	SuperlikeMessageMax = 500
)

type MessageBound string

const (
	MessageBoundNone MessageBound = ""
	MessageBoundMin  MessageBound = "min"
	MessageBoundMax  MessageBound = "max"
)

func NormalizeMessage(message string) string {
	return strings.TrimSpace(message)
}

// CheckSuperlikeMessage trims the message and reports which bound it violates.
// Length is counted in code points.
func CheckSuperlikeMessage(message string) (string, int, MessageBound) {
	trimmed := NormalizeMessage(message)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n < SuperlikeMessageMin:
		return trimmed, n, MessageBoundMin
	case n > SuperlikeMessageMax:
		return trimmed, n, MessageBoundMax
	default:
		return trimmed, n, MessageBoundNone
	}
}
