// Package async tracks the state of asynchronous API calls: a single
// superseding call (Query), side-effecting calls (Mutation) and a growing
// page-by-page list (Paginated).
package async

import (
	"errors"
	"strings"
)

// fallbackMessage is used when an error has no text of its own.
const fallbackMessage = "Unexpected error"

// State is the observable state of a Query.
// After a call settles exactly one of HasData and Error != "" holds.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Error   string
}

type userMessager interface {
	UserMessage() string
}

// ErrorMessage returns the text stored in state for err. It is never empty
// for a non-nil err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallbackMessage
}
