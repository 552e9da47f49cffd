package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recoverable error kinds. Handlers map these to a user-facing reprompt and
// leave state untouched.
var (
	ErrValidation     = errors.New("validation failed")
	ErrOnCooldown     = errors.New("on cooldown")
	ErrSessionExpired = errors.New("session expired")
	ErrUnauthorized   = errors.New("unauthorized")
)

// InsufficientError reports exactly which quantities are short. Short maps a
// resource (or the literal "energy"/"hp") to the missing amount.
type InsufficientError struct {
	Short map[string]float64
}

func (e *InsufficientError) Error() string {
	parts := make([]string, 0, len(e.Short))
	for k, v := range e.Short {
		parts = append(parts, fmt.Sprintf("%s (need %g more)", k, v))
	}
	return "insufficient: " + strings.Join(parts, ", ")
}

// IsInsufficient reports whether err is an InsufficientError.
func IsInsufficient(err error) bool {
	var ie *InsufficientError
	return errors.As(err, &ie)
}

// CooldownError carries the remaining wait. It matches ErrOnCooldown via
// errors.Is.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for %s", e.Remaining.Round(time.Minute))
}

func (e *CooldownError) Is(target error) bool { return target == ErrOnCooldown }

// ExternalServiceError wraps a failure from the chain service. The message is
// surfaced to the user verbatim; gameplay state already applied stays applied.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
