package session

import (
	"context"
	"errors"
	"fmt"
)

// ResetPrompt is the question put to the user before a reset.
const ResetPrompt = "Are you sure you want to reset all data to the default values? This cannot be undone."

// ErrNotConfirmed is returned when a destructive action was declined.
var ErrNotConfirmed = errors.New("action not confirmed")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// Answer is a Confirmer with a fixed reply, for callers that collected the
// decision up front (a request flag, a --yes option).
type Answer bool

func (a Answer) Confirm(context.Context, string) (bool, error) {
	return bool(a), nil
}

// ConfirmAndReset resets s only if c agrees. A declined confirmation returns
// ErrNotConfirmed and leaves every piece of state untouched.
func ConfirmAndReset(ctx context.Context, s *Session, c Confirmer) error {
	ok, err := c.Confirm(ctx, ResetPrompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	return s.Reset(ctx)
}
