package core

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalAction      = errors.New("illegal action")
	ErrColumnOutOfRange   = fmt.Errorf("%w: column out of range", ErrIllegalAction)
	ErrColumnFull         = fmt.Errorf("%w: column is full", ErrIllegalAction)
	ErrGameOver           = errors.New("game is over")
	ErrInvariantViolation = errors.New("internal invariant violation")
	ErrInvalidDimensions  = errors.New("invalid board dimensions")
)

// WrapColumnError adds the acting player and column to an action error
func WrapColumnError(player Mark, col int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %d: column %d: %w", player, col, err)
}

// ValidateDimensions checks a requested grid against the supported range.
func ValidateDimensions(rows, cols int) error {
	if rows < MinDimension || rows > MaxDimension || cols < MinDimension || cols > MaxDimension {
		return fmt.Errorf("%w: %dx%d (each side must be in [%d, %d])",
			ErrInvalidDimensions, rows, cols, MinDimension, MaxDimension)
	}
	return nil
}
