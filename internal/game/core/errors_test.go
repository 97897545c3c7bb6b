package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIllegalActionErrorChain(t *testing.T) {
	assert.ErrorIs(t, ErrColumnOutOfRange, ErrIllegalAction)
	assert.ErrorIs(t, ErrColumnFull, ErrIllegalAction)
	assert.False(t, errors.Is(ErrGameOver, ErrIllegalAction))
	assert.False(t, errors.Is(ErrInvariantViolation, ErrIllegalAction))
}

func TestWrapColumnError(t *testing.T) {
	assert.NoError(t, WrapColumnError(Player1, 3, nil))

	err := WrapColumnError(Player2, 9, ErrColumnOutOfRange)
	require.Error(t, err)
	assert.Equal(t, "player 2: column 9: illegal action: column out of range", err.Error())
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantErr    bool
	}{
		{"default", DefaultRows, DefaultCols, false},
		{"minimum", MinDimension, MinDimension, false},
		{"maximum", MaxDimension, MaxDimension, false},
		{"too few rows", 3, 7, true},
		{"too many cols", 6, MaxDimension + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.rows, tt.cols)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDimensions)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
