package game

import (
	"fmt"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
)

// Status is the engine's position in the game state machine
type Status int

const (
	// StatusInProgress - moves are being accepted
	StatusInProgress Status = iota

	// StatusWonByPlayer1 - player one completed a line
	StatusWonByPlayer1

	// StatusWonByPlayer2 - player two completed a line
	StatusWonByPlayer2

	// StatusDraw - board filled without a winner
	StatusDraw

	// StatusIllegalMoveLoss - the acting player chose an illegal column and lost
	StatusIllegalMoveLoss
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "InProgress"
	case StatusWonByPlayer1:
		return "WonByPlayer1"
	case StatusWonByPlayer2:
		return "WonByPlayer2"
	case StatusDraw:
		return "Draw"
	case StatusIllegalMoveLoss:
		return "IllegalMoveLoss"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsTerminal returns true for the four absorbing statuses
func (s Status) IsTerminal() bool {
	return s != StatusInProgress
}

// AllowedTransitions returns the statuses Step may move to from s.
// Terminal statuses only leave through Reset, which is not a transition.
func (s Status) AllowedTransitions() []Status {
	switch s {
	case StatusInProgress:
		return []Status{StatusInProgress, StatusWonByPlayer1, StatusWonByPlayer2, StatusDraw, StatusIllegalMoveLoss}
	default:
		return []Status{s}
	}
}

// CanTransitionTo checks if a transition from this status to target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range s.AllowedTransitions() {
		if allowed == target {
			return true
		}
	}
	return false
}

// WonBy returns the win status for mark
func WonBy(mark core.Mark) Status {
	if mark == core.Player2 {
		return StatusWonByPlayer2
	}
	return StatusWonByPlayer1
}

// ParseStatus converts a string to a Status
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusInProgress, StatusWonByPlayer1, StatusWonByPlayer2, StatusDraw, StatusIllegalMoveLoss} {
		if st.String() == s {
			return st, nil
		}
	}
	return StatusInProgress, fmt.Errorf("unknown status %q", s)
}
