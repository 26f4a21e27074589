package gomoku

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected marks an action that is not applicable to the current state.
	// The aggregate is left untouched.
	ErrRejected = errors.New("action rejected")

	// ErrUndoHistoryExhausted is an invariant violation: an undo was agreed but
	// history holds fewer MOVE actions than the reversion needs.
	ErrUndoHistoryExhausted = errors.New("undo: not enough moves in history")

	ErrNilGame = errors.New("nil game")
)

// Rejection reasons. They double as message catalog keys at the bot layer.
const (
	ReasonNotSeated        = "not_seated"
	ReasonWrongStatus      = "wrong_status"
	ReasonAlreadyReady     = "already_ready"
	ReasonNoPosition       = "no_position"
	ReasonOutOfBounds      = "out_of_bounds"
	ReasonOccupied         = "occupied"
	ReasonNotYourTurn      = "not_your_turn"
	ReasonGameOver         = "game_over"
	ReasonProposalPending  = "proposal_pending"
	ReasonNoProposal       = "no_proposal"
	ReasonOwnProposal      = "own_proposal"
	ReasonNothingToUndo    = "nothing_to_undo"
	ReasonNoApplicableRule = "no_applicable_rule"
)

// RejectedError carries the action type and the first failing check.
type RejectedError struct {
	Type   ActionType
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Type, e.Reason)
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

func reject(t ActionType, reason string) error {
	return &RejectedError{Type: t, Reason: reason}
}

// RejectionReason extracts the reason from a rejection, or "" for other errors.
func RejectionReason(err error) string {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
