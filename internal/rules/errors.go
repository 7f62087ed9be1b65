package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove matches every *MoveError through errors.Is
	ErrIllegalMove = errors.New("illegal move")

	// ErrNotation indicates move text that is not a four-character coordinate move
	ErrNotation = errors.New("malformed move notation")

	// ErrNoKing indicates a position without a king for the side being examined
	ErrNoKing = errors.New("king not found")
)

// Reason explains why a move was refused
type Reason int

const (
	ReasonOutOfBounds Reason = iota + 1
	ReasonNoPiece
	ReasonWrongTurn
	ReasonFriendlyCapture
	ReasonBlockedPath
	ReasonBadGeometry
	ReasonSelfCheck
)

func (r Reason) String() string {
	switch r {
	case ReasonOutOfBounds:
		return "square off the board"
	case ReasonNoPiece:
		return "no piece on origin square"
	case ReasonWrongTurn:
		return "piece belongs to the side not on move"
	case ReasonFriendlyCapture:
		return "destination holds a piece of the same color"
	case ReasonBlockedPath:
		return "path is blocked"
	case ReasonBadGeometry:
		return "piece cannot move that way"
	case ReasonSelfCheck:
		return "move leaves own king in check"
	default:
		return "unknown reason"
	}
}

// MoveError reports a rejected move together with the reason
type MoveError struct {
	Move   Move
	Reason Reason
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// ReasonOf extracts the refusal reason from err, or 0 if err is not a move error
func ReasonOf(err error) Reason {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Reason
	}
	return 0
}
