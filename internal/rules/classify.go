package rules

import (
	"fmt"

	"aichess/internal/board"
)

// IsCheckmate reports whether the side to move is in check with no move that escapes it
func IsCheckmate(s GameState) (bool, error) {
	inCheck, err := IsKingInCheck(s.Board, s.CurrentPlayer)
	if err != nil || !inCheck {
		return false, err
	}
	canMove, err := hasSafeMove(s)
	if err != nil {
		return false, err
	}
	return !canMove, nil
}

// IsStalemate reports whether the side to move is not in check and has no move that keeps
// its king safe. The same filtered enumeration as IsCheckmate is used.
func IsStalemate(s GameState) (bool, error) {
	inCheck, err := IsKingInCheck(s.Board, s.CurrentPlayer)
	if err != nil || inCheck {
		return false, err
	}
	canMove, err := hasSafeMove(s)
	if err != nil {
		return false, err
	}
	return !canMove, nil
}

// Classify returns the status of a position from the perspective of the side to move
func Classify(s GameState) (Status, error) {
	if err := ValidatePosition(s); err != nil {
		return StatusOngoing, err
	}

	inCheck, err := IsKingInCheck(s.Board, s.CurrentPlayer)
	if err != nil {
		return StatusOngoing, err
	}
	canMove, err := hasSafeMove(s)
	if err != nil {
		return StatusOngoing, err
	}

	switch {
	case inCheck && !canMove:
		return StatusCheckmate, nil
	case inCheck:
		return StatusCheck, nil
	case !canMove:
		return StatusStalemate, nil
	}
	return StatusOngoing, nil
}

// ValidatePosition checks the one-king invariant and that the side which just moved did not
// leave its king attacked. Both failures wrap board.ErrInvalidBoard.
func ValidatePosition(s GameState) error {
	if err := s.Board.Validate(); err != nil {
		return err
	}
	idle := s.CurrentPlayer.Opposite()
	attacked, err := IsKingInCheck(s.Board, idle)
	if err != nil {
		return err
	}
	if attacked {
		return fmt.Errorf("%w: %s king is attacked with %s to move", board.ErrInvalidBoard, idle, s.CurrentPlayer)
	}
	return nil
}

// LegalMoves lists every move of the side to move that passes the validator and does not
// leave its own king in check, in row-major order of origin then destination
func LegalMoves(s GameState) []Move {
	var moves []Move
	forEachSafeMove(s, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves
}

// Destinations lists the squares the piece on from can legally reach
func Destinations(s GameState, from board.Square) []board.Square {
	var squares []board.Square
	if !from.Valid() {
		return squares
	}
	for _, to := range board.Squares() {
		if safe, _ := isSafeMove(s, from, to); safe {
			squares = append(squares, to)
		}
	}
	return squares
}

func hasSafeMove(s GameState) (bool, error) {
	found := false
	err := forEachSafeMove(s, func(Move) bool {
		found = true
		return false
	})
	return found, err
}

// forEachSafeMove enumerates all 64x64 candidate pairs; fn returns false to stop early
func forEachSafeMove(s GameState, fn func(Move) bool) error {
	squares := board.Squares()
	for _, from := range squares {
		if p := s.Board.At(from); p.IsEmpty() || p.Color != s.CurrentPlayer {
			continue
		}
		for _, to := range squares {
			safe, err := isSafeMove(s, from, to)
			if err != nil {
				return err
			}
			if safe && !fn(Move{from, to}) {
				return nil
			}
		}
	}
	return nil
}

// isSafeMove applies the validator, then plays the move on a scratch board and checks
// the mover's king
func isSafeMove(s GameState, from, to board.Square) (bool, error) {
	if validate(&s.Board, s.CurrentPlayer, from, to) != 0 {
		return false, nil
	}
	inCheck, err := IsKingInCheck(s.Board.Move(from, to), s.CurrentPlayer)
	if err != nil {
		return false, err
	}
	return !inCheck, nil
}
