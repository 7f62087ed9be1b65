package rules

import (
	"fmt"

	"aichess/internal/board"
)

// ApplyMove plays from->to and returns the resulting state. On refusal the input state is
// returned unchanged together with the error, which is a *MoveError for illegal moves.
// A move that leaves the mover's own king attacked is refused with ReasonSelfCheck.
func ApplyMove(s GameState, from, to board.Square) (GameState, error) {
	if err := CheckMove(s, from, to); err != nil {
		return s, err
	}

	next := s.Board.Move(from, to)

	exposed, err := IsKingInCheck(next, s.CurrentPlayer)
	if err != nil {
		return s, err
	}
	if exposed {
		return s, &MoveError{Move: Move{from, to}, Reason: ReasonSelfCheck}
	}

	result := GameState{
		Board:         next,
		CurrentPlayer: s.CurrentPlayer.Opposite(),
	}
	if result.Status, err = Classify(result); err != nil {
		return s, fmt.Errorf("classify position after %s: %w", Move{from, to}, err)
	}

	return result, nil
}

// Apply is ApplyMove for a parsed Move
func Apply(s GameState, m Move) (GameState, error) {
	return ApplyMove(s, m.From, m.To)
}

// ApplyNotation parses coordinate text and applies it. Human and engine moves both enter here.
func ApplyNotation(s GameState, text string) (GameState, Move, error) {
	m, err := ParseMove(text)
	if err != nil {
		return s, Move{}, err
	}
	next, err := Apply(s, m)
	return next, m, err
}
