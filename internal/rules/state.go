// Package rules decides move legality, applies moves and classifies positions.
//
// Every function is pure: a GameState is a value, and a successful move yields a new one
// while the input stays as it was. Castling, en passant and promotion are not modeled.
package rules

import (
	"encoding/json"
	"fmt"

	"aichess/internal/board"
)

// Status describes a position from the perspective of the side to move
type Status int

const (
	StatusOngoing Status = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
)

var statusNames = [...]string{"ongoing", "check", "checkmate", "stalemate"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsTerminal is true for checkmate and stalemate
func (s Status) IsTerminal() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status: %d", s)
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("invalid status: %q", text)
}

// GameState is the externally visible snapshot of a game
type GameState struct {
	Board         board.Board `json:"board"`
	CurrentPlayer board.Color `json:"currentPlayer"`
	Status        Status      `json:"status"`
}

// New returns the standard starting position with white to move
func New() GameState {
	return GameState{
		Board:         board.Standard(),
		CurrentPlayer: board.White,
		Status:        StatusOngoing,
	}
}

// FromFEN builds a state from a FEN position and classifies it
func FromFEN(fen string) (GameState, error) {
	b, turn, err := board.ParseFEN(fen)
	if err != nil {
		return GameState{}, err
	}
	s := GameState{Board: b, CurrentPlayer: turn}
	if s.Status, err = Classify(s); err != nil {
		return GameState{}, err
	}
	return s, nil
}

// FEN renders the position for external engines
func (s GameState) FEN(fullmove int) string {
	return s.Board.FormatFEN(s.CurrentPlayer, fullmove)
}

// UnmarshalJSON decodes the persisted form and refuses impossible positions
func (s *GameState) UnmarshalJSON(data []byte) error {
	type plain GameState
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.CurrentPlayer == 0 {
		return fmt.Errorf("decode state: currentPlayer is required")
	}
	if err := ValidatePosition(GameState(decoded)); err != nil {
		return err
	}
	*s = GameState(decoded)
	return nil
}
