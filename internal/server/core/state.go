package core

import (
	"fmt"

	"aichess/internal/board"
	"aichess/internal/rules"
)

// State is the game-level lifecycle, a superset of the position status
type State int

const (
	StateOngoing State = iota
	StatePending       // Computer is calculating a move
	StateStuck         // Computer failed or proposed a move the rules refused
	StateWhiteWins
	StateBlackWins
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStuck:
		return "stuck"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateStalemate:
		return "stalemate"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// IsOver is true once no further moves can be made
func (s State) IsOver() bool {
	return s == StateWhiteWins || s == StateBlackWins || s == StateStalemate
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := StateOngoing; st <= StateStalemate; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("invalid game state: %q", text)
}

// StateFor maps a classified position to the game state. The side to move is the loser on checkmate.
func StateFor(s rules.GameState) State {
	switch s.Status {
	case rules.StatusCheckmate:
		if s.CurrentPlayer == board.White {
			return StateBlackWins
		}
		return StateWhiteWins
	case rules.StatusStalemate:
		return StateStalemate
	}
	return StateOngoing
}
