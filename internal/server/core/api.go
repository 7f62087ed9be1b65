package core

import (
	"aichess/internal/rules"
)

// Request types

type CreateGameRequest struct {
	White  PlayerConfig `json:"white" validate:"required"`
	Black  PlayerConfig `json:"black" validate:"required"`
	FEN    string       `json:"fen,omitempty" validate:"omitempty,max=100"`
	SaveID string       `json:"saveId,omitempty" validate:"omitempty,uuid"`
}

type ConfigurePlayersRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // "cccc" for computer move, otherwise coordinate notation
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

type SaveRequest struct {
	GameID string `json:"gameId" validate:"required,uuid"`
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	FEN      string          `json:"fen"`
	Turn     string          `json:"turn"`   // "white" or "black"
	Status   string          `json:"status"` // position status: ongoing, check, checkmate, stalemate
	State    string          `json:"state"`  // game state: ongoing, pending, stuck, white wins, ...
	Moves    []string        `json:"moves"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"`
	Score       int    `json:"score,omitempty"`
	Depth       int    `json:"depth,omitempty"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type MovesResponse struct {
	From  string   `json:"from,omitempty"`
	Moves []string `json:"moves"`
}

type SuggestionResponse struct {
	Move   string `json:"move"`
	Score  int    `json:"score,omitempty"`
	Depth  int    `json:"depth,omitempty"`
	IsMate bool   `json:"isMate,omitempty"`
	MateIn int    `json:"mateIn,omitempty"`
}

// ExportResponse carries the persisted form of the current position
type ExportResponse struct {
	GameID string          `json:"gameId"`
	State  rules.GameState `json:"state"`
	Moves  []string        `json:"moves"`
}

type SaveResponse struct {
	SaveID  string `json:"saveId"`
	GameID  string `json:"gameId,omitempty"`
	SavedAt string `json:"savedAt"`
}

type SavesResponse struct {
	Saves []SaveResponse `json:"saves"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
