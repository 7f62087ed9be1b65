package core

import (
	"github.com/google/uuid"

	"aichess/internal/board"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

func (t PlayerType) String() string {
	switch t {
	case PlayerHuman:
		return "human"
	case PlayerComputer:
		return "computer"
	default:
		return "unknown"
	}
}

// Player is one side of a game
type Player struct {
	ID         string      `json:"id"`
	Color      board.Color `json:"color"`
	Type       PlayerType  `json:"type"`
	Level      int         `json:"level,omitempty"`      // Only for computer
	SearchTime int         `json:"searchTime,omitempty"` // Only for computer, milliseconds
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Type       PlayerType `json:"type" validate:"required,oneof=1 2"`
	Level      int        `json:"level,omitempty" validate:"omitempty,min=0,max=20"`
	SearchTime int        `json:"searchTime,omitempty" validate:"omitempty,min=100,max=10000"` // Processor sets the min value
}

type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig, color board.Color) *Player {
	player := &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  config.Type,
	}

	if config.Type == PlayerComputer {
		player.Level = config.Level
		player.SearchTime = config.SearchTime
	}

	return player
}
