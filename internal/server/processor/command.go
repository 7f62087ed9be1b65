package processor

import (
	"aichess/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdConfigurePlayers
	CmdGetGame
	CmdDeleteGame
	CmdMakeMove
	CmdUndoMove
	CmdGetBoard
	CmdLegalMoves
	CmdSuggestMove
	CmdExportGame
	CmdSaveGame
	CmdListSaves
	CmdDeleteSave
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	GameID string // For game-specific commands
	Args   any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending,omitempty"` // For async operations
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

// LegalMovesArgs selects the origin square; empty lists every move
type LegalMovesArgs struct {
	From string
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{Type: CmdCreateGame, Args: req}
}

func NewConfigurePlayersCommand(gameID string, req core.ConfigurePlayersRequest) Command {
	return Command{Type: CmdConfigurePlayers, GameID: gameID, Args: req}
}

func NewGetGameCommand(gameID string) Command {
	return Command{Type: CmdGetGame, GameID: gameID}
}

func NewMakeMoveCommand(gameID string, req core.MoveRequest) Command {
	return Command{Type: CmdMakeMove, GameID: gameID, Args: req}
}

func NewUndoMoveCommand(gameID string, req core.UndoRequest) Command {
	return Command{Type: CmdUndoMove, GameID: gameID, Args: req}
}

func NewDeleteGameCommand(gameID string) Command {
	return Command{Type: CmdDeleteGame, GameID: gameID}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{Type: CmdGetBoard, GameID: gameID}
}

func NewLegalMovesCommand(gameID, from string) Command {
	return Command{Type: CmdLegalMoves, GameID: gameID, Args: LegalMovesArgs{From: from}}
}

func NewSuggestMoveCommand(gameID string) Command {
	return Command{Type: CmdSuggestMove, GameID: gameID}
}

func NewExportGameCommand(gameID string) Command {
	return Command{Type: CmdExportGame, GameID: gameID}
}

func NewSaveGameCommand(req core.SaveRequest) Command {
	return Command{Type: CmdSaveGame, GameID: req.GameID, Args: req}
}

func NewListSavesCommand() Command {
	return Command{Type: CmdListSaves}
}

func NewDeleteSaveCommand(saveID string) Command {
	return Command{Type: CmdDeleteSave, Args: saveID}
}
