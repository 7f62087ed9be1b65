package storage

import "errors"

// ErrNotFound is returned by lookups of saves that do not exist
var ErrNotFound = errors.New("not found")

// Store persists the game audit trail and saved games.
// Record* and DeleteUndoneMoves may be asynchronous and never fail the caller;
// save operations are synchronous.
type Store interface {
	RecordNewGame(record GameRecord) error
	RecordMove(record MoveRecord) error
	DeleteUndoneMoves(gameID string, afterMoveNumber int) error
	QueryGames(gameID, playerID string) ([]GameRecord, error)
	QueryMoves(gameID string) ([]MoveRecord, error)

	SaveGame(save SavedGame) error
	LoadGame(saveID string) (SavedGame, error)
	ListSaves() ([]SavedGame, error)
	DeleteSave(saveID string) error

	IsHealthy() bool
	Close() error
}
