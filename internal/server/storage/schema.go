package storage

import "time"

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID          string    `db:"game_id" json:"gameId"`
	InitialFEN      string    `db:"initial_fen" json:"initialFen"`
	WhitePlayerID   string    `db:"white_player_id" json:"whitePlayerId"`
	WhiteType       int       `db:"white_type" json:"whiteType"`
	WhiteLevel      int       `db:"white_level" json:"whiteLevel"`
	WhiteSearchTime int       `db:"white_search_time" json:"whiteSearchTime"`
	BlackPlayerID   string    `db:"black_player_id" json:"blackPlayerId"`
	BlackType       int       `db:"black_type" json:"blackType"`
	BlackLevel      int       `db:"black_level" json:"blackLevel"`
	BlackSearchTime int       `db:"black_search_time" json:"blackSearchTime"`
	StartTimeUTC    time.Time `db:"start_time_utc" json:"startTimeUtc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id" json:"moveId,omitempty"`
	GameID       string    `db:"game_id" json:"gameId"`
	MoveNumber   int       `db:"move_number" json:"moveNumber"`
	Move         string    `db:"move" json:"move"`
	FENAfterMove string    `db:"fen_after_move" json:"fenAfterMove"`
	PlayerColor  string    `db:"player_color" json:"playerColor"` // "w" or "b"
	MoveTimeUTC  time.Time `db:"move_time_utc" json:"moveTimeUtc"`
}

// SavedGame is an opaque game document stored under its own id
type SavedGame struct {
	ID      string    `db:"save_id" json:"id"`
	GameID  string    `db:"game_id" json:"gameId"`
	SavedAt time.Time `db:"saved_at" json:"savedAt"`
	Data    []byte    `db:"data" json:"data"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	white_player_id TEXT NOT NULL,
	white_type INTEGER NOT NULL,
	white_level INTEGER NOT NULL DEFAULT 0,
	white_search_time INTEGER NOT NULL DEFAULT 1000,
	black_player_id TEXT NOT NULL,
	black_type INTEGER NOT NULL,
	black_level INTEGER NOT NULL DEFAULT 0,
	black_search_time INTEGER NOT NULL DEFAULT 1000,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE TABLE IF NOT EXISTS saves (
	save_id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	data BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player_id);
CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
`
