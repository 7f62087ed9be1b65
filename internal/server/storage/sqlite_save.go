package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// SaveGame writes or replaces a saved game
func (s *SQLiteStore) SaveGame(save SavedGame) error {
	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO saves (save_id, game_id, saved_at, data) VALUES (?, ?, ?, ?)
			ON CONFLICT(save_id) DO UPDATE SET game_id = excluded.game_id,
				saved_at = excluded.saved_at, data = excluded.data`,
			save.ID, save.GameID, save.SavedAt, save.Data)
		return err
	})
}

func (s *SQLiteStore) LoadGame(saveID string) (SavedGame, error) {
	var save SavedGame
	err := s.db.QueryRow(`SELECT save_id, game_id, saved_at, data FROM saves WHERE save_id = ?`, saveID).
		Scan(&save.ID, &save.GameID, &save.SavedAt, &save.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedGame{}, fmt.Errorf("save %s: %w", saveID, ErrNotFound)
	}
	if err != nil {
		return SavedGame{}, fmt.Errorf("load save: %w", err)
	}
	return save, nil
}

// ListSaves returns save metadata, newest first, without the documents
func (s *SQLiteStore) ListSaves() ([]SavedGame, error) {
	rows, err := s.db.Query(`SELECT save_id, game_id, saved_at FROM saves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var saves []SavedGame
	for rows.Next() {
		var save SavedGame
		if err := rows.Scan(&save.ID, &save.GameID, &save.SavedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		saves = append(saves, save)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return saves, nil
}

func (s *SQLiteStore) DeleteSave(saveID string) error {
	res, err := s.db.Exec(`DELETE FROM saves WHERE save_id = ?`, saveID)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save %s: %w", saveID, ErrNotFound)
	}
	return nil
}
