package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aichess/internal/server/core"
	"aichess/internal/server/game"
	"aichess/internal/server/storage"
)

// SaveGame stores the full history of a live game under a new save id
func (s *Service) SaveGame(gameID string) (storage.SavedGame, error) {
	if s.store == nil {
		return storage.SavedGame{}, ErrStorageDisabled
	}

	var (
		data []byte
		err  error
	)
	if verr := s.View(gameID, func(g *game.Game) {
		if g.State() == core.StatePending {
			err = fmt.Errorf("cannot save while computer move is in progress")
			return
		}
		data, err = json.Marshal(g)
	}); verr != nil {
		return storage.SavedGame{}, verr
	}
	if err != nil {
		return storage.SavedGame{}, err
	}

	save := storage.SavedGame{
		ID:      uuid.New().String(),
		GameID:  gameID,
		SavedAt: time.Now().UTC(),
		Data:    data,
	}
	if err := s.store.SaveGame(save); err != nil {
		return storage.SavedGame{}, fmt.Errorf("save game: %w", err)
	}
	return save, nil
}

// LoadGame restores a saved game into the registry under a fresh game id
func (s *Service) LoadGame(saveID string) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}

	save, err := s.store.LoadGame(saveID)
	if err != nil {
		return "", err
	}

	g, err := game.Restore(save.Data)
	if err != nil {
		return "", err
	}

	gameID := s.GenerateGameID()
	if err := s.AddGame(gameID, g); err != nil {
		return "", err
	}
	return gameID, nil
}

func (s *Service) ListSaves() ([]storage.SavedGame, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.ListSaves()
}

func (s *Service) DeleteSave(saveID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.DeleteSave(saveID)
}

// QueryGames exposes the audit trail
func (s *Service) QueryGames(gameID, playerID string) ([]storage.GameRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.QueryGames(gameID, playerID)
}
