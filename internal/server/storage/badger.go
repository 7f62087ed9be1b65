package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// Key layout
const (
	prefixGame = "game/"
	prefixMove = "move/"
	prefixSave = "save/"
)

// BadgerStore keeps the same records as SQLiteStore in an embedded key-value store.
// Values are JSON; writes are synchronous.
type BadgerStore struct {
	db           *badger.DB
	healthStatus atomic.Bool
}

// NewBadger opens a store in dir. An empty dir opens an in-memory store.
func NewBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	s := &BadgerStore{db: db}
	s.healthStatus.Store(true)
	return s, nil
}

func gameKey(gameID string) []byte {
	return []byte(prefixGame + gameID)
}

// Move numbers are zero padded so keys sort in play order
func moveKey(gameID string, moveNumber int) []byte {
	return []byte(fmt.Sprintf("%s%s/%06d", prefixMove, gameID, moveNumber))
}

func saveKey(saveID string) []byte {
	return []byte(prefixSave + saveID)
}

func (s *BadgerStore) IsHealthy() bool {
	return s.healthStatus.Load()
}

// put marks the store degraded on failure, like the SQLite writer
func (s *BadgerStore) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		s.healthStatus.Store(false)
	}
	return err
}

func (s *BadgerStore) RecordNewGame(record GameRecord) error {
	if !s.healthStatus.Load() {
		return nil
	}
	return s.put(gameKey(record.GameID), record)
}

func (s *BadgerStore) RecordMove(record MoveRecord) error {
	if !s.healthStatus.Load() {
		return nil
	}
	return s.put(moveKey(record.GameID, record.MoveNumber), record)
}

func (s *BadgerStore) DeleteUndoneMoves(gameID string, afterMoveNumber int) error {
	if !s.healthStatus.Load() {
		return nil
	}

	prefix := []byte(prefixMove + gameID + "/")
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			n, err := strconv.Atoi(string(bytes.TrimPrefix(key, prefix)))
			if err != nil {
				return fmt.Errorf("corrupt move key %q", key)
			}
			if n > afterMoveNumber {
				stale = append(stale, key)
			}
		}

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.healthStatus.Store(false)
	}
	return err
}

// scan decodes every value under prefix into a fresh T
func scan[T any](db *badger.DB, prefix []byte) ([]T, error) {
	var out []T
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	all, err := scan[GameRecord](s.db, []byte(prefixGame))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var games []GameRecord
	for _, g := range all {
		if gameID != "" && gameID != "*" && g.GameID != gameID {
			continue
		}
		if playerID != "" && playerID != "*" && g.WhitePlayerID != playerID && g.BlackPlayerID != playerID {
			continue
		}
		games = append(games, g)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartTimeUTC.After(games[j].StartTimeUTC)
	})
	return games, nil
}

func (s *BadgerStore) QueryMoves(gameID string) ([]MoveRecord, error) {
	moves, err := scan[MoveRecord](s.db, []byte(prefixMove+gameID+"/"))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return moves, nil
}

func (s *BadgerStore) SaveGame(save SavedGame) error {
	return s.put(saveKey(save.ID), save)
}

func (s *BadgerStore) LoadGame(saveID string) (SavedGame, error) {
	var save SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(saveKey(saveID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &save)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return SavedGame{}, fmt.Errorf("save %s: %w", saveID, ErrNotFound)
	}
	if err != nil {
		return SavedGame{}, fmt.Errorf("load save: %w", err)
	}
	return save, nil
}

func (s *BadgerStore) ListSaves() ([]SavedGame, error) {
	saves, err := scan[SavedGame](s.db, []byte(prefixSave))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	for i := range saves {
		saves[i].Data = nil
	}
	sort.SliceStable(saves, func(i, j int) bool {
		if saves[i].SavedAt.Equal(saves[j].SavedAt) {
			return strings.Compare(saves[i].ID, saves[j].ID) < 0
		}
		return saves[i].SavedAt.After(saves[j].SavedAt)
	})
	return saves, nil
}

func (s *BadgerStore) DeleteSave(saveID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(saveKey(saveID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("save %s: %w", saveID, ErrNotFound)
			}
			return err
		}
		return txn.Delete(saveKey(saveID))
	})
}

func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
