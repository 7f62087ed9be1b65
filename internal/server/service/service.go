package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"aichess/internal/board"
	"aichess/internal/rules"
	"aichess/internal/server/core"
	"aichess/internal/server/game"
	"aichess/internal/server/storage"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrStorageDisabled = errors.New("storage disabled")
)

// Service owns the in-memory game registry with optional persistence
type Service struct {
	games  map[string]*game.Game
	mu     sync.RWMutex
	store  storage.Store // nil if persistence disabled
	waiter *WaitRegistry
}

// New creates a service; store may be nil
func New(store storage.Store) *Service {
	return &Service{
		games:  make(map[string]*game.Game),
		store:  store,
		waiter: NewWaitRegistry(WaitTimeout),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// RegisterWait registers a client to wait for game state changes
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// CreateGame registers a new game starting at initial
func (s *Service) CreateGame(id string, whitePlayer, blackPlayer *core.Player, initial rules.GameState) error {
	return s.AddGame(id, game.New(initial, whitePlayer, blackPlayer))
}

// AddGame registers an already built game, such as one restored from a save
func (s *Service) AddGame(id string, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}
	s.games[id] = g

	if s.store != nil {
		white, black := g.GetPlayer(board.White), g.GetPlayer(board.Black)
		err := s.store.RecordNewGame(storage.GameRecord{
			GameID:          id,
			InitialFEN:      g.InitialState().FEN(1),
			WhitePlayerID:   white.ID,
			WhiteType:       int(white.Type),
			WhiteLevel:      white.Level,
			WhiteSearchTime: white.SearchTime,
			BlackPlayerID:   black.ID,
			BlackType:       int(black.Type),
			BlackLevel:      black.Level,
			BlackSearchTime: black.SearchTime,
			StartTimeUTC:    time.Now().UTC(),
		})
		logAudit("record game "+id, err)
	}

	return nil
}

// View runs fn with read access to a game. fn must not retain g.
func (s *Service) View(gameID string, fn func(g *game.Game)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	fn(g)
	return nil
}

// update runs fn with write access to a game
func (s *Service) update(gameID string, fn func(g *game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return fn(g)
}

// UpdatePlayers replaces players in an existing game
func (s *Service) UpdatePlayers(gameID string, whitePlayer, blackPlayer *core.Player) error {
	return s.update(gameID, func(g *game.Game) error {
		g.UpdatePlayers(whitePlayer, blackPlayer)
		return nil
	})
}

// ApplyMove plays coordinate text on the game's current position. Rules errors are returned
// as is and leave the game untouched.
func (s *Service) ApplyMove(gameID, text string) (rules.GameState, rules.Move, error) {
	var (
		next rules.GameState
		move rules.Move
	)

	err := s.update(gameID, func(g *game.Game) error {
		mover := g.NextTurnColor()

		var err error
		next, move, err = rules.ApplyNotation(g.Current(), text)
		if err != nil {
			return err
		}

		g.AddSnapshot(next, move.String())
		g.SetState(core.StateFor(next))
		moveCount := len(g.Moves())

		s.waiter.NotifyGame(gameID, moveCount)

		if s.store != nil {
			err := s.store.RecordMove(storage.MoveRecord{
				GameID:       gameID,
				MoveNumber:   moveCount,
				Move:         move.String(),
				FENAfterMove: g.CurrentFEN(),
				PlayerColor:  mover.String()[:1],
				MoveTimeUTC:  time.Now().UTC(),
			})
			logAudit(fmt.Sprintf("record move %d of %s", moveCount, gameID), err)
		}
		return nil
	})

	return next, move, err
}

// UpdateGameState sets the game-level state (pending, stuck, ...)
func (s *Service) UpdateGameState(gameID string, state core.State) error {
	return s.update(gameID, func(g *game.Game) error {
		g.SetState(state)
		if state != core.StatePending {
			s.waiter.NotifyGame(gameID, -1)
		}
		return nil
	})
}

// SetLastMoveResult stores metadata about the last move
func (s *Service) SetLastMoveResult(gameID string, result *game.MoveResult) error {
	return s.update(gameID, func(g *game.Game) error {
		g.SetLastResult(result)
		return nil
	})
}

// UndoMoves removes the specified number of moves from game history
func (s *Service) UndoMoves(gameID string, count int) error {
	return s.update(gameID, func(g *game.Game) error {
		if err := g.UndoMoves(count); err != nil {
			return err
		}

		remaining := len(g.Moves())
		s.waiter.NotifyGame(gameID, remaining)

		if s.store != nil {
			logAudit("delete undone moves of "+gameID, s.store.DeleteUndoneMoves(gameID, remaining))
		}
		return nil
	})
}

// DeleteGame removes a game from memory
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)
	return nil
}

// GameCount returns the number of live games
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Shutdown wakes waiters, drops games and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Game)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		log.Printf("Storage closed")
	}

	return errors.Join(errs...)
}

// logAudit reports a failed audit write; the game itself carries on
func logAudit(what string, err error) {
	if err != nil {
		log.Printf("Storage: %s failed: %v", what, err)
	}
}
