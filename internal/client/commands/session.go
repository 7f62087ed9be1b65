package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"aichess/internal/board"
	"aichess/internal/client/config"
	"aichess/internal/rules"
	"aichess/internal/server/engine"
)

// DefaultProposeTimeout bounds one ai or hint request
const DefaultProposeTimeout = 30 * time.Second

type snapshot struct {
	state    rules.GameState
	move     string // move that led here, empty for the initial position
	fullmove int
}

// Session is a local game: the current position plus every position before it
type Session struct {
	Out io.Writer

	history  []snapshot // last entry is the current position
	cfg      *config.Config
	factory  engine.Factory
	proposer engine.Proposer
}

func NewSession(out io.Writer, cfg *config.Config) *Session {
	s := &Session{
		Out:     out,
		cfg:     cfg,
		factory: newFactory(cfg.Engine),
	}
	s.Reset(rules.New(), 1)
	return s
}

func newFactory(cfg config.EngineConfig) engine.Factory {
	return engine.NewFactory(engine.Config{
		Path:     cfg.Path,
		Level:    cfg.Level,
		MoveTime: cfg.MoveTime(),
	})
}

// Engine returns the engine settings in use
func (s *Session) Engine() config.EngineConfig {
	return s.cfg.Engine
}

// Configure switches to new engine settings. A running engine is stopped and the next
// ai or hint starts one with the new settings.
func (s *Session) Configure(cfg config.EngineConfig) error {
	next := *s.cfg
	next.Engine = cfg
	if err := next.Validate(); err != nil {
		return err
	}

	s.cfg.Engine = cfg
	s.factory = newFactory(cfg)
	return s.Close()
}

// SaveConfig writes the current settings to the user config file
func (s *Session) SaveConfig() error {
	return s.cfg.Save()
}

// Reset starts over from state, dropping the history
func (s *Session) Reset(state rules.GameState, fullmove int) {
	s.history = []snapshot{{state: state, fullmove: fullmove}}
}

func (s *Session) current() snapshot {
	return s.history[len(s.history)-1]
}

// State returns the current position
func (s *Session) State() rules.GameState {
	return s.current().state
}

func (s *Session) FEN() string {
	c := s.current()
	return c.state.FEN(c.fullmove)
}

// Moves lists the moves played since the initial position
func (s *Session) Moves() []string {
	moves := make([]string, 0, len(s.history)-1)
	for _, snap := range s.history[1:] {
		moves = append(moves, snap.move)
	}
	return moves
}

// Play applies coordinate text through the rules; the session is unchanged on error
func (s *Session) Play(text string) (rules.Move, error) {
	c := s.current()
	if c.state.Status.IsTerminal() {
		return rules.Move{}, fmt.Errorf("game is over: %s", c.state.Status)
	}

	next, move, err := rules.ApplyNotation(c.state, text)
	if err != nil {
		return rules.Move{}, err
	}

	fullmove := c.fullmove
	if c.state.CurrentPlayer == board.Black {
		fullmove++
	}
	s.history = append(s.history, snapshot{state: next, move: move.String(), fullmove: fullmove})
	return move, nil
}

// Undo drops the last n positions
func (s *Session) Undo(n int) error {
	if n < 1 {
		return fmt.Errorf("undo count must be positive")
	}
	if n > len(s.history)-1 {
		return fmt.Errorf("cannot undo %d moves, only %d made", n, len(s.history)-1)
	}
	s.history = s.history[:len(s.history)-n]
	return nil
}

// Propose asks the configured engine for a move on the current position
func (s *Session) Propose(ctx context.Context) (engine.Proposal, error) {
	if s.proposer == nil {
		p, err := s.factory()
		if err != nil {
			return engine.Proposal{}, fmt.Errorf("start engine: %w", err)
		}
		s.proposer = p
	}

	return s.proposer.Propose(ctx, engine.Request{
		FEN:      s.FEN(),
		Level:    s.cfg.Engine.Level,
		MoveTime: s.cfg.Engine.MoveTime(),
	})
}

// Close stops the engine if one was started
func (s *Session) Close() error {
	if s.proposer == nil {
		return nil
	}
	err := s.proposer.Close()
	s.proposer = nil
	return err
}
