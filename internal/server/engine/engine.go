// Package engine produces move proposals for computer players. Proposals are plain
// coordinate strings; callers must pass them through the rules before applying them.
package engine

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	DefaultLevel    = 10
	DefaultMoveTime = time.Second
)

// Request describes the position a proposer should move in
type Request struct {
	FEN      string
	Level    int           // 0..20, zero uses Config.Level
	MoveTime time.Duration // zero uses Config.MoveTime
}

// Proposal is a suggested move. An empty Move means the proposer found no move.
type Proposal struct {
	Move   string
	Score  int
	Depth  int
	IsMate bool
	MateIn int
}

// Proposer suggests moves. Implementations are not safe for concurrent use.
type Proposer interface {
	Propose(ctx context.Context, req Request) (Proposal, error)
	Close() error
}

// Config is passed explicitly to every proposer constructor
type Config struct {
	Path     string        // UCI engine binary; empty selects the random proposer
	Level    int           // default skill level
	MoveTime time.Duration // default search time
	Timeout  time.Duration // startup and handshake timeout
	Seed     uint64        // random proposer seed, zero for a time based seed
}

// WithDefaults fills unset fields
func (c Config) WithDefaults() Config {
	if c.Level == 0 {
		c.Level = DefaultLevel
	}
	if c.MoveTime <= 0 {
		c.MoveTime = DefaultMoveTime
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

// resolve applies config defaults to a request
func (c Config) resolve(req Request) (level int, moveTime time.Duration) {
	level, moveTime = req.Level, req.MoveTime
	if level <= 0 {
		level = c.Level
	}
	if level > 20 {
		level = 20
	}
	if moveTime <= 0 {
		moveTime = c.MoveTime
	}
	return level, moveTime
}

// Factory creates one proposer per worker
type Factory func() (Proposer, error)

// NewFactory returns a UCI factory when cfg.Path is set, otherwise a random one
func NewFactory(cfg Config) Factory {
	cfg = cfg.WithDefaults()
	if cfg.Path == "" {
		var n atomic.Uint64
		return func() (Proposer, error) {
			c := cfg
			if c.Seed != 0 {
				c.Seed += n.Add(1)
			}
			return NewRandom(c), nil
		}
	}
	return func() (Proposer, error) {
		return NewUCI(context.Background(), cfg)
	}
}
