package engine

import (
	"context"
	"math/rand/v2"
	"time"

	"aichess/internal/rules"
)

// Random picks uniformly among the legal moves of the position
type Random struct {
	cfg Config
	rng *rand.Rand
}

func NewRandom(cfg Config) *Random {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Random{
		cfg: cfg.WithDefaults(),
		rng: rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

func (r *Random) Propose(ctx context.Context, req Request) (Proposal, error) {
	if err := ctx.Err(); err != nil {
		return Proposal{}, err
	}

	s, err := rules.FromFEN(req.FEN)
	if err != nil {
		return Proposal{}, err
	}

	moves := rules.LegalMoves(s)
	if len(moves) == 0 {
		return Proposal{IsMate: s.Status == rules.StatusCheckmate}, nil
	}

	return Proposal{Move: moves[r.rng.IntN(len(moves))].String(), Depth: 1}, nil
}

func (r *Random) Close() error {
	return nil
}
