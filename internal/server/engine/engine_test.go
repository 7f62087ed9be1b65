package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aichess/internal/board"
	"aichess/internal/rules"
)

func TestRandomProposesLegalMoves(t *testing.T) {
	r := NewRandom(Config{Seed: 42})
	defer r.Close()

	s := rules.New()
	for i := 0; i < 20 && !s.Status.IsTerminal(); i++ {
		p, err := r.Propose(context.Background(), Request{FEN: s.FEN(i/2 + 1)})
		require.NoError(t, err)
		require.NotEmpty(t, p.Move)

		next, _, err := rules.ApplyNotation(s, p.Move)
		require.NoError(t, err, "proposal %s", p.Move)
		s = next
	}
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	a := NewRandom(Config{Seed: 7})
	b := NewRandom(Config{Seed: 7})

	for i := 0; i < 5; i++ {
		pa, err := a.Propose(context.Background(), Request{FEN: board.StartingFEN})
		require.NoError(t, err)
		pb, err := b.Propose(context.Background(), Request{FEN: board.StartingFEN})
		require.NoError(t, err)
		assert.Equal(t, pa.Move, pb.Move)
	}
}

func TestRandomNoMoves(t *testing.T) {
	r := NewRandom(Config{Seed: 1})

	p, err := r.Propose(context.Background(), Request{FEN: "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 0 3"})
	require.NoError(t, err)
	assert.Empty(t, p.Move)
	assert.True(t, p.IsMate)

	p, err = r.Propose(context.Background(), Request{FEN: "k7/8/1Q6/8/8/8/8/7K b - - 0 1"})
	require.NoError(t, err)
	assert.Empty(t, p.Move)
	assert.False(t, p.IsMate)

	_, err = r.Propose(context.Background(), Request{FEN: "8/8/8/8/8/8/8/8 w - - 0 1"})
	assert.ErrorIs(t, err, board.ErrInvalidBoard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Propose(ctx, Request{FEN: board.StartingFEN})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigResolve(t *testing.T) {
	cfg := Config{Level: 5, MoveTime: 300 * time.Millisecond}.WithDefaults()

	level, moveTime := cfg.resolve(Request{})
	assert.Equal(t, 5, level)
	assert.Equal(t, 300*time.Millisecond, moveTime)

	level, moveTime = cfg.resolve(Request{Level: 25, MoveTime: time.Second})
	assert.Equal(t, 20, level)
	assert.Equal(t, time.Second, moveTime)

	assert.Equal(t, DefaultLevel, Config{}.WithDefaults().Level)
}

func TestFactorySelectsRandomWithoutPath(t *testing.T) {
	p, err := NewFactory(Config{Seed: 3})()
	require.NoError(t, err)
	defer p.Close()
	assert.IsType(t, &Random{}, p)
}

func TestParseInfo(t *testing.T) {
	var p Proposal
	parseInfo("info depth 12 seldepth 18 score cp -35 nodes 1000 pv e7e5", &p)
	assert.Equal(t, 12, p.Depth)
	assert.Equal(t, -35, p.Score)
	assert.False(t, p.IsMate)

	parseInfo("info depth 14 score mate 3 pv d8h4", &p)
	assert.True(t, p.IsMate)
	assert.Equal(t, 3, p.MateIn)
	assert.Equal(t, 100000-3, p.Score)
}

// fakeEngine writes a shell script that speaks just enough UCI
func fakeEngine(t *testing.T, bestmove string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine needs a POSIX shell")
	}

	script := `#!/bin/sh
while read -r line; do
  case "$line" in
    uci) echo "id name fake"; echo "uciok" ;;
    isready) echo "readyok" ;;
    go*) echo "info depth 7 score cp 25 pv ` + bestmove + `"; echo "bestmove ` + bestmove + `" ;;
    quit) exit 0 ;;
  esac
done
`
	path := filepath.Join(t.TempDir(), "fake-uci")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestUCIAgainstFakeEngine(t *testing.T) {
	path := fakeEngine(t, "e2e4")

	u, err := NewUCI(context.Background(), Config{Path: path, MoveTime: 100 * time.Millisecond})
	require.NoError(t, err)
	defer u.Close()

	p, err := u.Propose(context.Background(), Request{FEN: board.StartingFEN, Level: 3})
	require.NoError(t, err)
	assert.Equal(t, "e2e4", p.Move)
	assert.Equal(t, 7, p.Depth)
	assert.Equal(t, 25, p.Score)

	// Second search on the same process
	p, err = u.Propose(context.Background(), Request{FEN: board.StartingFEN})
	require.NoError(t, err)
	assert.Equal(t, "e2e4", p.Move)

	_, err = u.Propose(context.Background(), Request{FEN: "8/8 w\nquit"})
	assert.Error(t, err)
}

func TestUCIMissingBinary(t *testing.T) {
	_, err := NewUCI(context.Background(), Config{Path: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
