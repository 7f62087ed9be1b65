package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aichess/internal/board"
)

func sq(t *testing.T, name string) board.Square {
	t.Helper()
	s, err := board.ParseSquare(name)
	require.NoError(t, err)
	return s
}

func mustFEN(t *testing.T, fen string) GameState {
	t.Helper()
	s, err := FromFEN(fen)
	require.NoError(t, err)
	return s
}

func TestCheckMove(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		move   string
		reason Reason
	}{
		{"pawn single", board.StartingFEN, "e2e3", 0},
		{"pawn double", board.StartingFEN, "e2e4", 0},
		{"pawn backward", "4k3/8/8/8/4P3/8/8/4K3 w - - 0 1", "e4e3", ReasonBadGeometry},
		{"pawn double off start", "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1", "e3e5", ReasonBadGeometry},
		{"pawn double blocked", "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1", "e2e4", ReasonBlockedPath},
		{"pawn forward onto piece", "4k3/8/8/8/4p3/4P3/8/4K3 w - - 0 1", "e3e4", ReasonBlockedPath},
		{"pawn diagonal onto empty", board.StartingFEN, "e2d3", ReasonBadGeometry},
		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4d5", 0},
		{"black pawn direction", "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1", "e7e5", 0},
		{"black pawn backward", "4k3/8/4p3/8/8/8/8/4K3 b - - 0 1", "e6e7", ReasonBadGeometry},
		{"knight jumps", board.StartingFEN, "g1f3", 0},
		{"knight bad shape", board.StartingFEN, "g1g3", ReasonBadGeometry},
		{"rook blocked", board.StartingFEN, "a1a3", ReasonBlockedPath},
		{"rook open file", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", 0},
		{"rook diagonal", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1b2", ReasonBadGeometry},
		{"bishop blocked", board.StartingFEN, "c1e3", ReasonBlockedPath},
		{"bishop diagonal", "4k3/8/8/8/8/8/8/2B1K3 w - - 0 1", "c1h6", 0},
		{"queen straight", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1d7", 0},
		{"queen diagonal", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1a4", 0},
		{"queen knight shape", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1e3", ReasonBadGeometry},
		{"king one step", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "e1d2", 0},
		{"king two steps", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "e1g1", ReasonBadGeometry},
		{"friendly capture", board.StartingFEN, "d1d2", ReasonFriendlyCapture},
		{"empty origin", board.StartingFEN, "e4e5", ReasonNoPiece},
		{"wrong turn", board.StartingFEN, "e7e5", ReasonWrongTurn},
		{"null move", board.StartingFEN, "g1g1", ReasonFriendlyCapture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustFEN(t, tt.fen)
			m, err := ParseMove(tt.move)
			require.NoError(t, err)

			err = CheckMove(s, m.From, m.To)
			assert.Equal(t, tt.reason, ReasonOf(err))
			assert.Equal(t, tt.reason == 0, IsLegalMove(s, m.From, m.To))
			if tt.reason != 0 {
				assert.ErrorIs(t, err, ErrIllegalMove)
			}
		})
	}
}

func TestCheckMoveOutOfBounds(t *testing.T) {
	s := New()
	from := board.Square{Row: 6, Col: 4}

	for _, to := range []board.Square{{Row: -1, Col: 4}, {Row: 8, Col: 0}, {Row: 3, Col: 9}} {
		assert.Equal(t, ReasonOutOfBounds, ReasonOf(CheckMove(s, from, to)))
		assert.False(t, IsLegalMove(s, from, to))
	}
	assert.False(t, IsLegalMove(s, board.Square{Row: 9, Col: 9}, from))
}

// A pinned piece still passes the geometry check; self-check is refused by ApplyMove
func TestIsLegalMoveIgnoresPins(t *testing.T) {
	s := mustFEN(t, "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")
	assert.True(t, IsLegalMove(s, sq(t, "e2"), sq(t, "d3")))
}
