package rules

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aichess/internal/board"
)

func play(t *testing.T, s GameState, moves ...string) GameState {
	t.Helper()
	for _, text := range moves {
		next, _, err := ApplyNotation(s, text)
		require.NoError(t, err, "move %s", text)
		s = next
	}
	return s
}

func TestApplyMoveOpening(t *testing.T) {
	start := New()
	next, err := ApplyMove(start, sq(t, "e2"), sq(t, "e4"))
	require.NoError(t, err)

	assert.Equal(t, board.Black, next.CurrentPlayer)
	assert.Equal(t, StatusOngoing, next.Status)
	assert.Equal(t, board.Piece{Kind: board.Pawn, Color: board.White}, next.Board.At(sq(t, "e4")))
	assert.True(t, next.Board.At(sq(t, "e2")).IsEmpty())

	// The input is untouched
	assert.Equal(t, New(), start)
}

func TestApplyMoveBackwardFromStart(t *testing.T) {
	start := New()
	got, err := ApplyMove(start, board.Square{Row: 6, Col: 4}, board.Square{Row: 7, Col: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, start, got)
	assert.Equal(t, New(), got)
}

func TestApplyMoveRejection(t *testing.T) {
	tests := []struct {
		name   string
		state  GameState
		move   string
		reason Reason
	}{
		{"backward pawn", play(t, New(), "e2e4", "e7e5"), "e4e3", ReasonBadGeometry},
		{"wrong turn", New(), "e7e5", ReasonWrongTurn},
		{"empty square", New(), "e3e4", ReasonNoPiece},
		{"own piece", New(), "a1a2", ReasonFriendlyCapture},
		{"pinned bishop", mustFEN(t, "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1"), "e2d3", ReasonSelfCheck},
		{"king into attack", mustFEN(t, "4k3/8/8/8/8/8/3r4/4K3 w - - 0 1"), "e1e2", ReasonSelfCheck},
		{"ignoring check", play(t, New(), "e2e4", "f7f6", "d1h5"), "a7a6", ReasonSelfCheck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state
			got, _, err := ApplyNotation(tt.state, tt.move)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIllegalMove)
			assert.Equal(t, tt.reason, ReasonOf(err))
			assert.Equal(t, before, got)
		})
	}
}

func TestApplyNotationMalformed(t *testing.T) {
	start := New()
	for _, text := range []string{"", "e2", "e2e4e5", "z9e4", "e2-e4", "e7e8q"} {
		t.Run(text, func(t *testing.T) {
			got, _, err := ApplyNotation(start, text)
			assert.ErrorIs(t, err, ErrNotation)
			assert.NotErrorIs(t, err, ErrIllegalMove)
			assert.Equal(t, start, got)
		})
	}
}

func TestFoolsMate(t *testing.T) {
	s := play(t, New(), "f2f3", "e7e5", "g2g4", "d8h4")
	assert.Equal(t, StatusCheckmate, s.Status)
	assert.Equal(t, board.White, s.CurrentPlayer)

	// Nothing white can do escapes
	assert.Empty(t, LegalMoves(s))
}

func TestCheckThenBlock(t *testing.T) {
	s := play(t, New(), "e2e4", "f7f6", "d1h5")
	assert.Equal(t, StatusCheck, s.Status)
	assert.Equal(t, board.Black, s.CurrentPlayer)

	s = play(t, s, "g7g6")
	assert.Equal(t, StatusOngoing, s.Status)
	assert.Equal(t, board.White, s.CurrentPlayer)
}

func TestStalemateByMove(t *testing.T) {
	s := mustFEN(t, "k7/8/8/2Q5/8/8/8/7K w - - 0 1")
	s = play(t, s, "c5b6")
	assert.Equal(t, StatusStalemate, s.Status)
	assert.Equal(t, board.Black, s.CurrentPlayer)
}

func TestCapture(t *testing.T) {
	s := play(t, New(), "e2e4", "d7d5", "e4d5")
	assert.Equal(t, board.Piece{Kind: board.Pawn, Color: board.White}, s.Board.At(sq(t, "d5")))

	count := 0
	for _, square := range board.Squares() {
		if p := s.Board.At(square); !p.IsEmpty() && p.Color == board.Black {
			count++
		}
	}
	assert.Equal(t, 15, count)
}

func TestStateJSONRoundTrip(t *testing.T) {
	s := play(t, New(), "e2e4", "f7f6", "d1h5")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"black"`, string(raw["currentPlayer"]))
	assert.JSONEq(t, `"check"`, string(raw["status"]))

	var decoded GameState
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(s, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// The decoded state keeps playing
	next := play(t, decoded, "g7g6")
	assert.Equal(t, StatusOngoing, next.Status)
}

func TestStateJSONRejectsBadPositions(t *testing.T) {
	noBlackKing, _, err := board.ParseFEN("8/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	data, err := json.Marshal(GameState{Board: noBlackKing, CurrentPlayer: board.White})
	require.NoError(t, err)

	var decoded GameState
	err = json.Unmarshal(data, &decoded)
	assert.ErrorIs(t, err, board.ErrInvalidBoard)

	// White to move while the black king already stands in check
	exposed, _, err := board.ParseFEN("4k3/8/8/8/8/8/8/4RK2 w - - 0 1")
	require.NoError(t, err)
	data, err = json.Marshal(GameState{Board: exposed, CurrentPlayer: board.White, Status: StatusOngoing})
	require.NoError(t, err)
	assert.ErrorIs(t, json.Unmarshal(data, &decoded), board.ErrInvalidBoard)

	tests := map[string]string{
		"bad status":     `{"board":null,"currentPlayer":"white","status":"won"}`,
		"bad color":      `{"currentPlayer":"red","status":"ongoing"}`,
		"missing player": `{"status":"ongoing"}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			var s GameState
			assert.Error(t, json.Unmarshal([]byte(doc), &s))
		})
	}
}

func TestFromFEN(t *testing.T) {
	s, err := FromFEN(board.StartingFEN)
	require.NoError(t, err)
	assert.Equal(t, New(), s)

	_, err = FromFEN("8/8/8/8/8/8/8/8 w - - 0 1")
	assert.ErrorIs(t, err, board.ErrInvalidBoard)

	_, err = FromFEN("not a fen")
	assert.Error(t, err)

	for _, fen := range []string{
		"4k3/8/8/8/8/8/8/4RK2 w - - 0 1",
		"rnbqkbnr/ppppp1pp/5p2/7Q/4P3/8/PPPP1PPP/RNB1KBNR w - - 0 2",
	} {
		_, err = FromFEN(fen)
		assert.ErrorIs(t, err, board.ErrInvalidBoard, fen)
	}

	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", New().FEN(1))
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		wantErr bool
	}{
		{"e2e4", "e2e4", false},
		{"  G1F3 ", "g1f3", false},
		{"a8h1", "a8h1", false},
		{"e2e9", "", true},
		{"e2\x00e4", "", true},
		{"e7e8q", "", true},
		{"e2 e4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, err := ParseMove(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestStatusText(t *testing.T) {
	for _, st := range []Status{StatusOngoing, StatusCheck, StatusCheckmate, StatusStalemate} {
		text, err := st.MarshalText()
		require.NoError(t, err)

		var back Status
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, st, back)
	}
	assert.True(t, StatusCheckmate.IsTerminal())
	assert.False(t, StatusCheck.IsTerminal())
}
