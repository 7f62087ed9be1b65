package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aichess/internal/server/core"
	"aichess/internal/server/engine"
	"aichess/internal/server/service"
	"aichess/internal/server/storage"
)

// scripted proposes a fixed move regardless of the position
type scripted struct {
	move string
	err  error
}

func (s scripted) Propose(ctx context.Context, req engine.Request) (engine.Proposal, error) {
	return engine.Proposal{Move: s.move, Depth: 3, Score: 12}, s.err
}

func (s scripted) Close() error { return nil }

func scriptedFactory(move string, err error) engine.Factory {
	return func() (engine.Proposer, error) { return scripted{move: move, err: err}, nil }
}

func newProcessor(t *testing.T, factory engine.Factory) *Processor {
	t.Helper()
	store, err := storage.NewBadger("")
	require.NoError(t, err)

	svc := service.New(store)
	p := New(svc, factory, 1)
	t.Cleanup(func() {
		p.Close()
		svc.Shutdown(time.Second)
	})
	return p
}

var (
	human    = core.PlayerConfig{Type: core.PlayerHuman}
	computer = core.PlayerConfig{Type: core.PlayerComputer, Level: 1, SearchTime: 100}
)

func create(t *testing.T, p *Processor, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(req))
	require.True(t, resp.Success, "create failed: %+v", resp.Error)
	return resp.Data.(core.GameResponse)
}

func getGame(t *testing.T, p *Processor, id string) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewGetGameCommand(id))
	require.True(t, resp.Success)
	return resp.Data.(core.GameResponse)
}

func TestCreateGame(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 1}))

	g := create(t, p, core.CreateGameRequest{White: human, Black: human})
	assert.Equal(t, "white", g.Turn)
	assert.Equal(t, "ongoing", g.State)
	assert.Empty(t, g.Moves)

	g = create(t, p, core.CreateGameRequest{White: human, Black: human, FEN: "k7/8/1Q6/8/8/8/8/7K b"})
	assert.Equal(t, "stalemate", g.State)
	assert.Equal(t, "stalemate", g.Status)

	tests := []struct {
		fen  string
		code string
	}{
		{"not a fen", core.ErrInvalidFEN},
		{"8/8/8/8/8/8/8/8 w - - 0 1", core.ErrInvalidPosition},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1\nquit", core.ErrInvalidFEN},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w - - 0 1", core.ErrInvalidFEN},
	}
	for _, tt := range tests {
		t.Run(tt.fen, func(t *testing.T) {
			resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{White: human, Black: human, FEN: tt.fen}))
			require.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHumanMoves(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 1}))
	id := create(t, p, core.CreateGameRequest{White: human, Black: human}).GameID

	resp := p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "E2E4"}))
	require.True(t, resp.Success)
	g := resp.Data.(core.GameResponse)
	assert.Equal(t, []string{"e2e4"}, g.Moves)
	assert.Equal(t, "black", g.Turn)
	require.NotNil(t, g.LastMove)
	assert.Equal(t, "white", g.LastMove.PlayerColor)

	tests := []struct {
		move string
		code string
	}{
		{"e2e4x", core.ErrInvalidMove},
		{"e4e5", core.ErrWrongTurn},
		{"e7e4", core.ErrIllegalMove},
		{"cccc", core.ErrNotHumanTurn},
	}
	for _, tt := range tests {
		t.Run(tt.move, func(t *testing.T) {
			resp := p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: tt.move}))
			require.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	for _, mv := range []string{"f7f6", "d1h5"} {
		require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: mv})).Success)
	}
	g = getGame(t, p, id)
	assert.Equal(t, "check", g.Status)

	resp = p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "a7a6"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrSelfCheck, resp.Error.Code)

	resp = p.Execute(NewMakeMoveCommand("missing", core.MoveRequest{Move: "e2e4"}))
	assert.Equal(t, core.ErrGameNotFound, resp.Error.Code)
}

func TestCheckmateEndsGame(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 1}))
	id := create(t, p, core.CreateGameRequest{White: human, Black: human}).GameID

	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: mv})).Success)
	}

	g := getGame(t, p, id)
	assert.Equal(t, "black wins", g.State)
	assert.Equal(t, "checkmate", g.Status)

	resp := p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "e1f2"}))
	assert.Equal(t, core.ErrGameOver, resp.Error.Code)

	resp = p.Execute(NewUndoMoveCommand(id, core.UndoRequest{Count: 1}))
	require.True(t, resp.Success)
	assert.Equal(t, "ongoing", resp.Data.(core.GameResponse).State)
}

func TestComputerMove(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 9}))
	id := create(t, p, core.CreateGameRequest{White: computer, Black: human}).GameID

	resp := p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"}))
	require.True(t, resp.Success)
	assert.True(t, resp.Pending)
	assert.Equal(t, "pending", resp.Data.(core.GameResponse).State)

	require.Eventually(t, func() bool {
		g := getGame(t, p, id)
		return g.State == "ongoing" && len(g.Moves) == 1
	}, 5*time.Second, 10*time.Millisecond)

	g := getGame(t, p, id)
	assert.Equal(t, "black", g.Turn)
	require.NotNil(t, g.LastMove)
	assert.Equal(t, g.Moves[0], g.LastMove.Move)
}

func TestComputerProposalRejected(t *testing.T) {
	p := newProcessor(t, scriptedFactory("e2e5", nil))
	id := create(t, p, core.CreateGameRequest{White: computer, Black: human}).GameID

	require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"})).Success)

	require.Eventually(t, func() bool {
		return getGame(t, p, id).State == "stuck"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, getGame(t, p, id).Moves)

	resp := p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"}))
	assert.Equal(t, core.ErrGameOver, resp.Error.Code)
}

func TestComputerEngineError(t *testing.T) {
	p := newProcessor(t, scriptedFactory("", errors.New("boom")))
	id := create(t, p, core.CreateGameRequest{White: computer, Black: human}).GameID

	require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"})).Success)
	require.Eventually(t, func() bool {
		return getGame(t, p, id).State == "stuck"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestLegalMovesAndBoard(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 1}))
	id := create(t, p, core.CreateGameRequest{White: human, Black: human}).GameID

	resp := p.Execute(NewLegalMovesCommand(id, "g1"))
	require.True(t, resp.Success)
	assert.ElementsMatch(t, []string{"f3", "h3"}, resp.Data.(core.MovesResponse).Moves)

	resp = p.Execute(NewLegalMovesCommand(id, ""))
	require.True(t, resp.Success)
	assert.Len(t, resp.Data.(core.MovesResponse).Moves, 20)

	resp = p.Execute(NewLegalMovesCommand(id, "z9"))
	assert.Equal(t, core.ErrInvalidRequest, resp.Error.Code)

	resp = p.Execute(NewGetBoardCommand(id))
	require.True(t, resp.Success)
	assert.Contains(t, resp.Data.(core.BoardResponse).Board, "r n b q k b n r")
}

func TestSuggestMove(t *testing.T) {
	p := newProcessor(t, scriptedFactory("g1f3", nil))
	id := create(t, p, core.CreateGameRequest{White: human, Black: human}).GameID

	resp := p.Execute(NewSuggestMoveCommand(id))
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.Equal(t, "g1f3", resp.Data.(core.SuggestionResponse).Move)

	// Suggestions never change the game
	assert.Empty(t, getGame(t, p, id).Moves)

	bad := newProcessor(t, scriptedFactory("e1e3", nil))
	id = create(t, bad, core.CreateGameRequest{White: human, Black: human}).GameID
	resp = bad.Execute(NewSuggestMoveCommand(id))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrIllegalMove, resp.Error.Code)
}

func TestSaveListLoad(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 1}))
	id := create(t, p, core.CreateGameRequest{White: human, Black: human}).GameID
	require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "d2d4"})).Success)

	resp := p.Execute(NewSaveGameCommand(core.SaveRequest{GameID: id}))
	require.True(t, resp.Success, "%+v", resp.Error)
	save := resp.Data.(core.SaveResponse)

	resp = p.Execute(NewListSavesCommand())
	require.True(t, resp.Success)
	require.Len(t, resp.Data.(core.SavesResponse).Saves, 1)

	loaded := create(t, p, core.CreateGameRequest{White: human, Black: computer, SaveID: save.SaveID})
	assert.NotEqual(t, id, loaded.GameID)
	assert.Equal(t, []string{"d2d4"}, loaded.Moves)
	assert.Equal(t, core.PlayerComputer, loaded.Players.Black.Type)

	resp = p.Execute(NewExportGameCommand(loaded.GameID))
	require.True(t, resp.Success)
	assert.Equal(t, "black", resp.Data.(core.ExportResponse).State.CurrentPlayer.String())

	require.True(t, p.Execute(NewDeleteSaveCommand(save.SaveID)).Success)
	resp = p.Execute(NewDeleteSaveCommand(save.SaveID))
	assert.Equal(t, core.ErrSaveNotFound, resp.Error.Code)

	resp = p.Execute(NewCreateGameCommand(core.CreateGameRequest{White: human, Black: human, SaveID: save.SaveID}))
	assert.Equal(t, core.ErrSaveNotFound, resp.Error.Code)
}

func TestDeleteGame(t *testing.T) {
	p := newProcessor(t, engine.NewFactory(engine.Config{Seed: 1}))
	id := create(t, p, core.CreateGameRequest{White: human, Black: human}).GameID

	require.True(t, p.Execute(NewDeleteGameCommand(id)).Success)
	resp := p.Execute(NewGetGameCommand(id))
	assert.Equal(t, core.ErrGameNotFound, resp.Error.Code)
}
