package game

import (
	"encoding/json"
	"fmt"

	"aichess/internal/board"
	"aichess/internal/rules"
	"aichess/internal/server/core"
)

type Snapshot struct {
	State        rules.GameState `json:"state"`
	PreviousMove string          `json:"previousMove"`
	PlayerID     string          `json:"playerId"` // ID of the player whose turn it is
}

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move        string      `json:"move"`
	PlayerColor board.Color `json:"playerColor"`
	GameState   core.State  `json:"gameState"`
	Score       int         `json:"score"`
	Depth       int         `json:"depth"`
}

type Game struct {
	snapshots  []Snapshot
	players    map[board.Color]*core.Player
	state      core.State
	lastResult *MoveResult
}

func New(initial rules.GameState, whitePlayer, blackPlayer *core.Player) *Game {
	g := &Game{
		players: map[board.Color]*core.Player{
			board.White: whitePlayer,
			board.Black: blackPlayer,
		},
	}
	g.snapshots = []Snapshot{{
		State:    initial,
		PlayerID: g.players[initial.CurrentPlayer].ID,
	}}
	g.state = core.StateFor(initial)
	return g
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

// CurrentSnapshot returns the latest game snapshot
func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

// Current returns the rules state of the latest position
func (g *Game) Current() rules.GameState {
	return g.CurrentSnapshot().State
}

// CurrentFEN returns the current position in FEN notation
func (g *Game) CurrentFEN() string {
	return g.Current().FEN(g.FullMove())
}

// FullMove is the FEN fullmove counter of the current position
func (g *Game) FullMove() int {
	plies := len(g.snapshots) - 1
	if g.snapshots[0].State.CurrentPlayer == board.Black {
		plies++
	}
	return plies/2 + 1
}

func (g *Game) NextTurnColor() board.Color {
	return g.Current().CurrentPlayer
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurnColor()]
}

func (g *Game) GetPlayer(color board.Color) *core.Player {
	return g.players[color]
}

func (g *Game) AddSnapshot(state rules.GameState, move string) {
	g.snapshots = append(g.snapshots, Snapshot{
		State:        state,
		PreviousMove: move,
		PlayerID:     g.players[state.CurrentPlayer].ID,
	})
}

func (g *Game) UpdatePlayers(whitePlayer, blackPlayer *core.Player) {
	g.players[board.White] = whitePlayer
	g.players[board.Black] = blackPlayer

	// Update current snapshot's PlayerID to reflect new player
	currentSnap := &g.snapshots[len(g.snapshots)-1]
	currentSnap.PlayerID = g.players[currentSnap.State.CurrentPlayer].ID
}

func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.state = core.StateFor(g.Current())
	g.lastResult = nil
	return nil
}

func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		if g.snapshots[i].PreviousMove != "" {
			moves = append(moves, g.snapshots[i].PreviousMove)
		}
	}
	return moves
}

func (g *Game) State() core.State {
	return g.state
}

func (g *Game) SetState(s core.State) {
	g.state = s
}

func (g *Game) InitialState() rules.GameState {
	return g.snapshots[0].State
}

// document is the saved form of a game
type document struct {
	Snapshots []Snapshot                   `json:"snapshots"`
	Players   map[board.Color]*core.Player `json:"players"`
	State     core.State                   `json:"state"`
}

func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		Snapshots: g.snapshots,
		Players:   g.players,
		State:     g.state,
	})
}

// Restore rebuilds a game from its saved form. Snapshot boards are validated while decoding.
// A pending computer move does not survive a save, so such games resume as derived from the position.
func Restore(data []byte) (*Game, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	if len(doc.Snapshots) == 0 {
		return nil, fmt.Errorf("decode game: no snapshots")
	}
	for _, c := range []board.Color{board.White, board.Black} {
		if doc.Players[c] == nil {
			return nil, fmt.Errorf("decode game: missing %s player", c)
		}
	}

	// Stored statuses are recomputed from the positions
	for i := range doc.Snapshots {
		status, err := rules.Classify(doc.Snapshots[i].State)
		if err != nil {
			return nil, fmt.Errorf("decode game: snapshot %d: %w", i, err)
		}
		doc.Snapshots[i].State.Status = status
	}

	g := &Game{
		snapshots: doc.Snapshots,
		players:   doc.Players,
		state:     core.StateFor(doc.Snapshots[len(doc.Snapshots)-1].State),
	}
	// Only a stuck engine survives a restore; it is not visible in the position
	if doc.State == core.StateStuck && !g.state.IsOver() {
		g.state = core.StateStuck
	}
	return g, nil
}
