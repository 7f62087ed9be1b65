package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"aichess/internal/board"
	"aichess/internal/rules"
	"aichess/internal/server/core"
	"aichess/internal/server/engine"
	"aichess/internal/server/game"
	"aichess/internal/server/service"
	"aichess/internal/server/storage"
)

const (
	minSearchTime  = 100
	suggestTimeout = 15 * time.Second
)

// Side to move is required, the remaining FEN fields are optional
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb]( [KQkq-]+)?( [a-h1-8-]+)?( \d+)?( \d+)?$`)

// Processor executes commands against the service; computer moves run on the engine queue
type Processor struct {
	svc   *service.Service
	queue *EngineQueue
	mu    sync.Mutex // serializes commands that change games
}

// New creates a processor with a pool of proposers built by factory
func New(svc *service.Service, factory engine.Factory, workers int) *Processor {
	return &Processor{
		svc:   svc,
		queue: NewEngineQueue(workers, factory),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.locked(cmd, p.handleCreateGame)
	case CmdConfigurePlayers:
		return p.locked(cmd, p.handleConfigurePlayers)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.locked(cmd, p.handleMakeMove)
	case CmdUndoMove:
		return p.locked(cmd, p.handleUndoMove)
	case CmdDeleteGame:
		return p.locked(cmd, p.handleDeleteGame)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	case CmdSuggestMove:
		return p.handleSuggestMove(cmd)
	case CmdExportGame:
		return p.handleExportGame(cmd)
	case CmdSaveGame:
		return p.handleSaveGame(cmd)
	case CmdListSaves:
		return p.handleListSaves(cmd)
	case CmdDeleteSave:
		return p.handleDeleteSave(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func (p *Processor) locked(cmd Command, fn func(Command) ProcessorResponse) ProcessorResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(cmd)
}

// isFENSafe rejects control characters that could inject engine commands
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

func enforceSearchTime(cfg *core.PlayerConfig) {
	if cfg.Type == core.PlayerComputer && cfg.SearchTime < minSearchTime {
		cfg.SearchTime = minSearchTime
	}
}

// handleCreateGame creates a game from the start position, a FEN, or a saved game
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	enforceSearchTime(&args.White)
	enforceSearchTime(&args.Black)

	whitePlayer := core.NewPlayer(args.White, board.White)
	blackPlayer := core.NewPlayer(args.Black, board.Black)

	var gameID string
	switch {
	case args.SaveID != "":
		id, err := p.svc.LoadGame(args.SaveID)
		if err != nil {
			return p.saveErrorResponse(err)
		}
		if err := p.svc.UpdatePlayers(id, whitePlayer, blackPlayer); err != nil {
			return p.errorResponse(fmt.Sprintf("failed to update players: %v", err), core.ErrInternalError)
		}
		gameID = id

	default:
		initial := rules.New()
		if args.FEN != "" {
			fen := strings.TrimSpace(args.FEN)
			if !p.isFENSafe(fen) {
				return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
			}
			s, err := rules.FromFEN(fen)
			if errors.Is(err, board.ErrInvalidBoard) {
				return p.errorResponse(err.Error(), core.ErrInvalidPosition)
			}
			if err != nil {
				return p.errorResponse(err.Error(), core.ErrInvalidFEN)
			}
			initial = s
		}

		gameID = p.svc.GenerateGameID()
		if err := p.svc.CreateGame(gameID, whitePlayer, blackPlayer, initial); err != nil {
			return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
		}
	}

	return p.gameResponse(gameID)
}

// handleConfigurePlayers updates player configuration mid-game
func (p *Processor) handleConfigurePlayers(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	enforceSearchTime(&args.White)
	enforceSearchTime(&args.Black)

	state, resp := p.gameState(cmd.GameID)
	if resp != nil {
		return *resp
	}
	if state == core.StatePending {
		return p.errorResponse("cannot change players while computer is calculating", core.ErrInvalidRequest)
	}

	whitePlayer := core.NewPlayer(args.White, board.White)
	blackPlayer := core.NewPlayer(args.Black, board.Black)

	if err := p.svc.UpdatePlayers(cmd.GameID, whitePlayer, blackPlayer); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to update players: %v", err), core.ErrInternalError)
	}

	return p.gameResponse(cmd.GameID)
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.gameResponse(cmd.GameID)
}

// handleMakeMove applies a human move, or starts a computer move for "cccc"
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	var (
		state  core.State
		player *core.Player
		color  board.Color
		fen    string
	)
	if err := p.svc.View(cmd.GameID, func(g *game.Game) {
		state, player, color, fen = g.State(), g.NextPlayer(), g.NextTurnColor(), g.CurrentFEN()
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	switch state {
	case core.StatePending:
		return p.errorResponse("computer move in progress", core.ErrInvalidRequest)
	case core.StateStuck:
		return p.errorResponse("game is stuck after an engine failure; undo to continue", core.ErrGameOver)
	case core.StateWhiteWins, core.StateBlackWins, core.StateStalemate:
		return p.errorResponse(fmt.Sprintf("game is over: %s", state), core.ErrGameOver)
	}

	if strings.TrimSpace(args.Move) == "cccc" {
		if player.Type != core.PlayerComputer {
			return p.errorResponse("not computer player's turn", core.ErrNotHumanTurn)
		}

		p.svc.UpdateGameState(cmd.GameID, core.StatePending)
		if err := p.triggerComputerMove(cmd.GameID, fen, color, player); err != nil {
			p.svc.UpdateGameState(cmd.GameID, state)
			return p.errorResponse(fmt.Sprintf("cannot start computer move: %v", err), core.ErrInternalError)
		}

		resp := p.gameResponse(cmd.GameID)
		resp.Pending = true
		if data, ok := resp.Data.(core.GameResponse); ok {
			data.LastMove = &core.MoveInfo{PlayerColor: color.String()}
			resp.Data = data
		}
		return resp
	}

	if player.Type != core.PlayerHuman {
		return p.errorResponse("not human player's turn", core.ErrNotHumanTurn)
	}

	_, move, err := p.svc.ApplyMove(cmd.GameID, args.Move)
	if err != nil {
		return p.moveErrorResponse(err)
	}

	p.svc.SetLastMoveResult(cmd.GameID, &game.MoveResult{
		Move:        move.String(),
		PlayerColor: color,
	})

	return p.gameResponse(cmd.GameID)
}

// handleUndoMove reverts moves; a stuck game can be recovered this way
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	state, resp := p.gameState(cmd.GameID)
	if resp != nil {
		return *resp
	}
	if state == core.StatePending {
		return p.errorResponse("cannot undo while computer move is in progress", core.ErrInvalidRequest)
	}

	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	if err := p.svc.UndoMoves(cmd.GameID, args.Count); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return p.errorResponse("game not found", core.ErrGameNotFound)
		}
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	return p.gameResponse(cmd.GameID)
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	state, resp := p.gameState(cmd.GameID)
	if resp != nil {
		return *resp
	}
	if state == core.StatePending {
		return p.errorResponse("cannot delete game while computer move is in progress", core.ErrInvalidRequest)
	}

	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{Success: true}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	if err := p.svc.View(cmd.GameID, func(g *game.Game) {
		b := g.Current().Board
		resp = core.BoardResponse{FEN: g.CurrentFEN(), Board: b.ToASCII()}
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{Success: true, Data: resp}
}

// handleLegalMoves lists destinations from one square, or every legal move
func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	args, _ := cmd.Args.(LegalMovesArgs)

	var from board.Square
	if args.From != "" {
		sq, err := board.ParseSquare(strings.ToLower(strings.TrimSpace(args.From)))
		if err != nil {
			return p.errorResponse(err.Error(), core.ErrInvalidRequest)
		}
		from = sq
	}

	var state rules.GameState
	if err := p.svc.View(cmd.GameID, func(g *game.Game) { state = g.Current() }); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	resp := core.MovesResponse{Moves: []string{}}
	if args.From != "" {
		resp.From = from.String()
		for _, to := range rules.Destinations(state, from) {
			resp.Moves = append(resp.Moves, to.String())
		}
	} else {
		for _, m := range rules.LegalMoves(state) {
			resp.Moves = append(resp.Moves, m.String())
		}
	}

	return ProcessorResponse{Success: true, Data: resp}
}

// handleSuggestMove asks a proposer for a move without applying it
func (p *Processor) handleSuggestMove(cmd Command) ProcessorResponse {
	var (
		current rules.GameState
		fen     string
		over    bool
		player  *core.Player
	)
	if err := p.svc.View(cmd.GameID, func(g *game.Game) {
		current, fen, over, player = g.Current(), g.CurrentFEN(), g.State().IsOver(), g.NextPlayer()
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if over || current.Status.IsTerminal() {
		return p.errorResponse("game is over", core.ErrGameOver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
	defer cancel()

	proposal, err := p.queue.Propose(ctx, cmd.GameID, requestFor(fen, player))
	if err != nil {
		return p.errorResponse(fmt.Sprintf("engine failed: %v", err), core.ErrInternalError)
	}

	// Suggestions are held to the same rules as moves
	if _, _, err := rules.ApplyNotation(current, proposal.Move); err != nil {
		log.Printf("Rejected suggestion %q for game %s: %v", proposal.Move, cmd.GameID, err)
		return p.errorResponse(fmt.Sprintf("engine proposed an invalid move: %v", err), core.ErrIllegalMove)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.SuggestionResponse{
			Move:   proposal.Move,
			Score:  proposal.Score,
			Depth:  proposal.Depth,
			IsMate: proposal.IsMate,
			MateIn: proposal.MateIn,
		},
	}
}

func (p *Processor) handleExportGame(cmd Command) ProcessorResponse {
	var resp core.ExportResponse
	if err := p.svc.View(cmd.GameID, func(g *game.Game) {
		resp = core.ExportResponse{GameID: cmd.GameID, State: g.Current(), Moves: g.Moves()}
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleSaveGame(cmd Command) ProcessorResponse {
	save, err := p.svc.SaveGame(cmd.GameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return p.errorResponse("game not found", core.ErrGameNotFound)
		}
		return p.saveErrorResponse(err)
	}

	return ProcessorResponse{Success: true, Data: saveResponse(save)}
}

func (p *Processor) handleListSaves(cmd Command) ProcessorResponse {
	saves, err := p.svc.ListSaves()
	if err != nil {
		return p.saveErrorResponse(err)
	}

	resp := core.SavesResponse{Saves: []core.SaveResponse{}}
	for _, save := range saves {
		resp.Saves = append(resp.Saves, saveResponse(save))
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleDeleteSave(cmd Command) ProcessorResponse {
	saveID, _ := cmd.Args.(string)
	if err := p.svc.DeleteSave(saveID); err != nil {
		return p.saveErrorResponse(err)
	}
	return ProcessorResponse{Success: true}
}

// triggerComputerMove starts an async proposal whose result goes through the rules
func (p *Processor) triggerComputerMove(gameID, fen string, color board.Color, player *core.Player) error {
	return p.queue.SubmitAsync(gameID, requestFor(fen, player), func(result EngineResult) {
		p.mu.Lock()
		defer p.mu.Unlock()

		state, resp := p.gameState(gameID)
		if resp != nil || state != core.StatePending {
			return // Game was deleted or changed meanwhile
		}

		if result.Error != nil {
			log.Printf("Engine error for game %s: %v", gameID, result.Error)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}

		_, move, err := p.svc.ApplyMove(gameID, result.Proposal.Move)
		if err != nil {
			log.Printf("Rejected computer move %q for game %s: %v", result.Proposal.Move, gameID, err)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}

		p.svc.SetLastMoveResult(gameID, &game.MoveResult{
			Move:        move.String(),
			PlayerColor: color,
			Score:       result.Proposal.Score,
			Depth:       result.Proposal.Depth,
		})
	})
}

func requestFor(fen string, player *core.Player) engine.Request {
	req := engine.Request{FEN: fen}
	if player != nil && player.Type == core.PlayerComputer {
		req.Level = player.Level
		req.MoveTime = time.Duration(player.SearchTime) * time.Millisecond
	}
	return req
}

// gameState returns the game-level state, or a ready error response
func (p *Processor) gameState(gameID string) (core.State, *ProcessorResponse) {
	var state core.State
	if err := p.svc.View(gameID, func(g *game.Game) { state = g.State() }); err != nil {
		resp := p.errorResponse("game not found", core.ErrGameNotFound)
		return state, &resp
	}
	return state, nil
}

func (p *Processor) gameResponse(gameID string) ProcessorResponse {
	var resp core.GameResponse
	if err := p.svc.View(gameID, func(g *game.Game) {
		resp = buildGameResponse(gameID, g)
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	current := g.Current()
	resp := core.GameResponse{
		GameID: gameID,
		FEN:    g.CurrentFEN(),
		Turn:   current.CurrentPlayer.String(),
		Status: current.Status.String(),
		State:  g.State().String(),
		Moves:  g.Moves(),
		Players: core.PlayersResponse{
			White: g.GetPlayer(board.White),
			Black: g.GetPlayer(board.Black),
		},
	}

	if result := g.LastResult(); result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move,
			PlayerColor: result.PlayerColor.String(),
			Score:       result.Score,
			Depth:       result.Depth,
		}
	}

	return resp
}

func saveResponse(save storage.SavedGame) core.SaveResponse {
	return core.SaveResponse{
		SaveID:  save.ID,
		GameID:  save.GameID,
		SavedAt: save.SavedAt.UTC().Format(time.RFC3339),
	}
}

// moveErrorResponse maps rules errors to API codes
func (p *Processor) moveErrorResponse(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, rules.ErrNotation):
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	case errors.Is(err, rules.ErrIllegalMove):
		switch rules.ReasonOf(err) {
		case rules.ReasonSelfCheck:
			return p.errorResponse(err.Error(), core.ErrSelfCheck)
		case rules.ReasonWrongTurn:
			return p.errorResponse(err.Error(), core.ErrWrongTurn)
		}
		return p.errorResponse(err.Error(), core.ErrIllegalMove)
	}
	return p.errorResponse(err.Error(), core.ErrInternalError)
}

func (p *Processor) saveErrorResponse(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		return p.errorResponse("persistent storage is disabled", core.ErrStorageDisabled)
	case errors.Is(err, storage.ErrNotFound):
		return p.errorResponse("save not found", core.ErrSaveNotFound)
	case errors.Is(err, board.ErrInvalidBoard):
		return p.errorResponse(err.Error(), core.ErrInvalidPosition)
	}
	return p.errorResponse(err.Error(), core.ErrInternalError)
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
