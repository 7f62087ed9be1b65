package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"aichess/internal/board"
	"aichess/internal/client/display"
	"aichess/internal/rules"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game",
		Usage:       "new [fen]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <e2e4>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo moves",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Show board and game status",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "moves",
		ShortName:   "l",
		Description: "List legal moves",
		Usage:       "moves [square]",
		Handler:     legalMovesHandler,
	})

	r.Register(&Command{
		Name:        "fen",
		ShortName:   "f",
		Description: "Print the position as FEN",
		Usage:       "fen",
		Handler:     fenHandler,
	})

	r.Register(&Command{
		Name:        "json",
		ShortName:   "j",
		Description: "Print the position as JSON",
		Usage:       "json",
		Handler:     jsonHandler,
	})

	r.Register(&Command{
		Name:        "history",
		ShortName:   "y",
		Description: "Show moves played",
		Usage:       "history",
		Handler:     historyHandler,
	})
}

func (r *Registry) registerFileCommands() {
	r.Register(&Command{
		Name:        "save",
		Description: "Save the position to a JSON file",
		Usage:       "save <file>",
		Handler:     saveHandler,
	})

	r.Register(&Command{
		Name:        "load",
		Description: "Load a position from a JSON file",
		Usage:       "load <file>",
		Handler:     loadHandler,
	})
}

func (r *Registry) registerEngineCommands() {
	r.Register(&Command{
		Name:        "ai",
		ShortName:   "c",
		Description: "Let the engine play the side to move",
		Usage:       "ai",
		Handler:     aiHandler,
	})

	r.Register(&Command{
		Name:        "hint",
		ShortName:   "h",
		Description: "Ask the engine for a move without playing it",
		Usage:       "hint",
		Handler:     hintHandler,
	})
}

func newGameHandler(s *Session, args []string) error {
	if len(args) == 0 {
		s.Reset(rules.New(), 1)
		display.Infof(s.Out, "New game from the starting position")
		return showBoardHandler(s, nil)
	}

	fen := strings.Join(args, " ")
	state, err := rules.FromFEN(fen)
	if err != nil {
		return err
	}

	fullmove := 1
	if fields := strings.Fields(fen); len(fields) == 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			fullmove = n
		}
	}

	s.Reset(state, fullmove)
	display.Infof(s.Out, "New game from FEN")
	return showBoardHandler(s, nil)
}

func moveHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <e2e4>")
	}

	move, err := s.Play(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sPlayed %s%s\n", display.Green, move, display.Reset)
	return showBoardHandler(s, nil)
}

func undoHandler(s *Session, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		count = n
	}

	if err := s.Undo(count); err != nil {
		return err
	}
	return showBoardHandler(s, nil)
}

func showBoardHandler(s *Session, args []string) error {
	state := s.State()
	fmt.Fprintln(s.Out)
	display.RenderBoard(s.Out, state.Board.ToASCII())
	fmt.Fprintln(s.Out)

	switch state.Status {
	case rules.StatusCheckmate:
		fmt.Fprintf(s.Out, "%sCheckmate%s, %s is mated\n", display.Magenta, display.Reset, display.ColorForTurn(state.CurrentPlayer))
	case rules.StatusStalemate:
		fmt.Fprintf(s.Out, "%sStalemate%s\n", display.Magenta, display.Reset)
	case rules.StatusCheck:
		fmt.Fprintf(s.Out, "%s to move, %sin check%s\n", display.ColorForTurn(state.CurrentPlayer), display.Yellow, display.Reset)
	default:
		fmt.Fprintf(s.Out, "%s to move\n", display.ColorForTurn(state.CurrentPlayer))
	}
	return nil
}

func legalMovesHandler(s *Session, args []string) error {
	state := s.State()

	var moves []string
	if len(args) > 0 {
		from, err := board.ParseSquare(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		for _, to := range rules.Destinations(state, from) {
			moves = append(moves, from.String()+to.String())
		}
	} else {
		for _, m := range rules.LegalMoves(state) {
			moves = append(moves, m.String())
		}
	}

	if len(moves) == 0 {
		fmt.Fprintln(s.Out, "No legal moves")
		return nil
	}
	fmt.Fprintf(s.Out, "%d move(s): %s\n", len(moves), strings.Join(moves, " "))
	return nil
}

func fenHandler(s *Session, args []string) error {
	fmt.Fprintln(s.Out, s.FEN())
	return nil
}

func jsonHandler(s *Session, args []string) error {
	display.PrettyPrintJSON(s.Out, s.State())
	return nil
}

func historyHandler(s *Session, args []string) error {
	moves := s.Moves()
	if len(moves) == 0 {
		fmt.Fprintln(s.Out, "No moves yet")
		return nil
	}

	for i, snap := range s.history[1:] {
		mover := s.history[i].state.CurrentPlayer
		prefix := fmt.Sprintf("%d.", s.history[i].fullmove)
		if mover == board.Black {
			prefix += ".."
		}
		fmt.Fprintf(s.Out, "%-6s %s\n", prefix, snap.move)
	}
	return nil
}

func saveHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <file>")
	}

	data, err := json.MarshalIndent(s.State(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}

	display.Infof(s.Out, "Saved to %s", args[0])
	return nil
}

// loadHandler replaces the game with a stored position; invalid positions are refused
func loadHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <file>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var state rules.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	// The stored status is recomputed rather than trusted
	status, err := rules.Classify(state)
	if err != nil {
		return err
	}
	state.Status = status

	s.Reset(state, 1)
	display.Infof(s.Out, "Loaded %s", args[0])
	return showBoardHandler(s, nil)
}

func aiHandler(s *Session, args []string) error {
	if s.State().Status.IsTerminal() {
		return fmt.Errorf("game is over: %s", s.State().Status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultProposeTimeout)
	defer cancel()

	proposal, err := s.Propose(ctx)
	if err != nil {
		return err
	}

	move, err := s.Play(proposal.Move)
	if err != nil {
		return fmt.Errorf("engine proposed %q: %w", proposal.Move, err)
	}

	fmt.Fprintf(s.Out, "%sEngine played %s%s\n", display.Green, move, display.Reset)
	return showBoardHandler(s, nil)
}

func hintHandler(s *Session, args []string) error {
	state := s.State()
	if state.Status.IsTerminal() {
		return fmt.Errorf("game is over: %s", state.Status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultProposeTimeout)
	defer cancel()

	proposal, err := s.Propose(ctx)
	if err != nil {
		return err
	}
	if _, _, err := rules.ApplyNotation(state, proposal.Move); err != nil {
		return fmt.Errorf("engine proposed %q: %w", proposal.Move, err)
	}

	fmt.Fprintf(s.Out, "Hint: %s%s%s", display.Green, proposal.Move, display.Reset)
	if proposal.Depth > 0 {
		fmt.Fprintf(s.Out, " (depth %d, score %d)", proposal.Depth, proposal.Score)
	}
	fmt.Fprintln(s.Out)
	return nil
}
