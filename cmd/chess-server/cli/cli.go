package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"aichess/internal/server/storage"
)

// Run is the entry point for the db mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, moves, saves")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "moves":
		return runMoves(args[1:])
	case "saves":
		return runSaves(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses -path and opens the SQLite database it names
func openStore(name string, args []string, extra func(fs *flag.FlagSet)) (*storage.SQLiteStore, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if *path == "" {
		return nil, nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewSQLite(*path, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, fs, nil
}

func runInit(args []string) error {
	store, fs, err := openStore("init", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", fs.Lookup("path").Value)
	return nil
}

func runDelete(args []string) error {
	store, fs, err := openStore("delete", args, nil)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", fs.Lookup("path").Value)
	return nil
}

func runQuery(args []string) error {
	var gameID, playerID *string
	store, _, err := openStore("query", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID to filter (optional, * for all)")
		playerID = fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Println("No games found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite Player\tBlack Player\tStart Time\tInitial FEN")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s (T%d)\t%s (T%d)\t%s\t%s\n",
			short(g.GameID),
			short(g.WhitePlayerID), g.WhiteType,
			short(g.BlackPlayerID), g.BlackType,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
			g.InitialFEN,
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d game(s)\n", len(games))
	return nil
}

func runMoves(args []string) error {
	var gameID *string
	store, _, err := openStore("moves", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID (required)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if *gameID == "" {
		return fmt.Errorf("game ID required")
	}

	moves, err := store.QueryMoves(*gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tColor\tMove\tFEN After")
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.MoveNumber, m.PlayerColor, m.Move, m.FENAfterMove)
	}
	w.Flush()

	fmt.Printf("\n%d move(s)\n", len(moves))
	return nil
}

func runSaves(args []string) error {
	store, _, err := openStore("saves", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	saves, err := store.ListSaves()
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(saves) == 0 {
		fmt.Println("No saved games")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Save ID\tGame ID\tSaved At")
	for _, s := range saves {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, short(s.GameID), s.SavedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
