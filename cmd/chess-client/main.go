// Package main implements an interactive local chess client over the rules engine.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"aichess/internal/client/commands"
	"aichess/internal/client/config"
	"aichess/internal/client/display"
	"aichess/internal/rules"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	display.Init(os.Stdout, cfg.Color)

	s := commands.NewSession(os.Stdout, cfg)
	defer s.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		display.Errorf(os.Stderr, "%s", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Client%s\n", display.Cyan, display.Reset)
	if cfg.Engine.Path != "" {
		fmt.Printf("%sEngine: %s%s\n", display.Cyan, cfg.Engine.Path, display.Reset)
	}
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		if err := registry.Execute(line); errors.Is(err, commands.ErrExit) {
			break
		}
	}

	fmt.Printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
}

func buildPrompt(s *commands.Session) string {
	state := s.State()
	prompt := fmt.Sprintf("chess %s[%s%d%s]%s %s", display.Yellow, display.Reset, len(s.Moves()), display.Yellow, display.Reset, display.ColorForTurn(state.CurrentPlayer))

	if state.Status != rules.StatusOngoing {
		prompt += fmt.Sprintf(" %s%s%s", display.Magenta, state.Status, display.Reset)
	}
	return display.Prompt(prompt)
}
