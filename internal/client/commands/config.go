package commands

import (
	"fmt"
	"strconv"

	"aichess/internal/client/display"
)

func (r *Registry) registerConfigCommands() {
	r.Register(&Command{
		Name:        "config",
		ShortName:   "o",
		Description: "Show or change engine settings",
		Usage:       "config [level <0-20> | time <ms> | engine <path|random> | save]",
		Handler:     configHandler,
	})
}

func configHandler(s *Session, args []string) error {
	if len(args) == 0 {
		cfg := s.Engine()
		engine := cfg.Path
		if engine == "" {
			engine = "random"
		}
		fmt.Fprintf(s.Out, "engine: %s\nlevel:  %d\ntime:   %dms\n", engine, cfg.Level, cfg.MoveTimeMS)
		return nil
	}

	if args[0] == "save" {
		if err := s.SaveConfig(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		display.Infof(s.Out, "Settings saved")
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("usage: config %s <value>", args[0])
	}

	cfg := s.Engine()
	switch args[0] {
	case "level":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid level: %s", args[1])
		}
		cfg.Level = n
	case "time":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid time: %s", args[1])
		}
		cfg.MoveTimeMS = n
	case "engine":
		cfg.Path = args[1]
		if cfg.Path == "random" {
			cfg.Path = ""
		}
	default:
		return fmt.Errorf("unknown setting: %s", args[0])
	}

	if err := s.Configure(cfg); err != nil {
		return err
	}
	return configHandler(s, nil)
}
