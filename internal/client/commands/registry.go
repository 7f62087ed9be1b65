package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"aichess/internal/client/display"
	"aichess/internal/rules"
)

// ErrExit is returned by Execute when the user asks to leave
var ErrExit = errors.New("exit")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerFileCommands()
	r.registerEngineCommands()
	r.registerConfigCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     func(*Session, []string) error { return ErrExit },
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. Command errors are printed; only ErrExit is returned.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmdName, args := strings.ToLower(parts[0]), parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		// A bare coordinate move such as e2e4
		if _, err := rules.ParseMove(parts[0]); err == nil && len(args) == 0 {
			cmd, args = r.commands["move"], parts
		} else {
			display.Errorf(r.session.Out, "Unknown command: %s", cmdName)
			fmt.Fprintln(r.session.Out, "Type 'help' for available commands")
			return nil
		}
	}

	err := cmd.Handler(r.session, args)
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		display.Errorf(r.session.Out, "Error: %s", err)
	}
	return nil
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.Out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(s.Out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	seen := make(map[string]bool)
	var cmds []*Command
	for _, cmd := range r.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			cmds = append(cmds, cmd)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

	fmt.Fprintf(s.Out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)
	for _, cmd := range cmds {
		shortPart := "    "
		if cmd.ShortName != "" {
			shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "  %s%-8s %s\n", shortPart, cmd.Name, cmd.Description)
	}

	fmt.Fprintf(s.Out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(s.Out, "A bare move like e2e4 is the same as 'move e2e4'\n")
	return nil
}
