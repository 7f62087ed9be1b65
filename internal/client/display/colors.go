package display

import (
	"os"

	"golang.org/x/term"
)

// Terminal color codes, blanked by Disable
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Init turns colors off when they are unwanted or out is not a terminal
func Init(out *os.File, enabled bool) {
	if !enabled || !term.IsTerminal(int(out.Fd())) {
		Disable()
	}
}

func Disable() {
	for _, c := range []*string{&Reset, &Red, &Green, &Yellow, &Blue, &Magenta, &Cyan, &White} {
		*c = ""
	}
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + Yellow + " > " + Reset
}
