package rules

import (
	"fmt"
	"strings"
	"unicode"

	"aichess/internal/board"
)

// Move is a from/to coordinate pair
type Move struct {
	From board.Square `json:"from"`
	To   board.Square `json:"to"`
}

// String renders the move in coordinate notation, e.g. "e2e4"
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove converts "<file><rank><file><rank>" text into a Move. Surrounding whitespace and
// letter case are ignored. Promotion suffixes are refused since promotion is not modeled.
func ParseMove(text string) (Move, error) {
	for _, r := range text {
		if unicode.IsControl(r) {
			return Move{}, fmt.Errorf("%w: control character in %q", ErrNotation, text)
		}
	}

	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case len(s) == 5 && strings.ContainsRune("qrbn", rune(s[4])):
		return Move{}, fmt.Errorf("%w: promotion is not supported in %q", ErrNotation, text)
	case len(s) != 4:
		return Move{}, fmt.Errorf("%w: expected 4 characters, got %q", ErrNotation, text)
	}

	from, err := board.ParseSquare(s[:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrNotation, err)
	}
	to, err := board.ParseSquare(s[2:])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrNotation, err)
	}

	return Move{From: from, To: to}, nil
}
