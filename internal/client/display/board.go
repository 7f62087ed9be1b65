package display

import (
	"fmt"
	"io"
	"strings"

	"aichess/internal/board"
)

// RenderBoard writes board.ToASCII output with colored pieces and coordinates
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")
	last := len(lines) - 1

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fileLine := i == 0 || i == last

		var sb strings.Builder
		for _, char := range line {
			switch {
			case fileLine && char >= 'a' && char <= 'h':
				sb.WriteString(Cyan + string(char) + Reset)
			case char >= 'A' && char <= 'Z':
				sb.WriteString(Blue + string(char) + Reset)
			case char >= 'a' && char <= 'z':
				sb.WriteString(Red + string(char) + Reset)
			case char >= '1' && char <= '8':
				sb.WriteString(Cyan + string(char) + Reset)
			default:
				sb.WriteRune(char)
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(c board.Color) string {
	if c == board.White {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
