package board

import (
	"fmt"
	"strings"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ParseFEN reads the piece placement and side-to-move fields. The castling, en passant and
// counter fields may be present but are ignored since those rules are not modeled.
func ParseFEN(fen string) (Board, Color, error) {
	var b Board

	parts := strings.Fields(fen)
	if len(parts) < 2 || len(parts) > 6 {
		return b, 0, fmt.Errorf("invalid FEN: expected 2 to 6 fields, got %d", len(parts))
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != Size {
		return b, 0, fmt.Errorf("invalid FEN: expected 8 ranks, got %d", len(ranks))
	}

	for r := 0; r < Size; r++ {
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= Size {
				return b, 0, fmt.Errorf("invalid FEN: too many pieces in rank %d", Size-r)
			}
			p, ok := PieceFromLetter(ch)
			if !ok {
				return b, 0, fmt.Errorf("invalid FEN: unknown piece %q in rank %d", ch, Size-r)
			}
			b[r][file] = p
			file++
		}
		if file != Size {
			return b, 0, fmt.Errorf("invalid FEN: rank %d has %d files", Size-r, file)
		}
	}

	var turn Color
	switch parts[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return b, 0, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	return b, turn, nil
}

// FormatFEN renders a six-field FEN. Castling and en passant are always "-".
func (b *Board) FormatFEN(turn Color, fullmove int) string {
	var sb strings.Builder

	for row := 0; row < Size; row++ {
		empty := 0
		for col := 0; col < Size; col++ {
			ch := b[row][col].Letter()
			if ch == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(ch)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < Size-1 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if turn == Black {
		side = "b"
	}
	if fullmove < 1 {
		fullmove = 1
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, fullmove)

	return sb.String()
}
