// Package board holds the 8x8 chess grid and the piece/square vocabulary shared by the
// rules engine, the server and the client. It carries no rules of movement.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Size is the number of rows and columns on the board
const Size = 8

// ErrInvalidBoard is returned when a board breaks the one-king-per-color invariant
var ErrInvalidBoard = errors.New("invalid board")

type Color byte

const (
	White Color = iota + 1
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

func (c Color) MarshalText() ([]byte, error) {
	if c != White && c != Black {
		return nil, fmt.Errorf("invalid color: %d", c)
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return fmt.Errorf("invalid color: %q", text)
	}
	return nil
}

// Kind is the type of a piece. NoKind marks an empty square.
type Kind byte

const (
	NoKind Kind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "rook", "knight", "bishop", "queen", "king"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k != NoKind {
		return kindNames[k]
	}
	return "none"
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == NoKind || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid piece kind: %d", k)
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i := Pawn; i <= King; i++ {
		if kindNames[i] == string(text) {
			*k = i
			return nil
		}
	}
	return fmt.Errorf("invalid piece kind: %q", text)
}

// Piece is a value type; the zero Piece is an empty square
type Piece struct {
	Kind  Kind  `json:"type"`
	Color Color `json:"color"`
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Letter returns the FEN letter, uppercase for white
func (p Piece) Letter() byte {
	letters := " prnbqk"
	if p.IsEmpty() || int(p.Kind) >= len(letters) {
		return 0
	}
	ch := letters[p.Kind]
	if p.Color == White {
		ch -= 'a' - 'A'
	}
	return ch
}

// PieceFromLetter is the inverse of Piece.Letter
func PieceFromLetter(ch byte) (Piece, bool) {
	color := Black
	if ch >= 'A' && ch <= 'Z' {
		color = White
		ch += 'a' - 'A'
	}
	switch ch {
	case 'p':
		return Piece{Pawn, color}, true
	case 'r':
		return Piece{Rook, color}, true
	case 'n':
		return Piece{Knight, color}, true
	case 'b':
		return Piece{Bishop, color}, true
	case 'q':
		return Piece{Queen, color}, true
	case 'k':
		return Piece{King, color}, true
	}
	return Piece{}, false
}

// Board is the 8x8 grid indexed [row][col]. It is an array, so plain assignment copies it.
type Board [Size][Size]Piece

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Standard returns the initial chess layout, black on row 0 and white on row 7
func Standard() Board {
	var b Board
	for col := 0; col < Size; col++ {
		b[0][col] = Piece{backRank[col], Black}
		b[1][col] = Piece{Pawn, Black}
		b[6][col] = Piece{Pawn, White}
		b[7][col] = Piece{backRank[col], White}
	}
	return b
}

func (b *Board) At(sq Square) Piece {
	return b[sq.Row][sq.Col]
}

func (b *Board) Set(sq Square, p Piece) {
	b[sq.Row][sq.Col] = p
}

// Move returns a copy of the board with the piece on from placed on to.
// Whatever stood on to is overwritten.
func (b Board) Move(from, to Square) Board {
	b[to.Row][to.Col] = b[from.Row][from.Col]
	b[from.Row][from.Col] = Piece{}
	return b
}

// FindKing returns the first king of the given color in row-major order
func (b *Board) FindKing(c Color) (Square, bool) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b[row][col]; p.Kind == King && p.Color == c {
				return Square{row, col}, true
			}
		}
	}
	return Square{}, false
}

// Validate checks that every occupied square holds a known piece and that each color
// has exactly one king. All violations are reported together.
func (b *Board) Validate() error {
	var result *multierror.Error
	kings := map[Color]int{}

	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := b[row][col]
			if p.IsEmpty() {
				continue
			}
			sq := Square{row, col}
			if p.Kind > King {
				result = multierror.Append(result, fmt.Errorf("%s: unknown piece kind %d", sq, p.Kind))
				continue
			}
			if p.Color != White && p.Color != Black {
				result = multierror.Append(result, fmt.Errorf("%s: %s has no color", sq, p.Kind))
				continue
			}
			if p.Kind == King {
				kings[p.Color]++
			}
		}
	}

	for _, c := range []Color{White, Black} {
		if kings[c] != 1 {
			result = multierror.Append(result, fmt.Errorf("%s has %d kings, want 1", c, kings[c]))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoard, flatten(result))
	}
	return nil
}

func flatten(merr *multierror.Error) string {
	parts := make([]string, 0, len(merr.Errors))
	for _, err := range merr.Errors {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for row := 0; row < Size; row++ {
		sb.WriteString(fmt.Sprintf("%d ", Size-row))
		for col := 0; col < Size; col++ {
			if ch := b[row][col].Letter(); ch != 0 {
				sb.WriteByte(ch)
				sb.WriteByte(' ')
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", Size-row))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
