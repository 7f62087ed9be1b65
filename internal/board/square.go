package board

import "fmt"

// Square addresses a cell by row and column, row 0 being rank 8 and column 0 file a
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// String returns the algebraic name, e.g. "e2"
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%c", 'a'+s.Col, '8'-s.Row)
}

// ParseSquare converts an algebraic square such as "e2" into row/column form
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return Square{}, fmt.Errorf("invalid square %q: want file and rank", name)
	}
	file, rank := name[0], name[1]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("invalid square %q", name)
	}
	return Square{Row: int('8' - rank), Col: int(file - 'a')}, nil
}

// Squares lists all 64 squares in row-major order
func Squares() []Square {
	all := make([]Square, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			all = append(all, Square{row, col})
		}
	}
	return all
}
