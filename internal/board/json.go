package board

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the board as a row-major 8x8 array where empty squares are null
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, Size)
	for row := 0; row < Size; row++ {
		rows[row] = make([]*Piece, Size)
		for col := 0; col < Size; col++ {
			if p := b[row][col]; !p.IsEmpty() {
				rows[row][col] = &p
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	if len(rows) != Size {
		return fmt.Errorf("decode board: expected %d rows, got %d", Size, len(rows))
	}

	var decoded Board
	for row := range rows {
		if len(rows[row]) != Size {
			return fmt.Errorf("decode board: row %d has %d squares", row, len(rows[row]))
		}
		for col, p := range rows[row] {
			if p == nil {
				continue
			}
			if p.Kind == NoKind || p.Color == 0 {
				return fmt.Errorf("decode board: incomplete piece at %s", Square{row, col})
			}
			decoded[row][col] = *p
		}
	}

	*b = decoded
	return nil
}
