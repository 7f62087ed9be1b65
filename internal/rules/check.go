package rules

import (
	"fmt"

	"aichess/internal/board"
)

// IsKingInCheck reports whether any piece of the opposing color could move onto the king
// of color c. A board without such a king yields ErrNoKing.
func IsKingInCheck(b board.Board, c board.Color) (bool, error) {
	king, ok := b.FindKing(c)
	if !ok {
		return false, fmt.Errorf("%w: no %s king on board", ErrNoKing, c)
	}

	// Attack detection replays the validator with the opponent on move
	attacker := c.Opposite()
	for _, sq := range board.Squares() {
		if p := b.At(sq); p.IsEmpty() || p.Color != attacker {
			continue
		}
		if validate(&b, attacker, sq, king) == 0 {
			return true, nil
		}
	}

	return false, nil
}
