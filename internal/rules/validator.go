package rules

import "aichess/internal/board"

// IsLegalMove reports whether the piece on from may move to to, ignoring king safety
func IsLegalMove(s GameState, from, to board.Square) bool {
	return validate(&s.Board, s.CurrentPlayer, from, to) == 0
}

// CheckMove is IsLegalMove with the reason for refusal. It returns nil or a *MoveError.
func CheckMove(s GameState, from, to board.Square) error {
	if reason := validate(&s.Board, s.CurrentPlayer, from, to); reason != 0 {
		return &MoveError{Move: Move{from, to}, Reason: reason}
	}
	return nil
}

// validate applies the turn, occupancy and per-piece geometry rules. Zero means legal.
func validate(b *board.Board, turn board.Color, from, to board.Square) Reason {
	if !from.Valid() || !to.Valid() {
		return ReasonOutOfBounds
	}

	piece := b.At(from)
	if piece.IsEmpty() {
		return ReasonNoPiece
	}
	if piece.Color != turn {
		return ReasonWrongTurn
	}
	if dest := b.At(to); !dest.IsEmpty() && dest.Color == piece.Color {
		return ReasonFriendlyCapture
	}

	switch piece.Kind {
	case board.Pawn:
		return pawnMove(b, piece.Color, from, to)
	case board.Rook:
		return rookMove(b, from, to)
	case board.Knight:
		return knightMove(from, to)
	case board.Bishop:
		return bishopMove(b, from, to)
	case board.Queen:
		return queenMove(b, from, to)
	case board.King:
		return kingMove(from, to)
	default:
		return ReasonBadGeometry
	}
}

func pawnMove(b *board.Board, c board.Color, from, to board.Square) Reason {
	dir, startRow := -1, 6
	if c == board.Black {
		dir, startRow = 1, 1
	}
	dRow, dCol := to.Row-from.Row, to.Col-from.Col

	switch {
	case dCol == 0 && dRow == dir:
		if !b.At(to).IsEmpty() {
			return ReasonBlockedPath
		}
		return 0

	case dCol == 0 && dRow == 2*dir && from.Row == startRow:
		if !b.At(board.Square{Row: from.Row + dir, Col: from.Col}).IsEmpty() || !b.At(to).IsEmpty() {
			return ReasonBlockedPath
		}
		return 0

	case abs(dCol) == 1 && dRow == dir:
		// Captures only, the friendly case was refused by the caller
		if b.At(to).IsEmpty() {
			return ReasonBadGeometry
		}
		return 0
	}

	return ReasonBadGeometry
}

func rookMove(b *board.Board, from, to board.Square) Reason {
	if from.Row != to.Row && from.Col != to.Col {
		return ReasonBadGeometry
	}
	return rayClear(b, from, to)
}

func bishopMove(b *board.Board, from, to board.Square) Reason {
	if abs(to.Row-from.Row) != abs(to.Col-from.Col) {
		return ReasonBadGeometry
	}
	return rayClear(b, from, to)
}

func queenMove(b *board.Board, from, to board.Square) Reason {
	straight := from.Row == to.Row || from.Col == to.Col
	diagonal := abs(to.Row-from.Row) == abs(to.Col-from.Col)
	if !straight && !diagonal {
		return ReasonBadGeometry
	}
	return rayClear(b, from, to)
}

func knightMove(from, to board.Square) Reason {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if (dRow == 2 && dCol == 1) || (dRow == 1 && dCol == 2) {
		return 0
	}
	return ReasonBadGeometry
}

func kingMove(from, to board.Square) Reason {
	if abs(to.Row-from.Row) <= 1 && abs(to.Col-from.Col) <= 1 {
		return 0
	}
	return ReasonBadGeometry
}

// rayClear walks the straight or diagonal line between from and to, exclusive of both ends
func rayClear(b *board.Board, from, to board.Square) Reason {
	rowStep, colStep := sign(to.Row-from.Row), sign(to.Col-from.Col)
	sq := board.Square{Row: from.Row + rowStep, Col: from.Col + colStep}
	for sq != to {
		if !b.At(sq).IsEmpty() {
			return ReasonBlockedPath
		}
		sq.Row += rowStep
		sq.Col += colStep
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
