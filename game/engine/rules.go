package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("position out of bounds")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrIllegalMove     = errors.New("illegal move")
	ErrGameOver        = errors.New("game is over")

	ErrInvalidCell      = fmt.Errorf("%w: destination is not on the board", ErrIllegalMove)
	ErrNoPiece          = fmt.Errorf("%w: no piece on start square", ErrIllegalMove)
	ErrOccupiedByGoose  = fmt.Errorf("%w: destination holds a goose", ErrIllegalMove)
	ErrSamePosition     = fmt.Errorf("%w: start and destination are the same", ErrIllegalMove)
	ErrNotYourPiece     = fmt.Errorf("%w: piece does not belong to the side to move", ErrIllegalMove)
	ErrIllegalFoxMove   = fmt.Errorf("%w: fox moves one square or jumps a goose", ErrIllegalMove)
	ErrIllegalGooseMove = fmt.Errorf("%w: geese move one square onto an empty cell", ErrIllegalMove)
)

// steps are the eight neighbour offsets in the order the win check scans them
var steps = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, 1}, {-1, 1}, {1, -1},
}

// Reason returns nil when the move is legal for the side to move, otherwise
// the first failed check. Checks run in a fixed order and stop at the first failure.
func (e *Engine) Reason(start, end Position) error {
	// 1. destination on the grid and on the cross
	if !start.InBounds() {
		return fmt.Errorf("%w: %w: start %s", ErrIllegalMove, ErrOutOfBounds, start)
	}
	if !end.InBounds() {
		return fmt.Errorf("%w: %w: destination %s", ErrIllegalMove, ErrOutOfBounds, end)
	}
	if e.board.at(end) == Invalid {
		return ErrInvalidCell
	}

	// 2. something to move
	piece := e.board.at(start)
	if piece == Empty || piece == Invalid {
		return ErrNoPiece
	}

	// 3. nobody lands on a goose
	if e.board.at(end) == Goose {
		return ErrOccupiedByGoose
	}

	// 4. a move has to go somewhere
	if start == end {
		return ErrSamePosition
	}

	// 5. piece rules for the side to move
	if piece != e.current.Piece() {
		return ErrNotYourPiece
	}
	switch piece {
	case Fox:
		if !e.validFoxMove(start, end) {
			return ErrIllegalFoxMove
		}
	case Goose:
		if !e.validGooseMove(start, end) {
			return ErrIllegalGooseMove
		}
	}
	return nil
}

// IsLegalMove reports whether the side to move may play start -> end
func (e *Engine) IsLegalMove(start, end Position) bool {
	return e.Reason(start, end) == nil
}

func (e *Engine) validFoxMove(start, end Position) bool {
	if e.board.at(start) != Fox || e.board.at(end) != Empty {
		return false
	}
	m := Move{From: start, To: end}
	dr, dc := abs(end.Row-start.Row), abs(end.Col-start.Col)
	if dr <= 1 && dc <= 1 {
		return true
	}
	return m.IsJump() && e.board.at(m.Midpoint()) == Goose
}

func (e *Engine) validGooseMove(start, end Position) bool {
	if e.board.at(start) != Goose || e.board.at(end) != Empty {
		return false
	}
	return abs(end.Row-start.Row) <= 1 && abs(end.Col-start.Col) <= 1
}

// foxDestinations lists every square the fox at from could reach: the empty
// neighbours first, then the jump landings over a goose.
func foxDestinations(b *Board, from Position) []Position {
	moves := make([]Position, 0, 16)
	for _, d := range steps {
		to := from.Add(d[0], d[1])
		if to.InBounds() && b.at(to) == Empty {
			moves = append(moves, to)
		}
	}
	for _, d := range steps {
		mid := from.Add(d[0], d[1])
		to := from.Add(2*d[0], 2*d[1])
		if to.InBounds() && b.at(mid) == Goose && b.at(to) == Empty {
			moves = append(moves, to)
		}
	}
	return moves
}
