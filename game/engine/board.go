package engine

import (
	"fmt"
	"strings"
)

// Board is the 9x9 grid, indexed [row][col]
type Board [BoardSize][BoardSize]Cell

// FoxStart is where NewBoard places the fox
var FoxStart = Position{Row: 7, Col: 4}

// Playable reports whether the position lies on the cross-shaped playing area
func Playable(p Position) bool {
	if !p.InBounds() {
		return false
	}
	return (p.Row >= 3 && p.Row <= 5) || (p.Col >= 3 && p.Col <= 5)
}

// NewBoard creates the starting layout
func NewBoard() *Board {
	b := &Board{}
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if Playable(Pos(r, c)) {
				b[r][c] = Empty
			} else {
				b[r][c] = Invalid
			}
		}
	}

	// Geese fill the top arm and the whole of row 3
	for r := 0; r < 3; r++ {
		for c := 3; c <= 5; c++ {
			b[r][c] = Goose
		}
	}
	for c := 0; c < BoardSize; c++ {
		b[3][c] = Goose
	}

	b[FoxStart.Row][FoxStart.Col] = Fox
	return b
}

// Cell returns the value at p
func (b *Board) Cell(p Position) (Cell, error) {
	if !p.InBounds() {
		return Invalid, fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	return b[p.Row][p.Col], nil
}

// SetCell writes the value at p
func (b *Board) SetCell(p Position, c Cell) error {
	if !p.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	b[p.Row][p.Col] = c
	return nil
}

// MustCell returns the value at p and panics when p is off the grid.
// Only for callers that have already checked bounds.
func (b *Board) MustCell(p Position) Cell {
	c, err := b.Cell(p)
	if err != nil {
		panic(err)
	}
	return c
}

// at is the bounds-tolerant lookup used by the rules; off-grid reads as Invalid
func (b *Board) at(p Position) Cell {
	if !p.InBounds() {
		return Invalid
	}
	return b[p.Row][p.Col]
}

// Count returns how many squares hold c
func (b *Board) Count(c Cell) int {
	n := 0
	for r := range b {
		for col := range b[r] {
			if b[r][col] == c {
				n++
			}
		}
	}
	return n
}

// Find returns the first square holding c in row-major order
func (b *Board) Find(c Cell) (Position, bool) {
	for r := range b {
		for col := range b[r] {
			if b[r][col] == c {
				return Pos(r, col), true
			}
		}
	}
	return Position{}, false
}

// Clone returns an independent copy
func (b *Board) Clone() *Board {
	cp := *b
	return &cp
}

// Rows encodes the board as nine strings of cell symbols
func (b *Board) Rows() []string {
	rows := make([]string, BoardSize)
	for r := range b {
		var sb strings.Builder
		for c := range b[r] {
			sb.WriteString(b[r][c].Symbol())
		}
		rows[r] = sb.String()
	}
	return rows
}

// BoardFromRows decodes the output of Rows. It checks shape and symbols only;
// game-level invariants are checked by FromSnapshot.
func BoardFromRows(rows []string) (*Board, error) {
	if len(rows) != BoardSize {
		return nil, fmt.Errorf("%w: board has %d rows, want %d", ErrInvalidSnapshot, len(rows), BoardSize)
	}
	b := &Board{}
	for r, row := range rows {
		if len(row) != BoardSize {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidSnapshot, r, len(row), BoardSize)
		}
		for c := 0; c < BoardSize; c++ {
			cell, err := ParseCell(row[c : c+1])
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			b[r][c] = cell
		}
	}
	return b, nil
}

func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}
