package engine

import (
	"encoding/json"
	"fmt"
)

// Cell is the content of a single board square
type Cell uint8

const (
	Empty Cell = iota
	Fox
	Goose
	Invalid
)

const (
	// BoardSize is the width and height of the grid
	BoardSize = 9

	// KickTarget is the number of kicked geese that wins the game for the fox
	KickTarget = 10

	// InitialGeese is the number of geese placed by NewBoard
	InitialGeese = 18
)

// Symbols used by saved games and text output
const (
	SymbolEmpty   = "-"
	SymbolFox     = "F"
	SymbolGoose   = "G"
	SymbolInvalid = " "
)

// Symbol returns the single-character encoding of the cell
func (c Cell) Symbol() string {
	switch c {
	case Fox:
		return SymbolFox
	case Goose:
		return SymbolGoose
	case Invalid:
		return SymbolInvalid
	default:
		return SymbolEmpty
	}
}

func (c Cell) String() string {
	switch c {
	case Fox:
		return "fox"
	case Goose:
		return "goose"
	case Invalid:
		return "invalid"
	default:
		return "empty"
	}
}

// ParseCell decodes a cell symbol
func ParseCell(symbol string) (Cell, error) {
	switch symbol {
	case SymbolEmpty:
		return Empty, nil
	case SymbolFox:
		return Fox, nil
	case SymbolGoose:
		return Goose, nil
	case SymbolInvalid:
		return Invalid, nil
	default:
		return Empty, fmt.Errorf("%w: unknown cell symbol %q", ErrInvalidSnapshot, symbol)
	}
}

// Player identifies a side
type Player string

const (
	FoxPlayer   Player = "F"
	GoosePlayer Player = "G"
)

// Piece returns the cell value the player moves
func (p Player) Piece() Cell {
	if p == FoxPlayer {
		return Fox
	}
	return Goose
}

// Opponent returns the other side
func (p Player) Opponent() Player {
	if p == FoxPlayer {
		return GoosePlayer
	}
	return FoxPlayer
}

// Valid reports whether p is one of the two sides
func (p Player) Valid() bool {
	return p == FoxPlayer || p == GoosePlayer
}

func (p Player) Name() string {
	if p == FoxPlayer {
		return "Fox"
	}
	return "Geese"
}

// Status is the state of the game's turn machine
type Status string

const (
	FoxToMove   Status = "fox_to_move"
	GooseToMove Status = "goose_to_move"
	FoxWon      Status = "fox_won"
	GeeseWon    Status = "geese_won"
)

// Terminal reports whether no further moves are accepted
func (s Status) Terminal() bool {
	return s == FoxWon || s == GeeseWon
}

// Outcome is what a win check or a turn produced
type Outcome string

const (
	Ongoing         Outcome = "ongoing"
	OutcomeFoxWon   Outcome = "fox_won"
	OutcomeGeeseWon Outcome = "geese_won"
	Rejected        Outcome = "rejected"
)

// Position is a grid coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos is shorthand for Position{Row: row, Col: col}
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// InBounds reports whether the position lies on the 9x9 grid
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// Add offsets the position
func (p Position) Add(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// Move is a start/end pair submitted by the side to move
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func (m Move) String() string {
	return m.From.String() + "-" + m.To.String()
}

// IsJump reports whether the move covers two squares in a straight or diagonal line
func (m Move) IsJump() bool {
	dr, dc := abs(m.To.Row-m.From.Row), abs(m.To.Col-m.From.Col)
	return max(dr, dc) == 2 && (dr == 0 || dc == 0 || dr == dc)
}

// Midpoint returns the square jumped over; only meaningful when IsJump is true
func (m Move) Midpoint() Position {
	return Position{Row: (m.From.Row + m.To.Row) / 2, Col: (m.From.Col + m.To.Col) / 2}
}

// TurnResult reports what a turn produced
type TurnResult struct {
	Outcome Outcome `json:"outcome"`
	Next    Player  `json:"next,omitempty"`
	Status  Status  `json:"status"`
	Kicked  bool    `json:"kicked"`
	Move    Move    `json:"move"`
	Err     error   `json:"-"`
}

// Accepted reports whether the move was applied
func (r TurnResult) Accepted() bool {
	return r.Outcome != Rejected
}

// MarshalJSON encodes the rejection reason as text
func (r TurnResult) MarshalJSON() ([]byte, error) {
	type alias TurnResult
	out := struct {
		alias
		Reason string `json:"reason,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Reason = r.Err.Error()
	}
	return json.Marshal(out)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
