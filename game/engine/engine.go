package engine

import (
	"fmt"
	"slices"
)

// Engine holds one game of Fox and Geese and enforces its rules.
// An Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	board    *Board
	current  Player
	kicked   int
	history  []Move
	foxPos   Position
	legalFox []Position
	status   Status
}

// New starts a game from the standard layout with the fox to move
func New() *Engine {
	e := &Engine{
		board:   NewBoard(),
		current: FoxPlayer,
		history: []Move{},
		foxPos:  FoxStart,
		status:  FoxToMove,
	}
	e.CheckWin()
	return e
}

// Reset returns the engine to the starting position
func (e *Engine) Reset() {
	*e = *New()
}

// Board returns a copy of the grid
func (e *Engine) Board() *Board {
	return e.board.Clone()
}

// Cell returns the value at p
func (e *Engine) Cell(p Position) (Cell, error) {
	return e.board.Cell(p)
}

// CurrentPlayer returns the side to move
func (e *Engine) CurrentPlayer() Player {
	return e.current
}

// KickedCount returns how many geese the fox has captured
func (e *Engine) KickedCount() int {
	return e.kicked
}

// GeeseRemaining returns the number of geese still on the board
func (e *Engine) GeeseRemaining() int {
	return e.board.Count(Goose)
}

// History returns the applied moves in order
func (e *Engine) History() []Move {
	return slices.Clone(e.history)
}

// FoxPosition returns the cached fox square
func (e *Engine) FoxPosition() Position {
	return e.foxPos
}

// LegalFoxMoves returns the fox destinations computed by the last win check
func (e *Engine) LegalFoxMoves() []Position {
	return slices.Clone(e.legalFox)
}

// Status returns the turn-machine state
func (e *Engine) Status() Status {
	return e.status
}

// IsOver reports whether the game has been won
func (e *Engine) IsOver() bool {
	return e.status.Terminal()
}

// Winner returns the winning side, or "" while the game is running
func (e *Engine) Winner() Player {
	switch e.status {
	case FoxWon:
		return FoxPlayer
	case GeeseWon:
		return GoosePlayer
	default:
		return ""
	}
}

// ApplyMove validates and commits a move for the side to move, switches the
// turn and settles the status. On error nothing changes.
func (e *Engine) ApplyMove(start, end Position) error {
	if e.status.Terminal() {
		return ErrGameOver
	}
	if err := e.Reason(start, end); err != nil {
		return err
	}

	mover := e.current
	e.commit(Move{From: start, To: end})
	e.settle(mover)
	return nil
}

// commit performs the board update of an already validated move
func (e *Engine) commit(m Move) bool {
	e.history = append(e.history, m)

	piece := e.board.at(m.From)
	e.board[m.To.Row][m.To.Col] = piece
	e.board[m.From.Row][m.From.Col] = Empty

	if piece == Fox {
		e.foxPos = m.To
	}

	kicked := false
	if m.IsJump() {
		mid := m.Midpoint()
		if e.board.at(mid) == Goose {
			e.board[mid.Row][mid.Col] = Empty
			e.kicked++
			kicked = true
		}
	}

	e.current = e.current.Opponent()
	return kicked
}

// settle runs the win check after mover's move and advances the turn machine.
// A fox move can only end the game by reaching the kick target; a goose move
// can only end it by trapping the fox.
func (e *Engine) settle(mover Player) {
	outcome := e.CheckWin()
	switch {
	case mover == FoxPlayer && outcome == OutcomeFoxWon:
		e.status = FoxWon
	case mover == GoosePlayer && outcome == OutcomeGeeseWon:
		e.status = GeeseWon
	case e.current == FoxPlayer:
		e.status = FoxToMove
	default:
		e.status = GooseToMove
	}
}

// CheckWin evaluates the win conditions from the cached fox position and
// refreshes the legal fox move cache.
func (e *Engine) CheckWin() Outcome {
	if e.kicked >= KickTarget {
		return OutcomeFoxWon
	}

	e.legalFox = foxDestinations(e.board, e.foxPos)

	if len(e.legalFox) == 0 {
		return OutcomeGeeseWon
	}
	// Unreachable with the enumeration above (no destination equals the
	// origin); kept so behaviour matches older saves exactly.
	if len(e.legalFox) == 1 && e.legalFox[0] == e.foxPos {
		return OutcomeGeeseWon
	}
	return Ongoing
}

// ApplyTurn plays one turn for the side to move and reports the result.
// Illegal moves are reported as Rejected and leave the engine untouched.
func (e *Engine) ApplyTurn(start, end Position) TurnResult {
	m := Move{From: start, To: end}
	if e.status.Terminal() {
		return TurnResult{Outcome: Rejected, Status: e.status, Move: m, Err: ErrGameOver}
	}
	if err := e.Reason(start, end); err != nil {
		return TurnResult{Outcome: Rejected, Next: e.current, Status: e.status, Move: m, Err: err}
	}

	mover := e.current
	kicked := e.commit(m)
	e.settle(mover)

	res := TurnResult{Status: e.status, Kicked: kicked, Move: m}
	switch e.status {
	case FoxWon:
		res.Outcome = OutcomeFoxWon
	case GeeseWon:
		res.Outcome = OutcomeGeeseWon
	default:
		res.Outcome = Ongoing
		res.Next = e.current
	}
	return res
}

// FoxMove plays a fox turn; it is rejected when it is the geese's turn
func (e *Engine) FoxMove(start, end Position) TurnResult {
	return e.sideTurn(FoxPlayer, start, end)
}

// GooseMove plays a goose turn; it is rejected when it is the fox's turn
func (e *Engine) GooseMove(start, end Position) TurnResult {
	return e.sideTurn(GoosePlayer, start, end)
}

func (e *Engine) sideTurn(side Player, start, end Position) TurnResult {
	if !e.status.Terminal() && e.current != side {
		return TurnResult{
			Outcome: Rejected,
			Next:    e.current,
			Status:  e.status,
			Move:    Move{From: start, To: end},
			Err:     fmt.Errorf("%w: %s to move", ErrNotYourPiece, e.current.Name()),
		}
	}
	return e.ApplyTurn(start, end)
}

// LegalMovesFrom lists the legal destinations for the piece at from
func (e *Engine) LegalMovesFrom(from Position) []Position {
	if e.status.Terminal() || !from.InBounds() {
		return nil
	}
	var out []Position
	for r := from.Row - 2; r <= from.Row+2; r++ {
		for c := from.Col - 2; c <= from.Col+2; c++ {
			to := Pos(r, c)
			if e.IsLegalMove(from, to) {
				out = append(out, to)
			}
		}
	}
	return out
}

// LegalMoves lists every legal move for the side to move
func (e *Engine) LegalMoves() []Move {
	if e.status.Terminal() {
		return nil
	}
	piece := e.current.Piece()
	var out []Move
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			from := Pos(r, c)
			if e.board.at(from) != piece {
				continue
			}
			for _, to := range e.LegalMovesFrom(from) {
				out = append(out, Move{From: from, To: to})
			}
		}
	}
	return out
}

// Clone returns an independent copy of the engine
func (e *Engine) Clone() *Engine {
	return &Engine{
		board:    e.board.Clone(),
		current:  e.current,
		kicked:   e.kicked,
		history:  slices.Clone(e.history),
		foxPos:   e.foxPos,
		legalFox: slices.Clone(e.legalFox),
		status:   e.status,
	}
}
