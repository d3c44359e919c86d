package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Snapshot is the serializable state of an Engine
type Snapshot struct {
	Board         []string `json:"board"`
	CurrentPlayer Player   `json:"current_player"`
	KickedCount   int      `json:"kicked_count"`
	History       []Move   `json:"history"`
}

// ToSnapshot captures the full game state
func (e *Engine) ToSnapshot() Snapshot {
	history := slices.Clone(e.history)
	if history == nil {
		history = []Move{}
	}
	return Snapshot{
		Board:         e.board.Rows(),
		CurrentPlayer: e.current,
		KickedCount:   e.kicked,
		History:       history,
	}
}

// MarshalJSON encodes the engine as its snapshot
func (e *Engine) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToSnapshot())
}

// FromSnapshot rebuilds an engine. The fox cache is found by scanning the
// board; the legal move cache and status are recomputed.
func FromSnapshot(s Snapshot) (*Engine, error) {
	b, err := BoardFromRows(s.Board)
	if err != nil {
		return nil, err
	}
	if err := validateBoard(b); err != nil {
		return nil, err
	}
	if !s.CurrentPlayer.Valid() {
		return nil, fmt.Errorf("%w: unknown player %q", ErrInvalidSnapshot, s.CurrentPlayer)
	}
	if s.KickedCount < 0 || s.KickedCount > InitialGeese {
		return nil, fmt.Errorf("%w: kicked count %d outside [0,%d]", ErrInvalidSnapshot, s.KickedCount, InitialGeese)
	}
	if geese := b.Count(Goose); geese+s.KickedCount > InitialGeese {
		return nil, fmt.Errorf("%w: %d geese on board with %d kicked exceeds %d", ErrInvalidSnapshot, geese, s.KickedCount, InitialGeese)
	}
	for i, m := range s.History {
		if !m.From.InBounds() || !m.To.InBounds() {
			return nil, fmt.Errorf("%w: history entry %d (%s) out of bounds", ErrInvalidSnapshot, i, m)
		}
	}

	fox, _ := b.Find(Fox)
	history := slices.Clone(s.History)
	if history == nil {
		history = []Move{}
	}
	e := &Engine{
		board:   b,
		current: s.CurrentPlayer,
		kicked:  s.KickedCount,
		history: history,
		foxPos:  fox,
	}

	outcome := e.CheckWin()
	switch {
	case outcome == OutcomeFoxWon:
		e.status = FoxWon
	case outcome == OutcomeGeeseWon && e.current == FoxPlayer:
		e.status = GeeseWon
	case e.current == FoxPlayer:
		e.status = FoxToMove
	default:
		e.status = GooseToMove
	}
	return e, nil
}

func validateBoard(b *Board) error {
	foxes := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			p := Pos(r, c)
			cell := b[r][c]
			if Playable(p) == (cell == Invalid) {
				return fmt.Errorf("%w: cell %s is %s", ErrInvalidSnapshot, p, cell)
			}
			if cell == Fox {
				foxes++
			}
		}
	}
	if foxes != 1 {
		return fmt.Errorf("%w: board has %d foxes, want 1", ErrInvalidSnapshot, foxes)
	}
	return nil
}

// snapshotWire distinguishes missing fields from zero values
type snapshotWire struct {
	Board         []string `json:"board"`
	CurrentPlayer *Player  `json:"current_player"`
	KickedCount   *int     `json:"kicked_count"`
	History       []Move   `json:"history"`
}

// Load decodes a canonical snapshot document
func Load(data []byte) (*Engine, error) {
	var w snapshotWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	switch {
	case w.Board == nil:
		return nil, fmt.Errorf("%w: missing board", ErrInvalidSnapshot)
	case w.CurrentPlayer == nil:
		return nil, fmt.Errorf("%w: missing current_player", ErrInvalidSnapshot)
	case w.KickedCount == nil:
		return nil, fmt.Errorf("%w: missing kicked_count", ErrInvalidSnapshot)
	case w.History == nil:
		return nil, fmt.Errorf("%w: missing history", ErrInvalidSnapshot)
	}
	return FromSnapshot(Snapshot{
		Board:         w.Board,
		CurrentPlayer: *w.CurrentPlayer,
		KickedCount:   *w.KickedCount,
		History:       w.History,
	})
}

// legacySave is the save file layout written by the original browser game:
// a board of single-character strings and history entries of [[r,c],[r,c]].
type legacySave struct {
	GameBoard *struct {
		Board [][]string `json:"board"`
	} `json:"gameBoard"`
	CurrentPlayer *Player    `json:"currentPlayer"`
	GeeseKicked   *int       `json:"geeseKicked"`
	MoveHistory   [][][2]int `json:"moveHistory"`
}

// ErrUnknownFormat is returned by DecodeSnapshot when data is neither format
var ErrUnknownFormat = fmt.Errorf("%w: unrecognised save format", ErrInvalidSnapshot)

// DecodeSnapshot accepts either a canonical snapshot or a legacy save file
func DecodeSnapshot(data []byte) (*Engine, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if _, ok := probe["board"]; ok {
		return Load(data)
	}
	if _, ok := probe["gameBoard"]; ok {
		return loadLegacy(data)
	}
	return nil, ErrUnknownFormat
}

func loadLegacy(data []byte) (*Engine, error) {
	var l legacySave
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if l.GameBoard == nil || l.GameBoard.Board == nil {
		return nil, fmt.Errorf("%w: missing gameBoard.board", ErrInvalidSnapshot)
	}
	if l.CurrentPlayer == nil {
		return nil, fmt.Errorf("%w: missing currentPlayer", ErrInvalidSnapshot)
	}
	if l.GeeseKicked == nil {
		return nil, fmt.Errorf("%w: missing geeseKicked", ErrInvalidSnapshot)
	}
	if l.MoveHistory == nil {
		return nil, fmt.Errorf("%w: missing moveHistory", ErrInvalidSnapshot)
	}

	rows := make([]string, len(l.GameBoard.Board))
	for r, row := range l.GameBoard.Board {
		for c, sym := range row {
			if len(sym) != 1 {
				return nil, fmt.Errorf("%w: row %d col %d holds %q", ErrInvalidSnapshot, r, c, sym)
			}
		}
		rows[r] = joinSymbols(row)
	}

	history := make([]Move, 0, len(l.MoveHistory))
	for i, entry := range l.MoveHistory {
		if len(entry) != 2 {
			return nil, fmt.Errorf("%w: history entry %d has %d positions", ErrInvalidSnapshot, i, len(entry))
		}
		history = append(history, Move{
			From: Pos(entry[0][0], entry[0][1]),
			To:   Pos(entry[1][0], entry[1][1]),
		})
	}

	return FromSnapshot(Snapshot{
		Board:         rows,
		CurrentPlayer: *l.CurrentPlayer,
		KickedCount:   *l.GeeseKicked,
		History:       history,
	})
}

// EncodeLegacy writes the snapshot in the legacy save layout
func EncodeLegacy(s Snapshot) ([]byte, error) {
	if len(s.Board) != BoardSize {
		return nil, errors.New("snapshot board must have 9 rows")
	}
	board := make([][]string, len(s.Board))
	for r, row := range s.Board {
		board[r] = make([]string, len(row))
		for c := range row {
			board[r][c] = row[c : c+1]
		}
	}
	history := make([][2][2]int, len(s.History))
	for i, m := range s.History {
		history[i] = [2][2]int{{m.From.Row, m.From.Col}, {m.To.Row, m.To.Col}}
	}
	out := map[string]any{
		"gameBoard":     map[string]any{"board": board},
		"currentPlayer": s.CurrentPlayer,
		"geeseKicked":   s.KickedCount,
		"moveHistory":   history,
	}
	return json.MarshalIndent(out, "", "  ")
}

func joinSymbols(row []string) string {
	var buf bytes.Buffer
	for _, s := range row {
		buf.WriteString(s)
	}
	return buf.String()
}
