// Package notation reads and writes the short text form players type at the
// terminal: "r,c" for a fox destination, "r,c-r,c" for a full move, and the
// words save, exit and undo.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/fox-and-geese/game/engine"
)

var ErrSyntax = errors.New("unrecognised input")

// Command is a non-move instruction
type Command string

const (
	CommandNone Command = ""
	CommandSave Command = "save"
	CommandExit Command = "exit"
	CommandUndo Command = "undo"
)

// Input is one parsed line. Exactly one of Command or Move is set.
type Input struct {
	Command Command
	Move    engine.Move
}

// IsCommand reports whether the line was a command rather than a move
func (in Input) IsCommand() bool {
	return in.Command != CommandNone
}

// ParsePosition parses "r,c" with both coordinates on the grid
func ParsePosition(s string) (engine.Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return engine.Position{}, fmt.Errorf("%w: position %q, want r,c", ErrSyntax, s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("%w: row %q", ErrSyntax, parts[0])
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("%w: column %q", ErrSyntax, parts[1])
	}
	p := engine.Pos(row, col)
	if !p.InBounds() {
		return engine.Position{}, fmt.Errorf("%w: %s", engine.ErrOutOfBounds, p)
	}
	return p, nil
}

// ParseMove parses "r,c-r,c"
func ParseMove(s string) (engine.Move, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return engine.Move{}, fmt.Errorf("%w: move %q, want r,c-r,c", ErrSyntax, s)
	}
	start, err := ParsePosition(from)
	if err != nil {
		return engine.Move{}, err
	}
	end, err := ParsePosition(to)
	if err != nil {
		return engine.Move{}, err
	}
	return engine.Move{From: start, To: end}, nil
}

// Parse reads a line typed by side. The fox may give only its destination,
// in which case the move starts from fox.
func Parse(line string, side engine.Player, fox engine.Position) (Input, error) {
	line = strings.TrimSpace(line)
	switch Command(strings.ToLower(line)) {
	case CommandSave:
		return Input{Command: CommandSave}, nil
	case CommandExit:
		return Input{Command: CommandExit}, nil
	case CommandUndo:
		return Input{Command: CommandUndo}, nil
	}

	if line == "" {
		return Input{}, fmt.Errorf("%w: empty input", ErrSyntax)
	}

	if strings.Contains(line, "-") {
		m, err := ParseMove(line)
		if err != nil {
			return Input{}, err
		}
		return Input{Move: m}, nil
	}

	if side != engine.FoxPlayer {
		return Input{}, fmt.Errorf("%w: geese moves need a start square, e.g. 3,4-4,4", ErrSyntax)
	}
	to, err := ParsePosition(line)
	if err != nil {
		return Input{}, err
	}
	return Input{Move: engine.Move{From: fox, To: to}}, nil
}

// FormatMove writes m the way Parse reads it
func FormatMove(m engine.Move) string {
	return m.String()
}

// Prompt returns the input hint for side
func Prompt(side engine.Player) string {
	if side == engine.FoxPlayer {
		return "Fox, enter destination (r,c) or save/undo/exit: "
	}
	return "Geese, enter move (r,c-r,c) or save/undo/exit: "
}
