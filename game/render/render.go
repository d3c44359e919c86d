// Package render draws a game as text for terminals.
package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/termenv"

	"github.com/wricardo/fox-and-geese/game/engine"
)

const (
	foxColor   = "#E8A33D"
	gooseColor = "#F2F2F2"
	markColor  = "#5FAF5F"
	dimColor   = "#6C6C6C"
)

// Renderer formats boards for one terminal colour profile
type Renderer struct {
	profile termenv.Profile
}

// New returns a renderer for profile. termenv.Ascii gives plain text.
func New(profile termenv.Profile) *Renderer {
	return &Renderer{profile: profile}
}

// NewFromEnv detects the profile from the environment (TERM, NO_COLOR, ...)
func NewFromEnv() *Renderer {
	return New(termenv.EnvColorProfile())
}

func (r *Renderer) paint(s, color string, bold bool) string {
	if r.profile == termenv.Ascii {
		return s
	}
	st := r.profile.String(s).Foreground(r.profile.Color(color))
	if bold {
		st = st.Bold()
	}
	return st.String()
}

// Board draws the grid with row and column indices. Squares in marks are
// drawn as '*' when empty.
func (r *Renderer) Board(b *engine.Board, marks ...engine.Position) string {
	var sb strings.Builder

	sb.WriteString("   ")
	for c := 0; c < engine.BoardSize; c++ {
		sb.WriteString(r.paint(fmt.Sprintf("%d ", c), dimColor, false))
	}
	sb.WriteString("\n")

	for row := 0; row < engine.BoardSize; row++ {
		sb.WriteString(r.paint(fmt.Sprintf("%d  ", row), dimColor, false))
		for col := 0; col < engine.BoardSize; col++ {
			p := engine.Pos(row, col)
			cell := b.MustCell(p)
			switch {
			case cell == engine.Fox:
				sb.WriteString(r.paint(engine.SymbolFox, foxColor, true))
			case cell == engine.Goose:
				sb.WriteString(r.paint(engine.SymbolGoose, gooseColor, true))
			case cell == engine.Empty && slices.Contains(marks, p):
				sb.WriteString(r.paint("*", markColor, true))
			case cell == engine.Empty:
				sb.WriteString(r.paint(engine.SymbolEmpty, dimColor, false))
			default:
				sb.WriteString(" ")
			}
			if col < engine.BoardSize-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Status summarises whose turn it is and the capture count
func (r *Renderer) Status(e *engine.Engine) string {
	var head string
	switch e.Status() {
	case engine.FoxWon:
		head = r.paint("The Fox wins!", foxColor, true)
	case engine.GeeseWon:
		head = r.paint("The Geese win!", gooseColor, true)
	default:
		head = e.CurrentPlayer().Name() + " to move"
	}
	return fmt.Sprintf("%s | Geese kicked: %d/%d | Geese left: %d",
		head, e.KickedCount(), engine.KickTarget, e.GeeseRemaining())
}

// Game draws the board followed by the status line. While the fox is to move
// its legal destinations are marked.
func (r *Renderer) Game(e *engine.Engine) string {
	var marks []engine.Position
	if e.Status() == engine.FoxToMove {
		marks = e.LegalFoxMoves()
	}
	return r.Board(e.Board(), marks...) + "\n" + r.Status(e) + "\n"
}

// Legend explains the board symbols
func (r *Renderer) Legend() string {
	return strings.Join([]string{
		r.paint(engine.SymbolFox, foxColor, true) + " fox",
		r.paint(engine.SymbolGoose, gooseColor, true) + " goose",
		r.paint(engine.SymbolEmpty, dimColor, false) + " empty",
		r.paint("*", markColor, true) + " fox can move here",
	}, "   ")
}
