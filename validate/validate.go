// Package validate checks saved games and starting-position files. It
// accepts:
//   - canonical snapshots {"board", "current_player", "kicked_count", "history"}
//   - legacy saves {"gameBoard": {"board"}, "currentPlayer", "geeseKicked", "moveHistory"}
//   - starting positions {"name", "description", "position": <snapshot>}
//
// Structural errors come from the engine's own snapshot validation. On top of
// that each file is replayed: when its history starts from the standard
// layout, replaying it must reproduce the saved board.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/service"
)

// Format names reported in Result.Format
const (
	FormatSnapshot = "snapshot"
	FormatLegacy   = "legacy"
	FormatConfig   = "config"
)

// Result captures the outcome of validating a single file.
// Errors is empty when Valid is true; Info lists what was found.
type Result struct {
	File   string
	Format string
	Valid  bool
	Errors []string
	Info   []string
	Engine *engine.Engine
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) info(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// File loads and validates one file
func File(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		r := Result{File: filepath.Base(path)}
		r.fail("Failed to read file: %v", err)
		return r
	}
	return Data(filepath.Base(path), data)
}

// Data validates the contents of a file named name
func Data(name string, data []byte) Result {
	result := Result{
		File:   name,
		Valid:  true,
		Errors: []string{},
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	var (
		e   *engine.Engine
		err error
	)
	switch {
	case probe["position"] != nil:
		result.Format = FormatConfig
		var cfg service.GameConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			result.fail("Invalid configuration: %v", err)
			return result
		}
		if cfg.Name == "" {
			result.info("Name: (none, the file name is used)")
		} else {
			result.info("Name: %s", cfg.Name)
		}
		e, err = cfg.NewEngine()
	case probe["gameBoard"] != nil:
		result.Format = FormatLegacy
		e, err = engine.DecodeSnapshot(data)
	default:
		result.Format = FormatSnapshot
		e, err = engine.DecodeSnapshot(data)
	}
	if err != nil {
		result.fail("%v", err)
		return result
	}

	result.Engine = e
	describe(&result, e)
	checkReplay(&result, e)
	return result
}

func describe(r *Result, e *engine.Engine) {
	r.info("Format: %s", r.Format)
	r.info("Status: %s", e.Status())
	r.info("To move: %s", e.CurrentPlayer().Name())
	r.info("Kicked: %d/%d", e.KickedCount(), engine.KickTarget)
	r.info("Geese on board: %d", e.GeeseRemaining())
	r.info("Fox at %s with %d legal moves", e.FoxPosition(), len(e.LegalFoxMoves()))
	r.info("Moves played: %d", len(e.History()))
}

// checkReplay plays the history from the standard layout. A history that
// fails on its first move belongs to a custom start and is only noted; one
// that starts cleanly but diverges is an error.
func checkReplay(r *Result, e *engine.Engine) {
	history := e.History()
	if len(history) == 0 {
		return
	}

	replay := engine.New()
	for i, m := range history {
		if err := replay.ApplyMove(m.From, m.To); err != nil {
			if i == 0 {
				r.info("History does not start from the standard layout; replay skipped")
				return
			}
			r.fail("History move %d (%s) cannot be replayed: %v", i+1, m, err)
			return
		}
	}

	switch {
	case !slices.Equal(replay.Board().Rows(), e.Board().Rows()):
		r.fail("Replaying %d history moves does not reproduce the saved board", len(history))
	case replay.KickedCount() != e.KickedCount():
		r.fail("Replay kicked %d geese but the file records %d", replay.KickedCount(), e.KickedCount())
	case replay.CurrentPlayer() != e.CurrentPlayer():
		r.fail("Replay leaves %s to move but the file records %s", replay.CurrentPlayer().Name(), e.CurrentPlayer().Name())
	default:
		r.info("History replays from the standard layout")
	}
}

// Dir validates every *.json file in dir, sorted by name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	slices.Sort(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}
