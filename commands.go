package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/notation"
	"github.com/wricardo/fox-and-geese/game/render"
	"github.com/wricardo/fox-and-geese/game/service"
	appconfig "github.com/wricardo/fox-and-geese/internal/config"
	"github.com/wricardo/fox-and-geese/validate"
)

func renderer(cmd *cli.Command) *render.Renderer {
	if cmd.Bool("plain") {
		return render.New(termenv.Ascii)
	}
	return render.NewFromEnv()
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	// a terminal game keeps its session in memory and its logs quiet unless asked otherwise
	if !cmd.IsSet("storage") {
		cfg.Storage.Backend = appconfig.BackendMemory
	}
	if !cmd.IsSet("log-level") && !cmd.Bool("debug") {
		cfg.LogLevel = "warn"
	}
	logger := cfg.NewLogger(os.Stderr)

	svcs, err := initializeServices(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	var info *service.SessionInfo
	if path := cmd.String("load"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read saved game: %w", err)
		}
		e, err := engine.DecodeSnapshot(data)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		info, err = svcs.game.ImportSession(ctx, e.ToSnapshot())
		if err != nil {
			return err
		}
	} else {
		info, err = svcs.game.CreateSession(ctx, cmd.String("start"))
		if err != nil {
			return err
		}
	}

	game := &terminalGame{
		svc:      svcs.game,
		id:       info.ID,
		r:        renderer(cmd),
		in:       bufio.NewScanner(cmd.Root().Reader),
		out:      cmd.Root().Writer,
		savePath: cmd.String("save"),
		legacy:   cmd.Bool("legacy"),
	}
	return game.run(ctx)
}

// terminalGame is a hot-seat game: both sides type at the same terminal
type terminalGame struct {
	svc      service.GameService
	id       string
	r        *render.Renderer
	in       *bufio.Scanner
	out      io.Writer
	savePath string
	legacy   bool
}

func (g *terminalGame) engine(ctx context.Context) (*engine.Engine, error) {
	snap, err := g.svc.ExportSnapshot(ctx, g.id)
	if err != nil {
		return nil, err
	}
	return engine.FromSnapshot(*snap)
}

func (g *terminalGame) run(ctx context.Context) error {
	fmt.Fprintln(g.out, g.r.Legend())

	for {
		e, err := g.engine(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(g.out, "\n"+g.r.Game(e))

		if e.IsOver() {
			fmt.Fprintf(g.out, "\nGame over. %s\n", service.NewGameState(e).Message)
			return nil
		}

		fmt.Fprint(g.out, notation.Prompt(e.CurrentPlayer()))
		if !g.in.Scan() {
			// end of input
			fmt.Fprintln(g.out)
			return g.in.Err()
		}

		input, err := notation.Parse(g.in.Text(), e.CurrentPlayer(), e.FoxPosition())
		if err != nil {
			fmt.Fprintf(g.out, "%v\n", err)
			continue
		}

		switch input.Command {
		case notation.CommandExit:
			fmt.Fprintln(g.out, "Goodbye.")
			return nil

		case notation.CommandSave:
			if err := g.save(ctx); err != nil {
				fmt.Fprintf(g.out, "Save failed: %v\n", err)
				continue
			}
			fmt.Fprintf(g.out, "Game saved to %s\n", g.savePath)

		case notation.CommandUndo:
			if _, err := g.svc.Undo(ctx, g.id); err != nil {
				if errors.Is(err, service.ErrNothingToUndo) {
					fmt.Fprintln(g.out, "Nothing to undo.")
					continue
				}
				return err
			}
			fmt.Fprintln(g.out, "Move undone.")

		default:
			result, err := g.svc.Move(ctx, g.id, input.Move)
			if err != nil {
				if result == nil {
					return err
				}
				fmt.Fprintf(g.out, "Illegal move %s: %s\n", input.Move, result.Reason)
				continue
			}
			if result.Kicked {
				fmt.Fprintf(g.out, "Goose at %s kicked!\n", input.Move.Midpoint())
			}
		}
	}
}

func (g *terminalGame) save(ctx context.Context) error {
	snap, err := g.svc.ExportSnapshot(ctx, g.id)
	if err != nil {
		return err
	}

	var data []byte
	if g.legacy {
		data, err = engine.EncodeLegacy(*snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(g.savePath, data, 0o644)
}

// validateAction checks every file named on the command line; directories
// are scanned for *.json. With no arguments the configs directory is checked.
func validateAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		dir := cmd.String("config-dir")
		if dir == "" {
			dir = "configs"
		}
		paths = []string{dir}
	}

	var results []validate.Result
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			results = append(results, validate.File(path))
			continue
		}
		found, err := validate.Dir(path)
		if err != nil {
			return err
		}
		results = append(results, found...)
	}

	allValid := true
	for _, result := range results {
		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(out, "  ✓ "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return errors.New("❌ Some files have errors")
	}
	fmt.Fprintf(out, "✅ All %d files are valid!\n", len(results))
	return nil
}

// inspectAction prints a saved game the way the terminal game shows it
func inspectAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("inspect needs exactly one file")
	}
	out := cmd.Root().Writer

	result := validate.File(cmd.Args().First())
	if !result.Valid {
		return fmt.Errorf("%s: %s", result.File, strings.Join(result.Errors, "; "))
	}
	e := result.Engine
	r := renderer(cmd)

	fmt.Fprintln(out, r.Game(e))
	fmt.Fprintln(out, r.Legend())
	fmt.Fprintln(out)
	for _, info := range result.Info {
		fmt.Fprintln(out, info)
	}

	moves := e.LegalMoves()
	if len(moves) == 0 {
		fmt.Fprintln(out, "No legal moves.")
		return nil
	}
	notations := make([]string, len(moves))
	for i, m := range moves {
		notations[i] = notation.FormatMove(m)
	}
	fmt.Fprintf(out, "Legal moves for %s (%d): %s\n", e.CurrentPlayer().Name(), len(moves), strings.Join(notations, " "))
	return nil
}
