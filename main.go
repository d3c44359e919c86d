// Command fox-and-geese runs the Fox and Geese rules engine.
//
// Commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – a hot-seat game in the terminal
//  4. "validate" / "inspect" – check and describe saved games and starting positions
//
// Settings come from config.yml and the environment (a .env file is loaded
// first); flags override both.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/fox-and-geese/api"
	"github.com/wricardo/fox-and-geese/game/config"
	"github.com/wricardo/fox-and-geese/game/service"
	"github.com/wricardo/fox-and-geese/game/session"
	appconfig "github.com/wricardo/fox-and-geese/internal/config"
	"github.com/wricardo/fox-and-geese/transport/mcp"
	"github.com/wricardo/fox-and-geese/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Fox and Geese"
)

// main loads .env, builds the command tree and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "fox-and-geese",
		Usage:   AppName + " game server and terminal client",
		Version: Version,
		Reader:  in,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "settings file (optional; environment variables apply either way)",
				Sources: cli.EnvVars("FOX_CONFIG"),
			},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "debug", Usage: "shorthand for --log-level debug"},
			&cli.StringFlag{Name: "storage", Usage: "session storage: memory, file or redis"},
			&cli.StringFlag{Name: "sessions-dir", Usage: "directory for file session storage"},
			&cli.StringFlag{Name: "config-dir", Usage: "directory containing starting positions"},
		},
		// no command means serve
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
				},
				Action: serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP API when none is running",
				Action:  mcpAction,
			},
			{
				Name:  "play",
				Usage: "Play a hot-seat game in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "starting position, see the configs directory"},
					&cli.StringFlag{Name: "load", Usage: "resume a saved game (snapshot or legacy save)"},
					&cli.StringFlag{Name: "save", Value: "saved_game.json", Usage: "file written by the save command"},
					&cli.BoolFlag{Name: "legacy", Usage: "write saves in the legacy layout"},
					&cli.BoolFlag{Name: "plain", Usage: "disable colours"},
				},
				Action: playAction,
			},
			{
				Name:      "validate",
				Usage:     "Validate saved games and starting positions",
				ArgsUsage: "[file or directory ...]",
				Action:    validateAction,
			},
			{
				Name:      "inspect",
				Usage:     "Show the board and status of a saved game",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "plain", Usage: "disable colours"},
				},
				Action: inspectAction,
			},
			{
				Name:  "env",
				Usage: "List the environment variables read at startup",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, appconfig.Usage())
					return err
				},
			},
		},
	}
}

// loadSettings reads the settings file and environment, then applies flags
func loadSettings(cmd *cli.Command) (*appconfig.Config, error) {
	cfg, err := appconfig.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		cfg.HTTP.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.HTTP.Port = cmd.Int("port")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
	}
	if cmd.IsSet("storage") {
		cfg.Storage.Backend = cmd.String("storage")
	}
	if cmd.IsSet("sessions-dir") {
		cfg.Storage.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("config-dir") {
		cfg.Storage.ConfigsDir = cmd.String("config-dir")
	}
	if cmd.Bool("ngrok") {
		cfg.Ngrok.Enabled = true
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	return cfg, cfg.Validate()
}

// setup loads settings, installs the logger and wires the services
func setup(ctx context.Context, cmd *cli.Command) (*appconfig.Config, *services, *slog.Logger, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid settings: %w", err)
	}

	// stdout belongs to the MCP stdio transport and the terminal game
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	svcs, err := initializeServices(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return cfg, svcs, logger, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, svcs, logger, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer svcs.Close()

	logger.Info("starting", "app", AppName, "version", Version, "mode", "serve", "storage", cfg.Storage.Backend)
	svcs.startRoutines(ctx, cfg, logger)
	return runHTTPServer(ctx, cfg, svcs.game, logger)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, svcs, logger, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer svcs.Close()

	logger.Info("starting", "app", AppName, "version", Version, "mode", "mcp")
	return runStdioMCPWithInternalServer(ctx, cfg, svcs.game, logger)
}

// newRouter mounts the REST API, the WebSocket endpoint and the /mcp proxy endpoint
func newRouter(gameService service.GameService, hub *websocket.Hub, mcpClient *mcp.Client, logger *slog.Logger) http.Handler {
	apiServer := api.NewServer(gameService, hub, logger)

	apiServer.Router().HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}).Methods(http.MethodPost)

	return apiServer
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel. It returns once ctx is done and
// the server has shut down.
func runHTTPServer(ctx context.Context, cfg *appconfig.Config, gameService service.GameService, logger *slog.Logger) error {
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	addr := cfg.HTTP.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newRouter(gameService, hub, mcpClient, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg.Ngrok, handler, logger)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, cfg appconfig.Ngrok, handler http.Handler, logger *slog.Logger) {
	if cfg.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"mcp", ngrokURL+"/mcp")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// services holds what the commands share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	closers     []func() error
}

// Close saves every session and releases storage clients
func (s *services) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sessions.SaveAllSessions(ctx); err != nil {
		slog.Warn("failed to save sessions on exit", "error", err)
	}
	for _, c := range s.closers {
		c()
	}
}

// initializeServices wires storage, session/config managers and the game service.
func initializeServices(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*services, error) {
	configManager, err := config.NewManager(cfg.Storage.ConfigsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	svcs := &services{}
	switch cfg.Storage.Backend {
	case appconfig.BackendFile:
		persistence, err := session.NewFilePersistence(cfg.Storage.SessionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svcs.persistence = persistence
	case appconfig.BackendRedis:
		client, err := session.NewRedisClient(ctx, cfg.Redis.GetRedisAddr(), cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		svcs.persistence = session.NewRedisPersistence(client, cfg.Redis.TTL)
		svcs.closers = append(svcs.closers, client.Close)
	}

	if svcs.persistence != nil {
		svcs.sessions = session.NewManagerWithPersistence(svcs.persistence).WithLogger(logger)
		if err := svcs.sessions.LoadPersistedSessions(ctx); err != nil {
			logger.Warn("failed to load persisted sessions", "error", err)
		}
	} else {
		svcs.sessions = session.NewManager().WithLogger(logger)
	}

	svcs.game = service.NewGameService(svcs.sessions, configManager, logger)
	return svcs, nil
}

// startRoutines starts the background cleanup and storage sync loops
func (s *services) startRoutines(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) {
	go sessionCleanupRoutine(ctx, s.sessions, cfg.Session.CleanupInterval, cfg.Session.MaxAge, logger)
	if s.persistence != nil {
		go storageSyncRoutine(ctx, s.sessions, s.persistence, 5*time.Second, logger)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// storageSyncRoutine periodically drops in-memory sessions whose stored copy
// was deleted behind the server's back (a removed file or an expired Redis key).
func storageSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphans(ctx, manager, persistence, logger)
		}
	}
}

func pruneOrphans(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger *slog.Logger) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(ctx, sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Info("pruned session from memory (storage deleted)", "session", sess.ID)
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an API already listening on the configured address; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg *appconfig.Config, gameService service.GameService, logger *slog.Logger) error {
	externalURL := fmt.Sprintf("http://%s", cfg.HTTP.Addr())
	logger.Info("checking for external API server", "url", externalURL)

	baseURL := externalURL
	if apiAvailable(&http.Client{Timeout: 2 * time.Second}, externalURL) {
		logger.Info("external API server found, using it for MCP", "url", externalURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		logger.Info("started internal HTTP server for MCP stdio", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether an API answers its health check at baseURL
func apiAvailable(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < 500
}
