package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/muesli/termenv"

	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/render"
	"github.com/wricardo/fox-and-geese/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	renderer   *render.Renderer
}

// APIError is a non-2xx answer from the REST API
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d", e.Status)
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// tool output is read by models, not terminals
		renderer: render.New(termenv.Ascii),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Fox and Geese",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Fox and Geese - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
One player is the Fox (F), the other the Geese (G). The Fox wins by kicking 10 geese.
The Geese win by surrounding the Fox so it cannot move.

AVAILABLE TOOLS:
- create_session: Start a new game, optionally from a named starting position
- import_session: Start a game from a saved snapshot
- list_sessions / get_session: Inspect sessions
- game_state: Board, side to move, kicked count and the fox's legal moves
- move: Play a move for the side to move, e.g. "7,4-6,4" - requires intent explanation
- legal_moves: List legal moves, optionally from one square
- undo: Take back the last move
- reset_game: Return to the starting position
- move_history: View past moves
- list_configs: List starting positions
- describe_cell: Explain one square of the board
- game_rules: Complete rules

Coordinates are row,col with 0,0 in the top left corner.

NOTE: The 'intent' parameter on the move tool serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with an optional starting position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Starting position to use, see list_configs (optional, defaults to standard)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "import_session",
		Description: "Create a session from a saved game. Accepts the snapshot JSON or the legacy save layout.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"snapshot": map[string]any{
					"type":        "string",
					"description": "Saved game as a JSON string",
				},
			},
			Required: []string{"snapshot"},
		},
	}, c.handleImportSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board and game status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Play one move for the side to move, written as \"row,col-row,col\"",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"move": map[string]any{
					"type":        "string",
					"description": "Move in r,c-r,c notation, e.g. 7,4-6,4",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "move"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the legal moves for the side to move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"from": map[string]any{
					"type":        "string",
					"description": "Only moves starting at this square, as r,c (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Take back the last move or reset",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its starting position",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available starting positions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Explain one square: what is on it and, for the fox, where it can go",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"row": map[string]any{
					"type":        "integer",
					"description": "Row (0-8)",
				},
				"col": map[string]any{
					"type":        "integer",
					"description": "Column (0-8)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete rules of Fox and Geese",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reqBody = bytes.NewReader(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Body: data}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil {
		return json.Unmarshal(data, result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID := request.GetString("config_id", "")

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, c.formatGameState(session.GameState))), nil
}

func (c *Client) handleImportSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := request.RequireString("snapshot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions/import", []byte(snapshot), &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Imported session: %s\n\n%s",
		session.ID, c.formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = ", " + s.GameState.Message
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Created: %s%s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state service.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	move, err := request.RequireString("move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = request.GetString("intent", "")

	var result service.MoveResult
	err = c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/move"), map[string]string{"notation": move}, &result)
	if err != nil {
		var apiErr *APIError
		// a rejected move still reports the unchanged state
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity &&
			json.Unmarshal(apiErr.Body, &result) == nil && result.GameState != nil {
			return mcp.NewToolResultError(c.formatMoveResult(&result)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatMoveResult(&result)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := sessionPath(sessionID, "/legal-moves")
	from := request.GetString("from", "")
	if from != "" {
		path += "?from=" + url.QueryEscape(from)
	}

	var response struct {
		Count     int      `json:"count"`
		Notations []string `json:"notations"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		if from != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No legal moves from %s", from)), nil
		}
		return mcp.NewToolResultText("No legal moves"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Legal moves (%d):\n%s",
		response.Count, strings.Join(response.Notations, "\n"))), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateChange(ctx, request, "/undo")
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateChange(ctx, request, "/reset")
}

// stateChange posts to an endpoint answering {message, state}
func (c *Client) stateChange(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string             `json:"message"`
		State   *service.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, suffix), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, c.formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Starting Positions:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n", config.Name, config.ConfigID)
		if config.Description != "" {
			fmt.Fprintf(&result, "  %s\n", config.Description)
		}
		fmt.Fprintf(&result, "  Geese: %d, Kicked: %d, To move: %s\n\n",
			config.GeeseCount, config.KickedCount, config.CurrentPlayer.Name())
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := engine.Pos(row, col)
	if !p.InBounds() {
		return mcp.NewToolResultError(fmt.Sprintf("Square (%d,%d) is out of bounds. The board is %dx%d (0-%d for row and col)",
			row, col, engine.BoardSize, engine.BoardSize, engine.BoardSize-1)), nil
	}

	var state service.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board, err := engine.BoardFromRows(state.Board)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(describeCell(board, p, &state)), nil
}

func describeCell(board *engine.Board, p engine.Position, state *service.GameState) string {
	cell := board.MustCell(p)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Square %s: ", p)
	switch cell {
	case engine.Fox:
		sb.WriteString("the Fox (F)\n")
		if len(state.LegalFoxMoves) == 0 {
			sb.WriteString("The fox has no legal moves.")
			break
		}
		dests := make([]string, len(state.LegalFoxMoves))
		for i, d := range state.LegalFoxMoves {
			dests[i] = d.String()
			if (engine.Move{From: p, To: d}).IsJump() {
				dests[i] += " (jump)"
			}
		}
		fmt.Fprintf(&sb, "Fox destinations: %s", strings.Join(dests, ", "))
	case engine.Goose:
		sb.WriteString("a Goose (G)\nGeese step one square in any direction onto an empty square and never jump.")
		if neighbourOf(p, state.FoxPosition) {
			sb.WriteString("\nThis goose is next to the fox.")
		}
	case engine.Empty:
		sb.WriteString("empty (-)")
		for _, d := range state.LegalFoxMoves {
			if d == p {
				sb.WriteString("\nThe fox can move here.")
			}
		}
	default:
		sb.WriteString("off the board. Only the cross-shaped area is playable.")
	}
	return sb.String()
}

func neighbourOf(a, b engine.Position) bool {
	dr, dc := a.Row-b.Row, a.Col-b.Col
	return a != b && dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `Fox and Geese - Complete Rules

THE BOARD:
A 9x9 grid where only a cross-shaped area is playable: rows 3-5 across the
whole width and columns 3-5 down the whole height. Squares outside the cross
are shown blank and can never be entered.

     0 1 2 3 4 5 6 7 8
  0        G G G
  1        G G G
  2        G G G
  3  G G G G G G G G G
  4  - - - - - - - - -
  5  - - - - - - - - -
  6        - - -
  7        - F -
  8        - - -

PIECES:
• F - the Fox, starting at 7,4
• G - 18 Geese, filling the top arm and row 3
• - - an empty playable square

TURNS:
The Fox moves first, then the sides alternate. A rejected move does not
change the turn; try again.

FOX MOVES:
• Step one square in any of the eight directions onto an empty square, or
• Jump in a straight or diagonal line over an adjacent goose onto the empty
  square directly behind it. The jumped goose is kicked off the board.
  Only one jump per turn.

GEESE MOVES:
• Step one square in any of the eight directions onto an empty square.
• Geese never jump and cannot be moved onto the fox.

WINNING:
• The Fox wins once 10 geese have been kicked.
• The Geese win when the Fox has no legal step or jump left.
• Once the game is over no further moves are accepted. Use undo or reset_game.

MOVE FORMAT:
"row,col-row,col", for example 7,4-6,4 moves the fox up one square.

STRATEGY HINTS:
• Fox: look for geese with an empty square behind them. Use legal_moves or
  describe_cell on the fox to see every destination, jumps included.
• Geese: advance as a solid line and never leave a goose with a gap behind it
  next to the fox. Fill the squares the fox could jump into.

Good luck!`

// Formatting helpers

func (c *Client) formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nUndo depth: %d\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.UndoDepth,
		c.formatGameState(session.GameState))
}

func (c *Client) formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "To move: %s | Kicked: %d/%d | Geese left: %d | Moves: %d\n\n",
		state.CurrentPlayer.Name(), state.KickedCount, state.KickTarget, state.GeeseRemaining, state.MoveCount)

	if board, err := engine.BoardFromRows(state.Board); err == nil {
		var marks []engine.Position
		if state.Status == engine.FoxToMove {
			marks = state.LegalFoxMoves
		}
		result.WriteString(c.renderer.Board(board, marks...))
		if len(marks) > 0 {
			result.WriteString("(* = fox can move here)\n")
		}
	}

	if state.GameOver {
		if state.Winner == engine.FoxPlayer {
			result.WriteString("\n🦊 FOX WINS")
		} else {
			result.WriteString("\n🪿 GEESE WIN")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func (c *Client) formatMoveResult(result *service.MoveResult) string {
	var response strings.Builder
	if result.Accepted {
		fmt.Fprintf(&response, "✓ Move %s accepted\n", result.Move)
	} else {
		fmt.Fprintf(&response, "✗ Move %s rejected: %s\n", result.Move, result.Reason)
	}
	if result.Kicked {
		fmt.Fprintf(&response, "Goose at %s kicked!\n", result.Move.Midpoint())
	}
	response.WriteString("\n")
	response.WriteString(c.formatGameState(result.GameState))
	return response.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Move History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, entry := range history.Moves {
		fmt.Fprintf(&result, "%3d. %-5s %s\n", entry.Index, entry.Player.Name(), entry.Notation)
	}

	if history.HasNext {
		result.WriteString("\n(More moves available on next page)")
	}

	return result.String()
}
