package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/fox-and-geese/api"
	"github.com/wricardo/fox-and-geese/game/config"
	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/service"
	"github.com/wricardo/fox-and-geese/game/session"
)

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

// newBackedClient runs the real REST API with an in-memory service
func newBackedClient(t *testing.T) *Client {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewGameService(session.NewManager().WithLogger(logger), configs, logger)

	srv := httptest.NewServer(api.NewServer(svc, nil, logger))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func createSession(t *testing.T, client *Client) string {
	t.Helper()
	var info service.SessionInfo
	require.NoError(t, client.apiCall(context.Background(), http.MethodPost, "/api/sessions", nil, &info))
	return info.ID
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "test-session"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]any
	require.NoError(t, client.apiCall(context.Background(), http.MethodGet, "/api", nil, &response))
	assert.Equal(t, "test-session", response["id"])
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), http.MethodGet, "/api", nil, nil)
	assert.Error(t, err)
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), http.MethodGet, "/api", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		assert.Contains(t, err.Error(), "API error")
	})

	t.Run("json error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"session not found"}`))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), http.MethodGet, "/api", nil, nil)
		assert.EqualError(t, err, "session not found")
	})
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "endgame",
			GameState:  service.NewGameState(engine.New()),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]any{"config_id": "endgame"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "test-session-123")
	assert.Contains(t, text, "To move: Fox")
	assert.Equal(t, "endgame", gotBody["config_id"])
}

func TestClient_GameFlow(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	// Given: a new standard game
	id := createSession(t, client)

	// When: the fox steps forward
	result, err := client.handleMove(ctx, callTool("move", map[string]any{
		"session_id": id,
		"move":       "7,4-6,4",
		"intent":     "approach the geese",
	}))
	require.NoError(t, err)

	// Then: the move is accepted and the geese are to move
	assert.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "✓ Move 7,4-6,4 accepted")
	assert.Contains(t, text, "To move: Geese")

	// and an illegal goose move is rejected with the reason and the board
	result, err = client.handleMove(ctx, callTool("move", map[string]any{"session_id": id, "move": "3,4-5,4"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	text = resultText(t, result)
	assert.Contains(t, text, "✗ Move 3,4-5,4 rejected")
	assert.Contains(t, text, "geese move one square")

	// bad notation is reported without a board
	result, err = client.handleMove(ctx, callTool("move", map[string]any{"session_id": id, "move": "north"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unrecognised input")

	result, err = client.handleMoveHistory(ctx, callTool("move_history", map[string]any{"session_id": id, "order": "asc"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "1. Fox   7,4-6,4")

	result, err = client.handleUndo(ctx, callTool("undo", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "To move: Fox")

	result, err = client.handleUndo(ctx, callTool("undo", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "nothing to undo")
}

func TestClient_LegalMoves(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()
	id := createSession(t, client)

	result, err := client.handleLegalMoves(ctx, callTool("legal_moves", map[string]any{"session_id": id}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Legal moves (8)")
	assert.Contains(t, text, "7,4-6,4")

	result, err = client.handleLegalMoves(ctx, callTool("legal_moves", map[string]any{"session_id": id, "from": "0,4"}))
	require.NoError(t, err)
	assert.Equal(t, "No legal moves from 0,4", resultText(t, result))
}

func TestClient_DescribeCell(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()
	id := createSession(t, client)

	tests := []struct {
		name     string
		row, col int
		want     string
		isError  bool
	}{
		{name: "fox", row: 7, col: 4, want: "Fox destinations: 6,4"},
		{name: "goose", row: 3, col: 4, want: "a Goose (G)"},
		{name: "fox target", row: 6, col: 3, want: "The fox can move here."},
		{name: "off the cross", row: 0, col: 0, want: "off the board"},
		{name: "out of bounds", row: 9, col: 0, want: "out of bounds", isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleDescribeCell(ctx, callTool("describe_cell", map[string]any{
				"session_id": id,
				"row":        float64(tt.row),
				"col":        float64(tt.col),
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestClient_SessionsAndConfigs(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callTool("create_session", map[string]any{"config_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	id := createSession(t, client)

	result, err = client.handleListSessions(ctx, callTool("list_sessions", map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), id)

	result, err = client.handleGetSession(ctx, callTool("get_session", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Config: standard")

	result, err = client.handleGetSession(ctx, callTool("get_session", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = client.handleListConfigs(ctx, callTool("list_configs", map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "config_id: standard")
}

func TestClient_ImportSession(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	e := engine.New()
	require.NoError(t, e.ApplyMove(engine.Pos(7, 4), engine.Pos(6, 4)))
	legacy, err := engine.EncodeLegacy(e.ToSnapshot())
	require.NoError(t, err)

	result, err := client.handleImportSession(ctx, callTool("import_session", map[string]any{"snapshot": string(legacy)}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	text := resultText(t, result)
	assert.Contains(t, text, "Imported session:")
	assert.Contains(t, text, "To move: Geese")
}

func TestFormatGameState(t *testing.T) {
	client := NewClient("http://localhost:8080")
	state := service.NewGameState(engine.New())

	result := client.formatGameState(state)

	for _, field := range []string{
		"To move: Fox",
		"Kicked: 0/10",
		"Geese left: 18",
		"* F *",
		"(* = fox can move here)",
		"Message: Fox to move (8 legal moves)",
	} {
		assert.Contains(t, result, field)
	}
	assert.Equal(t, "No game state available", client.formatGameState(nil))
}

func TestFormatGameState_GameOver(t *testing.T) {
	client := NewClient("http://localhost:8080")

	state := &service.GameState{Board: engine.NewBoard().Rows(), GameOver: true, Winner: engine.FoxPlayer}
	assert.Contains(t, client.formatGameState(state), "🦊 FOX WINS")

	state.Winner = engine.GoosePlayer
	assert.Contains(t, client.formatGameState(state), "🪿 GEESE WIN")
}

func TestFormatMoveResult(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result := client.formatMoveResult(&service.MoveResult{
		Accepted:  true,
		Kicked:    true,
		Move:      engine.Move{From: engine.Pos(5, 4), To: engine.Pos(3, 4)},
		GameState: service.NewGameState(engine.New()),
	})

	assert.Contains(t, result, "✓ Move 5,4-3,4 accepted")
	assert.Contains(t, result, "Goose at 4,4 kicked!")
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameRules(context.Background(), callTool("game_rules", map[string]any{}))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, content := range []string{
		"Fox and Geese - Complete Rules",
		"THE BOARD:",
		"FOX MOVES:",
		"GEESE MOVES:",
		"WINNING:",
		"10 geese",
		"MOVE FORMAT:",
	} {
		assert.Contains(t, text, content)
	}
}
