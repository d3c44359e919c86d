package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/fox-and-geese/game/config"
	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/notation"
	"github.com/wricardo/fox-and-geese/game/service"
	"github.com/wricardo/fox-and-geese/game/session"
	"github.com/wricardo/fox-and-geese/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc  func(ctx context.Context, configName string) (*service.SessionInfo, error)
	ImportSessionFunc  func(ctx context.Context, snapshot engine.Snapshot) (*service.SessionInfo, error)
	GetSessionFunc     func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc   func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc  func(ctx context.Context, sessionID string) error
	MoveFunc           func(ctx context.Context, sessionID string, move engine.Move) (*service.MoveResult, error)
	UndoFunc           func(ctx context.Context, sessionID string) (*service.GameState, error)
	ResetFunc          func(ctx context.Context, sessionID string) (*service.GameState, error)
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*service.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	LegalMovesFunc     func(ctx context.Context, sessionID string, from *engine.Position) ([]engine.Move, error)
	ExportSnapshotFunc func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	ListConfigsFunc    func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc     func(ctx context.Context, configName string) (*service.GameConfig, error)
	SaveConfigFunc     func(ctx context.Context, configName string, config *service.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ImportSession(ctx context.Context, snapshot engine.Snapshot) (*service.SessionInfo, error) {
	if m.ImportSessionFunc != nil {
		return m.ImportSessionFunc(ctx, snapshot)
	}
	return &service.SessionInfo{ID: "imported", ConfigName: "imported"}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "standard", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID string, move engine.Move) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, move)
	}
	return &service.MoveResult{Accepted: true, Move: move, GameState: &service.GameState{}}, nil
}

func (m *MockGameService) Undo(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.UndoFunc != nil {
		return m.UndoFunc(ctx, sessionID)
	}
	return &service.GameState{}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &service.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &service.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Moves: []service.HistoryEntry{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) LegalMoves(ctx context.Context, sessionID string, from *engine.Position) ([]engine.Move, error) {
	if m.LegalMovesFunc != nil {
		return m.LegalMovesFunc(ctx, sessionID, from)
	}
	return []engine.Move{}, nil
}

func (m *MockGameService) ExportSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.ExportSnapshotFunc != nil {
		return m.ExportSnapshotFunc(ctx, sessionID)
	}
	snap := engine.New().ToSnapshot()
	return &snap, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*service.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &service.GameConfig{Name: configName, Position: engine.New().ToSnapshot()}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *service.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestServer(t *testing.T, svc service.GameService) *Server {
	t.Helper()
	hub := websocket.NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return NewServer(svc, hub, quietLogger())
}

func makeRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, server http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "body: %s", w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	parseResponse(t, w, &resp)
	msg, _ := resp["error"].(string)
	return msg
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		createErr      error
		wantConfig     string
		expectedStatus int
	}{
		{name: "default config", body: nil, wantConfig: "", expectedStatus: http.StatusCreated},
		{name: "config_id", body: map[string]string{"config_id": "endgame"}, wantConfig: "endgame", expectedStatus: http.StatusCreated},
		{name: "deprecated config_name", body: map[string]string{"config_name": "thirteen"}, wantConfig: "thirteen", expectedStatus: http.StatusCreated},
		{name: "unknown config", body: map[string]string{"config_id": "nope"}, createErr: fmt.Errorf("config %q: %w", "nope", service.ErrConfigNotFound), wantConfig: "nope", expectedStatus: http.StatusNotFound},
		{name: "service error", body: nil, createErr: errors.New("disk full"), expectedStatus: http.StatusInternalServerError},
		{name: "bad body", body: "{not json", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					got = configName
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return &service.SessionInfo{ID: "sess-123", ConfigName: configName}, nil
				},
			}
			server := setupTestServer(t, mock)

			w := do(t, server, http.MethodPost, "/api/sessions", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus == http.StatusCreated {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, "sess-123", resp.ID)
			}
			if tt.expectedStatus != http.StatusBadRequest {
				assert.Equal(t, tt.wantConfig, got)
			}
			if tt.createErr != nil {
				assert.Equal(t, tt.createErr.Error(), errorOf(t, w))
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "mid", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
			}, nil
		},
	}
	server := setupTestServer(t, mock)

	tests := []struct {
		query string
		want  []string
		total int
	}{
		{"", []string{"old", "mid", "new"}, 3},
		{"?sort=created", []string{"new", "mid", "old"}, 3},
		{"?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"?sort=created&limit=1", []string{"new"}, 3},
		{"?limit=abc", []string{"old", "mid", "new"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, server, http.MethodGet, "/api/sessions"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			ids := make([]string, 0, len(resp.Sessions))
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), resp.Count)
			assert.Equal(t, tt.total, resp.Total)
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "abc" {
				return nil, fmt.Errorf("failed to get session %q: %w", sessionID, service.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: "abc"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "abc" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server := setupTestServer(t, mock)

	assert.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/sessions/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodGet, "/api/sessions/zzz", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, server, http.MethodDelete, "/api/sessions/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodDelete, "/api/sessions/zzz", nil).Code)
}

func TestImportSession(t *testing.T) {
	var imported engine.Snapshot
	mock := &MockGameService{
		ImportSessionFunc: func(ctx context.Context, snapshot engine.Snapshot) (*service.SessionInfo, error) {
			imported = snapshot
			return &service.SessionInfo{ID: "imp"}, nil
		},
	}
	server := setupTestServer(t, mock)

	t.Run("legacy save", func(t *testing.T) {
		// Given: a save in the legacy layout after one fox move
		e := engine.New()
		require.NoError(t, e.ApplyMove(engine.Pos(7, 4), engine.Pos(6, 4)))
		legacy, err := engine.EncodeLegacy(e.ToSnapshot())
		require.NoError(t, err)

		// When: it is posted
		w := do(t, server, http.MethodPost, "/api/sessions/import", string(legacy))

		// Then: the service receives the canonical snapshot
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, e.ToSnapshot(), imported)
	})

	t.Run("garbage", func(t *testing.T) {
		w := do(t, server, http.MethodPost, "/api/sessions/import", `{"hello":"world"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Game Operation Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		moveErr        error
		wantMove       *engine.Move
		expectedStatus int
	}{
		{
			name:           "positions",
			body:           map[string]any{"from": map[string]int{"row": 7, "col": 4}, "to": map[string]int{"row": 6, "col": 4}},
			wantMove:       &engine.Move{From: engine.Pos(7, 4), To: engine.Pos(6, 4)},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "notation",
			body:           map[string]string{"notation": "3,4-4,4"},
			wantMove:       &engine.Move{From: engine.Pos(3, 4), To: engine.Pos(4, 4)},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad notation",
			body:           map[string]string{"notation": "up"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing destination",
			body:           map[string]any{"from": map[string]int{"row": 7, "col": 4}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad body",
			body:           "nope",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "illegal move",
			body:           map[string]string{"notation": "7,4-5,4"},
			moveErr:        engine.ErrIllegalFoxMove,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "game over",
			body:           map[string]string{"notation": "7,4-6,4"},
			moveErr:        engine.ErrGameOver,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *engine.Move
			mock := &MockGameService{
				MoveFunc: func(ctx context.Context, sessionID string, move engine.Move) (*service.MoveResult, error) {
					got = &move
					state := service.NewGameState(engine.New())
					if tt.moveErr != nil {
						return &service.MoveResult{Accepted: false, Outcome: engine.Rejected, Move: move, Reason: tt.moveErr.Error(), GameState: state},
							fmt.Errorf("move %s: %w", move, tt.moveErr)
					}
					return &service.MoveResult{Accepted: true, Outcome: engine.Ongoing, Move: move, GameState: state}, nil
				},
			}
			server := setupTestServer(t, mock)

			w := do(t, server, http.MethodPost, "/api/sessions/s1/move", tt.body)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.wantMove != nil {
				assert.Equal(t, tt.wantMove, got)
			}
			if tt.moveErr != nil {
				var resp struct {
					Accepted  bool               `json:"accepted"`
					Reason    string             `json:"reason"`
					Error     string             `json:"error"`
					GameState *service.GameState `json:"game_state"`
				}
				parseResponse(t, w, &resp)
				assert.False(t, resp.Accepted)
				assert.Equal(t, tt.moveErr.Error(), resp.Reason)
				assert.Contains(t, resp.Error, tt.moveErr.Error())
				assert.NotNil(t, resp.GameState)
			}
		})
	}

	t.Run("unknown session", func(t *testing.T) {
		mock := &MockGameService{
			MoveFunc: func(ctx context.Context, sessionID string, move engine.Move) (*service.MoveResult, error) {
				return nil, service.ErrSessionNotFound
			},
		}
		w := do(t, setupTestServer(t, mock), http.MethodPost, "/api/sessions/zzz/move", map[string]string{"notation": "7,4-6,4"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUndoAndReset(t *testing.T) {
	mock := &MockGameService{
		UndoFunc: func(ctx context.Context, sessionID string) (*service.GameState, error) {
			if sessionID == "fresh" {
				return nil, service.ErrNothingToUndo
			}
			return service.NewGameState(engine.New()), nil
		},
	}
	server := setupTestServer(t, mock)

	w := do(t, server, http.MethodPost, "/api/sessions/played/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		State *service.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	require.NotNil(t, resp.State)
	assert.Equal(t, engine.FoxToMove, resp.State.Status)

	assert.Equal(t, http.StatusConflict, do(t, server, http.MethodPost, "/api/sessions/fresh/undo", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/sessions/played/reset", nil).Code)
}

func TestGetHistory(t *testing.T) {
	var got service.HistoryOptions
	mock := &MockGameService{
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Moves: []service.HistoryEntry{}}, nil
		},
	}
	server := setupTestServer(t, mock)

	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=x&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}
	for _, tt := range tests {
		w := do(t, server, http.MethodGet, "/api/sessions/s1/history"+tt.query, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestLegalMoves(t *testing.T) {
	var gotFrom *engine.Position
	mock := &MockGameService{
		LegalMovesFunc: func(ctx context.Context, sessionID string, from *engine.Position) ([]engine.Move, error) {
			gotFrom = from
			return []engine.Move{{From: engine.Pos(7, 4), To: engine.Pos(6, 4)}}, nil
		},
	}
	server := setupTestServer(t, mock)

	w := do(t, server, http.MethodGet, "/api/sessions/s1/legal-moves?from=7,4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotFrom)
	assert.Equal(t, engine.Pos(7, 4), *gotFrom)

	var resp struct {
		Count     int      `json:"count"`
		Notations []string `json:"notations"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"7,4-6,4"}, resp.Notations)

	w = do(t, server, http.MethodGet, "/api/sessions/s1/legal-moves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, gotFrom)

	w = do(t, server, http.MethodGet, "/api/sessions/s1/legal-moves?from=9,9", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshot(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	w := do(t, server, http.MethodGet, "/api/sessions/s1/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap engine.Snapshot
	parseResponse(t, w, &snap)
	assert.Equal(t, engine.New().ToSnapshot(), snap)

	w = do(t, server, http.MethodGet, "/api/sessions/s1/snapshot?format=legacy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gameBoard")

	e, err := engine.DecodeSnapshot(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, engine.FoxPlayer, e.CurrentPlayer())
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var savedID string
	mock := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*service.GameConfig, error) {
			if configName != "endgame" {
				return nil, service.ErrConfigNotFound
			}
			return &service.GameConfig{Name: "Endgame"}, nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *service.GameConfig) error {
			if cfg.Position.CurrentPlayer == "" {
				return fmt.Errorf("%w: missing player", service.ErrInvalidConfig)
			}
			savedID = configName
			return nil
		},
	}
	server := setupTestServer(t, mock)

	assert.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/configs", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/configs/endgame.json", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodGet, "/api/configs/nope", nil).Code)

	t.Run("create", func(t *testing.T) {
		body := map[string]any{
			"id":       "opened",
			"name":     "Opened",
			"position": engine.New().ToSnapshot(),
		}
		w := do(t, server, http.MethodPost, "/api/configs", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "opened", savedID)
	})

	t.Run("name required", func(t *testing.T) {
		w := do(t, server, http.MethodPost, "/api/configs", map[string]any{"position": engine.New().ToSnapshot()})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid position", func(t *testing.T) {
		w := do(t, server, http.MethodPost, "/api/configs", map[string]any{"name": "bad"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthAndIndex(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	w := do(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = do(t, server, http.MethodGet, "/api", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/sessions/{id}/move")
}

func TestWebSocketEndpoint(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	server := setupTestServer(t, mock)

	assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodGet, "/ws", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodGet, "/ws?session=zzz", nil).Code)

	noHub := NewServer(&MockGameService{}, nil, quietLogger())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, noHub, http.MethodGet, "/ws?session=abc", nil).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrConfigNotFound, http.StatusNotFound},
		{engine.ErrGameOver, http.StatusConflict},
		{service.ErrNothingToUndo, http.StatusConflict},
		{engine.ErrNoPiece, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w: start 9,9", engine.ErrIllegalMove, engine.ErrOutOfBounds), http.StatusUnprocessableEntity},
		{engine.ErrOutOfBounds, http.StatusBadRequest},
		{engine.ErrInvalidSnapshot, http.StatusBadRequest},
		{notation.ErrSyntax, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

// TestGameFlow drives a real service through the HTTP API
func TestGameFlow(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(), configs, quietLogger())
	server := setupTestServer(t, svc)

	// Given: a new standard game
	w := do(t, server, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var info service.SessionInfo
	parseResponse(t, w, &info)
	base := "/api/sessions/" + info.ID

	// When: the fox sets up and makes a jump
	for _, n := range []string{"7,4-6,4", "3,4-4,4", "6,4-5,4", "3,0-4,0", "5,4-3,4"} {
		w := do(t, server, http.MethodPost, base+"/move", map[string]string{"notation": n})
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", n, w.Body.String())
	}

	// Then: one goose is kicked
	w = do(t, server, http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state service.GameState
	parseResponse(t, w, &state)
	assert.Equal(t, 1, state.KickedCount)
	assert.Equal(t, engine.Pos(3, 4), state.FoxPosition)
	assert.Equal(t, engine.GoosePlayer, state.CurrentPlayer)

	// and a goose cannot move twice in a row from the wrong side
	w = do(t, server, http.MethodPost, base+"/move", map[string]string{"notation": "3,4-2,4"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// undo restores the kicked goose
	w = do(t, server, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, server, http.MethodGet, base+"/state", nil)
	parseResponse(t, w, &state)
	assert.Equal(t, 0, state.KickedCount)
	assert.Equal(t, engine.FoxPlayer, state.CurrentPlayer)

	w = do(t, server, http.MethodGet, base+"/history?order=asc", nil)
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	assert.Equal(t, 4, history.TotalMoves)
	assert.Equal(t, "7,4-6,4", history.Moves[0].Notation)
}
