package service

import (
	"fmt"
	"time"

	"github.com/wricardo/fox-and-geese/game/engine"
)

// GameState is the client-facing view of a game
type GameState struct {
	Board          []string          `json:"board"`
	CurrentPlayer  engine.Player     `json:"current_player"`
	Status         engine.Status     `json:"status"`
	KickedCount    int               `json:"kicked_count"`
	KickTarget     int               `json:"kick_target"`
	GeeseRemaining int               `json:"geese_remaining"`
	FoxPosition    engine.Position   `json:"fox_position"`
	LegalFoxMoves  []engine.Position `json:"legal_fox_moves"`
	MoveCount      int               `json:"move_count"`
	GameOver       bool              `json:"game_over"`
	Winner         engine.Player     `json:"winner,omitempty"`
	Message        string            `json:"message"`
}

// NewGameState builds the view of e
func NewGameState(e *engine.Engine) *GameState {
	legal := e.LegalFoxMoves()
	if legal == nil {
		legal = []engine.Position{}
	}
	return &GameState{
		Board:          e.Board().Rows(),
		CurrentPlayer:  e.CurrentPlayer(),
		Status:         e.Status(),
		KickedCount:    e.KickedCount(),
		KickTarget:     engine.KickTarget,
		GeeseRemaining: e.GeeseRemaining(),
		FoxPosition:    e.FoxPosition(),
		LegalFoxMoves:  legal,
		MoveCount:      len(e.History()),
		GameOver:       e.IsOver(),
		Winner:         e.Winner(),
		Message:        statusMessage(e),
	}
}

func statusMessage(e *engine.Engine) string {
	switch e.Status() {
	case engine.FoxWon:
		return fmt.Sprintf("The Fox wins after kicking %d geese!", e.KickedCount())
	case engine.GeeseWon:
		return "The Geese win: the Fox is trapped!"
	case engine.GooseToMove:
		return "Geese to move"
	default:
		return fmt.Sprintf("Fox to move (%d legal moves)", len(e.LegalFoxMoves()))
	}
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string     `json:"id"`
	ConfigName     string     `json:"config_name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	UndoDepth      int        `json:"undo_depth"`
	GameState      *GameState `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Accepted  bool           `json:"accepted"`
	Outcome   engine.Outcome `json:"outcome"`
	Status    engine.Status  `json:"status"`
	Kicked    bool           `json:"kicked"`
	Move      engine.Move    `json:"move"`
	Reason    string         `json:"reason,omitempty"`
	Message   string         `json:"message"`
	GameState *GameState     `json:"game_state"`
	Events    []GameEvent    `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "move", "kick", "fox_won", "geese_won", "reset", "undo"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryEntry is one applied move
type HistoryEntry struct {
	Index    int           `json:"index"` // 1-based
	Player   engine.Player `json:"player"`
	Move     engine.Move   `json:"move"`
	Notation string        `json:"notation"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []HistoryEntry `json:"moves"`
	TotalMoves  int            `json:"total_moves"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// GameConfig is a named starting position
type GameConfig struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Position    engine.Snapshot `json:"position"`
}

// NewEngine builds an engine at the configured position
func (c *GameConfig) NewEngine() (*engine.Engine, error) {
	if c == nil {
		return engine.New(), nil
	}
	e, err := engine.FromSnapshot(c.Position)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return e, nil
}

// ConfigInfo provides information about a starting position
type ConfigInfo struct {
	Filename      string        `json:"filename"`
	ConfigID      string        `json:"config_id"` // The identifier to use for session creation
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	CurrentPlayer engine.Player `json:"current_player"`
	KickedCount   int           `json:"kicked_count"`
	GeeseCount    int           `json:"geese_count"`
}
