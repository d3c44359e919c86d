package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/fox-and-geese/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
)

// MaxUndoDepth bounds the per-session undo stack; the oldest entries are dropped first
const MaxUndoDepth = 256

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	ImportSession(ctx context.Context, snapshot engine.Snapshot) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID string, move engine.Move) (*MoveResult, error)
	Undo(ctx context.Context, sessionID string) (*GameState, error)
	Reset(ctx context.Context, sessionID string) (*GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	LegalMoves(ctx context.Context, sessionID string, from *engine.Position) ([]engine.Move, error)
	ExportSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Starting positions
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(ctx context.Context, id string, config *GameConfig) (*Session, error)
	Import(ctx context.Context, id string, snapshot engine.Snapshot) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	GetOrCreate(ctx context.Context, id string, config *GameConfig) (*Session, error)
	List() []*Session
	Delete(ctx context.Context, id string) error
	UpdateLastAccessed(ctx context.Context, id string) error
	Save(ctx context.Context, id string) error
}

// ConfigManager handles starting position loading
type ConfigManager interface {
	LoadConfig(name string) (*GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *GameConfig
	SaveConfig(name string, config *GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigName     string
	Engine         *engine.Engine
	Start          engine.Snapshot
	UndoStack      []engine.Snapshot
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// guards LastAccessedAt, which read-only requests update
	accessMu sync.Mutex
}

// Touch marks the session as accessed now
func (s *Session) Touch() {
	s.accessMu.Lock()
	s.LastAccessedAt = time.Now()
	s.accessMu.Unlock()
}

// LastAccess returns when the session was last accessed
func (s *Session) LastAccess() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.LastAccessedAt
}

// NewSession wraps e in a session that starts from e's current position
func NewSession(id, configName string, e *engine.Engine) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		ConfigName:     configName,
		Engine:         e,
		Start:          e.ToSnapshot(),
		UndoStack:      []engine.Snapshot{},
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// PushUndo records s so a later PopUndo can restore it
func (s *Session) PushUndo(snap engine.Snapshot) {
	s.UndoStack = append(s.UndoStack, snap)
	if len(s.UndoStack) > MaxUndoDepth {
		s.UndoStack = s.UndoStack[len(s.UndoStack)-MaxUndoDepth:]
	}
}

// PopUndo removes and returns the most recent undo entry
func (s *Session) PopUndo() (engine.Snapshot, bool) {
	n := len(s.UndoStack)
	if n == 0 {
		return engine.Snapshot{}, false
	}
	snap := s.UndoStack[n-1]
	s.UndoStack = s.UndoStack[:n-1]
	return snap, true
}
