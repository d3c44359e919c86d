package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(ctx context.Context, session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(ctx context.Context, id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(ctx context.Context, id string) error

	// ListAll returns all persisted session IDs
	ListAll(ctx context.Context) ([]string, error)

	// Exists checks if a session exists in storage
	Exists(ctx context.Context, id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Start          engine.Snapshot   `json:"start"`
	Game           engine.Snapshot   `json:"game"`
	UndoStack      []engine.Snapshot `json:"undo_stack"`
}

func newPersistedSessionData(s *service.Session) PersistedSessionData {
	undo := make([]engine.Snapshot, len(s.UndoStack))
	copy(undo, s.UndoStack)
	return PersistedSessionData{
		ID:             s.ID,
		ConfigName:     s.ConfigName,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccess(),
		Start:          s.Start,
		Game:           s.Engine.ToSnapshot(),
		UndoStack:      undo,
	}
}

// toSession rebuilds the engine. Undo entries are validated lazily by
// the service when they are popped.
func (d PersistedSessionData) toSession() (*service.Session, error) {
	eng, err := engine.FromSnapshot(d.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}
	if _, err := engine.FromSnapshot(d.Start); err != nil {
		return nil, fmt.Errorf("failed to restore starting position: %w", err)
	}
	undo := d.UndoStack
	if undo == nil {
		undo = []engine.Snapshot{}
	}
	return &service.Session{
		ID:             d.ID,
		ConfigName:     d.ConfigName,
		Engine:         eng,
		Start:          d.Start,
		UndoStack:      undo,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}, nil
}

func encodeSession(s *service.Session) ([]byte, error) {
	if s == nil || s.Engine == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	data, err := json.MarshalIndent(newPersistedSessionData(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return data, nil
}

func decodeSession(raw []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return data.toSession()
}

// validID rejects IDs that cannot be used as a file name or key suffix
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`+"\x00")
}
